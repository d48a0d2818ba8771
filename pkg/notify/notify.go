// Package notify delivers deployment alerts to a webhook endpoint.
//
// Delivery is best-effort by contract: the orchestrator logs and swallows
// any error returned from Notify, so a broken endpoint never blocks
// deployments.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/deploykeeper/pkg/deploy"
)

const defaultTimeout = 5 * time.Second

// subjectFormat matches the alert subject of the legacy email channel.
const subjectFormat = "[SQL DEPLOYMENT] %s"

type (
	// Webhook posts deployment alerts as JSON to a single endpoint.
	Webhook struct {
		url    string
		client *http.Client
	}

	// payload is the JSON body posted to the endpoint. Subject and Body
	// mirror the plain-text email the alert channel used to carry.
	payload struct {
		Subject      string `json:"subject"`
		Body         string `json:"body"`
		RunID        string `json:"run_id"`
		DeploymentID string `json:"deployment_id"`
		ScriptName   string `json:"script_name"`
		ScriptPath   string `json:"script_path"`
		Status       string `json:"status"`
		Reason       string `json:"reason,omitempty"`
	}
)

// NewWebhook creates a webhook notifier for the given endpoint URL with a
// bounded-timeout HTTP client.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Notify posts the alert. Returns an error on connection failure or a
// non-2xx response; the caller is expected to log and move on.
func (w *Webhook) Notify(ctx context.Context, n deploy.Notification) error {
	body, err := json.Marshal(payload{
		Subject:      fmt.Sprintf(subjectFormat, n.Status),
		Body:         formatBody(n),
		RunID:        n.RunID,
		DeploymentID: n.DeploymentID,
		ScriptName:   n.ScriptName,
		ScriptPath:   n.ScriptPath,
		Status:       string(n.Status),
		Reason:       n.Reason,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build notification request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to deliver notification")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("notification endpoint returned %s", resp.Status)
	}

	return nil
}

// formatBody renders the plain-text alert body listing the deployment id,
// script name, path, status, and reason.
func formatBody(n deploy.Notification) string {
	return fmt.Sprintf(`
Deployment ID : %s
Script Name  : %s
Script Path  : %s
Status       : %s
Reason       : %s
`, n.DeploymentID, n.ScriptName, n.ScriptPath, n.Status, n.Reason)
}

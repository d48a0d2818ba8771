package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pseudomuto/deploykeeper/pkg/deploy"
	"github.com/pseudomuto/deploykeeper/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPostsAlert(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := notify.NewWebhook(srv.URL).Notify(context.Background(), deploy.Notification{
		RunID:        "run-1",
		DeploymentID: "SCT-1",
		ScriptName:   "a_2024_01_01_v1.sql",
		ScriptPath:   "sql_data/deployment/SCT-1/a_2024_01_01_v1.sql",
		Status:       deploy.StatusFailed,
		Reason:       "syntax error",
	})
	require.NoError(t, err)

	assert.Equal(t, "[SQL DEPLOYMENT] FAILED", got["subject"])
	assert.Equal(t, "SCT-1", got["deployment_id"])
	assert.Equal(t, "a_2024_01_01_v1.sql", got["script_name"])
	assert.Equal(t, "FAILED", got["status"])
	assert.Equal(t, "syntax error", got["reason"])

	body, ok := got["body"].(string)
	require.True(t, ok)
	assert.Contains(t, body, "Deployment ID : SCT-1")
	assert.Contains(t, body, "Status       : FAILED")
	assert.Contains(t, body, "Reason       : syntax error")
}

func TestNotifyNon2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := notify.NewWebhook(srv.URL).Notify(context.Background(), deploy.Notification{
		DeploymentID: "SCT-1",
		Status:       deploy.StatusIgnored,
	})
	assert.Error(t, err)
}

func TestNotifyConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := notify.NewWebhook(srv.URL).Notify(context.Background(), deploy.Notification{
		DeploymentID: "SCT-1",
		Status:       deploy.StatusFailed,
	})
	assert.Error(t, err)
}

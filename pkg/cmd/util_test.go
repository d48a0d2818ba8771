package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	body := `{"files":[
		{"filename":"sql_data/deployment/SCT-1/a_2024_01_01_v1.sql","content":"SELECT 1"},
		{"filename":"README.md","content":"docs"}
	]}`

	req, err := parsePayload(strings.NewReader(body))
	require.NoError(t, err)

	require.Len(t, req.Files, 2)
	assert.Equal(t, "sql_data/deployment/SCT-1/a_2024_01_01_v1.sql", req.Files[0].Path)
	assert.Equal(t, "SELECT 1", req.Files[0].Content)
}

func TestParsePayloadEmpty(t *testing.T) {
	req, err := parsePayload(strings.NewReader(`{"files":[]}`))
	require.NoError(t, err)
	assert.Empty(t, req.Files)
}

func TestParsePayloadIgnoresExtraFields(t *testing.T) {
	// Webhook payloads carry more than we consume.
	body := `{"ref":"refs/heads/main","files":[{"filename":"a.sql","content":""}],"pusher":{"name":"x"}}`

	req, err := parsePayload(strings.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, req.Files, 1)
}

func TestParsePayloadMalformed(t *testing.T) {
	_, err := parsePayload(strings.NewReader(`{"files":`))
	assert.Error(t, err)
}

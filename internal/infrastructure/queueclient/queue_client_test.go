package queueclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/infrastructure/queueclient"
)

func TestNormalizeBlob(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want queueclient.Blob
	}{
		{
			name: "string",
			raw:  `"hello"`,
			want: queueclient.Blob{Kind: queueclient.BlobKindString, Text: "hello"},
		},
		{
			name: "array",
			raw:  `[1, "two", {"three":3}]`,
			want: queueclient.Blob{Kind: queueclient.BlobKindArray, Items: []json.RawMessage{
				json.RawMessage(`1`), json.RawMessage(`"two"`), json.RawMessage(`{"three":3}`),
			}},
		},
		{
			name: "object passes through raw",
			raw:  `{"a":1}`,
			want: queueclient.Blob{Kind: queueclient.BlobKindObject, Object: json.RawMessage(`{"a":1}`)},
		},
		{
			name: "number falls back to text",
			raw:  `42`,
			want: queueclient.Blob{Kind: queueclient.BlobKindString, Text: "42"},
		},
		{
			name: "leading whitespace is skipped",
			raw:  "  \n\t[1]",
			want: queueclient.Blob{Kind: queueclient.BlobKindArray, Items: []json.RawMessage{json.RawMessage(`1`)}},
		},
		{
			name: "empty",
			raw:  "",
			want: queueclient.Blob{Kind: queueclient.BlobKindString},
		},
		{
			name: "truncated array falls back to text",
			raw:  `[1, 2`,
			want: queueclient.Blob{Kind: queueclient.BlobKindString, Text: `[1, 2`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queueclient.NormalizeBlob(json.RawMessage(tt.raw)))
		})
	}
}

func TestStats(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/queues/stats", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "failed", r.URL.Query().Get("status"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"counts": {"waiting": 2, "failed": 1},
			"workers": [{"id": "w1", "name": "pulse", "connected": true}],
			"jobs": [
				{"id": "j1", "name": "wake", "status": "failed", "payload": {"entity": "ent_1"},
				 "returnValue": "boom", "attempts": 3, "createdAt": "2026-08-30T10:00:00Z"},
				{"id": "j2", "name": "wake", "status": "waiting", "payload": "[not json",
				 "returnValue": null, "attempts": 0, "createdAt": "2026-08-30T11:00:00Z"}
			],
			"pagination": {"limit": 5, "offset": 0, "total": 3}
		}`))
	}))
	defer upstream.Close()

	client := queueclient.NewClient(upstream.URL, "test-key", 5*time.Second)
	stats, err := client.Stats(context.Background(), queueclient.Query{Limit: 5, Status: "failed"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Counts["waiting"])
	require.Len(t, stats.Workers, 1)
	assert.True(t, stats.Workers[0].Connected)
	assert.Equal(t, int64(3), stats.Pagination.Total)

	require.Len(t, stats.Jobs, 2)
	assert.Equal(t, queueclient.BlobKindObject, stats.Jobs[0].Payload.Kind)
	require.NotNil(t, stats.Jobs[0].ReturnValue)
	assert.Equal(t, "boom", stats.Jobs[0].ReturnValue.Text)

	assert.Equal(t, queueclient.BlobKindString, stats.Jobs[1].Payload.Kind)
	assert.Equal(t, "[not json", stats.Jobs[1].Payload.Text)
	assert.Nil(t, stats.Jobs[1].ReturnValue, "null return values are dropped")
}

func TestStats_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer upstream.Close()

	client := queueclient.NewClient(upstream.URL, "", 5*time.Second)
	_, err := client.Stats(context.Background(), queueclient.Query{Limit: 10})
	assert.Error(t, err)
}

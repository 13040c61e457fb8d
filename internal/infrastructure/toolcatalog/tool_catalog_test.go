package toolcatalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/infrastructure/toolcatalog"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, `
tools:
  - name: web_search
    description: Search the web
    category: research
  - name: memory_write
    description: Persist a continuity memory
    category: memory
  - name: send_message
    description: Push a message into a chat
    enabled: false
  - name: custom_plugin
    description: No builtin args
`)

	catalog, err := toolcatalog.Load(context.Background(), path)
	require.NoError(t, err)

	tools := catalog.List()
	require.Len(t, tools, 4)
	assert.Equal(t, "custom_plugin", tools[0].Name, "entries are sorted by name")

	assert.Equal(t, []string{"custom_plugin", "memory_write", "web_search"}, catalog.Names(),
		"disabled tools are excluded from the allow-list")
	assert.True(t, catalog.Has("web_search"))
	assert.False(t, catalog.Has("send_message"), "disabled tool does not validate")
	assert.False(t, catalog.Has("unknown"))
}

func TestLoad_SchemasForBuiltins(t *testing.T) {
	path := writeCatalog(t, `
tools:
  - name: memory_write
    description: Persist a continuity memory
  - name: custom_plugin
    description: No builtin args
`)

	catalog, err := toolcatalog.Load(context.Background(), path)
	require.NoError(t, err)

	var withSchema, withoutSchema bool
	for _, tool := range catalog.List() {
		switch tool.Name {
		case "memory_write":
			require.NotNil(t, tool.Parameters)
			content, ok := tool.Parameters.Properties.Get("content")
			require.True(t, ok)
			assert.Equal(t, "string", content.Type)
			withSchema = true
		case "custom_plugin":
			assert.Nil(t, tool.Parameters)
			withoutSchema = true
		}
	}
	assert.True(t, withSchema)
	assert.True(t, withoutSchema)
}

func TestLoad_Errors(t *testing.T) {
	_, err := toolcatalog.Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeCatalog(t, "tools: [not: valid: yaml")
	_, err = toolcatalog.Load(context.Background(), path)
	assert.Error(t, err)
}

// Package toolcatalog serves the registry of tools an entity can be granted.
// Tool metadata lives in a YAML file; parameter schemas are generated from
// the Go argument types so they cannot drift from the declarations.
package toolcatalog

import (
	"context"
	"os"
	"sort"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// Tool is one catalog entry.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category,omitempty"`
	Enabled     bool               `json:"enabled"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

type fileEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Enabled     *bool  `yaml:"enabled"`
}

type file struct {
	Tools []fileEntry `yaml:"tools"`
}

// Argument types of the built-in tools. The reflected schemas are what the
// agent runtime receives as tool definitions.

type webSearchArgs struct {
	Query      string `json:"query" jsonschema:"required,description=Search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum results to return,default=5"`
}

type memoryWriteArgs struct {
	Type       string   `json:"type" jsonschema:"required,enum=CORE,enum=ANCHOR,enum=EPISODE,enum=FACT,enum=REFLECTION"`
	Content    string   `json:"content" jsonschema:"required,description=Memory content"`
	Importance int      `json:"importance,omitempty" jsonschema:"minimum=1,maximum=10"`
	Tags       []string `json:"tags,omitempty"`
}

type scheduleWakeArgs struct {
	Cron   string `json:"cron" jsonschema:"required,description=Cron expression for the wake schedule"`
	Reason string `json:"reason,omitempty"`
}

type sendMessageArgs struct {
	ChatID  string `json:"chat_id" jsonschema:"required"`
	Content string `json:"content" jsonschema:"required"`
}

var builtinArgs = map[string]any{
	"web_search":    webSearchArgs{},
	"memory_write":  memoryWriteArgs{},
	"schedule_wake": scheduleWakeArgs{},
	"send_message":  sendMessageArgs{},
}

// Catalog holds the loaded tool registry.
type Catalog struct {
	tools []Tool
}

// Load reads the YAML registry and attaches generated parameter schemas.
func Load(ctx context.Context, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "failed to read tool catalog file", err,
			"6e28a4d9-1c75-4f30-b6e2-89d0c3a5f164")
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "failed to parse tool catalog file", err,
			"f91d5c30-a682-4e47-95b1-30c7e8d2a659",
		)
	}

	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}

	tools := make([]Tool, 0, len(f.Tools))
	for _, entry := range f.Tools {
		tool := Tool{
			Name:        entry.Name,
			Description: entry.Description,
			Category:    entry.Category,
			Enabled:     entry.Enabled == nil || *entry.Enabled,
		}
		if args, ok := builtinArgs[entry.Name]; ok {
			tool.Parameters = reflector.Reflect(args)
		}
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	return &Catalog{tools: tools}, nil
}

// List returns every catalog entry.
func (c *Catalog) List() []Tool {
	return c.tools
}

// Names returns the names of the enabled tools, for validating entity
// allow-lists.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		if t.Enabled {
			names = append(names, t.Name)
		}
	}
	return names
}

// Has reports whether an enabled tool with the given name exists.
func (c *Catalog) Has(name string) bool {
	for _, t := range c.tools {
		if t.Name == name && t.Enabled {
			return true
		}
	}
	return false
}

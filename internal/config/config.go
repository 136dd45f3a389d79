// Package config defines the typed configuration model for an ETL run and
// the loader that builds it from a JSON or YAML document. The core
// components trust only this typed structure; raw maps never travel past
// this package (connection params excepted, which are decoded by the
// database layer per engine).
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBatchSize is applied when the loading section omits batch_size.
const DefaultBatchSize = 100

// Pipeline is the full configuration for one ETL run.
type Pipeline struct {
	SourceDB   Database   `json:"source_db" yaml:"source_db"`
	TargetDB   Database   `json:"target_db" yaml:"target_db"`
	Extraction Extraction `json:"extraction" yaml:"extraction"`
	Loading    Loading    `json:"loading" yaml:"loading"`
}

// Database identifies one engine-side of the pipeline. Params stays a loose
// map here because its shape depends on the engine; the database layer
// decodes it into typed params.
type Database struct {
	Type   string         `json:"type" yaml:"type"`
	Params map[string]any `json:"connection_params" yaml:"connection_params"`
}

// Extraction configures the read query executed against the source.
type Extraction struct {
	Query  string `json:"query" yaml:"query"`
	Params []any  `json:"params" yaml:"params"`
}

// Loading configures how extracted rows are written to the target.
type Loading struct {
	TargetTable        string            `json:"target_table" yaml:"target_table"`
	TargetColumns      []string          `json:"target_columns" yaml:"target_columns"`
	ColumnMapping      map[string]string `json:"column_mapping" yaml:"column_mapping"`
	BatchSize          int               `json:"batch_size" yaml:"batch_size"`
	TruncateBeforeLoad bool              `json:"truncate_before_load" yaml:"truncate_before_load"`
	CreateTable        bool              `json:"create_table" yaml:"create_table"`
	ColumnDefinitions  ColumnDefs        `json:"column_definitions" yaml:"column_definitions"`
}

// ColumnDef is a single column definition for target-table creation.
type ColumnDef struct {
	Name string
	Type string
}

// ColumnDefs preserves the document order of a column_definitions mapping.
// Go maps would lose it, and CREATE TABLE column order matters.
type ColumnDefs []ColumnDef

// UnmarshalJSON decodes a JSON object into ordered column definitions.
func (c *ColumnDefs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("column_definitions: expected object, got %v", tok)
	}

	out := ColumnDefs{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("column_definitions: unexpected key %v", keyTok)
		}
		var typ string
		if err := dec.Decode(&typ); err != nil {
			return fmt.Errorf("column_definitions: %s: %w", name, err)
		}
		out = append(out, ColumnDef{Name: name, Type: typ})
	}
	*c = out
	return nil
}

// UnmarshalYAML decodes a YAML mapping into ordered column definitions.
func (c *ColumnDefs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("column_definitions: expected mapping, got %v", node.Tag)
	}
	out := ColumnDefs{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var typ string
		if err := node.Content[i+1].Decode(&typ); err != nil {
			return fmt.Errorf("column_definitions: %s: %w", node.Content[i].Value, err)
		}
		out = append(out, ColumnDef{Name: node.Content[i].Value, Type: typ})
	}
	*c = out
	return nil
}

// Load reads a pipeline config from path, picking the decoder by file
// extension (.json, .yaml, .yml). String connection params are expanded
// against the environment, and defaults are applied.
func Load(path string) (Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}

	var p Pipeline
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(raw, &p); err != nil {
			return Pipeline{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return Pipeline{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Pipeline{}, &Error{Key: "config", Reason: fmt.Sprintf("unsupported config format %q (want .json, .yaml or .yml)", ext)}
	}

	expandParams(p.SourceDB.Params)
	expandParams(p.TargetDB.Params)
	p.applyDefaults()
	return p, nil
}

func (p *Pipeline) applyDefaults() {
	if p.Loading.BatchSize <= 0 {
		p.Loading.BatchSize = DefaultBatchSize
	}
}

// expandParams applies ${VAR} environment expansion to string param values
// so credentials can stay out of config files.
func expandParams(params map[string]any) {
	for k, v := range params {
		if s, ok := v.(string); ok {
			params[k] = os.ExpandEnv(s)
		}
	}
}

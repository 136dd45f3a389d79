// Package database provides the engine-agnostic connection layer used by the
// extractor and loader. Concrete engines (sqlite, mysql, postgres, mssql)
// live in subpackages and register themselves with the dialect registry at
// init time; callers select an engine by name and never branch on it again.
//
// Engine differences — driver name, default port, placeholder style,
// identifier quoting, conditional CREATE form — are carried as data on the
// Dialect value rather than as conditionals in calling code.
package database

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// Params holds the decoded connection parameters shared by all engines.
// Engines use the subset that applies to them and fill defaults for the rest.
type Params struct {
	// Database is the database name, or the file path for sqlite.
	Database string `mapstructure:"database"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DecodeParams converts a loose connection_params map (as decoded from a
// pipeline config) into typed Params.
func DecodeParams(raw map[string]any) (Params, error) {
	var p Params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Params{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Params{}, fmt.Errorf("decode connection params: %w", err)
	}
	return p, nil
}

// Dialect describes one database engine. All fields are data or pure
// functions; a Dialect value carries no open resources.
type Dialect struct {
	// Name is the canonical engine name, e.g. "postgres".
	Name string

	// Driver is the database/sql driver name to open.
	Driver string

	// DefaultPort is applied when Params.Port is zero. Zero means the
	// engine has no network port (sqlite).
	DefaultPort int

	// Placeholder returns the parameter placeholder for the n-th value of a
	// statement (1-based): "?" for sqlite/mysql, "$1" for postgres, "@p1"
	// for mssql.
	Placeholder func(n int) string

	// QuoteIdent quotes a single identifier for this engine.
	QuoteIdent func(ident string) string

	// CreateTable renders a conditional CREATE TABLE statement from an
	// already-quoted table name and a rendered column definition list.
	CreateTable func(table, columns string) string

	// BuildDSN renders the driver DSN from typed params, applying
	// engine-specific defaults for absent values.
	BuildDSN func(p Params) (string, error)
}

var (
	regMu    sync.RWMutex
	dialects = map[string]Dialect{}
)

// Register adds (or replaces) a dialect under the given name. Engine
// subpackages call it from init; additional names register aliases.
func Register(name string, d Dialect) {
	regMu.Lock()
	defer regMu.Unlock()
	dialects[name] = d
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database type %q (registered: %v)", name, registeredNames())
	}
	return d, nil
}

// registeredNames expects regMu to be held.
func registeredNames() []string {
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// QuoteDouble is the ANSI double-quote identifier quoting shared by the
// sqlite, postgres and mssql dialects.
func QuoteDouble(ident string) string {
	out := make([]byte, 0, len(ident)+2)
	out = append(out, '"')
	for i := 0; i < len(ident); i++ {
		if ident[i] == '"' {
			out = append(out, '"')
		}
		out = append(out, ident[i])
	}
	return string(append(out, '"'))
}

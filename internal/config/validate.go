package config

import "fmt"

// Error reports the first missing or invalid configuration key found.
// Validation is structural and fail-fast: it checks required keys and their
// required sub-keys without opening any connection, and stops at the first
// problem.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Key, e.Reason)
}

// Validate checks that every required key is present. It returns a *Error
// for the first problem found, or nil when the structure is complete.
func (p Pipeline) Validate() error {
	if err := p.SourceDB.validate("source_db"); err != nil {
		return err
	}
	if err := p.TargetDB.validate("target_db"); err != nil {
		return err
	}
	if p.Extraction.Query == "" {
		return &Error{Key: "extraction.query", Reason: "required"}
	}
	if p.Loading.TargetTable == "" {
		return &Error{Key: "loading.target_table", Reason: "required"}
	}
	if p.Loading.CreateTable && len(p.Loading.ColumnDefinitions) == 0 {
		return &Error{Key: "loading.column_definitions", Reason: "required when create_table is set"}
	}
	return nil
}

func (d Database) validate(key string) error {
	if d.Type == "" {
		return &Error{Key: key + ".type", Reason: "required"}
	}
	if d.Params == nil {
		return &Error{Key: key + ".connection_params", Reason: "required"}
	}
	return nil
}

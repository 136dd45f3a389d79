// Package pipeline wires the configured source and target connections to
// one extractor and one loader and runs the end-to-end sequence: validate,
// connect, extract, resolve the load steps, load, disconnect. The first
// failure at any stage aborts the run; nothing is retried.
package pipeline

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"dbetl/internal/config"
	"dbetl/internal/database"
	"dbetl/internal/extract"
	"dbetl/internal/load"
)

// ErrNoData is returned when extraction succeeds but yields zero rows; an
// empty extraction is treated as a failed run.
var ErrNoData = errors.New("extraction produced no rows")

// Pipeline executes one ETL run from a validated configuration. It owns
// both connections for the duration of the run and closes them on exit,
// including on failure partway through.
type Pipeline struct {
	cfg config.Pipeline
	log logrus.FieldLogger
}

func New(cfg config.Pipeline, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log.WithField("component", "pipeline")}
}

// Run executes the full sequence and returns the first error encountered.
// A mid-load failure may leave the target table partially populated; see
// load.LoadError.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.cfg.Validate(); err != nil {
		p.log.WithError(err).Error("configuration rejected")
		return err
	}

	source, err := database.NewConnection(p.cfg.SourceDB.Type, p.cfg.SourceDB.Params, p.log)
	if err != nil {
		return err
	}
	target, err := database.NewConnection(p.cfg.TargetDB.Type, p.cfg.TargetDB.Params, p.log)
	if err != nil {
		return err
	}
	defer source.Disconnect()
	defer target.Disconnect()

	extractor := extract.New(source, p.log)
	loader := load.New(target, p.log)

	p.log.Info("starting ETL run")
	if err := extractor.Extract(ctx, p.cfg.Extraction.Query, p.cfg.Extraction.Params...); err != nil {
		p.log.WithError(err).Error("extraction failed")
		return err
	}
	rows, columns := extractor.Data()
	if len(rows) == 0 || len(columns) == 0 {
		p.log.Error("nothing to load")
		return ErrNoData
	}

	loading := p.cfg.Loading
	if loading.CreateTable && len(loading.ColumnDefinitions) > 0 {
		defs := make([]load.ColumnDef, len(loading.ColumnDefinitions))
		for i, d := range loading.ColumnDefinitions {
			defs[i] = load.ColumnDef{Name: d.Name, Type: d.Type}
		}
		if err := loader.CreateTableIfNotExists(ctx, loading.TargetTable, defs); err != nil {
			p.log.WithError(err).Error("target table creation failed")
			return err
		}
	}
	if loading.TruncateBeforeLoad {
		if err := loader.TruncateTable(ctx, loading.TargetTable); err != nil {
			p.log.WithError(err).Error("target table truncate failed")
			return err
		}
	}

	if err := loader.Load(ctx, rows, columns, load.Options{
		TargetTable:   loading.TargetTable,
		TargetColumns: loading.TargetColumns,
		ColumnMapping: loading.ColumnMapping,
		BatchSize:     loading.BatchSize,
	}); err != nil {
		p.log.WithError(err).Error("load failed")
		return err
	}

	p.log.WithField("rows", len(rows)).Info("ETL run complete")
	return nil
}

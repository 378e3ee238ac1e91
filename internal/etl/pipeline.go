package etl

import (
	"context"
	"time"

	"github.com/BartekS5/gaexport/pkg/logger"
)

type Pipeline struct {
	Extractor   Extractor
	Transformer *Transformer
	OutputPath  string
	Sinks       []Sink
	DryRun      bool

	now func() time.Time
}

// NewPipeline wires a run. Sinks are provisioned and loaded in order.
func NewPipeline(ext Extractor, tr *Transformer, outputPath string, sinks []Sink, dryRun bool) *Pipeline {
	return &Pipeline{
		Extractor:   ext,
		Transformer: tr,
		OutputPath:  outputPath,
		Sinks:       sinks,
		DryRun:      dryRun,
		now:         time.Now,
	}
}

// Run extracts, writes the file and loads it into every sink, stopping at
// the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	startTime := p.now()
	logger.Infof("Starting pipeline. Output: %s, Sinks: %d, DryRun: %v", p.OutputPath, len(p.Sinks), p.DryRun)

	// 1. Extract
	records, err := p.Extractor.Extract(ctx)
	if err != nil {
		logger.Errorf("Extraction failed: %v", err)
		return SourceError("extract", err)
	}

	// 2. Transform
	rows := p.Transformer.ToOutputRows(records, startTime.UTC().Truncate(time.Second))
	if dropped := len(records) - len(rows); dropped > 0 {
		logger.Warnf("Dropped %d of %d records without both identifiers", dropped, len(records))
	}

	// 3. Write
	if err := WriteCSV(p.OutputPath, rows); err != nil {
		logger.Errorf("Writing %s failed: %v", p.OutputPath, err)
		return SinkError("write file", err)
	}
	logger.Infof("Wrote %d rows to %s", len(rows), p.OutputPath)

	// 4. Provision & load (skip if DryRun)
	if p.DryRun {
		logger.Infof("[DRY RUN] Would load %d rows into %d sinks", len(rows), len(p.Sinks))
		return nil
	}
	batch := Batch{FilePath: p.OutputPath, Rows: rows}
	for _, s := range p.Sinks {
		if err := Provision(ctx, s, batch); err != nil {
			logger.Errorf("%v", err)
			return err
		}
	}

	logger.Infof("Pipeline finished successfully in %s.", time.Since(startTime).Round(time.Millisecond))
	return nil
}

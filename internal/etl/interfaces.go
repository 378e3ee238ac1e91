package etl

import (
	"context"

	"github.com/BartekS5/gaexport/pkg/models"
)

// Extractor produces the records of one run.
type Extractor interface {
	Extract(ctx context.Context) ([]models.Record, error)
}

// Batch is what a run hands to each sink: the written file and the rows in it.
type Batch struct {
	FilePath string
	Rows     []models.OutputRow
}

// Sink is a destination table that can be listed, created and appended to.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	// Table is the destination table (or collection) name.
	Table() string
	TableNames(ctx context.Context) ([]string, error)
	CreateTable(ctx context.Context) error
	Load(ctx context.Context, batch Batch) error
}

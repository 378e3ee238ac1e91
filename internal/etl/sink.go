package etl

import (
	"context"
	"fmt"

	"github.com/BartekS5/gaexport/pkg/logger"
)

// EnsureTable creates the sink's table if its name is not among the existing
// ones and reports whether it did. Names are compared exactly.
func EnsureTable(ctx context.Context, s Sink) (bool, error) {
	names, err := s.TableNames(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == s.Table() {
			logger.Debugf("%s: table %s exists", s.Name(), s.Table())
			return false, nil
		}
	}
	if err := s.CreateTable(ctx); err != nil {
		return false, err
	}
	logger.Infof("%s: created table %s", s.Name(), s.Table())
	return true, nil
}

// Provision ensures the table and loads the batch into one sink. Empty
// batches are not loaded.
func Provision(ctx context.Context, s Sink, batch Batch) error {
	if _, err := EnsureTable(ctx, s); err != nil {
		return SinkError(fmt.Sprintf("ensure %s table %s", s.Name(), s.Table()), err)
	}
	if len(batch.Rows) == 0 {
		logger.Infof("%s: no rows to load into %s", s.Name(), s.Table())
		return nil
	}
	if err := s.Load(ctx, batch); err != nil {
		return SinkError(fmt.Sprintf("load %s table %s", s.Name(), s.Table()), err)
	}
	return nil
}

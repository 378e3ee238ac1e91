package etl

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BartekS5/gaexport/pkg/models"
)

// DefaultFileName is the output file written into the output directory.
const DefaultFileName = "app_id_client_id.csv"

// WriteCSV writes a header and one line per row to path, replacing any
// existing file. Column order is models.OutputColumns.
func WriteCSV(path string, rows []models.OutputRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.OutputColumns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := w.Write(r.Values()); err != nil {
			f.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

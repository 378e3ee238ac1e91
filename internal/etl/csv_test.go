package etl

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/gaexport/pkg/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", DefaultFileName)
	ts := time.Date(2024, time.May, 2, 3, 4, 5, 0, time.UTC)
	rows := []models.OutputRow{
		{TID: "UA-1-1", ClientID: "C1", ApplicationID: "A1", CreatedAt: ts},
		{TID: "UA-1-1", ClientID: "C,2", ApplicationID: "line\nbreak", CreatedAt: ts},
	}

	require.NoError(t, WriteCSV(path, rows))

	got := readCSV(t, path)
	assert.Equal(t, [][]string{
		{"tid", "client_id", "application_id", "created_at"},
		{"UA-1-1", "C1", "A1", "2024-05-02 03:04:05"},
		{"UA-1-1", "C,2", "line\nbreak", "2024-05-02 03:04:05"},
	}, got)
}

func TestWriteCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, WriteCSV(path, nil))
	assert.Equal(t, [][]string{models.OutputColumns}, readCSV(t, path))
}

func TestWriteCSV_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	ts := time.Now()
	require.NoError(t, WriteCSV(path, []models.OutputRow{{TID: "t", ClientID: "c", ApplicationID: "a", CreatedAt: ts}, {TID: "t", ClientID: "d", ApplicationID: "b", CreatedAt: ts}}))
	require.NoError(t, WriteCSV(path, []models.OutputRow{{TID: "t", ClientID: "e", ApplicationID: "f", CreatedAt: ts}}))
	assert.Len(t, readCSV(t, path), 2)
}

func TestOutputRowValuesUseUTC(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	r := models.OutputRow{TID: "t", ClientID: "c", ApplicationID: "a", CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, loc)}
	assert.Equal(t, []string{"t", "c", "a", "2024-01-01 00:00:00"}, r.Values())
}

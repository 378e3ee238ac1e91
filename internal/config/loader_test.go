package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoad_ReportingAPI(t *testing.T) {
	path := writeConfig(t, reportingYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceReportingAPI, cfg.DataSource)
	assert.Equal(t, "UA-1-1", cfg.TID())
	assert.Equal(t, "123456", cfg.GoogleAnalytics.ViewID)
	assert.Equal(t, "app_id_client_id", cfg.GoogleBigQuery.TableID)
	assert.Equal(t, filepath.Dir(path), cfg.Dir)
	assert.Equal(t, filepath.Join(cfg.Dir, "client_secrets.json"), cfg.ClientSecretsPath())
	assert.Equal(t, filepath.Join(cfg.Dir, "analyticsreporting.json"), cfg.TokenPath())
	assert.Equal(t, "dbo", cfg.Mirrors.SQLServer.Schema)
}

func TestLoad_BigQueryExport(t *testing.T) {
	cfg, err := Load(writeConfig(t, exportYAML))
	require.NoError(t, err)

	assert.Equal(t, SourceBigQueryExport, cfg.DataSource)
	assert.Equal(t, "98765", cfg.GoogleBigQueryExport.DatasetID)
	assert.Equal(t, 1, cfg.GoogleBigQueryExport.ClientIDIndex)
	assert.Equal(t, 2, cfg.GoogleBigQueryExport.AppIDIndex)
}

func TestLoad_AbsoluteTokenPathKept(t *testing.T) {
	src := strings.Replace(reportingYAML, "  end_date: yesterday\n", "  end_date: yesterday\n  token_path: /var/lib/gaexport/token.json\n", 1)
	cfg, err := Load(writeConfig(t, src))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/gaexport/token.json", cfg.TokenPath())
}

func TestLoad_InvalidConfig(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: \"1\"\n"))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "google_analytics: required")
}

func TestParse_DecodesWhatWasValidated(t *testing.T) {
	src := strings.Replace(reportingYAML, `data_source: "1"`, "data_source: 1.0", 1)
	src = strings.Replace(src, "view_id: 123456", `view_id: " 123456 "`, 1)
	src = strings.Replace(src, "table_id: app_id_client_id", `table_id: "app_id_client_id  "`, 1)

	cfg, err := Parse([]byte(src), "config.yml")
	require.NoError(t, err)
	assert.Equal(t, SourceReportingAPI, cfg.DataSource)
	assert.Equal(t, "123456", cfg.GoogleAnalytics.ViewID)
	assert.Equal(t, "app_id_client_id", cfg.GoogleBigQuery.TableID)
}

func TestParse_QuotedIndexIsValidationError(t *testing.T) {
	src := strings.Replace(exportYAML, "client_id_index: 1", `client_id_index: "1"`, 1)
	_, err := Parse([]byte(src), "config.yml")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "google_bigquery_export.client_id_index: must be a positive integer")
}

func TestParse_InvalidExportDataset(t *testing.T) {
	src := strings.Replace(exportYAML, `dataset_id: "98765"`, "dataset_id: my-dataset", 1)
	_, err := Parse([]byte(src), "config.yml")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), `invalid dataset id "my-dataset"`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: [1,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSettings_RequireMirrorConnections(t *testing.T) {
	t.Setenv("SQL_CONNECTION_STRING", "")
	t.Setenv("MONGO_CONNECTION_STRING", "mongodb://localhost:27017")
	s := LoadSettings()

	assert.NoError(t, s.RequireMirrorConnections(Mirrors{}))
	assert.NoError(t, s.RequireMirrorConnections(Mirrors{MongoDB: MongoMirror{Enabled: true}}))
	assert.Error(t, s.RequireMirrorConnections(Mirrors{SQLServer: SQLServerMirror{Enabled: true}}))
}

// Package config handles loading, validating and decoding the export
// configuration file and the process environment.
package config

import (
	"path/filepath"
	"strings"
)

// Data source selectors accepted in data_source.
const (
	SourceReportingAPI   = "1"
	SourceBigQueryExport = "2"
)

// Config is the decoded configuration file.
type Config struct {
	DataSource           string               `yaml:"data_source"`
	GoogleAnalytics      GoogleAnalytics      `yaml:"google_analytics"`
	GoogleBigQueryExport GoogleBigQueryExport `yaml:"google_bigquery_export"`
	GoogleBigQuery       GoogleBigQuery       `yaml:"google_bigquery"`
	Mirrors              Mirrors              `yaml:"mirrors"`

	// Dir is the directory of the config file; relative paths resolve against it.
	Dir string `yaml:"-"`
}

// GoogleAnalytics configures the Reporting API source.
type GoogleAnalytics struct {
	TID               string `yaml:"tid"`
	ViewID            string `yaml:"view_id"`
	ClientIDDimension string `yaml:"client_id_dimension"`
	AppIDDimension    string `yaml:"app_id_dimension"`
	StartDate         string `yaml:"start_date"`
	EndDate           string `yaml:"end_date"`
	ClientSecretsPath string `yaml:"client_secrets_path"`
	TokenPath         string `yaml:"token_path"`
}

// GoogleBigQueryExport configures the GA360 export query source.
type GoogleBigQueryExport struct {
	TID           string `yaml:"tid"`
	ProjectID     string `yaml:"project_id"`
	DatasetID     string `yaml:"dataset_id"`
	ClientIDIndex int    `yaml:"client_id_index"`
	AppIDIndex    int    `yaml:"app_id_index"`
}

// GoogleBigQuery is the destination table.
type GoogleBigQuery struct {
	ProjectID string `yaml:"project_id"`
	DatasetID string `yaml:"dataset_id"`
	TableID   string `yaml:"table_id"`
}

type Mirrors struct {
	SQLServer SQLServerMirror `yaml:"sqlserver"`
	MongoDB   MongoMirror     `yaml:"mongodb"`
}

type SQLServerMirror struct {
	Enabled bool   `yaml:"enabled"`
	Schema  string `yaml:"schema"`
	Table   string `yaml:"table"`
}

type MongoMirror struct {
	Enabled    bool   `yaml:"enabled"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// TID returns the tenant id of the selected source branch.
func (c *Config) TID() string {
	if c.DataSource == SourceBigQueryExport {
		return c.GoogleBigQueryExport.TID
	}
	return c.GoogleAnalytics.TID
}

// ClientSecretsPath returns the OAuth client secrets file, defaulting to
// client_secrets.json next to the config file.
func (c *Config) ClientSecretsPath() string {
	return c.resolve(c.GoogleAnalytics.ClientSecretsPath, "client_secrets.json")
}

// TokenPath returns the cached OAuth token file, defaulting to
// analyticsreporting.json next to the config file.
func (c *Config) TokenPath() string {
	return c.resolve(c.GoogleAnalytics.TokenPath, "analyticsreporting.json")
}

// trimSpace strips surrounding blanks from every string field, matching how
// Validate reads them.
func (c *Config) trimSpace() {
	for _, p := range []*string{
		&c.DataSource,
		&c.GoogleAnalytics.TID,
		&c.GoogleAnalytics.ViewID,
		&c.GoogleAnalytics.ClientIDDimension,
		&c.GoogleAnalytics.AppIDDimension,
		&c.GoogleAnalytics.StartDate,
		&c.GoogleAnalytics.EndDate,
		&c.GoogleAnalytics.ClientSecretsPath,
		&c.GoogleAnalytics.TokenPath,
		&c.GoogleBigQueryExport.TID,
		&c.GoogleBigQueryExport.ProjectID,
		&c.GoogleBigQueryExport.DatasetID,
		&c.GoogleBigQuery.ProjectID,
		&c.GoogleBigQuery.DatasetID,
		&c.GoogleBigQuery.TableID,
		&c.Mirrors.SQLServer.Schema,
		&c.Mirrors.SQLServer.Table,
		&c.Mirrors.MongoDB.Database,
		&c.Mirrors.MongoDB.Collection,
	} {
		*p = strings.TrimSpace(*p)
	}
}

func (c *Config) resolve(p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

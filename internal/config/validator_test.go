package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const reportingYAML = `
data_source: "1"
google_analytics:
  tid: UA-1-1
  view_id: 123456
  client_id_dimension: ga:dimension1
  app_id_dimension: ga:dimension2
  start_date: 7daysAgo
  end_date: yesterday
google_bigquery:
  project_id: proj
  dataset_id: analytics
  table_id: app_id_client_id
`

const exportYAML = `
data_source: 2
google_bigquery_export:
  tid: UA-1-1
  project_id: proj
  dataset_id: "98765"
  client_id_index: 1
  app_id_index: 2
google_bigquery:
  project_id: proj
  dataset_id: analytics
  table_id: app_id_client_id
`

func parseTree(t *testing.T, src string) map[string]interface{} {
	t.Helper()
	var tree map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(src), &tree))
	return tree
}

func paths(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, iss := range issues {
		out = append(out, iss.Path)
	}
	return out
}

func TestValidate_CompleteBranches(t *testing.T) {
	assert.True(t, IsValid(parseTree(t, reportingYAML)))
	assert.True(t, IsValid(parseTree(t, exportYAML)))
}

func TestValidate_MissingFieldInSelectedBranch(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		section string
		fields  []string
	}{
		{"reporting", reportingYAML, "google_analytics", analyticsFields},
		{"export", exportYAML, "google_bigquery_export", exportFields},
		{"destination_reporting", reportingYAML, "google_bigquery", destinationFields},
		{"destination_export", exportYAML, "google_bigquery", destinationFields},
	}

	for _, tc := range tests {
		for _, field := range tc.fields {
			t.Run(tc.name+"_"+field, func(t *testing.T) {
				tree := parseTree(t, tc.src)
				delete(tree[tc.section].(map[string]interface{}), field)

				assert.False(t, IsValid(tree))
				assert.Contains(t, paths(Validate(tree)), tc.section+"."+field)
			})
		}
	}
}

func TestValidate_NullAndBlankCountAsMissing(t *testing.T) {
	tree := parseTree(t, reportingYAML)
	ga := tree["google_analytics"].(map[string]interface{})
	ga["view_id"] = nil
	ga["tid"] = "   "

	assert.ElementsMatch(t, []string{"google_analytics.view_id", "google_analytics.tid"}, paths(Validate(tree)))
}

func TestValidate_DataSource(t *testing.T) {
	tree := parseTree(t, reportingYAML)
	delete(tree, "data_source")
	assert.Contains(t, paths(Validate(tree)), "data_source")

	tree = parseTree(t, reportingYAML)
	tree["data_source"] = "3"
	assert.False(t, IsValid(tree))

	tree = parseTree(t, reportingYAML)
	tree["data_source"] = nil
	assert.False(t, IsValid(tree))
}

func TestValidate_OnlySelectedBranchChecked(t *testing.T) {
	// The reporting config has no google_bigquery_export section at all.
	tree := parseTree(t, reportingYAML)
	assert.Empty(t, Validate(tree))

	tree = parseTree(t, exportYAML)
	tree["google_analytics"] = map[string]interface{}{"tid": nil}
	assert.Empty(t, Validate(tree))
}

func TestValidate_MissingSection(t *testing.T) {
	tree := parseTree(t, exportYAML)
	delete(tree, "google_bigquery_export")
	assert.Equal(t, []string{"google_bigquery_export"}, paths(Validate(tree)))
}

func TestValidate_BadDatesAndIndices(t *testing.T) {
	tree := parseTree(t, reportingYAML)
	tree["google_analytics"].(map[string]interface{})["start_date"] = "last week"
	assert.Equal(t, []string{"google_analytics.start_date"}, paths(Validate(tree)))

	tree = parseTree(t, exportYAML)
	tree["google_bigquery_export"].(map[string]interface{})["app_id_index"] = 0
	assert.Equal(t, []string{"google_bigquery_export.app_id_index"}, paths(Validate(tree)))
}

func TestValidate_EnabledMirrorsNeedNames(t *testing.T) {
	tree := parseTree(t, reportingYAML)
	tree["mirrors"] = map[string]interface{}{
		"sqlserver": map[string]interface{}{"enabled": true},
		"mongodb":   map[string]interface{}{"enabled": false},
	}
	assert.Equal(t, []string{"mirrors.sqlserver.table"}, paths(Validate(tree)))
}

func TestValidate_ExportIdentifiers(t *testing.T) {
	tree := parseTree(t, exportYAML)
	tree["google_bigquery_export"].(map[string]interface{})["dataset_id"] = "my-dataset"
	assert.False(t, IsValid(tree))
	assert.Equal(t, []string{"google_bigquery_export.dataset_id"}, paths(Validate(tree)))

	tree = parseTree(t, exportYAML)
	tree["google_bigquery_export"].(map[string]interface{})["project_id"] = "My Project"
	assert.Equal(t, []string{"google_bigquery_export.project_id"}, paths(Validate(tree)))

	// The reporting branch never interpolates these, so it is not checked there.
	tree = parseTree(t, reportingYAML)
	tree["google_bigquery_export"] = map[string]interface{}{"dataset_id": "my-dataset"}
	assert.Empty(t, Validate(tree))
}

func TestValidate_QuotedIndexRejected(t *testing.T) {
	tree := parseTree(t, exportYAML)
	tree["google_bigquery_export"].(map[string]interface{})["client_id_index"] = "1"
	assert.Equal(t, []string{"google_bigquery_export.client_id_index"}, paths(Validate(tree)))

	tree = parseTree(t, exportYAML)
	tree["google_bigquery_export"].(map[string]interface{})["client_id_index"] = 1.0
	assert.Empty(t, Validate(tree))
}

package config

import (
	"fmt"
	"strings"

	"github.com/BartekS5/gaexport/pkg/utils"
)

// Issue is a single problem found in a config tree.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

var (
	destinationFields = []string{"project_id", "dataset_id", "table_id"}
	analyticsFields   = []string{"tid", "view_id", "client_id_dimension", "app_id_dimension", "start_date", "end_date"}
	exportFields      = []string{"tid", "project_id", "dataset_id", "client_id_index", "app_id_index"}
)

// IsValid reports whether tree passes Validate with no issues.
func IsValid(tree map[string]interface{}) bool {
	return len(Validate(tree)) == 0
}

// Validate checks the source selector and every field the selected branch
// needs. Only the selected branch is inspected.
func Validate(tree map[string]interface{}) []Issue {
	var issues []Issue

	source, ok := scalar(tree, "data_source")
	switch {
	case !ok:
		issues = append(issues, Issue{Path: "data_source", Message: "required"})
	case source != SourceReportingAPI && source != SourceBigQueryExport:
		issues = append(issues, Issue{Path: "data_source", Message: fmt.Sprintf("must be %q or %q, got %q", SourceReportingAPI, SourceBigQueryExport, source)})
	}

	issues = append(issues, requireFields(tree, "", "google_bigquery", destinationFields)...)

	switch source {
	case SourceReportingAPI:
		issues = append(issues, requireFields(tree, "", "google_analytics", analyticsFields)...)
		section := mapping(tree, "google_analytics")
		for _, key := range []string{"start_date", "end_date"} {
			if v, ok := scalar(section, key); ok && !utils.IsReportDate(v) {
				issues = append(issues, Issue{Path: "google_analytics." + key, Message: fmt.Sprintf("invalid date %q", v)})
			}
		}
	case SourceBigQueryExport:
		issues = append(issues, requireFields(tree, "", "google_bigquery_export", exportFields)...)
		section := mapping(tree, "google_bigquery_export")
		if v, ok := scalar(section, "project_id"); ok && !utils.IsProjectID(v) {
			issues = append(issues, Issue{Path: "google_bigquery_export.project_id", Message: fmt.Sprintf("invalid project id %q", v)})
		}
		if v, ok := scalar(section, "dataset_id"); ok && !utils.IsDatasetID(v) {
			issues = append(issues, Issue{Path: "google_bigquery_export.dataset_id", Message: fmt.Sprintf("invalid dataset id %q", v)})
		}
		for _, key := range []string{"client_id_index", "app_id_index"} {
			raw, present := section[key]
			if !present || raw == nil {
				continue
			}
			if !isPositiveInt(raw) {
				issues = append(issues, Issue{Path: "google_bigquery_export." + key, Message: "must be a positive integer"})
			}
		}
	}

	mirrors := mapping(tree, "mirrors")
	if enabled(mapping(mirrors, "sqlserver")) {
		issues = append(issues, requireFields(mirrors, "mirrors.", "sqlserver", []string{"table"})...)
	}
	if enabled(mapping(mirrors, "mongodb")) {
		issues = append(issues, requireFields(mirrors, "mirrors.", "mongodb", []string{"database", "collection"})...)
	}

	return issues
}

// requireFields checks that tree[section] is a mapping holding every key.
// parent prefixes the reported paths.
func requireFields(tree map[string]interface{}, parent, section string, keys []string) []Issue {
	m := mapping(tree, section)
	if m == nil {
		return []Issue{{Path: parent + section, Message: "required"}}
	}
	var issues []Issue
	for _, k := range keys {
		if _, ok := scalar(m, k); !ok {
			issues = append(issues, Issue{Path: parent + section + "." + k, Message: "required"})
		}
	}
	return issues
}

// scalar returns tree[key] as a non-blank string.
func scalar(tree map[string]interface{}, key string) (string, bool) {
	if tree == nil {
		return "", false
	}
	s, ok := utils.ConvertToString(tree[key])
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// isPositiveInt accepts only numeric YAML scalars. Quoted numbers are
// rejected because they do not decode into an int field.
func isPositiveInt(raw interface{}) bool {
	switch raw.(type) {
	case string, []byte:
		return false
	}
	n, err := utils.ConvertToInt(raw)
	return err == nil && n > 0
}

func mapping(tree map[string]interface{}, key string) map[string]interface{} {
	if tree == nil {
		return nil
	}
	m, _ := tree[key].(map[string]interface{})
	return m
}

func enabled(section map[string]interface{}) bool {
	b, _ := section["enabled"].(bool)
	return b
}

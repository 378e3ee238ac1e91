package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ConvertToString renders a scalar config value as a string. The boolean is
// false for nil and for values that are not scalars.
func ConvertToString(val interface{}) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func ConvertToInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("cannot convert %v to int", v)
		}
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case []byte:
		return strconv.Atoi(strings.TrimSpace(string(v)))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", val)
	}
}

var (
	daysAgoPattern = regexp.MustCompile(`^[0-9]+daysAgo$`)
	projectPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-.:]*$`)
	datasetPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// IsProjectID reports whether s is a GCP project id that is safe to quote
// inside a backtick table reference.
func IsProjectID(s string) bool {
	return projectPattern.MatchString(s)
}

// IsDatasetID reports whether s is a BigQuery dataset id.
func IsDatasetID(s string) bool {
	return datasetPattern.MatchString(s)
}

// IsReportDate reports whether s is a date the Reporting API accepts:
// YYYY-MM-DD, "today", "yesterday" or "NdaysAgo".
func IsReportDate(s string) bool {
	switch s {
	case "today", "yesterday":
		return true
	}
	if daysAgoPattern.MatchString(s) {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// PartitionSuffix returns the YYYYMMDD suffix of the day before now, in now's location.
func PartitionSuffix(now time.Time) string {
	return now.AddDate(0, 0, -1).Format("20060102")
}

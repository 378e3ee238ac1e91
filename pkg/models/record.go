package models

import "time"

// Record is one distinct (client, application) pairing observed in the source window.
type Record struct {
	ClientID      string `json:"client_id" bson:"client_id"`
	ApplicationID string `json:"application_id" bson:"application_id"`
}

// OutputRow is the persisted unit: a Record plus the run constants.
type OutputRow struct {
	TID           string    `json:"tid" bson:"tid"`
	ClientID      string    `json:"client_id" bson:"client_id"`
	ApplicationID string    `json:"application_id" bson:"application_id"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Column names of the destination table, in file order.
const (
	ColumnTID           = "tid"
	ColumnClientID      = "client_id"
	ColumnApplicationID = "application_id"
	ColumnCreatedAt     = "created_at"
)

// OutputColumns is the fixed column order shared by the file and every sink.
var OutputColumns = []string{ColumnTID, ColumnClientID, ColumnApplicationID, ColumnCreatedAt}

// CreatedAtLayout is how created_at is rendered in the delimited file.
const CreatedAtLayout = "2006-01-02 15:04:05"

// Values returns the row as strings in OutputColumns order.
func (r OutputRow) Values() []string {
	return []string{r.TID, r.ClientID, r.ApplicationID, r.CreatedAt.UTC().Format(CreatedAtLayout)}
}

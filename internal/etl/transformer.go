package etl

import (
	"time"

	"github.com/BartekS5/gaexport/pkg/logger"
	"github.com/BartekS5/gaexport/pkg/models"
)

// Transformer turns source records into output rows carrying the run constants.
type Transformer struct {
	TID       string
	Validator *Validator
}

func NewTransformer(tid string) *Transformer {
	return &Transformer{TID: tid, Validator: NewValidator()}
}

// ToOutputRows stamps every valid record with the tenant id and createdAt.
// Invalid records are dropped and logged.
func (t *Transformer) ToOutputRows(records []models.Record, createdAt time.Time) []models.OutputRow {
	out := make([]models.OutputRow, 0, len(records))
	for i, rec := range records {
		if err := t.Validator.ValidateRecord(rec); err != nil {
			logger.Warnf("Skipping record %d: %v", i, err)
			continue
		}
		out = append(out, models.OutputRow{
			TID:           t.TID,
			ClientID:      rec.ClientID,
			ApplicationID: rec.ApplicationID,
			CreatedAt:     createdAt,
		})
	}
	return out
}

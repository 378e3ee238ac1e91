package etl

import (
	"errors"
	"strings"

	"github.com/BartekS5/gaexport/pkg/models"
)

var (
	ErrMissingClientID      = errors.New("missing client_id")
	ErrMissingApplicationID = errors.New("missing application_id")
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRecord checks that both identifiers are present.
func (v *Validator) ValidateRecord(rec models.Record) error {
	if strings.TrimSpace(rec.ClientID) == "" {
		return ErrMissingClientID
	}
	if strings.TrimSpace(rec.ApplicationID) == "" {
		return ErrMissingApplicationID
	}
	return nil
}

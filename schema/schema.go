// Package schema describes the layout of a forecasting panel: which columns
// hold the entity identifier, time, target, and covariates, and how far out
// to forecast.
package schema

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/panelcast/panelcast/dataset"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// TimeKind distinguishes calendar time columns from plain integer indexes.
type TimeKind string

const (
	TimeKindIndex    TimeKind = "index"
	TimeKindCalendar TimeKind = "calendar"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Schema declares the panel columns and forecast horizon of a dataset.
type Schema struct {
	IDColumn         string   `json:"id_column" validate:"required"`
	TimeColumn       string   `json:"time_column" validate:"required"`
	TimeKind         TimeKind `json:"time_kind" validate:"required,oneof=index calendar"`
	Target           string   `json:"target" validate:"required"`
	ForecastLength   int      `json:"forecast_length" validate:"gt=0"`
	PastCovariates   []string `json:"past_covariates"`
	FutureCovariates []string `json:"future_covariates"`
	StaticCovariates []string `json:"static_covariates"`
}

// Validate checks that the schema declaration itself is well formed.
func (s *Schema) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid schema, %w", err)
	}
	return nil
}

// ValidateColumns checks that every column the schema declares is present in
// the panel.
func (s *Schema) ValidateColumns(p *dataset.Panel) error {
	if !p.HasColumn(s.Target) {
		return fmt.Errorf("target column %q not in panel, %w", s.Target, ErrSchemaMismatch)
	}
	declared := make([]string, 0, len(s.PastCovariates)+len(s.FutureCovariates)+len(s.StaticCovariates))
	declared = append(declared, s.PastCovariates...)
	declared = append(declared, s.FutureCovariates...)
	declared = append(declared, s.StaticCovariates...)
	for _, name := range declared {
		if !p.HasColumn(name) {
			return fmt.Errorf("declared covariate column %q not in panel, %w", name, ErrSchemaMismatch)
		}
	}
	return nil
}

// PastStaticCovariates returns the union of the declared past and static
// covariate columns. Both are modeled as past covariates since static values
// repeat along the time axis.
func (s *Schema) PastStaticCovariates() []string {
	union := make([]string, 0, len(s.PastCovariates)+len(s.StaticCovariates))
	union = append(union, s.PastCovariates...)
	union = append(union, s.StaticCovariates...)
	return union
}

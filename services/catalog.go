package services

import (
	"errors"

	"github.com/pocketbase/pocketbase/core"
)

// EvaluationCriterion is a named, reusable scoring rule kept in the admin
// catalog.
type EvaluationCriterion struct {
	ID                         string
	Name                       string
	Description                string
	DetailedScoringMethodology string
}

// ProjectType splits an evaluation between price and quality.
type ProjectType struct {
	ID                string
	Name              string
	PricePercentage   float64
	QualityPercentage float64
}

var (
	ErrWeightsRequired = errors.New("price and quality percentages are required")
	ErrWeightsRange    = errors.New("percentages must be between 0 and 100")
	ErrWeightsSum      = errors.New("price and quality percentages must sum to 100")
)

// ValidateProjectTypeWeights checks that both weights are set, lie strictly
// between 0 and 100, and add up to 100.
func ValidateProjectTypeWeights(price, quality float64) error {
	if price == 0 || quality == 0 {
		return ErrWeightsRequired
	}
	if price+quality != 100 {
		return ErrWeightsSum
	}
	if price <= 0 || price >= 100 || quality <= 0 || quality >= 100 {
		return ErrWeightsRange
	}
	return nil
}

// CriterionFromRecord maps an evaluation_criteria record.
func CriterionFromRecord(rec *core.Record) EvaluationCriterion {
	return EvaluationCriterion{
		ID:                         rec.Id,
		Name:                       rec.GetString("name"),
		Description:                rec.GetString("description"),
		DetailedScoringMethodology: rec.GetString("detailed_scoring_methodology"),
	}
}

// ProjectTypeFromRecord maps a project_types record.
func ProjectTypeFromRecord(rec *core.Record) ProjectType {
	return ProjectType{
		ID:                rec.Id,
		Name:              rec.GetString("name"),
		PricePercentage:   rec.GetFloat("price_percentage"),
		QualityPercentage: rec.GetFloat("quality_percentage"),
	}
}

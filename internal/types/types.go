package types

import (
	"fmt"
	"time"
)

// Scale identifies one of the four learning-cycle question categories
type Scale string

const (
	ScaleCE Scale = "CE" // Concrete Experience
	ScaleRO Scale = "RO" // Reflective Observation
	ScaleAC Scale = "AC" // Abstract Conceptualization
	ScaleAE Scale = "AE" // Active Experimentation
)

// ItemsPerScale is the number of questionnaire items on every scale
const ItemsPerScale = 12

// Scales lists every scale in questionnaire order
var Scales = []Scale{ScaleCE, ScaleRO, ScaleAC, ScaleAE}

// Item addresses a single questionnaire response
type Item struct {
	Scale Scale
	Index int
}

// Key returns the form key for the item, e.g. "ce1"
func (i Item) Key() string {
	return fmt.Sprintf("%s%d", lower(i.Scale), i.Index)
}

func lower(s Scale) string {
	switch s {
	case ScaleCE:
		return "ce"
	case ScaleRO:
		return "ro"
	case ScaleAC:
		return "ac"
	case ScaleAE:
		return "ae"
	}
	return string(s)
}

// ResponseSet maps items to integer ratings. Absent items read as 0.
type ResponseSet map[Item]int

// Set records a rating for the given scale and item index
func (rs ResponseSet) Set(scale Scale, index, rating int) {
	rs[Item{Scale: scale, Index: index}] = rating
}

// Get returns the rating for the given scale and item index and whether it was present
func (rs ResponseSet) Get(scale Scale, index int) (int, bool) {
	v, ok := rs[Item{Scale: scale, Index: index}]
	return v, ok
}

// ScaleTotals holds the per-scale sums of item ratings
type ScaleTotals struct {
	CE int `json:"ce" yaml:"ce"`
	RO int `json:"ro" yaml:"ro"`
	AC int `json:"ac" yaml:"ac"`
	AE int `json:"ae" yaml:"ae"`
}

// Add adds a rating to the total of the given scale
func (t *ScaleTotals) Add(scale Scale, rating int) {
	switch scale {
	case ScaleCE:
		t.CE += rating
	case ScaleRO:
		t.RO += rating
	case ScaleAC:
		t.AC += rating
	case ScaleAE:
		t.AE += rating
	}
}

// AxisValues are the two discriminant axes of the learning-style model
type AxisValues struct {
	ACMinusCE int `json:"ac_ce" yaml:"ac_ce"` // abstract vs concrete
	AEMinusRO int `json:"ae_ro" yaml:"ae_ro"` // active vs reflective
}

// FeatureCount is the classifier input width
const FeatureCount = 3

// FeatureNames is the column order the classifier was trained with
var FeatureNames = [FeatureCount]string{"ac_minus_ce", "ae_minus_ro", "noise"}

// FeatureVector is the fixed-order classifier input [ac_minus_ce, ae_minus_ro, noise]
type FeatureVector [FeatureCount]float64

// NewFeatureVector assembles the classifier input from axis values and a noise sample
func NewFeatureVector(axes AxisValues, noise float64) FeatureVector {
	return FeatureVector{float64(axes.ACMinusCE), float64(axes.AEMinusRO), noise}
}

// Label is a learning-style category produced by the classifier
type Label string

// Assessment is the full result of scoring and classifying one submission
type Assessment struct {
	ID         string      `json:"id"`
	Subject    string      `json:"subject"`
	Totals     ScaleTotals `json:"totals"`
	Axes       AxisValues  `json:"axes"`
	Noise      float64     `json:"noise"`
	Prediction Label       `json:"prediction"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AssessRequest represents the request structure for the assessments endpoint.
// Response values may be JSON numbers or numeric strings; both are parsed the
// same way as form submissions.
type AssessRequest struct {
	Subject   string         `json:"subject" example:"jdoe"`
	Responses map[string]any `json:"responses" binding:"required" swaggertype:"object,integer"`
}

// ModelInfo describes the loaded classifier
type ModelInfo struct {
	Kind         string   `json:"kind"`
	Classes      []Label  `json:"classes"`
	FeatureNames []string `json:"feature_names"`
}

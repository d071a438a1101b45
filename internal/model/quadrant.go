package model

import (
	"fmt"
	"math"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// Kolb learning styles, in the sorted order a trained classifier reports them
const (
	StyleAccommodating types.Label = "Accommodating"
	StyleAssimilating  types.Label = "Assimilating"
	StyleConverging    types.Label = "Converging"
	StyleDiverging     types.Label = "Diverging"
)

// Normative cut-points of the Kolb learning style inventory
const (
	DefaultACCECut = 7.0
	DefaultAERoCut = 6.0
)

// QuadrantStyles lists the quadrant classifier's classes
var QuadrantStyles = []types.Label{StyleAccommodating, StyleAssimilating, StyleConverging, StyleDiverging}

type quadrantSpec struct {
	ACCECut *float64 `json:"ac_ce_cut,omitempty" yaml:"ac_ce_cut,omitempty"`
	AERoCut *float64 `json:"ae_ro_cut,omitempty" yaml:"ae_ro_cut,omitempty"`
}

// Quadrant classifies by placing the two axis values against fixed
// cut-points. Scores above the AC-CE cut are abstract, above the AE-RO cut
// active. The noise feature is accepted and ignored.
type Quadrant struct {
	acCECut float64
	aeROCut float64
}

// NewQuadrant returns a quadrant classifier with the given cut-points
func NewQuadrant(acCECut, aeROCut float64) *Quadrant {
	return &Quadrant{acCECut: acCECut, aeROCut: aeROCut}
}

func newQuadrant(a *artifact) (*Quadrant, error) {
	if len(a.Classes) > 0 {
		if len(a.Classes) != len(QuadrantStyles) {
			return nil, fmt.Errorf("quadrant classifier needs exactly %d classes, got %d", len(QuadrantStyles), len(a.Classes))
		}
		for i, c := range a.Classes {
			if c != QuadrantStyles[i] {
				return nil, fmt.Errorf("quadrant class %d is %q, want %q", i, c, QuadrantStyles[i])
			}
		}
	}

	q := NewQuadrant(DefaultACCECut, DefaultAERoCut)
	if a.Quadrant != nil {
		if a.Quadrant.ACCECut != nil {
			q.acCECut = *a.Quadrant.ACCECut
		}
		if a.Quadrant.AERoCut != nil {
			q.aeROCut = *a.Quadrant.AERoCut
		}
	}
	if math.IsNaN(q.acCECut) || math.IsNaN(q.aeROCut) {
		return nil, fmt.Errorf("quadrant cut-points must be numbers")
	}
	return q, nil
}

func (q *Quadrant) Kind() string { return KindQuadrant }

func (q *Quadrant) NumFeatures() int { return types.FeatureCount }

func (q *Quadrant) Classes() []types.Label {
	return append([]types.Label(nil), QuadrantStyles...)
}

func (q *Quadrant) Predict(features []float64) (types.Label, error) {
	if err := checkFeatureCount(features, types.FeatureCount); err != nil {
		return "", err
	}

	abstract := features[0] > q.acCECut
	active := features[1] > q.aeROCut

	switch {
	case abstract && active:
		return StyleConverging, nil
	case abstract:
		return StyleAssimilating, nil
	case active:
		return StyleAccommodating, nil
	default:
		return StyleDiverging, nil
	}
}

package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/model"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// StylePredictor classifies a pair of axis values
type StylePredictor interface {
	Predict(axes types.AxisValues) (model.Prediction, error)
}

// Analyzer orchestrates the full assessment pipeline
type Analyzer struct {
	aggregator *Aggregator
	predictor  StylePredictor
	now        func() time.Time
}

// NewAnalyzer creates a new analyzer with all components
func NewAnalyzer(aggregator *Aggregator, predictor StylePredictor) *Analyzer {
	if aggregator == nil {
		aggregator = NewAggregator(true)
	}
	return &Analyzer{
		aggregator: aggregator,
		predictor:  predictor,
		now:        time.Now,
	}
}

// Assess parses form-style values and runs the pipeline. The subject is
// carried through to the result untouched.
func (a *Analyzer) Assess(subject string, values map[string][]string) (types.Assessment, error) {
	rs, err := ParseResponses(values)
	if err != nil {
		return types.Assessment{}, err
	}
	return a.AssessResponses(subject, rs)
}

// AssessResponses aggregates, derives the axes and classifies. It either
// returns a complete assessment or a single error.
func (a *Analyzer) AssessResponses(subject string, rs types.ResponseSet) (types.Assessment, error) {
	totals, err := a.aggregator.Aggregate(rs)
	if err != nil {
		return types.Assessment{}, err
	}

	axes := DeriveAxes(totals)

	pred, err := a.predictor.Predict(axes)
	if err != nil {
		return types.Assessment{}, err
	}

	return types.Assessment{
		ID:         uuid.New().String(),
		Subject:    subject,
		Totals:     totals,
		Axes:       axes,
		Noise:      pred.Noise(),
		Prediction: pred.Label,
		CreatedAt:  a.now().UTC(),
	}, nil
}

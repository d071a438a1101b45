package analysis

import (
	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// Aggregator reduces item responses to scale totals.
//
// TreatMissingAsZero keeps the lenient policy of the paper questionnaire:
// an unanswered item adds nothing to its scale. When it is false, any
// missing item rejects the whole submission.
type Aggregator struct {
	TreatMissingAsZero bool
}

// NewAggregator creates an aggregator with the given missing-item policy
func NewAggregator(treatMissingAsZero bool) *Aggregator {
	return &Aggregator{TreatMissingAsZero: treatMissingAsZero}
}

// Aggregate sums items 1..12 of every scale. Entries outside that range are
// ignored. Ratings are not bounds-checked.
func (a *Aggregator) Aggregate(rs types.ResponseSet) (types.ScaleTotals, error) {
	var totals types.ScaleTotals
	var missing []string

	for _, scale := range types.Scales {
		for i := 1; i <= types.ItemsPerScale; i++ {
			rating, ok := rs.Get(scale, i)
			if !ok {
				if !a.TreatMissingAsZero {
					missing = append(missing, types.Item{Scale: scale, Index: i}.Key())
				}
				continue
			}
			totals.Add(scale, rating)
		}
	}

	if len(missing) > 0 {
		return types.ScaleTotals{}, apperrors.NewMissingItemsError(missing)
	}

	return totals, nil
}

// DeriveAxes computes AC-CE and AE-RO. No clamping is applied.
func DeriveAxes(totals types.ScaleTotals) types.AxisValues {
	return types.AxisValues{
		ACMinusCE: totals.AC - totals.CE,
		AEMinusRO: totals.AE - totals.RO,
	}
}

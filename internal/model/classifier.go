// Package model loads serialized learning-style classifiers and runs
// single-sample inference on the fixed three-feature input
// [ac_minus_ce, ae_minus_ro, noise].
package model

import (
	"fmt"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// Artifact kinds understood by Decode
const (
	KindRandomForest = "random_forest"
	KindQuadrant     = "quadrant"
)

// Classifier is a loaded, immutable model. Implementations must be safe for
// concurrent use by multiple goroutines.
type Classifier interface {
	Kind() string
	NumFeatures() int
	Classes() []types.Label
	Predict(features []float64) (types.Label, error)
}

// artifact is the on-disk envelope shared by every classifier kind
type artifact struct {
	Kind         string        `json:"kind" yaml:"kind"`
	NFeatures    int           `json:"n_features" yaml:"n_features"`
	FeatureNames []string      `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	Classes      []types.Label `json:"classes" yaml:"classes"`
	Trees        []treeSpec    `json:"trees,omitempty" yaml:"trees,omitempty"`
	Quadrant     *quadrantSpec `json:"quadrant,omitempty" yaml:"quadrant,omitempty"`
}

type decoder func(a *artifact) (Classifier, error)

var decoders = map[string]decoder{
	KindRandomForest: func(a *artifact) (Classifier, error) {
		return newForest(a)
	},
	KindQuadrant: func(a *artifact) (Classifier, error) {
		return newQuadrant(a)
	},
}

func checkFeatureCount(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("expected %d features, got %d", want, len(features))
	}
	return nil
}

func checkClasses(classes []types.Label) error {
	if len(classes) == 0 {
		return fmt.Errorf("artifact declares no classes")
	}
	seen := make(map[types.Label]bool, len(classes))
	for _, c := range classes {
		if c == "" {
			return fmt.Errorf("artifact declares an empty class label")
		}
		if seen[c] {
			return fmt.Errorf("duplicate class label %q", c)
		}
		seen[c] = true
	}
	return nil
}

package model

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// Prediction is the classifier output together with the exact input it saw
type Prediction struct {
	Label    types.Label
	Features types.FeatureVector
}

// Noise returns the perturbation term that was fed to the classifier
func (p Prediction) Noise() float64 { return p.Features[2] }

// Option configures a Predictor
type Option func(*Predictor)

// WithNoise replaces the default standard normal noise source
func WithNoise(src NoiseSource) Option {
	return func(p *Predictor) {
		if src != nil {
			p.noise = src
		}
	}
}

// Predictor wraps a loaded classifier. The classifier is never mutated after
// construction, so Predict needs no locking.
//
// Every prediction appends one N(0, 1) sample as the third feature. Whether
// the model was trained to expect that term or it is a leftover from
// experimentation is unknown; it is kept so predictions match the trained
// artifact, and the source is injectable so runs can be pinned.
type Predictor struct {
	classifier Classifier
	noise      NoiseSource
}

// NewPredictor loads the artifact at path. It fails with a model load error
// before any prediction can be attempted.
func NewPredictor(path string, opts ...Option) (*Predictor, error) {
	clf, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewPredictorFromClassifier(clf, opts...)
}

// NewPredictorFromClassifier wraps an already constructed classifier
func NewPredictorFromClassifier(clf Classifier, opts ...Option) (*Predictor, error) {
	if clf == nil {
		return nil, apperrors.NewModelLoadError("", fmt.Errorf("classifier is nil"))
	}
	if clf.NumFeatures() != types.FeatureCount {
		return nil, apperrors.NewModelLoadError("", fmt.Errorf("classifier expects %d features, input has %d", clf.NumFeatures(), types.FeatureCount))
	}

	p := &Predictor{
		classifier: clf,
		noise:      NewNormalNoise(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Predict draws one noise sample, assembles [ac_minus_ce, ae_minus_ro, noise]
// and returns the classifier's label for it.
func (p *Predictor) Predict(axes types.AxisValues) (pred Prediction, err error) {
	noise := p.noise.Sample()
	if math.IsNaN(noise) || math.IsInf(noise, 0) {
		return Prediction{}, apperrors.NewInferenceError("noise sample is not finite", fmt.Errorf("got %v", noise))
	}

	features := types.NewFeatureVector(axes, noise)

	defer func() {
		if r := recover(); r != nil {
			pred = Prediction{}
			err = apperrors.NewInferenceError("classifier panicked", fmt.Errorf("%v", r))
		}
	}()

	var label types.Label
	label, err = p.classifier.Predict(features[:])
	if err != nil {
		return Prediction{}, apperrors.NewInferenceError("classifier invocation failed", err)
	}

	return Prediction{Label: label, Features: features}, nil
}

// Info describes the wrapped classifier
func (p *Predictor) Info() types.ModelInfo {
	return types.ModelInfo{
		Kind:         p.classifier.Kind(),
		Classes:      p.classifier.Classes(),
		FeatureNames: append([]string(nil), types.FeatureNames[:]...),
	}
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// Format is the serialization of a model artifact
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the artifact format from the file extension. Anything
// that is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates a classifier artifact. Every failure is a
// model load error: the file is missing, cannot be decoded, or does not
// accept the three-feature input.
func Load(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewModelLoadError(path, err)
	}

	clf, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, apperrors.NewModelLoadError(path, err)
	}

	return clf, nil
}

// Decode parses an artifact from memory
func Decode(data []byte, format Format) (Classifier, error) {
	var a artifact

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to decode yaml artifact: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode json artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", format)
	}

	if err := checkShape(&a); err != nil {
		return nil, err
	}

	decode, ok := decoders[a.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown classifier kind %q", a.Kind)
	}

	return decode(&a)
}

// checkShape enforces the input contract: three features in training order
func checkShape(a *artifact) error {
	if a.NFeatures != types.FeatureCount {
		return fmt.Errorf("classifier expects %d features, input has %d", a.NFeatures, types.FeatureCount)
	}
	if len(a.FeatureNames) == 0 {
		return nil
	}
	if len(a.FeatureNames) != types.FeatureCount {
		return fmt.Errorf("artifact names %d features, want %d", len(a.FeatureNames), types.FeatureCount)
	}
	for i, name := range a.FeatureNames {
		if name != types.FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, name, types.FeatureNames[i])
		}
	}
	return nil
}

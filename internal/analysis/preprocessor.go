package analysis

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// ParseResponses reads ratings from form-style values keyed ce1..ae12. Keys
// that are absent are left out of the set; other keys are ignored. The first
// value of a present key must be an integer (surrounding whitespace allowed),
// otherwise a parse error naming the key is returned.
func ParseResponses(values map[string][]string) (types.ResponseSet, error) {
	rs := make(types.ResponseSet, len(types.Scales)*types.ItemsPerScale)

	for _, scale := range types.Scales {
		for i := 1; i <= types.ItemsPerScale; i++ {
			item := types.Item{Scale: scale, Index: i}
			key := item.Key()

			vals, ok := values[key]
			if !ok || len(vals) == 0 {
				continue
			}

			rating, err := strconv.Atoi(strings.TrimSpace(vals[0]))
			if err != nil {
				return nil, apperrors.NewParseError(key, vals[0], err)
			}
			rs[item] = rating
		}
	}

	return rs, nil
}

// ValuesFromMap converts decoded JSON or YAML responses into form-style
// values so they go through the same parsing as a submitted form. Null
// entries count as absent.
func ValuesFromMap(m map[string]any) map[string][]string {
	values := make(map[string][]string, len(m))

	for key, raw := range m {
		switch v := raw.(type) {
		case nil:
			continue
		case string:
			values[key] = []string{v}
		case int:
			values[key] = []string{strconv.Itoa(v)}
		case int64:
			values[key] = []string{strconv.FormatInt(v, 10)}
		case float64:
			values[key] = []string{strconv.FormatFloat(v, 'f', -1, 64)}
		default:
			values[key] = []string{fmt.Sprint(v)}
		}
	}

	return values
}

package analysis

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/learning-style-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

func formValues(ce, ro, ac, ae string) url.Values {
	v := url.Values{}
	for i := 1; i <= types.ItemsPerScale; i++ {
		v.Set(fmt.Sprintf("ce%d", i), ce)
		v.Set(fmt.Sprintf("ro%d", i), ro)
		v.Set(fmt.Sprintf("ac%d", i), ac)
		v.Set(fmt.Sprintf("ae%d", i), ae)
	}
	return v
}

func TestParseResponses(t *testing.T) {
	rs, err := ParseResponses(formValues("2", "2", "4", "3"))
	require.NoError(t, err)
	assert.Len(t, rs, 48)

	v, ok := rs.Get(types.ScaleAC, 12)
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestParseResponsesLeniency(t *testing.T) {
	values := url.Values{
		"nama":  {"Budi"},
		"ce1":   {" 5 "},
		"ro2":   {"+3"},
		"ac3":   {"-1"},
		"AE4":   {"9"},
		"ce13":  {"7"},
		"ae5":   {},
		"other": {"x"},
	}

	rs, err := ParseResponses(values)
	require.NoError(t, err)

	assert.Equal(t, types.ResponseSet{
		{Scale: types.ScaleCE, Index: 1}: 5,
		{Scale: types.ScaleRO, Index: 2}: 3,
		{Scale: types.ScaleAC, Index: 3}: -1,
	}, rs)
}

func TestParseResponsesRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"letters", "ce3", "abc"},
		{"empty string", "ro1", ""},
		{"decimal", "ac12", "3.5"},
		{"blank", "ae7", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := formValues("1", "1", "1", "1")
			values.Set(tt.key, tt.value)

			_, err := ParseResponses(values)
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryParse))

			appErr := apperrors.ToAppError(err)
			assert.Equal(t, tt.key, appErr.Field)
		})
	}
}

func TestValuesFromMap(t *testing.T) {
	values := ValuesFromMap(map[string]any{
		"ce1": float64(3),
		"ce2": "4",
		"ce3": 2,
		"ce4": int64(1),
		"ce5": nil,
		"ce6": 2.5,
		"ce7": true,
	})

	assert.Equal(t, []string{"3"}, values["ce1"])
	assert.Equal(t, []string{"4"}, values["ce2"])
	assert.Equal(t, []string{"2"}, values["ce3"])
	assert.Equal(t, []string{"1"}, values["ce4"])
	assert.NotContains(t, values, "ce5")
	assert.Equal(t, []string{"2.5"}, values["ce6"])
	assert.Equal(t, []string{"true"}, values["ce7"])

	_, err := ParseResponses(values)
	require.Error(t, err, "2.5 and true are not integer ratings")
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryParse))
}

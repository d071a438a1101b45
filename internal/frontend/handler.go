package frontend

import (
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// Rating is one option of the four-point response scale
type Rating struct {
	Value int
	Label string
}

// Ratings lists the response options in ascending order
var Ratings = []Rating{
	{1, "Least like me"},
	{2, "Somewhat like me"},
	{3, "Mostly like me"},
	{4, "Most like me"},
}

// Field is one questionnaire input
type Field struct {
	Key    string
	Number int
}

// Section groups the inputs of one scale
type Section struct {
	Scale       types.Scale
	Title       string
	Description string
	Fields      []Field
}

var scaleText = map[types.Scale][2]string{
	types.ScaleCE: {"Concrete Experience", "Learning by feeling: being involved in experiences and relating to people."},
	types.ScaleRO: {"Reflective Observation", "Learning by watching: observing carefully before making judgements."},
	types.ScaleAC: {"Abstract Conceptualization", "Learning by thinking: logical analysis of ideas and systematic planning."},
	types.ScaleAE: {"Active Experimentation", "Learning by doing: getting things done and influencing people through action."},
}

// Sections builds the 48-item questionnaire in scale order
func Sections() []Section {
	sections := make([]Section, 0, len(types.Scales))
	for _, scale := range types.Scales {
		text := scaleText[scale]
		s := Section{Scale: scale, Title: text[0], Description: text[1]}
		for i := 1; i <= types.ItemsPerScale; i++ {
			s.Fields = append(s.Fields, Field{Key: types.Item{Scale: scale, Index: i}.Key(), Number: i})
		}
		sections = append(sections, s)
	}
	return sections
}

var styleText = map[types.Label]string{
	"Accommodating": "Hands-on and intuitive; relies on others' analysis and prefers a practical, experiential approach.",
	"Assimilating":  "Concise and logical; values ideas and concepts and prefers clear explanations to practical opportunity.",
	"Converging":    "Practical problem solver; applies ideas to technical tasks and prefers experimenting with new ideas.",
	"Diverging":     "Sensitive and imaginative; prefers watching to doing and gathers information from many perspectives.",
}

// IndexData is the template data for the questionnaire page
func IndexData() map[string]any {
	return map[string]any{
		"Title":    "Learning Style Inventory",
		"Sections": Sections(),
		"Ratings":  Ratings,
	}
}

// ResultData is the template data for the result page
func ResultData(a *types.Assessment) map[string]any {
	return map[string]any{
		"Title":       "Your Learning Style",
		"Assessment":  a,
		"Description": styleText[a.Prediction],
	}
}

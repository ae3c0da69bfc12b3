package scoring

type gradeBand struct {
	min   int
	grade string
}

// closed thresholds; a boundary score belongs to the higher band
var gradeBands = []gradeBand{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
	{45, "D+"},
	{40, "D"},
}

// Classify maps a numeric score to its letter grade.
func Classify(score int) string {
	for _, b := range gradeBands {
		if score >= b.min {
			return b.grade
		}
	}
	return "F"
}

// Package grade derives the total, average and letter grade of a mark list.
package grade

// Letter grades, best first
const (
	GradeO     = "O"
	GradeAPlus = "A+"
	GradeA     = "A"
	GradeBPlus = "B+"
	GradeB     = "B"
	GradeC     = "C"
	GradeF     = "F"
)

// band is one row of the threshold table: averages at or above Min earn Letter
type band struct {
	Min    float64
	Letter string
}

// bands must stay sorted from the highest bound down.
var bands = []band{
	{90, GradeO},
	{80, GradeAPlus},
	{70, GradeA},
	{60, GradeBPlus},
	{50, GradeB},
	{40, GradeC},
}

// Summary is the derived, never-stored part of a student record
type Summary struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
	Grade   string  `json:"grade"`
}

// Summarize computes total, average and grade for a list of marks.
// The average is a plain float division and is compared unrounded.
func Summarize(marks []int) Summary {
	if len(marks) == 0 {
		return Summary{Grade: GradeF}
	}

	total := 0
	for _, m := range marks {
		total += m
	}
	average := float64(total) / float64(len(marks))

	return Summary{
		Total:   total,
		Average: average,
		Grade:   Letter(average),
	}
}

// Letter maps an average to its grade using the highest matching band.
func Letter(average float64) string {
	for _, b := range bands {
		if average >= b.Min {
			return b.Letter
		}
	}
	return GradeF
}

// MaxTotal is the best possible total for n subjects
func MaxTotal(subjects int) int {
	return subjects * 100
}

// IsPassing reports whether a grade is above the failing band
func IsPassing(letter string) bool {
	return letter != GradeF && letter != ""
}

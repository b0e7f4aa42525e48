package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetter_Boundaries(t *testing.T) {
	tests := []struct {
		average float64
		want    string
	}{
		{100, GradeO},
		{90, GradeO},
		{89.999, GradeAPlus},
		{80, GradeAPlus},
		{79.999, GradeA},
		{70, GradeA},
		{69.999, GradeBPlus},
		{60, GradeBPlus},
		{59.999, GradeB},
		{50, GradeB},
		{49.999, GradeC},
		{40, GradeC},
		{39.999, GradeF},
		{0, GradeF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Letter(tt.average), "average %v", tt.average)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		marks []int
		want  Summary
	}{
		{"perfect", []int{100, 100, 100, 100, 100}, Summary{500, 100, GradeO}},
		{"lowest C", []int{40, 40, 40, 40, 40}, Summary{200, 40, GradeC}},
		{"just failing", []int{39, 39, 39, 39, 39}, Summary{195, 39, GradeF}},
		{"zero", []int{0, 0, 0, 0, 0}, Summary{0, 0, GradeF}},
		{"mixed", []int{95, 88, 76, 64, 51}, Summary{374, 74.8, GradeA}},
		// 449/5 = 89.8 must not round up into O
		{"unrounded", []int{90, 90, 90, 90, 89}, Summary{449, 89.8, GradeAPlus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.marks))
		})
	}
}

func TestSummarize_TotalAndAverageInvariants(t *testing.T) {
	for a := 0; a <= 100; a += 7 {
		for b := 0; b <= 100; b += 13 {
			marks := []int{a, b, 100 - a, 100 - b, (a + b) / 2}
			got := Summarize(marks)

			sum := 0
			for _, m := range marks {
				sum += m
			}
			assert.Equal(t, sum, got.Total)
			assert.Equal(t, float64(sum)/5, got.Average)
			assert.Equal(t, Letter(float64(sum)/5), got.Grade)
			assert.GreaterOrEqual(t, got.Total, 0)
			assert.LessOrEqual(t, got.Total, MaxTotal(5))
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{Grade: GradeF}, Summarize(nil))
}

func TestIsPassing(t *testing.T) {
	assert.True(t, IsPassing(GradeC))
	assert.True(t, IsPassing(GradeO))
	assert.False(t, IsPassing(GradeF))
	assert.False(t, IsPassing(""))
}

package topsis

import (
	"fmt"
	"strings"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// Interval is a closed performance interval [L, U].
type Interval struct {
	L float64 `json:"l" yaml:"l"`
	U float64 `json:"u" yaml:"u"`
}

// Valid reports whether both bounds are finite and ordered.
func (iv Interval) Valid() bool {
	return mcdm.Finite(iv.L) && mcdm.Finite(iv.U) && iv.L <= iv.U
}

// Mid returns the interval midpoint.
func (iv Interval) Mid() float64 { return (iv.L + iv.U) / 2 }

func (iv Interval) String() string { return fmt.Sprintf("[%.4g, %.4g]", iv.L, iv.U) }

// Grade is a linguistic performance rating.
type Grade string

const (
	VeryPoor  Grade = "Very Poor"
	Poor      Grade = "Poor"
	Fair      Grade = "Fair"
	Good      Grade = "Good"
	VeryGood  Grade = "Very Good"
	Excellent Grade = "Excellent"
)

var gradeScale = []struct {
	grade Grade
	value Interval
}{
	{VeryPoor, Interval{0, 1}},
	{Poor, Interval{1, 3}},
	{Fair, Interval{3, 5}},
	{Good, Interval{5, 7}},
	{VeryGood, Interval{7, 9}},
	{Excellent, Interval{9, 10}},
}

// Interval returns the interval for the grade. Matching ignores case.
func (g Grade) Interval() (Interval, bool) {
	for _, e := range gradeScale {
		if strings.EqualFold(string(e.grade), strings.TrimSpace(string(g))) {
			return e.value, true
		}
	}
	return Interval{}, false
}

// GradeEntry is one row of the linguistic rating scale.
type GradeEntry struct {
	Grade Grade    `json:"grade"`
	Value Interval `json:"value"`
}

// Grades lists the rating scale from worst to best.
func Grades() []GradeEntry {
	out := make([]GradeEntry, len(gradeScale))
	for i, e := range gradeScale {
		out[i] = GradeEntry{Grade: e.grade, Value: e.value}
	}
	return out
}

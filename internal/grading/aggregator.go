package grading

import "math"

// Ungraded is returned by ComputeGrade when no indicator contributed.
const Ungraded = -1.0

// GradeRange is the host gradebook scale the rubric total is mapped onto.
type GradeRange struct {
	Min           float64
	Max           float64
	AllowDecimals bool
}

// ComputeGrade maps the recorded indicator scores proportionally onto r.
//
// Every criterion with a score adds that score to the total and its highest
// level bound to the maximum. Criteria without a score, or whose levels top
// out at 0 or below, are left out of both sums rather than counted as zero.
// The ratio is clamped to [0, 1] before scaling, and the result is rounded
// to a whole number unless r allows decimals.
func ComputeGrade(s Structure, scores map[uint]float64, r GradeRange) float64 {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}

	var sum, sumMax float64
	graded := 0
	for _, c := range s.Criteria {
		score, ok := scores[c.ID]
		if !ok {
			continue
		}
		max := c.MaxScore()
		if max <= 0 {
			continue
		}
		sum += score
		sumMax += max
		graded++
	}

	if graded == 0 || sumMax <= 0 {
		return Ungraded
	}

	ratio := math.Min(math.Max(sum/sumMax, 0), 1)
	grade := lo + (hi-lo)*ratio
	if !r.AllowDecimals {
		grade = math.Round(grade)
	}
	return grade
}

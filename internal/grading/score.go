package grading

import (
	"math"
	"strconv"
	"strings"
)

// ParseScore reads a grader-entered score. Both "4.5" and "4,5" are accepted;
// a value mixing both separators, or repeating the comma, is rejected rather
// than guessed at.
func ParseScore(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") || strings.Count(s, ",") > 1 {
			return 0, false
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

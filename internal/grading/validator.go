package grading

import (
	"fmt"
	"strings"
)

type Reason string

const (
	ReasonNoCriteria   Reason = "no_criteria"
	ReasonMissing      Reason = "missing"
	ReasonNoLevel      Reason = "level_required"
	ReasonUnknownLevel Reason = "unknown_level"
	ReasonNoScore      Reason = "score_required"
	ReasonBadScore     Reason = "invalid_score"
	ReasonOutOfBand    Reason = "score_out_of_range"
)

// Violation explains why one indicator failed validation. IndicatorID is 0
// for problems with the rubric as a whole.
type Violation struct {
	IndicatorID uint   `json:"indicator_id"`
	Reason      Reason `json:"reason"`
}

func (v Violation) Error() string {
	if v.IndicatorID == 0 {
		return string(v.Reason)
	}
	return fmt.Sprintf("indicator %d: %s", v.IndicatorID, v.Reason)
}

// Check validates sub against every criterion of s and returns all
// violations found. Grading is all or nothing: a single violation means the
// whole submission must be refused.
func Check(sub Submission, s Structure) []Violation {
	if s.IsEmpty() {
		return []Violation{{Reason: ReasonNoCriteria}}
	}

	var out []Violation
	for _, c := range s.Criteria {
		if r, ok := checkCriterion(sub, c); !ok {
			out = append(out, Violation{IndicatorID: c.ID, Reason: r})
		}
	}
	return out
}

func checkCriterion(sub Submission, c Criterion) (Reason, bool) {
	in, ok := sub.Criteria[c.ID]
	if !ok {
		return ReasonMissing, false
	}
	if in.LevelID == nil {
		return ReasonNoLevel, false
	}
	level, ok := c.Level(*in.LevelID)
	if !ok {
		return ReasonUnknownLevel, false
	}
	if strings.TrimSpace(in.Score) == "" {
		return ReasonNoScore, false
	}
	score, ok := ParseScore(in.Score)
	if !ok {
		return ReasonBadScore, false
	}
	if !level.Contains(score) {
		return ReasonOutOfBand, false
	}
	return "", true
}

// Validate reports whether sub passes Check without violations.
func Validate(sub Submission, s Structure) bool {
	return len(Check(sub, s)) == 0
}

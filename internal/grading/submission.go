package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CriterionInput is what a grader sent for one indicator. Score is kept as
// the raw text so that locale formatted input reaches ParseScore untouched.
type CriterionInput struct {
	StudentOutcomeID uint   `json:"student_outcome_id,omitempty"`
	LevelID          *uint  `json:"performance_level_id,omitempty"`
	Score            string `json:"score"`
	Feedback         string `json:"feedback"`
}

func (in CriterionInput) hasInput() bool {
	return in.LevelID != nil ||
		strings.TrimSpace(in.Score) != "" ||
		strings.TrimSpace(in.Feedback) != ""
}

// UnmarshalJSON accepts the loose shapes grading forms post: ids and scores
// may arrive as numbers or strings, and an unselected level as "" or null.
// A level id that is not a number decodes to 0, which matches no level and
// therefore fails validation instead of the request.
func (in *CriterionInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		StudentOutcomeID json.RawMessage `json:"student_outcome_id"`
		LevelID          json.RawMessage `json:"performance_level_id"`
		Score            json.RawMessage `json:"score"`
		Feedback         json.RawMessage `json:"feedback"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out CriterionInput
	if s, ok, err := looseText(raw.StudentOutcomeID); err != nil {
		return fmt.Errorf("student_outcome_id: %w", err)
	} else if ok && s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("student_outcome_id: %w", err)
		}
		out.StudentOutcomeID = uint(id)
	}

	if s, ok, err := looseText(raw.LevelID); err != nil {
		return fmt.Errorf("performance_level_id: %w", err)
	} else if ok && s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			id = 0
		}
		v := uint(id)
		out.LevelID = &v
	}

	s, _, err := looseText(raw.Score)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	out.Score = s

	s, _, err = looseText(raw.Feedback)
	if err != nil {
		return fmt.Errorf("feedback: %w", err)
	}
	out.Feedback = s

	*in = out
	return nil
}

// looseText turns a JSON string or number into trimmed text. ok is false for
// a missing value or null.
func looseText(raw json.RawMessage) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return strings.TrimSpace(s), true, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false, fmt.Errorf("expected string or number, got %s", raw)
	}
	return n.String(), true, nil
}

// Submission is one save request for a grading instance, keyed by indicator id.
type Submission struct {
	Criteria  map[uint]CriterionInput `json:"criteria"`
	Submitted bool                    `json:"submissionflag"`
}

// IsEmpty is true when no criterion carries a level, a score or feedback and
// the submitted flag is not set. An empty submission is never validated.
func IsEmpty(sub Submission) bool {
	if sub.Submitted {
		return false
	}
	for _, in := range sub.Criteria {
		if in.hasInput() {
			return false
		}
	}
	return true
}

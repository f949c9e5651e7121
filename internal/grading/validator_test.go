package grading

import (
	"encoding/json"
	"testing"
)

func TestValidateBandEdges(t *testing.T) {
	s := twoIndicators()
	cases := []struct {
		name  string
		score string
		want  bool
	}{
		{"upper edge of good", "4.49", true},
		{"lower edge of good", "3.50", true},
		{"excellent score with good level", "4.50", false},
		{"fair score with good level", "3.49", false},
		{"comma decimal", "4,2", true},
		{"garbage", "four", false},
		{"blank", "  ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := Submission{Criteria: map[uint]CriterionInput{
				1: {LevelID: uintPtr(13), Score: tc.score},
				2: {LevelID: uintPtr(24), Score: "5"},
			}}
			if got := Validate(sub, s); got != tc.want {
				t.Fatalf("Validate(score=%q) = %v, want %v (violations %v)", tc.score, got, tc.want, Check(sub, s))
			}
		})
	}
}

func TestCheckIsAllOrNothing(t *testing.T) {
	s := twoIndicators()
	sub := Submission{Criteria: map[uint]CriterionInput{
		1: {LevelID: uintPtr(13), Score: "4.0", Feedback: "solid"},
		2: {Score: "3.2"},
	}}

	v := Check(sub, s)
	if len(v) != 1 {
		t.Fatalf("expected one violation, got %v", v)
	}
	if v[0].IndicatorID != 2 || v[0].Reason != ReasonNoLevel {
		t.Fatalf("unexpected violation %+v", v[0])
	}
	if Validate(sub, s) {
		t.Fatal("submission with one ungraded indicator must be rejected")
	}
}

func TestCheckReasons(t *testing.T) {
	s := twoIndicators()
	sub := Submission{Criteria: map[uint]CriterionInput{
		1: {LevelID: uintPtr(23), Score: "4"}, // level of B
	}}
	v := Check(sub, s)
	want := map[uint]Reason{1: ReasonUnknownLevel, 2: ReasonMissing}
	if len(v) != len(want) {
		t.Fatalf("got %v", v)
	}
	for _, got := range v {
		if want[got.IndicatorID] != got.Reason {
			t.Errorf("indicator %d: reason %q, want %q", got.IndicatorID, got.Reason, want[got.IndicatorID])
		}
	}
}

func TestCheckEmptyStructure(t *testing.T) {
	v := Check(Submission{Submitted: true}, Structure{Keyname: "so9"})
	if len(v) != 1 || v[0].Reason != ReasonNoCriteria {
		t.Fatalf("got %v", v)
	}
}

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		name string
		sub  Submission
		want bool
	}{
		{"nil criteria", Submission{}, true},
		{"whitespace only", Submission{Criteria: map[uint]CriterionInput{1: {Score: " ", Feedback: "\n"}}}, true},
		{"feedback only", Submission{Criteria: map[uint]CriterionInput{1: {Feedback: "see notes"}}}, false},
		{"level only", Submission{Criteria: map[uint]CriterionInput{1: {LevelID: uintPtr(11)}}}, false},
		{"score only", Submission{Criteria: map[uint]CriterionInput{1: {Score: "0"}}}, false},
		{"submitted flag", Submission{Submitted: true}, false},
	}
	for _, tc := range cases {
		if got := IsEmpty(tc.sub); got != tc.want {
			t.Errorf("%s: IsEmpty = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSubmissionDecodesLooseJSON(t *testing.T) {
	body := `{
		"submissionflag": true,
		"criteria": {
			"1": {"performance_level_id": "13", "score": 4.25, "feedback": "  ok "},
			"2": {"performance_level_id": "", "score": "3,5"},
			"3": {"performance_level_id": "abc", "student_outcome_id": 7},
			"4": {"performance_level_id": null, "score": null}
		}
	}`
	var sub Submission
	if err := json.Unmarshal([]byte(body), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sub.Submitted {
		t.Error("submission flag lost")
	}

	a := sub.Criteria[1]
	if a.LevelID == nil || *a.LevelID != 13 || a.Score != "4.25" || a.Feedback != "ok" {
		t.Errorf("criterion 1 decoded as %+v", a)
	}
	if b := sub.Criteria[2]; b.LevelID != nil || b.Score != "3,5" {
		t.Errorf("criterion 2 decoded as %+v", b)
	}
	if c := sub.Criteria[3]; c.LevelID == nil || *c.LevelID != 0 || c.StudentOutcomeID != 7 {
		t.Errorf("criterion 3 decoded as %+v", c)
	}
	if d := sub.Criteria[4]; d.hasInput() {
		t.Errorf("criterion 4 should be blank, got %+v", d)
	}
}

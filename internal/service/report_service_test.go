package service

import (
	"context"
	"testing"
	"time"

	"rubrics_backend/internal/repository"
)

func TestGetEvaluations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	f.evalRepo.Now = func() time.Time { return fixed }
	def, inst := f.configure(t, "so2")
	if _, err := f.grading.UpdateInstance(ctx, inst.ID, f.rater(), fullSubmission(t, f.structure(def), "4")); err != nil {
		t.Fatal(err)
	}

	list, err := f.reports.GetEvaluations(ctx, repository.EvaluationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if list.Count != 3 || len(list.Evaluations) != 3 {
		t.Fatalf("count %d", list.Count)
	}
	row := list.Evaluations[0]
	if row.SONumber != "SO2" || row.IndicatorLetter != "a" || row.GraderName != "Profesor" || row.StudentName != "Estudiante" {
		t.Fatalf("row %+v", row)
	}
	if row.AssignmentID != f.area.ActivityID || row.CourseName != "Ingeniería" || row.TimeModified != fixed.Unix() {
		t.Fatalf("row context %+v", row)
	}

	list, err = f.reports.GetEvaluations(ctx, repository.EvaluationFilter{ActivityID: f.area.ActivityID + 1})
	if err != nil || list.Count != 0 || list.Evaluations == nil {
		t.Fatalf("filtered list %+v %v", list, err)
	}
}

func TestGetStudentOutcomes(t *testing.T) {
	f := newFixture(t)

	list := f.reports.GetStudentOutcomes("es_CO")
	if list.Count != 7 || list.Language != "es" {
		t.Fatalf("list %d %s", list.Count, list.Language)
	}
	if got := list.StudentOutcomes[0].Indicators[0].PerformanceLevels[0].Name; got != "Inadecuado" {
		t.Fatalf("level name %q", got)
	}

	if fr := f.reports.GetStudentOutcomes("fr"); fr.Language != "en" || fr.StudentOutcomes[0].Title != f.reports.GetStudentOutcomes("en").StudentOutcomes[0].Title {
		t.Fatalf("fallback language %s", fr.Language)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/model"
	"rubrics_backend/internal/repository"
	"rubrics_backend/internal/util"
)

func repositoryInput(f *fixture, inst *model.GradingInstance, c grading.Criterion, level *uint, score *float64) repository.EvaluationInput {
	return repository.EvaluationInput{
		InstanceID:         inst.ID,
		StudentID:          f.student.ID,
		CourseID:           f.area.CourseID,
		ActivityID:         f.area.ActivityID,
		ActivityName:       f.area.ActivityName,
		StudentOutcomeID:   c.StudentOutcomeID,
		IndicatorID:        c.ID,
		PerformanceLevelID: level,
		Score:              score,
	}
}

func TestConfigureDefinition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	def, err := f.defs.ConfigureDefinition(ctx, f.area.ID, f.teacher.ID, DefinitionRequest{Keyname: " SO3 "})
	if err != nil {
		t.Fatal(err)
	}
	if def.Keyname != "so3" || def.Name != "SO3" || def.GradeMax != 100 {
		t.Fatalf("definition %+v", def)
	}
	if opts := def.Options.Data(); !opts.ShowScoreStudent || !opts.AlwaysShowDefinition {
		t.Fatalf("default options %+v", opts)
	}

	view, err := f.defs.GetDefinition(ctx, f.area.ID, "es")
	if err != nil {
		t.Fatal(err)
	}
	if !view.Completed || len(view.Structure.Criteria) != 4 || view.Definition.ID != def.ID {
		t.Fatalf("view %+v", view)
	}
	structure, err := f.defs.CompleteStructure(ctx, def.ID, "es")
	if err != nil || structure.SONumber != "SO3" || len(structure.Criteria) != 4 {
		t.Fatalf("complete structure %+v: %v", structure, err)
	}
	if _, err := f.defs.CompleteStructure(ctx, 9999, "en"); !errors.Is(err, util.ErrDefinitionNotFound) {
		t.Fatalf("unknown definition: %v", err)
	}

	// 清空 keyname 后结构为空
	if _, err := f.defs.ConfigureDefinition(ctx, f.area.ID, f.teacher.ID, DefinitionRequest{}); err != nil {
		t.Fatal(err)
	}
	view, _ = f.defs.GetDefinition(ctx, f.area.ID, "en")
	if view.Completed || view.Structure.Criteria == nil {
		t.Fatalf("empty keyname view %+v", view)
	}
}

func TestConfigureDefinitionRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.defs.ConfigureDefinition(ctx, f.area.ID, f.teacher.ID, DefinitionRequest{Keyname: "so9"}); !errors.Is(err, util.ErrUnknownOutcome) {
		t.Fatalf("unknown keyname: %v", err)
	}
	if _, err := f.defs.ConfigureDefinition(ctx, 777, f.teacher.ID, DefinitionRequest{Keyname: "so1"}); !errors.Is(err, util.ErrAreaNotFound) {
		t.Fatalf("unknown area: %v", err)
	}
}

func TestDeleteDefinitionCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def, inst := f.configure(t, "so2")
	if _, err := f.grading.UpdateInstance(ctx, inst.ID, f.rater(), fullSubmission(t, f.structure(def), "4")); err != nil {
		t.Fatal(err)
	}

	res, err := f.defs.DeleteDefinition(ctx, f.area.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Instances != 1 || res.Evaluations != 3 {
		t.Fatalf("delete result %+v", res)
	}
	if _, err := f.defs.GetDefinition(ctx, f.area.ID, "en"); !errors.Is(err, util.ErrDefinitionNotFound) {
		t.Fatalf("definition still there: %v", err)
	}

	// 参考数据不受影响
	outcomes, err := repository.NewCatalogRepository(f.db).LoadOutcomes()
	if err != nil || len(outcomes) != 7 {
		t.Fatalf("catalog after delete: %d %v", len(outcomes), err)
	}
}

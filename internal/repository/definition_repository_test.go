package repository

import (
	"context"
	"errors"
	"testing"

	"rubrics_backend/internal/model"
	"rubrics_backend/internal/util"
)

func TestDeleteCascade(t *testing.T) {
	f := newEvalFixture(t)
	ctx := context.Background()
	for _, ind := range f.outcomes[0].Indicators {
		if _, err := f.repo.Save(ctx, f.input(ind, 0, 1)); err != nil {
			t.Fatal(err)
		}
	}

	defs := NewDefinitionRepository(f.db)
	instances, evals, err := defs.DeleteCascade(ctx, f.instance.DefinitionID)
	if err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if instances != 1 || evals != int64(len(f.outcomes[0].Indicators)) {
		t.Fatalf("deleted %d instances, %d evaluations", instances, evals)
	}
	if _, err := defs.FindByID(ctx, f.instance.DefinitionID); !errors.Is(err, util.ErrDefinitionNotFound) {
		t.Fatalf("definition still present: %v", err)
	}
	var count int64
	f.db.Model(&model.Evaluation{}).Count(&count)
	if count != 0 {
		t.Fatalf("%d evaluations left", count)
	}

	if _, _, err := defs.DeleteCascade(ctx, f.instance.DefinitionID); !errors.Is(err, util.ErrDefinitionNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMarkGradedArchivesPrevious(t *testing.T) {
	f := newEvalFixture(t)
	ctx := context.Background()
	repo := NewInstanceRepository(f.db)

	grade := 70.0
	if err := repo.MarkGraded(ctx, &f.instance, &grade, f.student.ID); err != nil {
		t.Fatal(err)
	}

	other := model.GradingInstance{DefinitionID: f.instance.DefinitionID, RaterID: f.teacher.ID + 100, ItemID: f.instance.ItemID}
	if err := repo.Create(ctx, &other); err != nil {
		t.Fatal(err)
	}
	if other.Status != model.InstanceIncomplete {
		t.Fatalf("new instance status %q", other.Status)
	}
	if err := repo.MarkGraded(ctx, &other, &grade, f.student.ID); err != nil {
		t.Fatal(err)
	}

	old, _ := repo.FindByID(ctx, f.instance.ID)
	if old.Status != model.InstanceArchived {
		t.Fatalf("previous instance status %q", old.Status)
	}
	latest, err := repo.FindLatestActiveForStudent(ctx, f.instance.DefinitionID, f.student.ID)
	if err != nil || latest.ID != other.ID || *latest.RawGrade != 70 {
		t.Fatalf("latest active %+v %v", latest, err)
	}

	if err := repo.Reset(ctx, latest); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindLatestActiveForStudent(ctx, f.instance.DefinitionID, f.student.ID); !errors.Is(err, util.ErrInstanceNotFound) {
		t.Fatalf("reset instance still active: %v", err)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/config"
	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/model"
	"rubrics_backend/internal/rbac"
	"rubrics_backend/internal/repository"
	"rubrics_backend/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	defs     *DefinitionService
	grading  *GradingService
	reports  *ReportService
	evalRepo *repository.EvaluationRepository
	teacher  model.User
	student  model.User
	area     model.GradingArea
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)

	outcomes, err := repository.NewCatalogRepository(db).LoadOutcomes()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cat := catalog.New(outcomes)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	defRepo := repository.NewDefinitionRepository(db)
	instRepo := repository.NewInstanceRepository(db)
	evalRepo := repository.NewEvaluationRepository(db)

	defaults := NewGradingDefaults(config.GradingConfig{GradeMin: 0, GradeMax: 100, DefaultLang: "en"})
	f := &fixture{
		db:       db,
		defs:     NewDefinitionService(defRepo, courseRepo, cat, defaults),
		grading:  NewGradingService(db, defRepo, instRepo, evalRepo, courseRepo, cat, repository.NewInstanceLock(nil, "", time.Second), rbac.NewChecker(nil)),
		reports:  NewReportService(evalRepo, cat),
		evalRepo: evalRepo,
	}

	f.teacher = model.User{Name: "Profesor", Email: "profe@utb.edu.co", Password: "x", Role: model.Teacher}
	f.student = model.User{Name: "Estudiante", Email: "estudiante@utb.edu.co", Password: "x", Role: model.Student}
	for _, u := range []*model.User{&f.teacher, &f.student} {
		if err := userRepo.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	course := model.Course{ShortName: "ING", FullName: "Ingeniería"}
	if err := courseRepo.CreateCourse(ctx, &course); err != nil {
		t.Fatal(err)
	}
	f.area = model.GradingArea{CourseID: course.ID, ActivityID: 12, ActivityName: "Informe"}
	if err := courseRepo.CreateArea(ctx, &f.area); err != nil {
		t.Fatal(err)
	}
	return f
}

// configure 绑定 keyname 并返回一个属于学生的评分实例
func (f *fixture) configure(t *testing.T, keyname string) (*model.Definition, *model.GradingInstance) {
	t.Helper()
	ctx := context.Background()
	def, err := f.defs.ConfigureDefinition(ctx, f.area.ID, f.teacher.ID, DefinitionRequest{Keyname: keyname})
	if err != nil {
		t.Fatalf("ConfigureDefinition(%s): %v", keyname, err)
	}
	inst, err := f.grading.GetOrCreateInstance(ctx, def.ID, f.teacher.ID, 500, f.student.ID)
	if err != nil {
		t.Fatalf("GetOrCreateInstance: %v", err)
	}
	return def, inst
}

// rater 创建实例的教师
func (f *fixture) rater() Actor {
	return Actor{ID: f.teacher.ID, Role: f.teacher.Role}
}

// newUser 额外创建一个用户
func (f *fixture) newUser(t *testing.T, name string, role model.UserRole) Actor {
	t.Helper()
	u := model.User{Name: name, Email: name + "@utb.edu.co", Password: "x", Role: role}
	if err := repository.NewUserRepository(f.db).Create(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) structure(def *model.Definition) grading.Structure {
	return f.defs.StructureFor(def, "en")
}

// bandLevel 按分数选出所在等级
func bandLevel(t *testing.T, c grading.Criterion, score float64) *uint {
	t.Helper()
	for _, l := range c.Levels {
		if l.Contains(score) {
			id := l.ID
			return &id
		}
	}
	t.Fatalf("no level for %v in criterion %d", score, c.ID)
	return nil
}

// fullSubmission 为每个指标依次使用 scores 中的分数
func fullSubmission(t *testing.T, s grading.Structure, scores ...string) grading.Submission {
	t.Helper()
	sub := grading.Submission{Criteria: map[uint]grading.CriterionInput{}}
	for i, c := range s.Criteria {
		raw := scores[i%len(scores)]
		v, ok := grading.ParseScore(raw)
		if !ok {
			t.Fatalf("bad score %q", raw)
		}
		sub.Criteria[c.ID] = grading.CriterionInput{
			LevelID:  bandLevel(t, c, v),
			Score:    raw,
			Feedback: "bien",
		}
	}
	return sub
}

func (f *fixture) countRows(t *testing.T, instanceID uint) int64 {
	t.Helper()
	n, err := f.evalRepo.CountForInstance(context.Background(), instanceID)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

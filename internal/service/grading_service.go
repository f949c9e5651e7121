package service

import (
	"context"
	"errors"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/model"
	"rubrics_backend/internal/rbac"
	"rubrics_backend/internal/repository"
	"rubrics_backend/internal/util"
	"rubrics_backend/pkg/logger"
	"rubrics_backend/pkg/monitoring"
	"rubrics_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GradingService struct {
	DB         *gorm.DB
	DefRepo    *repository.DefinitionRepository
	InstRepo   *repository.InstanceRepository
	EvalRepo   *repository.EvaluationRepository
	CourseRepo *repository.CourseRepository
	Catalog    *catalog.Catalog
	Lock       *repository.InstanceLock
	Checker    *rbac.Checker
}

func NewGradingService(db *gorm.DB, defRepo *repository.DefinitionRepository, instRepo *repository.InstanceRepository,
	evalRepo *repository.EvaluationRepository, courseRepo *repository.CourseRepository,
	cat *catalog.Catalog, lock *repository.InstanceLock, checker *rbac.Checker) *GradingService {
	return &GradingService{
		DB:         db,
		DefRepo:    defRepo,
		InstRepo:   instRepo,
		EvalRepo:   evalRepo,
		CourseRepo: courseRepo,
		Catalog:    cat,
		Lock:       lock,
		Checker:    checker,
	}
}

// Actor 发起评分操作的用户
type Actor struct {
	ID   uint
	Role model.UserRole
}

// authorize 实例只属于它的评分人，拥有 grading:override 的角色可以代为操作
func (s *GradingService) authorize(inst *model.GradingInstance, actor Actor) error {
	if inst.RaterID == actor.ID {
		return nil
	}
	if s.Checker.All(string(actor.Role), rbac.PermGrade, rbac.PermOverride) {
		return nil
	}
	logger.Log.Warn("Grading instance belongs to another rater",
		zap.Uint("instanceID", inst.ID),
		zap.Uint("raterID", inst.RaterID),
		zap.Uint("actorID", actor.ID))
	return util.ErrPermissionDenied
}

// GetOrCreateInstance 复用该教师对该提交的最新实例（有评价或仍为 incomplete），否则新建
func (s *GradingService) GetOrCreateInstance(ctx context.Context, definitionID, raterID, itemID, studentID uint) (*model.GradingInstance, error) {
	if _, err := s.DefRepo.FindByID(ctx, definitionID); err != nil {
		return nil, err
	}

	inst, err := s.InstRepo.FindLatest(ctx, definitionID, raterID, itemID)
	switch {
	case err == nil:
		if inst.Status == model.InstanceIncomplete {
			return inst, nil
		}
		count, err := s.EvalRepo.CountForInstance(ctx, inst.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return inst, nil
		}
	case !errors.Is(err, util.ErrInstanceNotFound):
		return nil, err
	}

	inst = &model.GradingInstance{
		DefinitionID: definitionID,
		RaterID:      raterID,
		ItemID:       itemID,
		StudentID:    studentID,
		Status:       model.InstanceIncomplete,
	}
	if err := s.InstRepo.Create(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

type UpdateResult struct {
	InstanceID uint                 `json:"instanceId"`
	Status     model.InstanceStatus `json:"status"`
	Saved      int                  `json:"saved"`
	Removed    int64                `json:"removed"`
	Grade      float64              `json:"grade"`
}

// UpdateInstance 校验并保存一次评分提交。校验失败时不写入任何记录
func (s *GradingService) UpdateInstance(ctx context.Context, instanceID uint, actor Actor, sub grading.Submission) (*UpdateResult, error) {
	ctx, span := tracing.Start(ctx, "GradingService.UpdateInstance", attribute.Int64("instance.id", int64(instanceID)))
	res, err := s.updateInstance(ctx, instanceID, actor, sub)
	tracing.End(span, err)
	return res, err
}

func (s *GradingService) updateInstance(ctx context.Context, instanceID uint, actor Actor, sub grading.Submission) (*UpdateResult, error) {
	inst, err := s.InstRepo.FindByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(inst, actor); err != nil {
		return nil, err
	}
	def, err := s.DefRepo.FindByID(ctx, inst.DefinitionID)
	if err != nil {
		return nil, err
	}
	structure := s.Catalog.Structure(def.Keyname, catalog.LangEN)

	// 空提交（包括所有指标都为空白）不写入评价，保留已有成绩
	empty := grading.IsEmpty(sub)
	if !structure.IsEmpty() && !empty {
		if violations := grading.Check(sub, structure); len(violations) > 0 {
			monitoring.ValidationFailures.WithLabelValues(string(violations[0].Reason)).Inc()
			logger.Log.Info("Rubric submission rejected",
				zap.Uint("instanceID", instanceID),
				zap.Uint("actorID", actor.ID),
				zap.Int("violations", len(violations)))
			return nil, &ValidationError{Violations: violations}
		}
	}

	area, err := s.CourseRepo.FindArea(ctx, def.AreaID)
	if err != nil {
		return nil, err
	}

	studentID := inst.StudentID
	if studentID == 0 {
		if studentID, err = s.EvalRepo.StudentForInstance(ctx, inst.ID); err != nil {
			return nil, err
		}
	}
	if studentID == 0 {
		studentID = actor.ID
	}

	release, err := s.Lock.Acquire(ctx, inst.ID)
	if err != nil {
		if errors.Is(err, util.ErrInstanceBusy) {
			monitoring.LockContention.Inc()
		}
		return nil, err
	}
	defer release()

	result := &UpdateResult{InstanceID: inst.ID}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		evals := s.EvalRepo.WithTx(tx)
		insts := s.InstRepo.WithTx(tx)

		processed := make([]uint, 0, len(structure.Criteria))
		for _, c := range structure.Criteria {
			in, ok := sub.Criteria[c.ID]
			if !ok || empty {
				continue
			}
			outcomeID := in.StudentOutcomeID
			if outcomeID == 0 {
				outcomeID = c.StudentOutcomeID
			}
			if outcomeID == 0 {
				continue
			}

			var score *float64
			if v, ok := grading.ParseScore(in.Score); ok {
				score = &v
			}
			if _, err := evals.Save(ctx, repository.EvaluationInput{
				InstanceID:         inst.ID,
				StudentID:          studentID,
				CourseID:           area.CourseID,
				ActivityID:         area.ActivityID,
				ActivityName:       area.ActivityName,
				StudentOutcomeID:   outcomeID,
				IndicatorID:        c.ID,
				PerformanceLevelID: in.LevelID,
				Score:              score,
				Feedback:           in.Feedback,
			}); err != nil {
				return err
			}
			processed = append(processed, c.ID)
		}
		result.Saved = len(processed)

		removed, err := evals.Reconcile(ctx, inst.ID, structure.IndicatorIDs(), processed)
		if err != nil {
			return err
		}
		result.Removed = removed

		scores, err := evals.ScoresForInstance(ctx, inst.ID)
		if err != nil {
			return err
		}
		result.Grade = grading.ComputeGrade(structure, scores, def.GradeRange())

		var raw *float64
		if result.Grade != grading.Ungraded {
			g := result.Grade
			raw = &g
		}
		return insts.MarkGraded(ctx, inst, raw, studentID)
	})
	if err != nil {
		logger.Log.Error("Failed to save rubric evaluations",
			zap.Uint("instanceID", inst.ID),
			zap.Error(err))
		return nil, err
	}

	result.Status = inst.Status
	monitoring.EvaluationsSaved.WithLabelValues(structure.SONumber).Add(float64(result.Saved))
	monitoring.EvaluationsRemoved.Add(float64(result.Removed))
	observeGrade(result.Grade, def.GradeRange())

	logger.Log.Info("Rubric evaluations saved",
		zap.Uint("instanceID", inst.ID),
		zap.Uint("actorID", actor.ID),
		zap.String("keyname", def.Keyname),
		zap.Int("saved", result.Saved),
		zap.Int64("removed", result.Removed),
		zap.Float64("grade", result.Grade))
	return result, nil
}

func observeGrade(grade float64, r grading.GradeRange) {
	if grade == grading.Ungraded || r.Max == r.Min {
		return
	}
	monitoring.GradesComputed.Observe((grade - r.Min) / (r.Max - r.Min))
}

// CriterionFilling 一个指标及其已保存的评价
type CriterionFilling struct {
	grading.Criterion
	Evaluation    *repository.EvaluationView `json:"evaluation,omitempty"`
	ResolvedLevel *grading.Level             `json:"resolved_level,omitempty"`
	ResolvedBy    grading.ResolvedBy         `json:"resolved_by"`
	Conflict      bool                       `json:"conflict"`
}

type Filling struct {
	Instance   *model.GradingInstance `json:"instance"`
	Definition *model.Definition      `json:"definition"`
	Keyname    string                 `json:"keyname"`
	Title      string                 `json:"title"`
	SONumber   string                 `json:"so_number"`
	Criteria   []CriterionFilling     `json:"criteria"`
	Grade      *float64               `json:"grade,omitempty"`
}

func (s *GradingService) GetFilling(ctx context.Context, instanceID uint, actor Actor, lang string) (*Filling, error) {
	inst, err := s.InstRepo.FindByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(inst, actor); err != nil {
		return nil, err
	}
	def, err := s.DefRepo.FindByID(ctx, inst.DefinitionID)
	if err != nil {
		return nil, err
	}
	lang = catalog.NormalizeLang(lang)
	structure := s.Catalog.Structure(def.Keyname, lang)

	views, err := s.EvalRepo.FetchForInstance(ctx, inst.ID, lang)
	if err != nil {
		return nil, err
	}

	showScore := def.Options.Data().ShowScoreTeacher
	f := &Filling{
		Instance:   inst,
		Definition: def,
		Keyname:    structure.Keyname,
		Title:      structure.Title,
		SONumber:   structure.SONumber,
		Criteria:   make([]CriterionFilling, 0, len(structure.Criteria)),
	}
	for _, c := range structure.Criteria {
		cf := CriterionFilling{Criterion: c, ResolvedBy: grading.Unresolved}
		if v, ok := views[c.ID]; ok {
			res := grading.ResolveLevel(c, v.PerformanceLevelID, v.Score)
			cf.ResolvedLevel = res.Level
			cf.ResolvedBy = res.By
			cf.Conflict = res.Conflict
			if res.Conflict {
				logger.Log.Warn("Stored level and score disagree",
					zap.Uint("instanceID", inst.ID),
					zap.Uint("indicatorID", c.ID),
					zap.Uint("levelID", res.Level.ID),
					zap.Float64("score", *v.Score))
			}
			if !showScore {
				v.Score = nil
			}
			cf.Evaluation = &v
		}
		f.Criteria = append(f.Criteria, cf)
	}

	if showScore {
		f.Grade = inst.RawGrade
	}
	return f, nil
}

type GradeResult struct {
	InstanceID uint    `json:"instanceId"`
	Grade      float64 `json:"grade"`
	Graded     bool    `json:"graded"`
	GradeMin   float64 `json:"gradeMin"`
	GradeMax   float64 `json:"gradeMax"`
}

func (s *GradingService) GetGrade(ctx context.Context, instanceID uint, actor Actor) (*GradeResult, error) {
	ctx, span := tracing.Start(ctx, "GradingService.GetGrade", attribute.Int64("instance.id", int64(instanceID)))
	defer span.End()

	inst, err := s.InstRepo.FindByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(inst, actor); err != nil {
		return nil, err
	}
	def, err := s.DefRepo.FindByID(ctx, inst.DefinitionID)
	if err != nil {
		return nil, err
	}
	scores, err := s.EvalRepo.ScoresForInstance(ctx, inst.ID)
	if err != nil {
		return nil, err
	}

	r := def.GradeRange()
	grade := grading.ComputeGrade(s.Catalog.Structure(def.Keyname, catalog.LangEN), scores, r)
	return &GradeResult{
		InstanceID: inst.ID,
		Grade:      grade,
		Graded:     grade != grading.Ungraded,
		GradeMin:   r.Min,
		GradeMax:   r.Max,
	}, nil
}

// ClearInstance 删除指定指标的评价（为空则全部），并重新计算实例成绩
func (s *GradingService) ClearInstance(ctx context.Context, instanceID uint, actor Actor, indicatorIDs []uint) (int64, error) {
	inst, err := s.InstRepo.FindByID(ctx, instanceID)
	if err != nil {
		return 0, err
	}
	if err := s.authorize(inst, actor); err != nil {
		return 0, err
	}
	def, err := s.DefRepo.FindByID(ctx, inst.DefinitionID)
	if err != nil {
		return 0, err
	}

	release, err := s.Lock.Acquire(ctx, inst.ID)
	if err != nil {
		return 0, err
	}
	defer release()

	var removed int64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		evals := s.EvalRepo.WithTx(tx)
		insts := s.InstRepo.WithTx(tx)

		n, err := evals.Clear(ctx, inst.ID, indicatorIDs)
		if err != nil {
			return err
		}
		removed = n

		left, err := evals.CountForInstance(ctx, inst.ID)
		if err != nil {
			return err
		}
		if left == 0 {
			return insts.Reset(ctx, inst)
		}

		scores, err := evals.ScoresForInstance(ctx, inst.ID)
		if err != nil {
			return err
		}
		grade := grading.ComputeGrade(s.Catalog.Structure(def.Keyname, catalog.LangEN), scores, def.GradeRange())
		var raw *float64
		if grade != grading.Ungraded {
			raw = &grade
		}
		return insts.MarkGraded(ctx, inst, raw, 0)
	})
	if err != nil {
		return 0, err
	}

	monitoring.EvaluationsRemoved.Add(float64(removed))
	logger.Log.Info("Rubric evaluations cleared",
		zap.Uint("instanceID", inst.ID),
		zap.Int64("removed", removed))
	return removed, nil
}

type StudentCriterion struct {
	IndicatorID uint     `json:"indicator_id"`
	Indicator   string   `json:"indicator"`
	Description string   `json:"description"`
	Level       *string  `json:"performance_level,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Feedback    string   `json:"feedback"`
}

type StudentResult struct {
	DefinitionID uint               `json:"definitionId"`
	Name         string             `json:"name"`
	SONumber     string             `json:"so_number"`
	Title        string             `json:"title"`
	Grade        *float64           `json:"grade,omitempty"`
	Criteria     []StudentCriterion `json:"criteria"`
	Structure    *grading.Structure `json:"definition,omitempty"`
}

// StudentResult 学生查看自己最新的有效评分；showscorestudent 关闭时隐藏分数和成绩
func (s *GradingService) StudentResult(ctx context.Context, definitionID, studentID uint, lang string) (*StudentResult, error) {
	def, err := s.DefRepo.FindByID(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	inst, err := s.InstRepo.FindLatestActiveForStudent(ctx, definitionID, studentID)
	if err != nil {
		return nil, err
	}

	lang = catalog.NormalizeLang(lang)
	structure := s.Catalog.Structure(def.Keyname, lang)
	views, err := s.EvalRepo.FetchForInstance(ctx, inst.ID, lang)
	if err != nil {
		return nil, err
	}
	opts := def.Options.Data()

	out := &StudentResult{
		DefinitionID: def.ID,
		Name:         def.Name,
		SONumber:     structure.SONumber,
		Title:        structure.Title,
		Criteria:     make([]StudentCriterion, 0, len(structure.Criteria)),
	}
	if opts.ShowScoreStudent {
		out.Grade = inst.RawGrade
	}
	if opts.AlwaysShowDefinition {
		out.Structure = &structure
	}

	for _, c := range structure.Criteria {
		sc := StudentCriterion{
			IndicatorID: c.ID,
			Indicator:   c.Indicator,
			Description: c.Description,
		}
		if v, ok := views[c.ID]; ok {
			if res := grading.ResolveLevel(c, v.PerformanceLevelID, v.Score); res.Level != nil {
				name := res.Level.Definition
				sc.Level = &name
			}
			sc.Feedback = v.Feedback
			if opts.ShowScoreStudent {
				sc.Score = v.Score
			}
		}
		out.Criteria = append(out.Criteria, sc)
	}
	return out, nil
}

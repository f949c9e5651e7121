package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/model"
	"rubrics_backend/internal/repository"
	"rubrics_backend/internal/util"
	"rubrics_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type DefinitionService struct {
	DefRepo    *repository.DefinitionRepository
	CourseRepo *repository.CourseRepository
	Catalog    *catalog.Catalog
	Defaults   *GradingDefaults
}

func NewDefinitionService(defRepo *repository.DefinitionRepository, courseRepo *repository.CourseRepository,
	cat *catalog.Catalog, defaults *GradingDefaults) *DefinitionService {
	return &DefinitionService{
		DefRepo:    defRepo,
		CourseRepo: courseRepo,
		Catalog:    cat,
		Defaults:   defaults,
	}
}

// DefinitionRequest 未提供的字段保持原值，新建时取默认值
type DefinitionRequest struct {
	Keyname       string                   `json:"keyname"`
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	Options       *model.DefinitionOptions `json:"options"`
	GradeMin      *float64                 `json:"gradeMin"`
	GradeMax      *float64                 `json:"gradeMax"`
	AllowDecimals *bool                    `json:"allowDecimals"`
}

type DefinitionView struct {
	Definition *model.Definition `json:"definition"`
	Structure  grading.Structure `json:"structure"`
	Completed  bool              `json:"completed"`
}

func (s *DefinitionService) ConfigureDefinition(ctx context.Context, areaID, actorID uint, req DefinitionRequest) (*model.Definition, error) {
	keyname := strings.ToLower(strings.TrimSpace(req.Keyname))
	if keyname != "" && !s.Catalog.HasKeyname(keyname) {
		return nil, fmt.Errorf("%w: %q", util.ErrUnknownOutcome, req.Keyname)
	}

	if _, err := s.CourseRepo.FindArea(ctx, areaID); err != nil {
		return nil, err
	}

	def, err := s.DefRepo.FindByAreaID(ctx, areaID)
	switch {
	case err == nil:
	case errors.Is(err, util.ErrDefinitionNotFound):
		d := s.Defaults.Get()
		def = &model.Definition{
			AreaID:        areaID,
			Options:       datatypes.NewJSONType(model.DefaultDefinitionOptions()),
			GradeMin:      d.GradeMin,
			GradeMax:      d.GradeMax,
			AllowDecimals: d.AllowDecimals,
			CreatedBy:     actorID,
		}
	default:
		return nil, err
	}

	previous := def.Keyname
	def.Keyname = keyname
	if req.Name != "" {
		def.Name = req.Name
	} else if def.Name == "" && keyname != "" {
		def.Name = s.Catalog.Structure(keyname, "en").SONumber
	}
	if req.Description != "" {
		def.Description = req.Description
	}
	if req.Options != nil {
		def.Options = datatypes.NewJSONType(*req.Options)
	}
	if req.GradeMin != nil {
		def.GradeMin = *req.GradeMin
	}
	if req.GradeMax != nil {
		def.GradeMax = *req.GradeMax
	}
	if req.AllowDecimals != nil {
		def.AllowDecimals = *req.AllowDecimals
	}

	if err := s.DefRepo.Save(ctx, def); err != nil {
		return nil, err
	}

	if previous != "" && previous != keyname {
		// 已有评价在下次保存时按新结构清理
		logger.Log.Info("Definition switched student outcome",
			zap.Uint("definitionID", def.ID),
			zap.String("from", previous),
			zap.String("to", keyname))
	}
	return def, nil
}

func (s *DefinitionService) GetDefinition(ctx context.Context, areaID uint, lang string) (*DefinitionView, error) {
	def, err := s.DefRepo.FindByAreaID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	structure := s.StructureFor(def, lang)
	return &DefinitionView{
		Definition: def,
		Structure:  structure,
		Completed:  !structure.IsEmpty(),
	}, nil
}

// StructureFor 未选择或未知的 keyname 得到空结构
func (s *DefinitionService) StructureFor(def *model.Definition, lang string) grading.Structure {
	return s.Catalog.Structure(def.Keyname, lang)
}

// CompleteStructure 按定义ID取完整评分结构
func (s *DefinitionService) CompleteStructure(ctx context.Context, definitionID uint, lang string) (grading.Structure, error) {
	def, err := s.DefRepo.FindByID(ctx, definitionID)
	if err != nil {
		return grading.Structure{}, err
	}
	return s.StructureFor(def, lang), nil
}

type DeleteResult struct {
	Instances   int64 `json:"instances"`
	Evaluations int64 `json:"evaluations"`
}

func (s *DefinitionService) DeleteDefinition(ctx context.Context, areaID uint) (*DeleteResult, error) {
	def, err := s.DefRepo.FindByAreaID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	instances, evaluations, err := s.DefRepo.DeleteCascade(ctx, def.ID)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Definition deleted",
		zap.Uint("definitionID", def.ID),
		zap.Uint("areaID", areaID),
		zap.Int64("instances", instances),
		zap.Int64("evaluations", evaluations))
	return &DeleteResult{Instances: instances, Evaluations: evaluations}, nil
}

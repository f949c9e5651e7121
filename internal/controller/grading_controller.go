package controller

import (
	"errors"
	"net/http"

	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/model"
	"rubrics_backend/internal/rbac"
	"rubrics_backend/internal/service"
	"rubrics_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	GradingService *service.GradingService
	Defaults       *service.GradingDefaults
	Checker        *rbac.Checker
}

func NewGradingController(gradingService *service.GradingService, defaults *service.GradingDefaults, checker *rbac.Checker) *GradingController {
	return &GradingController{
		GradingService: gradingService,
		Defaults:       defaults,
		Checker:        checker,
	}
}

// InstanceRequest 打开一次评分
// swagger:model InstanceRequest
type InstanceRequest struct {
	ItemID    uint `json:"itemId" binding:"required"`
	StudentID uint `json:"studentId"`
}

// @Summary 获取或创建评分实例
// @Description 复用该教师对同一提交的最新实例，否则新建
// @Tags 评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "定义ID"
// @Param body body InstanceRequest true "提交"
// @Success 200 {object} util.Response{data=model.GradingInstance}
// @Failure 404 {object} util.Response
// @Router /api/definitions/{id}/instances [post]
func (c *GradingController) OpenInstance(ctx *gin.Context) {
	defID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req InstanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := util.GetUserFromContext(ctx)
	inst, err := c.GradingService.GetOrCreateInstance(ctx.Request.Context(), defID, user.UserID, req.ItemID, req.StudentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, inst)
}

// @Summary 获取评分实例的结构与已保存评价
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "实例ID"
// @Param lang query string false "语言 en/es"
// @Success 200 {object} util.Response{data=service.Filling}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/instances/{id} [get]
func (c *GradingController) GetInstance(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	filling, err := c.GradingService.GetFilling(ctx.Request.Context(), id, actorFrom(ctx), c.Defaults.Lang(util.RequestLang(ctx)))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, filling)
}

// @Summary 保存评分
// @Description 每个指标都必须选择等级并填写该等级区间内的分数，否则整体拒绝
// @Tags 评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "实例ID"
// @Param lang query string false "提示语言 en/es"
// @Param body body grading.Submission true "按指标ID的评分"
// @Success 200 {object} util.Response{data=service.UpdateResult}
// @Failure 403 {object} util.Response "不是该实例的评分人"
// @Failure 409 {object} util.Response "实例正在被保存"
// @Failure 422 {object} util.Response{data=[]grading.Violation} "校验失败"
// @Router /api/instances/{id}/evaluations [put]
func (c *GradingController) SaveEvaluations(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var sub grading.Submission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.GradingService.UpdateInstance(ctx.Request.Context(), id, actorFrom(ctx), sub)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			util.ErrorWithData(ctx, http.StatusUnprocessableEntity,
				util.ValidationMessage(c.Defaults.Lang(util.RequestLang(ctx))), verr.Violations)
			return
		}
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 清除评价
// @Description ids 为空时清除整个实例
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "实例ID"
// @Param ids query string false "逗号分隔的指标ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/instances/{id}/evaluations [delete]
func (c *GradingController) ClearEvaluations(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	removed, err := c.GradingService.ClearInstance(ctx.Request.Context(), id, actorFrom(ctx), util.ParseUintList(ctx.Query("ids")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"removed": removed})
}

// @Summary 计算成绩
// @Description 未评分时 grade 为 -1
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "实例ID"
// @Success 200 {object} util.Response{data=service.GradeResult}
// @Router /api/instances/{id}/grade [get]
func (c *GradingController) GetGrade(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	res, err := c.GradingService.GetGrade(ctx.Request.Context(), id, actorFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 学生查看评分结果
// @Description 学生只能查看自己的结果；拥有 grading:viewall 的用户可通过 studentid 查看他人
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "定义ID"
// @Param studentid query int false "学生ID"
// @Param lang query string false "语言 en/es"
// @Success 200 {object} util.Response{data=service.StudentResult}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/definitions/{id}/result [get]
func (c *GradingController) StudentResult(ctx *gin.Context) {
	defID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	user := util.GetUserFromContext(ctx)

	studentID := user.UserID
	if requested := util.MustParseUint(ctx.Query("studentid")); requested > 0 && requested != user.UserID {
		if user.Role == model.Student || !c.Checker.Has(string(user.Role), rbac.PermViewAll) {
			util.Forbidden(ctx)
			return
		}
		studentID = requested
	}

	res, err := c.GradingService.StudentResult(ctx.Request.Context(), defID, studentID, c.Defaults.Lang(util.RequestLang(ctx)))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

package controller

import (
	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/service"
	"rubrics_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RubricController struct {
	DefinitionService *service.DefinitionService
	Catalog           *catalog.Catalog
	Defaults          *service.GradingDefaults
}

func NewRubricController(defService *service.DefinitionService, cat *catalog.Catalog, defaults *service.GradingDefaults) *RubricController {
	return &RubricController{
		DefinitionService: defService,
		Catalog:           cat,
		Defaults:          defaults,
	}
}

// @Summary 可选的评分表
// @Tags 评分表
// @Produce json
// @Security BearerAuth
// @Param lang query string false "语言 en/es"
// @Success 200 {object} util.Response{data=[]catalog.Option}
// @Router /api/rubrics/options [get]
func (c *RubricController) Options(ctx *gin.Context) {
	util.Success(ctx, c.Catalog.Options(c.Defaults.Lang(util.RequestLang(ctx))))
}

// @Summary 为评分区域选择评分表
// @Description keyname 为空表示取消选择；切换评分表后旧的评价在下次保存时清理
// @Tags 评分表
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param areaId path int true "评分区域ID"
// @Param body body service.DefinitionRequest true "定义"
// @Success 200 {object} util.Response{data=model.Definition}
// @Failure 400 {object} util.Response "未知的 Student Outcome"
// @Failure 404 {object} util.Response
// @Router /api/areas/{areaId}/definition [put]
func (c *RubricController) ConfigureDefinition(ctx *gin.Context) {
	areaID, ok := paramID(ctx, "areaId")
	if !ok {
		return
	}
	var req service.DefinitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := util.GetUserFromContext(ctx)
	def, err := c.DefinitionService.ConfigureDefinition(ctx.Request.Context(), areaID, user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, def)
}

// @Summary 获取评分区域的定义及评分结构
// @Tags 评分表
// @Produce json
// @Security BearerAuth
// @Param areaId path int true "评分区域ID"
// @Param lang query string false "语言 en/es"
// @Success 200 {object} util.Response{data=service.DefinitionView}
// @Failure 404 {object} util.Response
// @Router /api/areas/{areaId}/definition [get]
func (c *RubricController) GetDefinition(ctx *gin.Context) {
	areaID, ok := paramID(ctx, "areaId")
	if !ok {
		return
	}
	view, err := c.DefinitionService.GetDefinition(ctx.Request.Context(), areaID, c.Defaults.Lang(util.RequestLang(ctx)))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 删除评分定义
// @Description 同时删除全部评分实例和评价记录
// @Tags 评分表
// @Produce json
// @Security BearerAuth
// @Param areaId path int true "评分区域ID"
// @Success 200 {object} util.Response{data=service.DeleteResult}
// @Failure 404 {object} util.Response
// @Router /api/areas/{areaId}/definition [delete]
func (c *RubricController) DeleteDefinition(ctx *gin.Context) {
	areaID, ok := paramID(ctx, "areaId")
	if !ok {
		return
	}
	res, err := c.DefinitionService.DeleteDefinition(ctx.Request.Context(), areaID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

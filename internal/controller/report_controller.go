package controller

import (
	"rubrics_backend/internal/repository"
	"rubrics_backend/internal/service"
	"rubrics_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
	Defaults      *service.GradingDefaults
}

func NewReportController(reportService *service.ReportService, defaults *service.GradingDefaults) *ReportController {
	return &ReportController{ReportService: reportService, Defaults: defaults}
}

// GetEvaluations godoc
// @Summary 查询评价记录
// @Description 按课程、作业、评分教师、学生过滤；参数为空或 0 表示不过滤
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param courseid query int false "课程ID"
// @Param assignmentid query int false "作业ID"
// @Param graderid query int false "评分教师ID"
// @Param studentid query int false "学生ID"
// @Success 200 {object} util.Response{data=service.EvaluationList}
// @Failure 403 {object} util.Response
// @Router /api/evaluations [get]
func (c *ReportController) GetEvaluations(ctx *gin.Context) {
	filter := repository.EvaluationFilter{
		CourseID:   util.MustParseUint(ctx.Query("courseid")),
		ActivityID: util.MustParseUint(ctx.Query("assignmentid")),
		GraderID:   util.MustParseUint(ctx.Query("graderid")),
		StudentID:  util.MustParseUint(ctx.Query("studentid")),
	}

	list, err := c.ReportService.GetEvaluations(ctx.Request.Context(), filter)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetStudentOutcomes godoc
// @Summary 获取全部 Student Outcome 评分表
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param lang query string false "语言 en/es"
// @Success 200 {object} util.Response{data=service.StudentOutcomeList}
// @Failure 403 {object} util.Response
// @Router /api/student-outcomes [get]
func (c *ReportController) GetStudentOutcomes(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.GetStudentOutcomes(c.Defaults.Lang(util.RequestLang(ctx))))
}

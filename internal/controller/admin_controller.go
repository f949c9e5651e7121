package controller

import (
	"rubrics_backend/internal/service"
	"rubrics_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	UserService   *service.UserService
	CourseService *service.CourseService
}

func NewAdminController(userService *service.UserService, courseService *service.CourseService) *AdminController {
	return &AdminController{UserService: userService, CourseService: courseService}
}

// @Summary 创建用户
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateUserRequest true "用户"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/admin/users [post]
func (c *AdminController) CreateUser(ctx *gin.Context) {
	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !req.Role.Valid() {
		util.BadRequest(ctx, "role must be student, teacher or admin")
		return
	}
	user, err := c.UserService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// @Summary 创建课程
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateCourseRequest true "课程"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /api/admin/courses [post]
func (c *AdminController) CreateCourse(ctx *gin.Context) {
	var req service.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 创建评分区域
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateAreaRequest true "评分区域"
// @Success 201 {object} util.Response{data=model.GradingArea}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/areas [post]
func (c *AdminController) CreateArea(ctx *gin.Context) {
	var req service.CreateAreaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	area, err := c.CourseService.CreateArea(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, area)
}

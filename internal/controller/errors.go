package controller

import (
	"errors"
	"net/http"

	"rubrics_backend/internal/service"
	"rubrics_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 将领域错误映射为 HTTP 状态码，未知错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAreaNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrDefinitionNotFound),
		errors.Is(err, util.ErrInstanceNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrUnknownOutcome),
		errors.Is(err, util.ErrInvalidEvaluation):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInstanceBusy):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// paramID 解析路径中的正整数 ID
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

// actorFrom 当前登录用户作为评分操作者
func actorFrom(ctx *gin.Context) service.Actor {
	user := util.GetUserFromContext(ctx)
	return service.Actor{ID: user.UserID, Role: user.Role}
}

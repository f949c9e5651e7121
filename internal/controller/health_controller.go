package controller

import (
	"net/http"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
}

func NewHealthController(db *gorm.DB, cat *catalog.Catalog) *HealthController {
	return &HealthController{DB: db, Catalog: cat}
}

// @Summary 健康检查
// @Description 检查数据库连接和评分表目录
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	outcomes, indicators, levels := c.Catalog.Counts()
	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
			"catalog": gin.H{
				"student_outcomes":   outcomes,
				"indicators":         indicators,
				"performance_levels": levels,
			},
		},
	})
}

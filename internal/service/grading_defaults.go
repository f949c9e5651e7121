package service

import (
	"sync"

	"rubrics_backend/internal/catalog"
	"rubrics_backend/internal/config"
)

// GradingDefaults 可热更新的评分默认值
type GradingDefaults struct {
	mu  sync.RWMutex
	cfg config.GradingConfig
}

func NewGradingDefaults(cfg config.GradingConfig) *GradingDefaults {
	return &GradingDefaults{cfg: cfg}
}

func (d *GradingDefaults) Get() config.GradingConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

func (d *GradingDefaults) Set(cfg config.GradingConfig) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
}

// Lang 请求未指定语言时使用配置的默认语言
func (d *GradingDefaults) Lang(requested string) string {
	if requested == "" {
		requested = d.Get().DefaultLang
	}
	return catalog.NormalizeLang(requested)
}

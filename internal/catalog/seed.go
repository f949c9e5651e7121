package catalog

import (
	_ "embed"
	"fmt"

	"rubrics_backend/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed data/student_outcomes.yaml
var seedYAML []byte

type seedFile struct {
	Levels          []seedBand    `yaml:"levels"`
	StudentOutcomes []seedOutcome `yaml:"student_outcomes"`
}

type seedBand struct {
	Key       string  `yaml:"key"`
	TitleEn   string  `yaml:"title_en"`
	TitleEs   string  `yaml:"title_es"`
	MinScore  float64 `yaml:"min_score"`
	MaxScore  float64 `yaml:"max_score"`
	SortOrder int     `yaml:"sort_order"`
}

type seedOutcome struct {
	Code          string          `yaml:"code"`
	TitleEn       string          `yaml:"title_en"`
	TitleEs       string          `yaml:"title_es"`
	DescriptionEn string          `yaml:"description_en"`
	DescriptionEs string          `yaml:"description_es"`
	Indicators    []seedIndicator `yaml:"indicators"`
}

type seedIndicator struct {
	Letter        string              `yaml:"letter"`
	DescriptionEn string              `yaml:"description_en"`
	DescriptionEs string              `yaml:"description_es"`
	Levels        map[string]seedText `yaml:"levels"`
}

type seedText struct {
	DescriptionEn string `yaml:"description_en"`
	DescriptionEs string `yaml:"description_es"`
}

// SeedOutcomes 解析内置的评分表数据，返回待写入数据库的完整层级（未分配 ID）
func SeedOutcomes() ([]model.StudentOutcome, error) {
	return parseSeed(seedYAML)
}

func parseSeed(data []byte) ([]model.StudentOutcome, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("catalog seed has no level bands")
	}

	outcomes := make([]model.StudentOutcome, 0, len(f.StudentOutcomes))
	for i, so := range f.StudentOutcomes {
		o := model.StudentOutcome{
			Code:          so.Code,
			TitleEn:       so.TitleEn,
			TitleEs:       so.TitleEs,
			DescriptionEn: so.DescriptionEn,
			DescriptionEs: so.DescriptionEs,
			SortOrder:     i + 1,
		}
		for _, ind := range so.Indicators {
			indicator := model.Indicator{
				Letter:        ind.Letter,
				DescriptionEn: ind.DescriptionEn,
				DescriptionEs: ind.DescriptionEs,
			}
			for _, band := range f.Levels {
				text, ok := ind.Levels[band.Key]
				if !ok {
					return nil, fmt.Errorf("catalog seed: %s%s has no %q level", so.Code, ind.Letter, band.Key)
				}
				if band.MinScore > band.MaxScore {
					return nil, fmt.Errorf("catalog seed: band %q has min above max", band.Key)
				}
				indicator.Levels = append(indicator.Levels, model.PerformanceLevel{
					TitleEn:       band.TitleEn,
					TitleEs:       band.TitleEs,
					DescriptionEn: text.DescriptionEn,
					DescriptionEs: text.DescriptionEs,
					MinScore:      band.MinScore,
					MaxScore:      band.MaxScore,
					SortOrder:     band.SortOrder,
				})
			}
			o.Indicators = append(o.Indicators, indicator)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

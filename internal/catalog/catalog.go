// Package catalog is the read-only view of the seven Student Outcome rubrics.
// A Catalog is built once at startup from the reference tables and shared by
// the services that grade, validate and report.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/model"
)

type Level struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Definition string  `json:"definition"`
	MinScore   float64 `json:"min_score"`
	MaxScore   float64 `json:"max_score"`
}

type Indicator struct {
	ID                uint    `json:"id"`
	Letter            string  `json:"letter"`
	Description       string  `json:"description"`
	PerformanceLevels []Level `json:"performance_levels"`
}

type Outcome struct {
	ID          uint        `json:"id"`
	SONumber    string      `json:"so_number"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Indicators  []Indicator `json:"indicators"`
}

// Option 教师选择评分表时的下拉项
type Option struct {
	Keyname string `json:"keyname"`
	Title   string `json:"title"`
}

type Catalog struct {
	outcomes []model.StudentOutcome
	byCode   map[string]int
}

// New copies outcomes and fixes their order: outcomes by sort order,
// indicators by letter, levels by rank (lowest band first).
func New(outcomes []model.StudentOutcome) *Catalog {
	c := &Catalog{
		outcomes: make([]model.StudentOutcome, len(outcomes)),
		byCode:   make(map[string]int, len(outcomes)),
	}
	for i, o := range outcomes {
		o.Indicators = append([]model.Indicator(nil), o.Indicators...)
		for j := range o.Indicators {
			o.Indicators[j].Levels = append([]model.PerformanceLevel(nil), o.Indicators[j].Levels...)
			levels := o.Indicators[j].Levels
			sort.SliceStable(levels, func(a, b int) bool { return levels[a].SortOrder < levels[b].SortOrder })
		}
		sort.SliceStable(o.Indicators, func(a, b int) bool { return o.Indicators[a].Letter < o.Indicators[b].Letter })
		c.outcomes[i] = o
	}
	sort.SliceStable(c.outcomes, func(a, b int) bool { return c.outcomes[a].SortOrder < c.outcomes[b].SortOrder })
	for i, o := range c.outcomes {
		c.byCode[strings.ToLower(o.Code)] = i
	}
	return c
}

func (c *Catalog) StudentOutcomes(lang string) []Outcome {
	lang = NormalizeLang(lang)
	out := make([]Outcome, 0, len(c.outcomes))
	for _, o := range c.outcomes {
		view := Outcome{
			ID:          o.ID,
			SONumber:    o.Code,
			Title:       pick(lang, o.TitleEn, o.TitleEs),
			Description: pick(lang, o.DescriptionEn, o.DescriptionEs),
			Indicators:  make([]Indicator, 0, len(o.Indicators)),
		}
		for _, ind := range o.Indicators {
			iv := Indicator{
				ID:                ind.ID,
				Letter:            ind.Letter,
				Description:       pick(lang, ind.DescriptionEn, ind.DescriptionEs),
				PerformanceLevels: make([]Level, 0, len(ind.Levels)),
			}
			for _, l := range ind.Levels {
				iv.PerformanceLevels = append(iv.PerformanceLevels, Level{
					ID:         l.ID,
					Name:       pick(lang, l.TitleEn, l.TitleEs),
					Definition: pick(lang, l.DescriptionEn, l.DescriptionEs),
					MinScore:   l.MinScore,
					MaxScore:   l.MaxScore,
				})
			}
			view.Indicators = append(view.Indicators, iv)
		}
		out = append(out, view)
	}
	return out
}

// Structure flattens the outcome named by keyname (case-insensitive) into
// gradable criteria. Unknown or empty keynames give an empty structure.
func (c *Catalog) Structure(keyname, lang string) grading.Structure {
	s := grading.Structure{Keyname: keyname, Criteria: []grading.Criterion{}}
	idx, ok := c.byCode[strings.ToLower(strings.TrimSpace(keyname))]
	if !ok || keyname == "" {
		return s
	}

	lang = NormalizeLang(lang)
	o := c.outcomes[idx]
	s.Title = pick(lang, o.TitleEn, o.TitleEs)
	s.Description = pick(lang, o.DescriptionEn, o.DescriptionEs)
	s.StudentOutcomeID = o.ID
	s.SONumber = o.Code

	for i, ind := range o.Indicators {
		crit := grading.Criterion{
			ID:               ind.ID,
			Indicator:        strings.ToUpper(ind.Letter),
			Code:             strings.ToLower(ind.Letter),
			Description:      pick(lang, ind.DescriptionEn, ind.DescriptionEs),
			StudentOutcomeID: ind.StudentOutcomeID,
			SortOrder:        i + 1,
			Levels:           make([]grading.Level, 0, len(ind.Levels)),
		}
		for _, l := range ind.Levels {
			crit.Levels = append(crit.Levels, grading.Level{
				ID:          l.ID,
				Definition:  pick(lang, l.TitleEn, l.TitleEs),
				Min:         l.MinScore,
				Max:         l.MaxScore,
				Description: pick(lang, l.DescriptionEn, l.DescriptionEs),
				SortOrder:   l.SortOrder,
			})
		}
		s.Criteria = append(s.Criteria, crit)
	}
	return s
}

func (c *Catalog) Options(lang string) []Option {
	lang = NormalizeLang(lang)
	out := make([]Option, 0, len(c.outcomes))
	for _, o := range c.outcomes {
		out = append(out, Option{
			Keyname: strings.ToLower(o.Code),
			Title:   fmt.Sprintf("%s - %s", o.Code, pick(lang, o.TitleEn, o.TitleEs)),
		})
	}
	return out
}

func (c *Catalog) HasKeyname(keyname string) bool {
	_, ok := c.byCode[strings.ToLower(strings.TrimSpace(keyname))]
	return ok
}

// Counts returns the number of outcomes, indicators and levels loaded.
func (c *Catalog) Counts() (outcomes, indicators, levels int) {
	outcomes = len(c.outcomes)
	for _, o := range c.outcomes {
		indicators += len(o.Indicators)
		for _, ind := range o.Indicators {
			levels += len(ind.Levels)
		}
	}
	return
}

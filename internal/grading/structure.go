// Package grading holds the rubric rules that do not touch storage: the
// shape of an active rubric, submission checks, level resolution and the
// final grade formula.
package grading

// Level is one scored performance band of a criterion. The band is closed on
// both ends.
type Level struct {
	ID          uint    `json:"id"`
	Definition  string  `json:"definition"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
	SortOrder   int     `json:"sortorder"`
}

// Contains reports whether score lies inside [Min, Max].
func (l Level) Contains(score float64) bool {
	return score >= l.Min && score <= l.Max
}

// Criterion is one indicator of the active outcome together with its levels.
type Criterion struct {
	ID               uint    `json:"id"`
	Indicator        string  `json:"indicator"`
	Code             string  `json:"code"`
	Description      string  `json:"description"`
	StudentOutcomeID uint    `json:"student_outcome_id"`
	SortOrder        int     `json:"sortorder"`
	Levels           []Level `json:"levels"`
}

// Level returns the criterion level with the given id.
func (c Criterion) Level(id uint) (Level, bool) {
	for _, l := range c.Levels {
		if l.ID == id {
			return l, true
		}
	}
	return Level{}, false
}

// MaxScore is the largest upper bound across the criterion's levels, or 0
// when it has none.
func (c Criterion) MaxScore() float64 {
	max := 0.0
	for _, l := range c.Levels {
		if l.Max > max {
			max = l.Max
		}
	}
	return max
}

// Structure is the flattened rubric a definition grades against. An unknown
// or unset keyname produces a Structure with no criteria.
type Structure struct {
	Keyname          string      `json:"keyname"`
	Title            string      `json:"title,omitempty"`
	Description      string      `json:"description,omitempty"`
	StudentOutcomeID uint        `json:"student_outcome_id,omitempty"`
	SONumber         string      `json:"so_number,omitempty"`
	Criteria         []Criterion `json:"criteria"`
}

func (s Structure) IsEmpty() bool {
	return len(s.Criteria) == 0
}

func (s Structure) IndicatorIDs() []uint {
	ids := make([]uint, 0, len(s.Criteria))
	for _, c := range s.Criteria {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s Structure) Criterion(id uint) (Criterion, bool) {
	for _, c := range s.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

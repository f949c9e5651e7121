package grading

type ResolvedBy string

const (
	ResolvedByLevelID ResolvedBy = "level_id"
	ResolvedByScore   ResolvedBy = "score"
	Unresolved        ResolvedBy = "none"
)

// Resolution is the level shown for a stored evaluation.
type Resolution struct {
	Level    *Level
	By       ResolvedBy
	Conflict bool
}

// ResolveLevel picks the level for a stored evaluation: the stored level id
// when it belongs to c, otherwise the band the score falls into, otherwise
// nothing. The stored id stays authoritative when the score points at a
// different band; Conflict is set so callers can report it.
func ResolveLevel(c Criterion, levelID *uint, score *float64) Resolution {
	if levelID != nil {
		if l, ok := c.Level(*levelID); ok {
			res := Resolution{Level: &l, By: ResolvedByLevelID}
			if score != nil && !l.Contains(*score) {
				res.Conflict = true
			}
			return res
		}
	}

	if score != nil {
		for i := range c.Levels {
			if c.Levels[i].Contains(*score) {
				l := c.Levels[i]
				return Resolution{Level: &l, By: ResolvedByScore}
			}
		}
	}

	return Resolution{By: Unresolved}
}

package grading

func bands(base uint) []Level {
	return []Level{
		{ID: base + 1, Definition: "Inadequate", Min: 0, Max: 2.99, SortOrder: 1},
		{ID: base + 2, Definition: "Fair", Min: 3.00, Max: 3.49, SortOrder: 2},
		{ID: base + 3, Definition: "Good", Min: 3.50, Max: 4.49, SortOrder: 3},
		{ID: base + 4, Definition: "Excellent", Min: 4.50, Max: 5.00, SortOrder: 4},
	}
}

// twoIndicators: A = 1 (levels 11..14), B = 2 (levels 21..24).
func twoIndicators() Structure {
	return Structure{
		Keyname:          "so1",
		StudentOutcomeID: 7,
		Criteria: []Criterion{
			{ID: 1, Indicator: "A", Code: "a", StudentOutcomeID: 7, Levels: bands(10)},
			{ID: 2, Indicator: "B", Code: "b", StudentOutcomeID: 7, Levels: bands(20)},
		},
	}
}

func uintPtr(v uint) *uint { return &v }

func floatPtr(v float64) *float64 { return &v }

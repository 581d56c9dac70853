package dataset

// DefaultSchema returns the column layout of the behavioral fatigue
// dataset. Category codes follow alphabetical label-encoder order.
func DefaultSchema() Schema {
	return Schema{
		Features: []string{
			"hours_awake",
			"decisions_made",
			"task_switches",
			"avg_decision_time",
			"sleep_hours",
			"time_of_day",
			"caffeine_cups",
			"stress_level",
			"error_rate",
			"cognitive_load",
			"decision_fatigue_score",
			"fatigue_level",
		},
		Encodings: map[string]map[string]int{
			"time_of_day": {
				"afternoon": 0,
				"evening":   1,
				"morning":   2,
				"night":     3,
			},
			"fatigue_level": {
				"high":     0,
				"low":      1,
				"moderate": 2,
			},
		},
		LabelColumn:  "recommendation",
		LabelClasses: []string{"continue", "slow_down", "take_break"},
	}
}

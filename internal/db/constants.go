package db

// Option lists for the presentation layer's pickers. The board itself
// accepts arbitrary strings; only input widgets constrain themselves
// to these values.
var (
	ActivityTypes = []string{
		"Badminton",
		"Food Exploration",
		"Board Games",
		"Movies",
		"Cycling",
		"Photography",
		"Other",
	}

	TimeSlots = []string{
		"Right now",
		"This evening",
		"Tomorrow",
		"This weekend",
		"Next week",
	}
)

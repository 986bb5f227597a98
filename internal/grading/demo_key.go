package grading

// Closed demonstration answer key for the bundled sample quiz
// ("World Geography & Climate"). These tables are a fallback for forms
// published without quiz mode; they match on distinctive substrings of
// the exact sample phrasing and are not meant to grade arbitrary
// quizzes. Swap the rungs in NewManualGrader to replace them.

var demoAnswerTable = []tableEntry{
	{questionContains: "capital of france", expected: "A. Paris", points: 1},
	{questionContains: "capital of japan", expected: "C. Tokyo", points: 1},
	{questionContains: "largest planet", expected: "Jupiter", points: 2},
	{questionContains: "longest river", expected: "The Nile", points: 2},
	{questionContains: "equator passes through africa", expected: "True", points: 1},
	{questionContains: "sahara is in south america", expected: "False", points: 1},
}

var demoKeywordEntries = []keywordEntry{
	{
		questionContains: "list the factors",
		keywords: []string{
			"latitude", "altitude", "distance from the sea", "ocean currents",
			"prevailing winds", "relief", "vegetation",
		},
		points: 5,
	},
}

var genericAnswerTable = map[string]string{
	"boiling point of water":   "100",
	"chemical symbol for gold": "au",
	"smallest prime":           "2",
}

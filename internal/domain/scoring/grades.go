package scoring

import "fmt"

// Band is one contiguous score range mapped to a grade label and level.
type Band struct {
	MinScore   int    `json:"minScore"`
	MaxScore   int    `json:"maxScore"`
	GradeText  string `json:"gradeText"`
	GradeLevel int    `json:"gradeLevel"`
}

type Grade struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// NotRated is returned when no band covers the score.
var NotRated = Grade{Text: "Not Rated", Level: 0}

// DefaultBands returns the five global bands used when an organization has
// no custom bands of its own.
func DefaultBands() []Band {
	return []Band{
		{MinScore: 0, MaxScore: 20, GradeText: "Unsatisfactory", GradeLevel: 1},
		{MinScore: 21, MaxScore: 40, GradeText: "Weak", GradeLevel: 2},
		{MinScore: 41, MaxScore: 60, GradeText: "Normal", GradeLevel: 3},
		{MinScore: 61, MaxScore: 80, GradeText: "Good", GradeLevel: 4},
		{MinScore: 81, MaxScore: 100, GradeText: "Excellent", GradeLevel: 5},
	}
}

// ResolveGrade picks the band whose inclusive range covers score.
// Organization bands, when present, replace the defaults entirely; the two
// sets are never merged. A score no band covers resolves to NotRated.
func ResolveGrade(score int, orgBands, defaultBands []Band) Grade {
	bands := orgBands
	if len(bands) == 0 {
		bands = defaultBands
	}
	for _, b := range bands {
		if score >= b.MinScore && score <= b.MaxScore {
			return Grade{Text: b.GradeText, Level: b.GradeLevel}
		}
	}
	return NotRated
}

// ValidateBands rejects malformed band sets before an organization stores
// them. The resolver itself stays permissive and falls back to NotRated.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("at least one grade band is required")
	}
	for i, b := range bands {
		if b.MinScore < 0 || b.MaxScore > 100 {
			return fmt.Errorf("band %d: scores must stay within 0-100", i+1)
		}
		if b.MinScore > b.MaxScore {
			return fmt.Errorf("band %d: min score exceeds max score", i+1)
		}
		if b.GradeText == "" {
			return fmt.Errorf("band %d: grade text is required", i+1)
		}
		for j, other := range bands[:i] {
			if b.MinScore <= other.MaxScore && other.MinScore <= b.MaxScore {
				return fmt.Errorf("band %d overlaps band %d", i+1, j+1)
			}
		}
	}
	return nil
}

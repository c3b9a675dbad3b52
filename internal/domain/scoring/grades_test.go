package scoring

import "testing"

func TestResolveGradeDefaults(t *testing.T) {
	defaults := DefaultBands()

	tests := []struct {
		score     int
		wantText  string
		wantLevel int
	}{
		{0, "Unsatisfactory", 1},
		{20, "Unsatisfactory", 1},
		{21, "Weak", 2},
		{50, "Normal", 3},
		{61, "Good", 4},
		{84, "Excellent", 5},
		{100, "Excellent", 5},
	}

	for _, tc := range tests {
		got := ResolveGrade(tc.score, nil, defaults)
		if got.Text != tc.wantText || got.Level != tc.wantLevel {
			t.Fatalf("ResolveGrade(%d) = %+v, want %s level %d", tc.score, got, tc.wantText, tc.wantLevel)
		}
	}
}

func TestResolveGradeExcellentBoundary(t *testing.T) {
	got := ResolveGrade(84, nil, DefaultBands())
	if got.Level != 5 {
		t.Fatalf("ResolveGrade(84) level = %d, want 5", got.Level)
	}
	got = ResolveGrade(80, nil, DefaultBands())
	if got.Level != 4 {
		t.Fatalf("ResolveGrade(80) level = %d, want 4", got.Level)
	}
}

func TestResolveGradeOrgBandsFullyOverride(t *testing.T) {
	orgBands := []Band{{MinScore: 0, MaxScore: 100, GradeText: "OK", GradeLevel: 3}}

	for _, score := range []int{0, 15, 50, 85, 100} {
		got := ResolveGrade(score, orgBands, DefaultBands())
		if got.Text != "OK" || got.Level != 3 {
			t.Fatalf("ResolveGrade(%d) with org bands = %+v, want OK level 3", score, got)
		}
	}
}

func TestResolveGradeNotRated(t *testing.T) {
	// Custom bands leaving a gap below 50.
	orgBands := []Band{{MinScore: 50, MaxScore: 100, GradeText: "Pass", GradeLevel: 1}}

	got := ResolveGrade(30, orgBands, DefaultBands())
	if got != NotRated {
		t.Fatalf("ResolveGrade(30) = %+v, want NotRated", got)
	}
}

func TestResolveGradeIdempotent(t *testing.T) {
	orgBands := []Band{
		{MinScore: 0, MaxScore: 49, GradeText: "Below", GradeLevel: 1},
		{MinScore: 50, MaxScore: 100, GradeText: "Above", GradeLevel: 2},
	}

	first := ResolveGrade(72, orgBands, DefaultBands())
	second := ResolveGrade(72, orgBands, DefaultBands())
	if first != second {
		t.Fatalf("repeated resolve differs: %+v vs %+v", first, second)
	}
}

func TestValidateBands(t *testing.T) {
	if err := ValidateBands(DefaultBands()); err != nil {
		t.Fatalf("default bands rejected: %v", err)
	}

	tests := []struct {
		name  string
		bands []Band
	}{
		{"empty", nil},
		{"negative min", []Band{{MinScore: -1, MaxScore: 50, GradeText: "A", GradeLevel: 1}}},
		{"max above 100", []Band{{MinScore: 0, MaxScore: 101, GradeText: "A", GradeLevel: 1}}},
		{"min above max", []Band{{MinScore: 60, MaxScore: 40, GradeText: "A", GradeLevel: 1}}},
		{"missing text", []Band{{MinScore: 0, MaxScore: 100, GradeLevel: 1}}},
		{"overlap", []Band{
			{MinScore: 0, MaxScore: 50, GradeText: "A", GradeLevel: 1},
			{MinScore: 50, MaxScore: 100, GradeText: "B", GradeLevel: 2},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateBands(tc.bands); err == nil {
				t.Fatalf("ValidateBands accepted %v", tc.bands)
			}
		})
	}
}

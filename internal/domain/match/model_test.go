package match

import "testing"

func TestIsCompletedStatus(t *testing.T) {
	cases := []struct {
		status string
		ended  bool
		want   bool
	}{
		{"India won by 6 wickets", false, true},
		{"Match tied", false, true},
		{"Match abandoned due to rain", false, true},
		{"No result", false, true},
		{"NO RESULT", false, true},
		{"Live", false, false},
		{"Stumps, day 3", false, false},
		{"", true, true},
		{"", false, false},
	}
	for _, tc := range cases {
		if got := IsCompletedStatus(tc.status, tc.ended); got != tc.want {
			t.Fatalf("IsCompletedStatus(%q, %v) = %v, want %v", tc.status, tc.ended, got, tc.want)
		}
	}
}

func TestIsNonPlayerRow(t *testing.T) {
	filler := []string{
		"",
		"   ",
		"Extras",
		"extras (b 4, lb 2)",
		"TOTAL",
		"Total: 287/6",
		"Did not bat: R Jadeja",
		"Fall of wickets",
		"Yet to bat",
	}
	for _, name := range filler {
		if !IsNonPlayerRow(name) {
			t.Fatalf("expected %q to be a filler row", name)
		}
	}

	players := []string{"V Kohli", "Mitchell Starc", "T Head (c)"}
	for _, name := range players {
		if IsNonPlayerRow(name) {
			t.Fatalf("expected %q to be a batter", name)
		}
	}
}

func TestSortBowlingForDisplayDoesNotMutateSource(t *testing.T) {
	source := []BowlingEntry{
		{Name: "A", Wickets: 1, Economy: 6.2},
		{Name: "B", Wickets: 3, Economy: 5.1},
		{Name: "C", Wickets: 3, Economy: 4.0},
		{Name: "D", Wickets: 0, Economy: 9.8},
	}

	sorted := SortBowlingForDisplay(source)

	wantOrder := []string{"C", "B", "A", "D"}
	for i, name := range wantOrder {
		if sorted[i].Name != name {
			t.Fatalf("position %d: got %s, want %s", i, sorted[i].Name, name)
		}
	}
	if source[0].Name != "A" || source[3].Name != "D" {
		t.Fatalf("source slice was reordered: %v", source)
	}
}

package org

import "testing"

func TestWouldCreateCycle(t *testing.T) {
	// a reports to b, b reports to c.
	graph := ManagerGraph{"a": "b", "b": "c"}

	tests := []struct {
		name      string
		userID    string
		managerID string
		want      bool
	}{
		{"self assignment", "a", "a", true},
		{"direct cycle", "b", "a", true},
		{"transitive cycle", "c", "a", true},
		{"valid new root manager", "a", "d", false},
		{"valid chain extension", "d", "a", false},
		{"clearing manager", "a", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WouldCreateCycle(graph, tc.userID, tc.managerID); got != tc.want {
				t.Fatalf("WouldCreateCycle(%s -> %s) = %v, want %v", tc.userID, tc.managerID, got, tc.want)
			}
		})
	}
}

func TestWouldCreateCycleTerminatesOnCorruptGraph(t *testing.T) {
	// x and y already point at each other; the walk must still terminate.
	graph := ManagerGraph{"x": "y", "y": "x"}

	if WouldCreateCycle(graph, "z", "x") {
		t.Fatal("unrelated assignment flagged as circular")
	}
}

package org

// ManagerGraph maps each profile id to its manager's profile id. Roots have
// no entry.
type ManagerGraph map[string]string

// WouldCreateCycle reports whether assigning managerID as userID's manager
// would close a loop in the reporting chain. It walks the ancestor chain
// upward from managerID; if userID reappears, the assignment is circular.
// The visited set guards against loops already present in stored data.
func WouldCreateCycle(graph ManagerGraph, userID, managerID string) bool {
	if managerID == "" {
		return false
	}
	if userID == managerID {
		return true
	}

	visited := map[string]bool{}
	current := managerID
	for current != "" {
		if current == userID {
			return true
		}
		if visited[current] {
			return false
		}
		visited[current] = true
		current = graph[current]
	}
	return false
}

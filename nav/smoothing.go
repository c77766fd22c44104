package nav

// SmoothPath shortcuts a path by greedy string pulling: from each waypoint
// it jumps straight to the farthest later waypoint reachable by a
// collision-free segment. The result never has more waypoints than the
// input and never gets longer, since every shortcut replaces a polyline
// with its chord.
func SmoothPath(path Path, m *PlanningMap) Path {
	if len(path) <= 2 {
		return path
	}

	smoothed := Path{path[0]}
	i := 0
	for i < len(path)-1 {
		advanced := false
		for j := len(path) - 1; j > i; j-- {
			if j == i+1 || m.IsCollisionFree(path[i], path[j]) {
				smoothed = append(smoothed, path[j])
				i = j
				advanced = true
				break
			}
		}
		if !advanced {
			break
		}
	}
	return smoothed
}

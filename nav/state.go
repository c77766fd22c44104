package nav

import (
	"sync"
	"time"
)

// RobotState is the latest published navigation state of one robot. It is a
// complete post-cycle snapshot: callers never see a pose from one SLAM
// cycle paired with a map or path from another.
type RobotState struct {
	ID         string    `json:"id"`
	Pose       Pose      `json:"pose"`
	Confidence float64   `json:"confidence"`
	Path       Path      `json:"path,omitempty"`
	Velocity   Velocity  `json:"velocity"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// StateTracker holds per-robot navigation snapshots behind a lock. The nav
// pipeline itself is single-threaded per robot; the tracker is the one
// place where MQTT callbacks and readers meet.
type StateTracker struct {
	mu     sync.RWMutex
	robots map[string]*RobotState
}

// NewStateTracker creates an empty tracker.
func NewStateTracker() *StateTracker {
	return &StateTracker{robots: make(map[string]*RobotState)}
}

func (st *StateTracker) get(id string) *RobotState {
	if s, ok := st.robots[id]; ok {
		return s
	}
	s := &RobotState{ID: id}
	st.robots[id] = s
	return s
}

// UpdatePose records the localization estimate for a robot.
func (st *StateTracker) UpdatePose(id string, pose Pose, confidence float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := st.get(id)
	s.Pose = pose
	s.Confidence = confidence
	s.LastUpdate = time.Now()
}

// UpdatePath records the latest planned path for a robot. A nil path clears
// the previous plan.
func (st *StateTracker) UpdatePath(id string, path Path) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := st.get(id)
	s.Path = path
	s.LastUpdate = time.Now()
}

// UpdateVelocity records the last commanded velocity for a robot.
func (st *StateTracker) UpdateVelocity(id string, v Velocity) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := st.get(id)
	s.Velocity = v
	s.LastUpdate = time.Now()
}

// Get returns a copy of one robot's state.
func (st *StateTracker) Get(id string) (RobotState, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.robots[id]
	if !ok {
		return RobotState{}, false
	}
	return *s, true
}

// All returns copies of every tracked robot state.
func (st *StateTracker) All() []RobotState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]RobotState, 0, len(st.robots))
	for _, s := range st.robots {
		out = append(out, *s)
	}
	return out
}

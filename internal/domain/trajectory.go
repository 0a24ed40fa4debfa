package domain

// Trajectory is one simulated wealth path and its derived facts.
type Trajectory struct {
	Path        []float64 // len = months+1
	Returns     []float64 // len = months
	Final       float64
	MaxDrawdown float64
	TargetHit   int // first period with wealth >= target, months+1 if never
	Depleted    bool
}

// Ensemble holds the per-trajectory outputs of one run in parallel slices.
// Paths is either complete or a bounded prefix of the trajectories, see RetainedPaths.
type Ensemble struct {
	Strategy     Strategy
	Months       int
	Finals       []float64
	Returns      [][]float64
	MaxDrawdowns []float64
	TargetHits   []int
	Depleted     []bool
	Paths        [][]float64
}

// Size returns the number of trajectories.
func (e *Ensemble) Size() int {
	return len(e.Finals)
}

// RetainedPaths returns how many full paths were kept.
func (e *Ensemble) RetainedPaths() int {
	return len(e.Paths)
}

// NeverHit is the target-hit sentinel for a horizon of months periods.
func NeverHit(months int) int {
	return months + 1
}

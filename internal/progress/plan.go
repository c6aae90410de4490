package progress

import "time"

// ceiling is the highest simulated progress. Only the real result completes
// the bar.
const ceiling = 99.0

// Update is one simulated progress reading.
type Update struct {
	Stage      string
	Progress   float64
	StageIndex int
	Elapsed    time.Duration
	Remaining  time.Duration
}

// Plan spreads an estimated total over the analysis stages.
type Plan struct {
	stages []Stage
	// ends holds the cumulative end offset of each stage.
	ends  []time.Duration
	Total time.Duration
}

// NewPlan divides total between stages in proportion to their shares.
func NewPlan(total time.Duration, stages []Stage) Plan {
	if len(stages) == 0 {
		stages = DefaultStages
	}

	var sum float64
	for _, s := range stages {
		sum += s.Share
	}

	p := Plan{
		Total:  total,
		stages: stages,
		ends:   make([]time.Duration, len(stages)),
	}

	var acc float64

	for i, s := range stages {
		acc += s.Share
		p.ends[i] = time.Duration(float64(total) * acc / sum)
	}

	return p
}

// Stages returns the stages of the plan.
func (p Plan) Stages() []Stage {
	return p.stages
}

// At returns the progress reading for the given elapsed time. Progress is
// proportional to elapsed time and held below 100; the stage advances once
// elapsed time passes the end of the current stage's share.
func (p Plan) At(elapsed time.Duration) Update {
	if elapsed < 0 {
		elapsed = 0
	}

	u := Update{
		Elapsed:   elapsed,
		Remaining: max(p.Total-elapsed, 0),
	}

	if p.Total > 0 {
		u.Progress = min(ceiling, 100*float64(elapsed)/float64(p.Total))
	}

	u.StageIndex = len(p.stages) - 1

	for i, end := range p.ends {
		if elapsed < end {
			u.StageIndex = i
			break
		}
	}

	u.Stage = p.stages[u.StageIndex].Name

	return u
}

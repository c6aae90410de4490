package progress

import (
	"sync"
	"time"
)

// DefaultInterval is the tick interval of simulated progress.
const DefaultInterval = 100 * time.Millisecond

// Estimator produces simulated progress readings on a fixed interval.
type Estimator struct {
	Clock    Clock
	Stages   []Stage
	Model    Model
	Interval time.Duration
}

// New returns an Estimator. A nil clock uses the wall clock and a zero
// interval uses DefaultInterval.
func New(m Model, clk Clock, interval time.Duration) *Estimator {
	if clk == nil {
		clk = RealClock
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Estimator{
		Model:    m,
		Clock:    clk,
		Interval: interval,
		Stages:   DefaultStages,
	}
}

// Plan computes the estimate for s once and spreads it over the stages.
func (e *Estimator) Plan(s Signals) Plan {
	return NewPlan(e.Model.Estimate(s), e.Stages)
}

// Ticking is a running simulation.
type Ticking struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Start begins ticking against plan and calls fn with each reading until
// Stop is called. Readings never decrease. fn runs on the ticking goroutine
// and must not call Stop.
func (e *Estimator) Start(plan Plan, fn func(Update)) *Ticking {
	t := &Ticking{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	start := e.Clock.Now()
	ticker := e.Clock.NewTicker(e.Interval)

	go func() {
		defer close(t.done)
		defer ticker.Stop()

		var last float64

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C():
				u := plan.At(e.Clock.Now().Sub(start))

				if u.Progress < last {
					u.Progress = last
				}

				last = u.Progress

				select {
				case <-t.stop:
					return
				default:
					fn(u)
				}
			}
		}
	}()

	return t
}

// Stop ends the simulation and waits for the ticking goroutine to exit, so
// no reading is delivered after Stop returns. It is safe to call more than
// once.
func (t *Ticking) Stop() {
	t.once.Do(func() {
		close(t.stop)
	})

	<-t.done
}

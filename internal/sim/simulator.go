package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	InitialProgress = 20.0
	NormalStep      = 0.3
	SlowStep        = 0.1
	DelayThreshold  = 0.8

	delayBandLow  = 45.0
	delayBandHigh = 55.0
	recoveredMark = 60.0
)

// Phase describes where the trip is in the delay model.
type Phase string

const (
	PhaseCruising        Phase = "cruising"
	PhasePossiblyDelayed Phase = "possibly_delayed"
	PhaseDelayed         Phase = "delayed"
	PhaseRecovering      Phase = "recovering"
)

// RandSource supplies uniform draws in [0,1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

type State struct {
	Progress float64
	Delayed  bool
	Phase    Phase
	Ticks    uint64
}

// Simulator advances trip progress on a fixed cadence. Progress loops back to
// zero after reaching 100; the only writer is Tick.
type Simulator struct {
	interval time.Duration
	rnd      RandSource
	onTick   func(State)

	mu           sync.Mutex
	progress     float64
	delayed      bool
	slowedByDraw bool
	ticks        uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSimulator returns a simulator at the initial progress. A nil rnd falls
// back to a time-seeded source. onTick, if set, is called after every tick
// with the new state, from the ticking goroutine.
func NewSimulator(interval time.Duration, rnd RandSource, onTick func(State)) *Simulator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		interval: interval,
		rnd:      rnd,
		onTick:   onTick,
		progress: InitialProgress,
	}
}

// Tick applies one step of the delay model and returns the resulting state.
func (s *Simulator) Tick() State {
	s.mu.Lock()
	s.step()
	st := s.snapshotLocked()
	s.mu.Unlock()

	if s.onTick != nil {
		s.onTick(st)
	}
	return st
}

func (s *Simulator) step() {
	s.ticks++
	s.slowedByDraw = false
	p := s.progress
	switch {
	case p >= 100:
		// Loop; the delay flag carries over until the recovered mark clears it.
		s.progress = 0
		return
	case p > delayBandLow && p < delayBandHigh && s.rnd.Float64() > DelayThreshold:
		s.delayed = true
		s.slowedByDraw = true
		s.progress = p + SlowStep
		return
	}
	if p > recoveredMark {
		s.delayed = false
	}
	s.progress = p + NormalStep
}

func (s *Simulator) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() State {
	return State{
		Progress: s.progress,
		Delayed:  s.delayed,
		Phase:    s.phaseLocked(),
		Ticks:    s.ticks,
	}
}

func (s *Simulator) phaseLocked() Phase {
	switch {
	case s.slowedByDraw:
		return PhaseDelayed
	case s.progress > delayBandLow && s.progress < delayBandHigh:
		return PhasePossiblyDelayed
	case s.delayed:
		return PhaseRecovering
	default:
		return PhaseCruising
	}
}

// Start launches the ticking goroutine. It stops when ctx is cancelled or
// Stop is called. Calling Start on a running simulator is a no-op.
func (s *Simulator) Start(parent context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		tick := time.NewTicker(s.interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				s.Tick()
			}
		}
	}()
}

// Stop cancels the ticking goroutine and waits for it to exit. No tick runs
// after Stop returns.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

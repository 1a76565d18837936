package anim

import (
	"context"
	"fmt"
	stdmath "math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Policy decides how elapsed time maps onto track time.
type Policy int

const (
	PolicyOnce     Policy = iota // Play to the end, then drop all targets
	PolicyLoop                   // Wrap around to the start
	PolicyPingPong               // Alternate forward and backward passes
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyOnce:
		return "once"
	case PolicyLoop:
		return "loop"
	case PolicyPingPong:
		return "pingpong"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParsePolicy converts "once", "loop" or "pingpong" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "once":
		return PolicyOnce, nil
	case "loop":
		return PolicyLoop, nil
	case "pingpong", "ping-pong", "ping_pong":
		return PolicyPingPong, nil
	default:
		return PolicyLoop, fmt.Errorf("unknown playback policy %q", s)
	}
}

// State is the sequencer's run state.
type State int

const (
	StateStopped State = iota
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Target is anything the sequencer can drive. Animator implements it.
type Target interface {
	// Duration returns the target's length in seconds.
	Duration() float32
	// Update poses the target at a track time in seconds.
	Update(seconds float32)
}

// StepObserver is notified after each sequencer step.
type StepObserver interface {
	StepCompleted(trackTime float32, targets int, took time.Duration)
	TargetsCleared()
}

type nopObserver struct{}

func (nopObserver) StepCompleted(float32, int, time.Duration) {}
func (nopObserver) TargetsCleared()                           {}

// ListenerID identifies a registered pose listener.
type ListenerID uuid.UUID

// String returns the id in canonical UUID form.
func (id ListenerID) String() string {
	return uuid.UUID(id).String()
}

type listener struct {
	id ListenerID
	fn func()
}

// Sequencer owns global play time and drives registered targets.
//
// Start runs a background ticker (see WithTickInterval) that calls Step with
// the measured time since the previous tick. Step may also be called directly.
// Listeners run after all targets are updated, outside the sequencer's lock.
type Sequencer struct {
	mu sync.Mutex

	clock    Clock
	tick     time.Duration
	log      *zap.Logger
	observer StepObserver

	policy      Policy
	state       State
	startTime   time.Time
	currentTime time.Time
	maxEndTime  float32

	targets   []Target
	listeners []listener

	cancel     context.CancelFunc
	generation uint64
}

// NewSequencer creates a stopped sequencer.
func NewSequencer(opts ...Option) *Sequencer {
	o := buildOptions(opts)
	now := o.clock.Now()
	return &Sequencer{
		clock:       o.clock,
		tick:        o.tick,
		log:         o.log,
		observer:    o.observer,
		policy:      o.policy,
		startTime:   now,
		currentTime: now,
	}
}

// Register adds a target. Registering the same target twice has no effect.
func (s *Sequencer) Register(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.targets {
		if existing == t {
			return
		}
	}
	s.targets = append(s.targets, t)
	if d := t.Duration(); d > s.maxEndTime {
		s.maxEndTime = d
	}
}

// Unregister removes a target and recomputes the end time.
func (s *Sequencer) Unregister(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.targets[:0]
	for _, existing := range s.targets {
		if existing != t {
			kept = append(kept, existing)
		}
	}
	for i := len(kept); i < len(s.targets); i++ {
		s.targets[i] = nil
	}
	s.targets = kept
	s.recomputeEndTime()
}

func (s *Sequencer) recomputeEndTime() {
	s.maxEndTime = 0
	for _, t := range s.targets {
		if d := t.Duration(); d > s.maxEndTime {
			s.maxEndTime = d
		}
	}
}

// Targets returns the number of registered targets.
func (s *Sequencer) Targets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

// MaxEndTime returns the longest registered duration in seconds.
func (s *Sequencer) MaxEndTime() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEndTime
}

// SetPolicy sets the playback policy.
func (s *Sequencer) SetPolicy(p Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

// Policy returns the playback policy.
func (s *Sequencer) Policy() Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// State returns whether the sequencer is running.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns the seconds between the start anchor and the current time.
func (s *Sequencer) Elapsed() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float32(s.currentTime.Sub(s.startTime).Seconds())
}

// SetBindPose forwards to every registered target that supports bind pose display.
func (s *Sequencer) SetBindPose(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.targets {
		if bp, ok := t.(interface{ SetBindPose(bool) }); ok {
			bp.SetBindPose(show)
		}
	}
}

// AddListener registers fn to be called once after every step.
func (s *Sequencer) AddListener(fn func()) ListenerID {
	id := ListenerID(uuid.New())
	s.mu.Lock()
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()
	return id
}

// RemoveListener unregisters a listener. It returns false if id is unknown.
func (s *Sequencer) RemoveListener(id ListenerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Start anchors the start time to now and begins ticking. It does nothing if already running.
// The ticker stops on Stop or when ctx is done.
func (s *Sequencer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return
	}

	now := s.clock.Now()
	s.startTime = now
	s.currentTime = now
	s.state = StateRunning
	s.generation++

	s.log.Info("sequencer started",
		zap.Stringer("policy", s.policy),
		zap.Int("targets", len(s.targets)),
		zap.Float32("max_end_time", s.maxEndTime),
		zap.Duration("tick", s.tick))

	if s.tick <= 0 {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.run(runCtx, s.generation)
}

// Stop halts ticking. Targets and listeners stay registered.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return
	}
	s.state = StateStopped
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.log.Info("sequencer stopped", zap.Float32("elapsed", float32(s.currentTime.Sub(s.startTime).Seconds())))
}

// Reset re-anchors the start time to now and performs a zero-length step,
// so listeners observe the initial pose.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	now := s.clock.Now()
	s.startTime = now
	s.currentTime = now
	s.mu.Unlock()

	s.Step(0)
}

func (s *Sequencer) run(ctx context.Context, generation uint64) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	last := s.clock.Now()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.generation == generation && s.state == StateRunning {
				s.state = StateStopped
				s.cancel = nil
			}
			s.mu.Unlock()
			return

		case <-ticker.C:
			now := s.clock.Now()
			delta := now.Sub(last)
			last = now

			s.mu.Lock()
			live := s.generation == generation && s.state == StateRunning
			s.mu.Unlock()
			if !live {
				return
			}
			s.Step(delta)
		}
	}
}

// Step advances the current time by delta, maps elapsed time through the
// policy, updates every target and then notifies listeners.
func (s *Sequencer) Step(delta time.Duration) {
	began := time.Now()

	s.mu.Lock()
	s.currentTime = s.currentTime.Add(delta)
	elapsed := float32(s.currentTime.Sub(s.startTime).Seconds())

	trackTime, ok, cleared := s.trackTime(elapsed)
	if !ok {
		s.mu.Unlock()
		if cleared {
			s.observer.TargetsCleared()
		}
		return
	}

	for _, t := range s.targets {
		t.Update(trackTime)
	}
	count := len(s.targets)
	listeners := make([]listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn()
	}
	s.observer.StepCompleted(trackTime, count, time.Since(began))
}

// trackTime maps elapsed seconds to a track time under the current policy.
// ok is false when nothing should be sampled; cleared reports that PolicyOnce
// just ran past the end and dropped its targets. Callers hold s.mu.
func (s *Sequencer) trackTime(elapsed float32) (t float32, ok, cleared bool) {
	end := float64(s.maxEndTime)
	if end <= 0 {
		return 0, false, false
	}
	e := float64(elapsed)

	switch s.policy {
	case PolicyOnce:
		if elapsed > s.maxEndTime {
			s.log.Debug("playback finished, clearing targets",
				zap.Int("targets", len(s.targets)),
				zap.Float32("elapsed", elapsed))
			s.targets = nil
			s.maxEndTime = 0
			return 0, false, true
		}
		return elapsed, true, false

	case PolicyPingPong:
		interval := stdmath.Floor(e / end)
		loop := stdmath.Mod(e, end)
		if int64(interval)%2 != 0 {
			return float32(end - loop), true, false
		}
		return float32(loop), true, false

	default:
		return float32(stdmath.Mod(e, end)), true, false
	}
}

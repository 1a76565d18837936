package anim

import (
	"time"

	"go.uber.org/zap"
)

// DefaultTickInterval is the sequencer's background tick period.
const DefaultTickInterval = 10 * time.Millisecond

type options struct {
	log      *zap.Logger
	clock    Clock
	tick     time.Duration
	policy   Policy
	observer StepObserver
}

func defaultOptions() options {
	return options{
		log:      zap.NewNop(),
		clock:    SystemClock{},
		tick:     DefaultTickInterval,
		policy:   PolicyLoop,
		observer: nopObserver{},
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures hierarchies, completers, samplers, animators and sequencers.
// Components ignore options that do not apply to them.
type Option func(*options)

// WithLogger sets the logger. A nil logger is replaced by a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.log = l
	}
}

// WithClock sets the time source used by the sequencer.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithTickInterval sets the sequencer's background tick period.
// Zero disables the background ticker; the caller then drives Step itself.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.tick = d
		}
	}
}

// WithPolicy sets the sequencer's initial playback policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithObserver sets a hook notified after every sequencer step.
func WithObserver(obs StepObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

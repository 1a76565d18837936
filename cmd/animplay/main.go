// Package main is the entry point for animplay, a headless skeletal animation player.
//
// animplay loads a rig, binds every track to its own copy of the skeleton and
// drives them all from one sequencer, logging skinning matrices at debug level.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/internal/metrics"
	"github.com/Faultbox/midgard-anim/internal/rig"
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== animplay ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("playback failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("playback finished")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := rig.Load(cfg.Rig.Path, logger.Named("rig"))
	if err != nil {
		return err
	}
	if len(r.Tracks) == 0 {
		return fmt.Errorf("rig %s has no tracks", cfg.Rig.Path)
	}

	skeleton, err := r.Hierarchy(anim.WithLogger(logger.Named("hierarchy")))
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return err
	}

	policy, err := cfg.ParsePolicy()
	if err != nil {
		return err
	}
	seq := anim.NewSequencer(
		anim.WithLogger(logger.Named("sequencer")),
		anim.WithPolicy(policy),
		anim.WithTickInterval(cfg.Playback.TickInterval),
		anim.WithObserver(recorder),
	)

	animators := make([]*anim.Animator, 0, len(r.Tracks))
	for _, tr := range r.Tracks {
		a := anim.NewAnimator(skeleton.Clone(), tr,
			anim.WithLogger(logger.Named("animator").With(zap.String("track", tr.Name))))
		a.SetDepthLimit(cfg.EffectiveDepthLimit())
		animators = append(animators, a)
		seq.Register(a)
	}
	seq.SetBindPose(cfg.Skeleton.ShowBindPose)

	dumpLog := logger.Named("skin")
	if dumpLog.Core().Enabled(zap.DebugLevel) {
		var buf []math.Mat4
		seq.AddListener(func() {
			for _, a := range animators {
				buf = a.CopySkinMatrices(buf[:0])
				dumpLog.Debug("skinning matrices",
					zap.String("track", a.Track().Name),
					zap.Float32("time", a.LastTime()),
					zap.Any("matrices", buf))
			}
		})
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, registry, logger.Named("metrics")); err != nil {
				logger.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	if cfg.Playback.RunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Playback.RunFor)
		defer cancel()
	}

	seq.Reset()
	seq.Start(ctx)
	if cfg.Playback.TickInterval <= 0 {
		// Without a background ticker, step by hand at a fixed rate.
		manualTicks(ctx, seq)
	}
	<-ctx.Done()
	seq.Stop()

	logger.Info("sequencer done",
		zap.Int("tracks", len(animators)),
		zap.Float32("elapsed", seq.Elapsed()))
	return nil
}

func manualTicks(ctx context.Context, seq *anim.Sequencer) {
	ticker := time.NewTicker(anim.DefaultTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq.Step(anim.DefaultTickInterval)
		}
	}
}

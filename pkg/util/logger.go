package util

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TimeLogger logs lap times of a multi-phase computation,
// e.g. the agglomerate/eigensolve/weight/assemble phases of a restrictor build.
type TimeLogger struct {
	Timer    func() time.Time
	Logger   zerolog.Logger
	LogStart time.Time
	LapStart time.Time
	laps     map[string]time.Duration
}

func NewTimeLogger(timer func() time.Time, logger zerolog.Logger) *TimeLogger {
	now := timer()
	logger.Trace().Time("now", now).Msg("TimeLogger started")
	return &TimeLogger{
		Timer:    timer,
		Logger:   logger,
		LogStart: now,
		LapStart: now,
		laps:     make(map[string]time.Duration),
	}
}

func NewWallTimeLogger(logger zerolog.Logger) *TimeLogger {
	return NewTimeLogger(time.Now, logger)
}

// Log finishes the current lap under the given name.
func (p *TimeLogger) Log(name string) {
	now := p.Timer()
	lapTime := now.Sub(p.LapStart)
	cumulative := now.Sub(p.LogStart)
	p.Logger.Trace().
		Str("lap", name).
		Time("now", now).
		Dur("lapTime", lapTime).
		Dur("cumulative", cumulative).
		Msg("finished lap")
	p.laps[name] += lapTime
	p.LapStart = now
}

// Lap returns the accumulated duration of the named lap.
func (p *TimeLogger) Lap(name string) time.Duration { return p.laps[name] }

// Total returns the time elapsed since the logger started.
func (p *TimeLogger) Total() time.Duration {
	return p.LapStart.Sub(p.LogStart)
}

// RankLogger returns the context logger tagged with a rank number.
func RankLogger(ctx context.Context, rank int) zerolog.Logger {
	return zerolog.Ctx(ctx).With().Int("rank", rank).Logger()
}

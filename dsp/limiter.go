// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
)

// LimiterID identifies the lookahead limiter capability.
var LimiterID = uuid.MustParse("9b3c7d2a-1e4f-4a6b-8c0d-2e3f4a5b6c05")

var limiterParams = paramSet{
	{Name: "threshold_db", Description: "ceiling in dBFS", Default: -0.1, Min: -24, Max: 0, Step: 0.1},
	{Name: "release_ms", Description: "gain recovery time", Default: 100, Min: 1, Max: 5000, Step: 1},
	{Name: "lookahead_ms", Description: "detector lead, adds the same latency", Default: 3, Min: 0, Max: 200, Step: 0.1},
}

// Limiter is a per-channel lookahead peak limiter. Its lookahead delays the
// program, so LatencyFrames is non-zero once instantiated.
type Limiter struct {
	binding
	thresholdDB float64
	releaseMs   float64
	lookaheadMs float64

	lims []*dynamics.LookaheadLimiter
	buf  []float64
}

// NewLimiter returns a limiter with default parameters.
func NewLimiter() *Limiter {
	return &Limiter{
		thresholdDB: limiterParams[0].Default,
		releaseMs:   limiterParams[1].Default,
		lookaheadMs: limiterParams[2].Default,
	}
}

func (*Limiter) Name() string                 { return "limiter" }
func (*Limiter) NeedsTrackChangeNotice() bool { return false }

func (l *Limiter) Reset() {
	l.unbind()
	l.lims = nil
}

func (l *Limiter) Instantiate(rate, ch int) bool {
	l.lims = nil
	if !l.bind(rate, ch) {
		return false
	}
	lims := make([]*dynamics.LookaheadLimiter, ch)
	for i := range lims {
		lim, err := dynamics.NewLookaheadLimiter(float64(rate))
		if err != nil {
			l.unbind()
			return false
		}
		if err := configureLimiter(lim, l.thresholdDB, l.releaseMs, l.lookaheadMs); err != nil {
			l.unbind()
			return false
		}
		lims[i] = lim
	}
	l.lims = lims
	return true
}

func configureLimiter(lim *dynamics.LookaheadLimiter, thresholdDB, releaseMs, lookaheadMs float64) error {
	if err := lim.SetThreshold(thresholdDB); err != nil {
		return err
	}
	if err := lim.SetRelease(releaseMs); err != nil {
		return err
	}
	return lim.SetLookahead(lookaheadMs)
}

func (l *Limiter) LatencyFrames() int {
	if l.rate <= 0 {
		return 0
	}
	return int(math.Round(l.lookaheadMs * float64(l.rate) / 1000))
}

func (l *Limiter) Process(c *audio.Chunk, abort *audio.AbortToken) {
	if !l.accepts(c, abort) || len(l.lims) != c.Channels {
		return
	}
	planar(c, &l.buf, func(ch int, buf []float64) {
		l.lims[ch].ProcessInPlace(buf)
	})
}

func (*Limiter) Params() []Param { return limiterParams }

func (l *Limiter) Value(name string) float64 {
	switch name {
	case "threshold_db":
		return l.thresholdDB
	case "release_ms":
		return l.releaseMs
	case "lookahead_ms":
		return l.lookaheadMs
	}
	return 0
}

func (l *Limiter) SetParam(name string, v float64) error {
	if err := limiterParams.check(l.Name(), name, v); err != nil {
		return err
	}
	switch name {
	case "threshold_db":
		l.thresholdDB = v
	case "release_ms":
		l.releaseMs = v
	case "lookahead_ms":
		l.lookaheadMs = v
	}
	for _, lim := range l.lims {
		if err := configureLimiter(lim, l.thresholdDB, l.releaseMs, l.lookaheadMs); err != nil {
			return err
		}
	}
	return nil
}

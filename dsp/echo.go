// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"github.com/cwbudde/algo-dsp/dsp/effects"
	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
)

// EchoID identifies the echo effect capability.
var EchoID = uuid.MustParse("9b3c7d2a-1e4f-4a6b-8c0d-2e3f4a5b6c06")

var echoParams = paramSet{
	{Name: "time", Description: "delay in seconds", Default: 0.25, Min: 0.001, Max: 2, Step: 0.001},
	{Name: "feedback", Description: "amount fed back into the line", Default: 0.35, Min: 0, Max: 0.99, Step: 0.01},
	{Name: "mix", Description: "wet share of the output", Default: 0.25, Min: 0, Max: 1, Step: 0.01},
}

// Echo is a feedback delay with a dry/wet mix, one line per channel. The dry
// signal is not delayed, so it reports no latency.
type Echo struct {
	binding
	time     float64
	feedback float64
	mix      float64

	lines []*effects.Delay
	buf   []float64
}

// NewEcho returns an echo with default parameters.
func NewEcho() *Echo {
	return &Echo{
		time:     echoParams[0].Default,
		feedback: echoParams[1].Default,
		mix:      echoParams[2].Default,
	}
}

func (*Echo) Name() string                 { return "echo" }
func (*Echo) LatencyFrames() int           { return 0 }
func (*Echo) NeedsTrackChangeNotice() bool { return false }

func (e *Echo) Reset() {
	e.unbind()
	e.lines = nil
}

func (e *Echo) Instantiate(rate, ch int) bool {
	e.lines = nil
	if !e.bind(rate, ch) {
		return false
	}
	lines := make([]*effects.Delay, ch)
	for i := range lines {
		d, err := effects.NewDelay(float64(rate))
		if err == nil {
			err = configureDelay(d, e.time, e.feedback, e.mix)
		}
		if err != nil {
			e.unbind()
			return false
		}
		lines[i] = d
	}
	e.lines = lines
	return true
}

func configureDelay(d *effects.Delay, time, feedback, mix float64) error {
	if err := d.SetTime(time); err != nil {
		return err
	}
	if err := d.SetFeedback(feedback); err != nil {
		return err
	}
	return d.SetMix(mix)
}

func (e *Echo) Process(c *audio.Chunk, abort *audio.AbortToken) {
	if !e.accepts(c, abort) || len(e.lines) != c.Channels {
		return
	}
	planar(c, &e.buf, func(ch int, buf []float64) {
		e.lines[ch].ProcessInPlace(buf)
	})
}

func (*Echo) Params() []Param { return echoParams }

func (e *Echo) Value(name string) float64 {
	switch name {
	case "time":
		return e.time
	case "feedback":
		return e.feedback
	case "mix":
		return e.mix
	}
	return 0
}

func (e *Echo) SetParam(name string, v float64) error {
	if err := echoParams.check(e.Name(), name, v); err != nil {
		return err
	}
	switch name {
	case "time":
		e.time = v
	case "feedback":
		e.feedback = v
	case "mix":
		e.mix = v
	}
	for _, line := range e.lines {
		if err := configureDelay(line, e.time, e.feedback, e.mix); err != nil {
			return err
		}
	}
	return nil
}

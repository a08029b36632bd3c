// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"github.com/ik5/audhost/audio"
)

// RecordingEffect is a pass-through effect that records how it was driven.
type RecordingEffect struct {
	EffectName   string
	Latency      int
	WantsNotice  bool
	RefuseFormat bool // Instantiate reports false when set
	Gain         float32

	Instantiations [][2]int // (rate, channels) pairs
	Processed      int      // chunks seen
	Resets         int
	TrackChanges   int
	Log            *[]string // shared call order, may be nil
}

func (e *RecordingEffect) record(ev string) {
	if e.Log != nil {
		*e.Log = append(*e.Log, e.EffectName+":"+ev)
	}
}

func (e *RecordingEffect) Name() string { return e.EffectName }

func (e *RecordingEffect) Reset() {
	e.Resets++
	e.record("reset")
}

func (e *RecordingEffect) Instantiate(sampleRate, channels int) bool {
	e.Instantiations = append(e.Instantiations, [2]int{sampleRate, channels})
	e.record("instantiate")
	return !e.RefuseFormat
}

func (e *RecordingEffect) Process(c *audio.Chunk, abort *audio.AbortToken) {
	if abort.Aborted() || c.Empty() {
		return
	}
	e.Processed++
	e.record("process")
	if e.Gain != 0 {
		c.Scale(e.Gain)
	}
}

func (e *RecordingEffect) LatencyFrames() int { return e.Latency }

func (e *RecordingEffect) NeedsTrackChangeNotice() bool { return e.WantsNotice }

func (e *RecordingEffect) TrackChanged() {
	e.TrackChanges++
	e.record("track")
}

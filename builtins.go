// SPDX-License-Identifier: EPL-2.0

package audhost

import (
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/dsp"
	"github.com/ik5/audhost/formats/aiff"
	"github.com/ik5/audhost/formats/mp3"
	"github.com/ik5/audhost/formats/synth"
	"github.com/ik5/audhost/formats/vorbis"
	"github.com/ik5/audhost/formats/wav"
	"github.com/ik5/audhost/service"
)

// RegisterBuiltins registers every decoder and effect shipped with the module.
// opts are applied to each decoder the registry creates.
func RegisterBuiltins(r *service.Registry, opts ...audio.DecoderOption) {
	decoder := func(newDecoder func(...audio.DecoderOption) audio.InputDecoder) service.DecoderFactory {
		return func() audio.InputDecoder { return newDecoder(opts...) }
	}

	r.RegisterDecoder(wav.ID, "wav", decoder(wav.New))
	r.RegisterDecoder(aiff.ID, "aiff", decoder(aiff.New))
	r.RegisterDecoder(mp3.ID, "mp3", decoder(mp3.New))
	r.RegisterDecoder(vorbis.ID, "vorbis", decoder(vorbis.New))
	r.RegisterDecoder(synth.ID, "synth", decoder(synth.New))

	r.RegisterEffect(dsp.PassThroughID, "passthrough", func() dsp.Effect { return dsp.NewPassThrough() })
	r.RegisterEffect(dsp.GainID, "gain", func() dsp.Effect { return dsp.NewGain(1) })
	r.RegisterEffect(dsp.RampID, "ramp", func() dsp.Effect { return dsp.NewRamp(10) })
	r.RegisterEffect(dsp.MonoFoldID, "mono", func() dsp.Effect { return dsp.NewMonoFold() })
	r.RegisterEffect(dsp.LimiterID, "limiter", func() dsp.Effect { return dsp.NewLimiter() })
	r.RegisterEffect(dsp.EchoID, "echo", func() dsp.Effect { return dsp.NewEcho() })
}

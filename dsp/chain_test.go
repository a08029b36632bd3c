// SPDX-License-Identifier: EPL-2.0

package dsp_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/dsp"
	"github.com/ik5/audhost/internal/audiotest"
)

func stereoChunk(frames int) *audio.Chunk {
	c := audio.NewChunk(frames, 2, 44100)
	for i := range c.Samples {
		c.Samples[i] = float32(i%17)/17 - 0.5
	}
	return c
}

// abortingEffect sets the token while processing, as a slow effect would
// observe a user abort.
type abortingEffect struct {
	audiotest.RecordingEffect
	token *audio.AbortToken
}

func (e *abortingEffect) Process(c *audio.Chunk, abort *audio.AbortToken) {
	e.RecordingEffect.Process(c, abort)
	e.token.Abort()
}

func TestChain_EmptyLeavesChunkUnchanged(t *testing.T) {
	t.Parallel()

	chain := dsp.NewChain()
	if err := chain.Instantiate(44100, 2); err != nil {
		t.Fatal(err)
	}

	c := stereoChunk(512)
	want := slices.Clone(c.Samples)
	if !chain.Process(c, audio.NewAbortToken()) {
		t.Error("Process() reported an abort")
	}
	if !slices.Equal(c.Samples, want) || c.Frames != 512 {
		t.Error("empty chain changed the chunk")
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var log []string
	chain := dsp.NewChain(
		&audiotest.RecordingEffect{EffectName: "a", Log: &log},
		&audiotest.RecordingEffect{EffectName: "b", Log: &log},
	)
	chain.Add(&audiotest.RecordingEffect{EffectName: "c", Log: &log})

	if err := chain.Instantiate(48000, 2); err != nil {
		t.Fatal(err)
	}
	chain.Process(stereoChunk(4), nil)

	want := []string{
		"a:instantiate", "b:instantiate", "c:instantiate",
		"a:process", "b:process", "c:process",
	}
	if !slices.Equal(log, want) {
		t.Errorf("call order = %v, want %v", log, want)
	}
	if got := chain.Names(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestChain_InstantiateShortCircuits(t *testing.T) {
	t.Parallel()

	a := &audiotest.RecordingEffect{EffectName: "a"}
	b := &audiotest.RecordingEffect{EffectName: "b", RefuseFormat: true}
	c := &audiotest.RecordingEffect{EffectName: "c"}
	chain := dsp.NewChain(a, b, c)

	err := chain.Instantiate(44100, 6)
	if !errors.Is(err, dsp.ErrInstantiate) {
		t.Fatalf("Instantiate() error = %v, want ErrInstantiate", err)
	}
	if len(a.Instantiations) != 1 || len(b.Instantiations) != 1 || len(c.Instantiations) != 0 {
		t.Errorf("instantiations a=%v b=%v c=%v", a.Instantiations, b.Instantiations, c.Instantiations)
	}
	if chain.Instantiated(44100, 6) {
		t.Error("failed chain reports instantiated")
	}
}

func TestChain_AbortBetweenEffects(t *testing.T) {
	t.Parallel()

	token := audio.NewAbortToken()
	first := &abortingEffect{RecordingEffect: audiotest.RecordingEffect{EffectName: "first"}, token: token}
	second := &audiotest.RecordingEffect{EffectName: "second", Gain: 2}
	chain := dsp.NewChain(first, second)
	if err := chain.Instantiate(44100, 2); err != nil {
		t.Fatal(err)
	}

	c := stereoChunk(8)
	want := slices.Clone(c.Samples)
	if chain.Process(c, token) {
		t.Error("Process() reported completion after abort")
	}
	if first.Processed != 1 || second.Processed != 0 {
		t.Errorf("processed first=%d second=%d, want 1 and 0", first.Processed, second.Processed)
	}
	if !slices.Equal(c.Samples, want) {
		t.Error("aborted chain changed the chunk")
	}
}

func TestChain_AbortedBeforeProcess(t *testing.T) {
	t.Parallel()

	e := &audiotest.RecordingEffect{EffectName: "e"}
	chain := dsp.NewChain(e)
	if err := chain.Instantiate(44100, 2); err != nil {
		t.Fatal(err)
	}
	token := audio.NewAbortToken()
	token.Abort()

	if chain.Process(stereoChunk(8), token) || e.Processed != 0 {
		t.Error("aborted token did not stop the chain")
	}
}

func TestChain_Queries(t *testing.T) {
	t.Parallel()

	plain := &audiotest.RecordingEffect{EffectName: "plain", Latency: 10}
	noticed := &audiotest.RecordingEffect{EffectName: "noticed", Latency: 32, WantsNotice: true}
	chain := dsp.NewChain(plain)

	if chain.NeedsTrackChangeNotice() {
		t.Error("NeedsTrackChangeNotice() = true without a member asking")
	}
	chain.Add(noticed)
	if !chain.NeedsTrackChangeNotice() {
		t.Error("NeedsTrackChangeNotice() = false")
	}
	if got := chain.Latency(); got != 42 {
		t.Errorf("Latency() = %d, want 42", got)
	}

	chain.TrackChanged()
	if plain.TrackChanges != 0 || noticed.TrackChanges != 1 {
		t.Errorf("track changes plain=%d noticed=%d", plain.TrackChanges, noticed.TrackChanges)
	}
}

func TestChain_Edit(t *testing.T) {
	t.Parallel()

	a := &audiotest.RecordingEffect{EffectName: "a"}
	b := &audiotest.RecordingEffect{EffectName: "b"}
	chain := dsp.NewChain(a, b)
	if err := chain.Instantiate(44100, 2); err != nil {
		t.Fatal(err)
	}
	if !chain.Instantiated(44100, 2) || chain.Instantiated(48000, 2) {
		t.Error("Instantiated() mismatch")
	}

	chain.Add(&audiotest.RecordingEffect{EffectName: "c"})
	if chain.Instantiated(44100, 2) {
		t.Error("Add() kept the chain instantiated")
	}

	if e, ok := chain.Remove(0); !ok || e != a {
		t.Errorf("Remove(0) = %v, %v", e, ok)
	}
	if _, ok := chain.Remove(5); ok {
		t.Error("Remove(5) succeeded")
	}
	if chain.Len() != 2 || chain.At(0) != b || chain.At(2) != nil {
		t.Errorf("after Remove: len %d, names %v", chain.Len(), chain.Names())
	}

	chain.Clear()
	if chain.Len() != 0 || chain.Latency() != 0 {
		t.Error("Clear() left effects")
	}
}

func TestChain_Reset(t *testing.T) {
	t.Parallel()

	a := &audiotest.RecordingEffect{EffectName: "a"}
	g := dsp.NewGain(0.5)
	chain := dsp.NewChain(a, g)
	if err := chain.Instantiate(44100, 2); err != nil {
		t.Fatal(err)
	}
	chain.Reset()

	if a.Resets != 1 || chain.Instantiated(44100, 2) {
		t.Errorf("Reset() resets=%d", a.Resets)
	}

	// A reset gain is unbound and must not touch samples.
	c := stereoChunk(4)
	want := slices.Clone(c.Samples)
	chain.Process(c, nil)
	if !slices.Equal(c.Samples, want) {
		t.Error("reset effect processed a chunk")
	}
}

func TestChain_KeepsLayout(t *testing.T) {
	t.Parallel()

	for _, channels := range []int{1, 2, 3, 4, 6, 8} {
		chain := dsp.NewChain(
			dsp.NewPassThrough(), dsp.NewGain(0.8), dsp.NewRamp(5),
			dsp.NewMonoFold(), dsp.NewLimiter(), dsp.NewEcho(),
		)
		if err := chain.Instantiate(44100, channels); err != nil {
			t.Fatalf("%d channels: %v", channels, err)
		}
		for _, frames := range []int{0, 1, 255, 1024} {
			c := audio.NewChunk(frames, channels, 44100)
			chain.Process(c, nil)
			if len(c.Samples) != c.Frames*c.Channels || c.Frames != frames || c.Channels != channels {
				t.Errorf("%d ch, %d frames: layout %d samples, %d frames, %d ch",
					channels, frames, len(c.Samples), c.Frames, c.Channels)
			}
		}
	}
}

func BenchmarkChain_Process(b *testing.B) {
	chain := dsp.NewChain(dsp.NewGain(0.8), dsp.NewMonoFold(), dsp.NewLimiter())
	if err := chain.Instantiate(44100, 2); err != nil {
		b.Fatal(err)
	}
	c := stereoChunk(1024)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		chain.Process(c, nil)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audhost

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pion/logging"

	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/dsp"
	"github.com/ik5/audhost/service"
)

// DefaultBlockFrames is the decode block size used unless WithBlockFrames
// says otherwise.
const DefaultBlockFrames = 1024

// Stats describe a finished playback session.
type Stats struct {
	// Info is what the decoder reported for the last opened track.
	Info audio.FileInfo
	// Decoder is the name of the last decoder used.
	Decoder string
	Tracks  int
	Frames  int64 // delivered to the sink
	Chunks  int
	// Latency of the chain in frames; the tail it holds back is not flushed.
	Latency int
	Aborted bool
}

// Host is the composition root. It is safe to run several sessions at once:
// each Play builds its own chain and decoder.
type Host struct {
	registry    *service.Registry
	presets     []dsp.Preset
	blockFrames int
	onOpen      func(path string, info *audio.FileInfo)

	logFactory logging.LoggerFactory
	log        logging.LeveledLogger
}

// Option configures a Host.
type Option func(*Host)

// WithRegistry sets the registry decoders and effects are resolved from.
// Without it the host gets a registry with the built-ins.
func WithRegistry(r *service.Registry) Option {
	return func(h *Host) { h.registry = r }
}

// WithChain sets the effect presets every session's chain is built from.
func WithChain(presets ...dsp.Preset) Option {
	return func(h *Host) { h.presets = slices.Clone(presets) }
}

// WithBlockFrames sets how many frames each decode call asks for, up to
// audio.MaxDecodeFrames. Non-positive values keep the default.
func WithBlockFrames(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.blockFrames = min(n, audio.MaxDecodeFrames)
		}
	}
}

// WithLogger sets the logger factory; the host logs under the "host" scope.
func WithLogger(factory logging.LoggerFactory) Option {
	return func(h *Host) { h.logFactory = factory }
}

// WithOpenHook registers fn to receive the file info of every opened track.
func WithOpenHook(fn func(path string, info *audio.FileInfo)) Option {
	return func(h *Host) { h.onOpen = fn }
}

// New returns a host.
func New(opts ...Option) *Host {
	h := &Host{blockFrames: DefaultBlockFrames}
	for _, opt := range opts {
		opt(h)
	}
	if h.logFactory == nil {
		h.logFactory = logging.NewDefaultLoggerFactory()
	}
	h.log = h.logFactory.NewLogger("host")
	if h.registry == nil {
		h.registry = service.NewRegistry(service.WithLogger(h.logFactory))
		RegisterBuiltins(h.registry, audio.WithLogger(h.logFactory))
	}
	return h
}

// Registry returns the registry the host resolves from.
func (h *Host) Registry() *service.Registry { return h.registry }

// NewChain builds a fresh chain from the configured presets.
func (h *Host) NewChain() (*dsp.Chain, error) {
	return h.registry.BuildChain(h.presets)
}

// Play decodes path through a new chain into sink. Reaching the end of the
// stream and a clean abort both return a nil error.
func (h *Host) Play(path string, sink Sink, abort *audio.AbortToken) (Stats, error) {
	return h.PlayList([]string{path}, sink, abort)
}

// PlayContext is Play with cancellation driven by ctx.
func (h *Host) PlayContext(ctx context.Context, path string, sink Sink) (Stats, error) {
	abort, stop := audio.AbortOnDone(ctx)
	defer stop()
	return h.Play(path, sink, abort)
}

// PlayList plays paths back to back through one chain. Tracks sharing a
// format keep the chain's state and trigger a track change notice; a format
// change instantiates the chain again. The first failing track ends the list.
func (h *Host) PlayList(paths []string, sink Sink, abort *audio.AbortToken) (Stats, error) {
	chain, err := h.NewChain()
	if err != nil {
		return Stats{}, err
	}
	return h.PlayChain(chain, paths, sink, abort)
}

// PlayChain is PlayList with a caller-built chain. The chain must not be used
// by another session at the same time.
func (h *Host) PlayChain(chain *dsp.Chain, paths []string, sink Sink, abort *audio.AbortToken) (Stats, error) {
	s := &session{host: h, chain: chain, sink: sink, abort: abort}

	for _, path := range paths {
		if abort.Aborted() {
			s.stats.Aborted = true
			break
		}
		if err := s.playTrack(path); err != nil {
			h.log.Errorf("play %s: %v", path, err)
			return s.stats, fmt.Errorf("play %s: %w", path, err)
		}
		if s.stats.Aborted {
			break
		}
	}

	if f, ok := sink.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return s.stats, fmt.Errorf("%w: %w", ErrSink, err)
		}
	}

	if s.stats.Aborted {
		h.log.Infof("aborted after %d frames", s.stats.Frames)
	}
	return s.stats, nil
}

type session struct {
	host  *Host
	chain *dsp.Chain
	sink  Sink
	abort *audio.AbortToken
	buf   audio.Chunk
	stats Stats
}

func (s *session) playTrack(path string) error {
	h := s.host

	dec, err := h.registry.CreateForPath(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := dec.Close(); err != nil {
			h.log.Warnf("%s: close %s: %v", dec.Name(), path, err)
		}
	}()

	info := &s.stats.Info
	if err := dec.Open(path, info, s.abort); err != nil {
		if errors.Is(err, audio.ErrAborted) {
			s.stats.Aborted = true
			return nil
		}
		return err
	}
	s.stats.Decoder = dec.Name()
	if h.onOpen != nil {
		h.onOpen(path, info)
	}

	rate, channels := info.Stream.SampleRate, info.Stream.Channels
	switch {
	case !s.chain.Instantiated(rate, channels):
		if err := s.chain.Instantiate(rate, channels); err != nil {
			return err
		}
		h.log.Debugf("chain %v bound to %d Hz, %d channels", s.chain.Names(), rate, channels)
	case s.stats.Tracks > 0 && s.chain.NeedsTrackChangeNotice():
		s.chain.TrackChanged()
	}
	s.stats.Tracks++
	s.stats.Latency = s.chain.Latency()

	h.log.Infof("%s: playing %s (%d Hz, %d ch, %.2fs)",
		dec.Name(), path, rate, channels, info.Stream.Length)

	for {
		if s.abort.Aborted() {
			s.stats.Aborted = true
			return nil
		}

		if err := dec.Decode(&s.buf, h.blockFrames, s.abort); err != nil {
			return err
		}
		if s.buf.Empty() {
			// An aborted decode also yields an empty chunk.
			s.stats.Aborted = s.abort.Aborted()
			return nil
		}

		if !s.chain.Process(&s.buf, s.abort) {
			s.stats.Aborted = true
			return nil
		}

		if err := s.sink.Write(&s.buf); err != nil {
			return fmt.Errorf("%w: %w", ErrSink, err)
		}
		s.stats.Frames += int64(s.buf.Frames)
		s.stats.Chunks++
	}
}

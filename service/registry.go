// SPDX-License-Identifier: EPL-2.0

package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/dsp"
)

// Kind tells decoder capabilities from effect capabilities.
type Kind int

const (
	KindDecoder Kind = iota + 1
	KindEffect
)

func (k Kind) String() string {
	switch k {
	case KindDecoder:
		return "decoder"
	case KindEffect:
		return "effect"
	}
	return "unknown"
}

// DecoderFactory returns a new, closed decoder.
type DecoderFactory func() audio.InputDecoder

// EffectFactory returns a new effect with default parameters.
type EffectFactory func() dsp.Effect

type entry struct {
	id         uuid.UUID
	name       string
	kind       Kind
	newDecoder DecoderFactory
	newEffect  EffectFactory
}

// Registry is the capability registry. The zero value is not usable; call
// NewRegistry.
type Registry struct {
	mtx sync.RWMutex

	entries map[uuid.UUID]*entry
	names   map[string]uuid.UUID
	order   []uuid.UUID
	// enabled restricts and orders decoders for CreateForPath when set.
	enabled []uuid.UUID

	log logging.LeveledLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger factory; the registry logs under the "registry"
// scope.
func WithLogger(factory logging.LoggerFactory) Option {
	return func(r *Registry) { r.log = factory.NewLogger("registry") }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[uuid.UUID]*entry),
		names:   make(map[string]uuid.UUID),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logging.NewDefaultLoggerFactory().NewLogger("registry")
	}
	return r
}

// RegisterDecoder stores f under id and name. Registering an id again replaces
// its factory but keeps its place in the resolution order.
func (r *Registry) RegisterDecoder(id uuid.UUID, name string, f DecoderFactory) {
	r.register(&entry{id: id, name: name, kind: KindDecoder, newDecoder: f})
}

// RegisterEffect stores f under id and name, with the same overwrite rules as
// RegisterDecoder.
func (r *Registry) RegisterEffect(id uuid.UUID, name string, f EffectFactory) {
	r.register(&entry{id: id, name: name, kind: KindEffect, newEffect: f})
}

func (r *Registry) register(e *entry) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if old, ok := r.entries[e.id]; ok {
		r.log.Warnf("%s %s (%s) registered again, replacing %s %s",
			e.kind, e.name, e.id, old.kind, old.name)
		if old.name != e.name && r.names[old.name] == e.id {
			delete(r.names, old.name)
		}
	} else {
		r.order = append(r.order, e.id)
	}
	if prev, ok := r.names[e.name]; ok && prev != e.id {
		r.log.Warnf("name %q moves from %s to %s", e.name, prev, e.id)
	}

	r.entries[e.id] = e
	r.names[e.name] = e.id
	r.log.Debugf("registered %s %s (%s)", e.kind, e.name, e.id)
}

func (r *Registry) lookup(id uuid.UUID, kind Kind) (*entry, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	e, ok := r.entries[id]
	if !ok || e.kind != kind {
		return nil, fmt.Errorf("%w: %s %s", audio.ErrNotFound, kind, id)
	}
	return e, nil
}

// CreateDecoder returns a new decoder for id.
func (r *Registry) CreateDecoder(id uuid.UUID) (audio.InputDecoder, error) {
	e, err := r.lookup(id, KindDecoder)
	if err != nil {
		return nil, err
	}
	return e.newDecoder(), nil
}

// CreateEffect returns a new effect for id.
func (r *Registry) CreateEffect(id uuid.UUID) (dsp.Effect, error) {
	e, err := r.lookup(id, KindEffect)
	if err != nil {
		return nil, err
	}
	return e.newEffect(), nil
}

// CreateEffectByName returns a new effect registered under name.
func (r *Registry) CreateEffectByName(name string) (dsp.Effect, error) {
	id, ok := r.LookupName(name)
	if !ok {
		return nil, fmt.Errorf("%w: effect %q", audio.ErrNotFound, name)
	}
	return r.CreateEffect(id)
}

// LookupName returns the id registered under name.
func (r *Registry) LookupName(name string) (uuid.UUID, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	id, ok := r.names[name]
	return id, ok
}

// Names returns the names of kind in registration order.
func (r *Registry) Names(kind Kind) []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	var names []string
	for _, id := range r.order {
		if e := r.entries[id]; e.kind == kind {
			names = append(names, e.name)
		}
	}
	return names
}

// UseDecoders limits CreateForPath to the named decoders, tried in the given
// order. Calling it with no names restores registration order over every
// decoder.
func (r *Registry) UseDecoders(names ...string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if len(names) == 0 {
		r.enabled = nil
		return nil
	}

	enabled := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		id, ok := r.names[name]
		if !ok || r.entries[id].kind != KindDecoder {
			return fmt.Errorf("%w: decoder %q", audio.ErrNotFound, name)
		}
		if !slices.Contains(enabled, id) {
			enabled = append(enabled, id)
		}
	}
	r.enabled = enabled
	return nil
}

func (r *Registry) decoderFactories() []*entry {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	ids := r.order
	if r.enabled != nil {
		ids = r.enabled
	}
	var out []*entry
	for _, id := range ids {
		if e := r.entries[id]; e != nil && e.kind == KindDecoder {
			out = append(out, e)
		}
	}
	return out
}

// CreateForPath returns a new decoder from the first factory whose decoder
// claims path. Factories are called outside the registry lock.
func (r *Registry) CreateForPath(path string) (audio.InputDecoder, error) {
	for _, e := range r.decoderFactories() {
		dec := e.newDecoder()
		if dec.IsOurPath(path) {
			r.log.Debugf("%s claims %s", e.name, path)
			return dec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", audio.ErrUnsupported, path)
}

// BuildChain creates one effect per preset, applies its parameters and
// returns them as a chain in preset order.
func (r *Registry) BuildChain(presets []dsp.Preset) (*dsp.Chain, error) {
	chain := dsp.NewChain()
	for i, p := range presets {
		e, err := r.CreateEffectByName(p.Effect)
		if err != nil {
			return nil, fmt.Errorf("preset #%d: %w", i, err)
		}
		if err := dsp.Configure(e, p.Params); err != nil {
			return nil, fmt.Errorf("preset #%d: %w", i, err)
		}
		chain.Add(e)
	}
	return chain, nil
}

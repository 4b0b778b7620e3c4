package factory

import (
	"sync/atomic"

	"view-router/internal/common/errors"
	generic "view-router/internal/common/factory"
	"view-router/internal/common/logging"
	"view-router/internal/mvc"
	"view-router/internal/routing"
)

// CompositeCreator knows how to construct one composite type and its
// component.
type CompositeCreator struct {
	New       func() mvc.Composite
	Component func(mvc.Composite) mvc.Component
	Cacheable bool
}

// CompositeInstance is a composite with its component and rendered handle.
type CompositeInstance struct {
	Type      routing.TypeID
	Meta      mvc.Meta
	Composite mvc.Composite
	Component mvc.Component
	Handle    mvc.Handle
	Selector  string
	Acceptors []routing.ParameterAcceptor
	Cached    bool
	Cacheable bool
	Started   bool

	serial uint64
}

// Key returns the cache key of the instance's type.
func (i *CompositeInstance) Key() string {
	return i.Type.Key()
}

// Same reports whether i and other refer to the same constructed composite.
func (i *CompositeInstance) Same(other *CompositeInstance) bool {
	return i != nil && other != nil && i.serial == other.serial
}

// CompositeFactory creates and caches composites. Its cache is independent
// of the controller cache and is cleared separately.
type CompositeFactory struct {
	env     mvc.Env
	logger  logging.Logger
	factory *generic.Factory[CompositeCreator, *CompositeInstance]
	serial  atomic.Uint64
}

// NewCompositeFactory creates a factory injecting env into every composite.
func NewCompositeFactory(env mvc.Env, logger logging.Logger) *CompositeFactory {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CompositeFactory{
		env:     env,
		logger:  logger.WithFields(logging.String("factory", "composite")),
		factory: generic.NewFactory[CompositeCreator, *CompositeInstance]("composite"),
	}
}

// Register associates a composite type with its creator.
func (f *CompositeFactory) Register(id routing.TypeID, creator CompositeCreator) error {
	if creator.New == nil || creator.Component == nil {
		return errors.ConfigError("composite creator for " + id.String() + " is incomplete")
	}
	return f.factory.Register(id, creator)
}

// IsRegistered reports whether a creator exists for id.
func (f *CompositeFactory) IsRegistered(id routing.TypeID) bool {
	return f.factory.IsRegistered(id)
}

// Resolve returns the cached composite named by ref or constructs a new one
// for the parent activation described by parent.
func (f *CompositeFactory) Resolve(ref routing.CompositeReference, parent mvc.Meta) (*CompositeInstance, error) {
	id := ref.Composite
	creator, ok := f.factory.Creator(id)
	if !ok {
		return nil, errors.UnknownControllerError(id.String()).WithContext("provider", ref.Provider.String())
	}

	if creator.Cacheable {
		if stored, ok := f.Lookup(id); ok {
			f.logger.Debug("composite cache hit", logging.String("type", id.String()))
			hit := *stored
			hit.Cached = true
			hit.Selector = ref.Selector
			hit.Acceptors = ref.ParameterAcceptors
			return &hit, nil
		}
	}

	composite := creator.New()
	if composite == nil {
		return nil, errors.InternalError("creator for "+id.String()+" returned no composite", nil)
	}

	meta := mvc.Meta{Type: id, Shell: parent.Shell, Route: parent.Route, Selector: ref.Selector}
	composite.Init(f.env, meta)

	f.logger.Debug("composite created",
		logging.String("type", id.String()),
		logging.String("provider", ref.Provider.String()))

	return &CompositeInstance{
		Type:      id,
		Meta:      meta,
		Composite: composite,
		Selector:  ref.Selector,
		Acceptors: ref.ParameterAcceptors,
		Cacheable: creator.Cacheable,
		serial:    f.serial.Add(1),
	}, nil
}

// NewComponent creates the component linked to the instance's composite.
func (f *CompositeFactory) NewComponent(inst *CompositeInstance) (mvc.Component, error) {
	creator, ok := f.factory.Creator(inst.Type)
	if !ok {
		return nil, errors.UnknownControllerError(inst.Type.String())
	}

	component := creator.Component(inst.Composite)
	if component == nil {
		return nil, errors.InternalError("creator for "+inst.Type.String()+" returned no component", nil)
	}
	return component, nil
}

// Store caches inst under its type key.
func (f *CompositeFactory) Store(inst *CompositeInstance) {
	stored := *inst
	stored.Cached = false
	f.factory.Store(inst.Key(), &stored)
}

// Evict removes inst from the cache if it is the cached instance.
func (f *CompositeFactory) Evict(inst *CompositeInstance) bool {
	stored, ok := f.Lookup(inst.Type)
	if !ok || !stored.Same(inst) {
		return false
	}
	f.factory.Evict(inst.Key())
	return true
}

// Lookup returns the cached instance for id without constructing one.
// Distinct types can share a key, so an entry stored for another type is
// reported as missing.
func (f *CompositeFactory) Lookup(id routing.TypeID) (*CompositeInstance, bool) {
	stored, ok := f.factory.Cached(id.Key())
	if !ok || stored.Type != id {
		return nil, false
	}
	return stored, true
}

// CachedKeys returns the keys of cached composites.
func (f *CompositeFactory) CachedKeys() []string {
	return f.factory.CachedKeys()
}

// Clear drops every cached composite.
func (f *CompositeFactory) Clear() {
	f.factory.Clear()
}

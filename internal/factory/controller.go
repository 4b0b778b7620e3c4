package factory

import (
	"sync/atomic"

	"view-router/internal/common/errors"
	generic "view-router/internal/common/factory"
	"view-router/internal/common/logging"
	"view-router/internal/mvc"
	"view-router/internal/routing"
)

// ControllerCreator knows how to construct one controller type and its
// component.
type ControllerCreator struct {
	New       func() mvc.Controller
	Component func(mvc.Controller) mvc.Component
	Cacheable bool
}

// ControllerInstance is a controller together with the component and
// composites created for it. Resolving a cached controller returns a copy of
// the stored instance with Cached set.
type ControllerInstance struct {
	Type       routing.TypeID
	Meta       mvc.Meta
	Controller mvc.Controller
	Component  mvc.Component
	Handle     mvc.Handle
	Composites []*CompositeInstance
	Cached     bool
	Cacheable  bool
	Started    bool

	serial uint64
}

// Key returns the cache key of the instance's type.
func (i *ControllerInstance) Key() string {
	return i.Type.Key()
}

// Same reports whether i and other refer to the same constructed controller.
func (i *ControllerInstance) Same(other *ControllerInstance) bool {
	return i != nil && other != nil && i.serial == other.serial
}

// ControllerFactory creates controllers through registered creators and
// caches the ones marked cacheable.
type ControllerFactory struct {
	env     mvc.Env
	logger  logging.Logger
	factory *generic.Factory[ControllerCreator, *ControllerInstance]
	serial  atomic.Uint64
}

// NewControllerFactory creates a factory injecting env into every controller.
func NewControllerFactory(env mvc.Env, logger logging.Logger) *ControllerFactory {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ControllerFactory{
		env:     env,
		logger:  logger.WithFields(logging.String("factory", "controller")),
		factory: generic.NewFactory[ControllerCreator, *ControllerInstance]("controller"),
	}
}

// Register associates a controller type with its creator.
func (f *ControllerFactory) Register(id routing.TypeID, creator ControllerCreator) error {
	if creator.New == nil || creator.Component == nil {
		return errors.ConfigError("controller creator for " + id.String() + " is incomplete")
	}
	return f.factory.Register(id, creator)
}

// IsRegistered reports whether a creator exists for id.
func (f *ControllerFactory) IsRegistered(id routing.TypeID) bool {
	return f.factory.IsRegistered(id)
}

// Types returns the registered controller types.
func (f *ControllerFactory) Types() []routing.TypeID {
	return f.factory.Types()
}

// Resolve returns the cached instance of a cacheable type, or constructs a
// new controller and injects the environment and route metadata.
func (f *ControllerFactory) Resolve(id routing.TypeID, route *routing.RouteConfig) (*ControllerInstance, error) {
	creator, ok := f.factory.Creator(id)
	if !ok {
		return nil, errors.UnknownControllerError(id.String())
	}

	if creator.Cacheable {
		if stored, ok := f.Lookup(id); ok {
			f.logger.Debug("controller cache hit", logging.String("type", id.String()))
			hit := *stored
			hit.Cached = true
			return &hit, nil
		}
	}

	controller := creator.New()
	if controller == nil {
		return nil, errors.InternalError("creator for "+id.String()+" returned no controller", nil)
	}

	meta := mvc.Meta{Type: id}
	if route != nil {
		meta.Shell = route.ShellID
		meta.Route = route.RouteID
		meta.Selector = route.Selector
	}
	controller.Init(f.env, meta)

	f.logger.Debug("controller created",
		logging.String("type", id.String()),
		logging.Bool("cacheable", creator.Cacheable))

	return &ControllerInstance{
		Type:       id,
		Meta:       meta,
		Controller: controller,
		Cacheable:  creator.Cacheable,
		serial:     f.serial.Add(1),
	}, nil
}

// NewComponent creates the component linked to the instance's controller.
func (f *ControllerFactory) NewComponent(inst *ControllerInstance) (mvc.Component, error) {
	creator, ok := f.factory.Creator(inst.Type)
	if !ok {
		return nil, errors.UnknownControllerError(inst.Type.String())
	}

	component := creator.Component(inst.Controller)
	if component == nil {
		return nil, errors.InternalError("creator for "+inst.Type.String()+" returned no component", nil)
	}
	return component, nil
}

// Store caches inst under its type key.
func (f *ControllerFactory) Store(inst *ControllerInstance) {
	stored := *inst
	stored.Cached = false
	f.factory.Store(inst.Key(), &stored)
}

// Evict removes inst from the cache. It returns false when the cache holds
// no entry for the type or holds a different instance.
func (f *ControllerFactory) Evict(inst *ControllerInstance) bool {
	stored, ok := f.Lookup(inst.Type)
	if !ok || !stored.Same(inst) {
		return false
	}
	f.factory.Evict(inst.Key())
	f.logger.Debug("controller evicted", logging.String("type", inst.Type.String()))
	return true
}

// Lookup returns the cached instance for id without constructing one.
// Distinct types can share a key, so an entry stored for another type is
// reported as missing.
func (f *ControllerFactory) Lookup(id routing.TypeID) (*ControllerInstance, bool) {
	stored, ok := f.factory.Cached(id.Key())
	if !ok || stored.Type != id {
		return nil, false
	}
	return stored, true
}

// CachedKeys returns the keys of cached controllers.
func (f *ControllerFactory) CachedKeys() []string {
	return f.factory.CachedKeys()
}

// Clear drops every cached controller.
func (f *ControllerFactory) Clear() {
	f.factory.Clear()
}

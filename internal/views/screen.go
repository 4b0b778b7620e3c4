package views

import (
	"fmt"
	"sync"

	"view-router/internal/common/errors"
	"view-router/internal/factory"
	"view-router/internal/manifest"
	"view-router/internal/mvc"
	"view-router/internal/navigation"
	"view-router/internal/routing"
)

// Screen is the display all shells of one router render into. Exactly one
// shell is attached at a time.
type Screen struct {
	mu      sync.RWMutex
	current string
	shells  map[string]*Shell
}

// NewScreen creates an empty screen.
func NewScreen() *Screen {
	return &Screen{shells: make(map[string]*Shell)}
}

// NewShell is a factory.ShellCreator producing shells bound to s.
func (s *Screen) NewShell(_ mvc.Env, cfg *routing.ShellConfig) (mvc.Shell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shells[cfg.ShellID]; exists {
		return nil, errors.ConfigError(fmt.Sprintf("shell %q already created", cfg.ShellID))
	}
	shell := &Shell{screen: s, cfg: *cfg, slots: make(map[string]*View)}
	s.shells[cfg.ShellID] = shell
	return shell, nil
}

// Current returns the id of the attached shell, empty before the first
// navigation settled.
func (s *Screen) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ScreenSnapshot is what the attached shell displays.
type ScreenSnapshot struct {
	Shell string              `json:"shell"`
	Slots map[string]Snapshot `json:"slots"`
}

// Snapshot copies the attached shell's mounted views.
func (s *Screen) Snapshot() ScreenSnapshot {
	s.mu.RLock()
	id := s.current
	shell := s.shells[id]
	s.mu.RUnlock()

	out := ScreenSnapshot{Shell: id, Slots: map[string]Snapshot{}}
	if shell == nil {
		return out
	}

	shell.mu.RLock()
	defer shell.mu.RUnlock()
	for sel, v := range shell.slots {
		out.Slots[sel] = v.Snapshot()
	}
	return out
}

func (s *Screen) attach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
}

func (s *Screen) detach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == id {
		s.current = ""
	}
}

// Shell is a headless layout.
type Shell struct {
	screen *Screen
	cfg    routing.ShellConfig

	mu    sync.RWMutex
	slots map[string]*View
}

func (s *Shell) Attach() error {
	s.screen.attach(s.cfg.ShellID)
	return nil
}

func (s *Shell) Detach() {
	s.screen.detach(s.cfg.ShellID)
}

func (s *Shell) Mount(selector string, handle mvc.Handle) error {
	if !s.cfg.Provides(selector) {
		return errors.UnknownShellError(s.cfg.ShellID).WithContext("selector", selector)
	}
	v, ok := handle.(*View)
	if !ok {
		return errors.ValidationError(fmt.Sprintf("shell %s cannot mount %T", s.cfg.ShellID, handle))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[selector] = v
	return nil
}

// Register installs headless creators on r for every shell, controller and
// composite type m names. Types that already have a creator are skipped.
func Register(r *navigation.Router, m *manifest.Manifest, screen *Screen) error {
	for _, cfg := range m.Shells {
		if r.Shells().IsRegistered(cfg.ShellType) {
			continue
		}
		if err := r.Shells().Register(cfg.ShellType, screen.NewShell); err != nil {
			return err
		}
	}

	for _, route := range m.Routes {
		if r.Controllers().IsRegistered(route.Controller) {
			continue
		}
		creator := factory.ControllerCreator{
			New:       NewPage,
			Component: PageComponent,
			Cacheable: m.IsCacheable(route.Controller),
		}
		if err := r.Controllers().Register(route.Controller, creator); err != nil {
			return err
		}
	}

	for _, ref := range m.Composites {
		if r.Composites().IsRegistered(ref.Composite) {
			continue
		}
		creator := factory.CompositeCreator{
			New:       NewPart,
			Component: PartComponent,
			Cacheable: m.IsCacheable(ref.Composite),
		}
		if err := r.Composites().Register(ref.Composite, creator); err != nil {
			return err
		}
	}
	return nil
}

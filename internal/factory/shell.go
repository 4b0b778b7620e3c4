package factory

import (
	"view-router/internal/common/errors"
	generic "view-router/internal/common/factory"
	"view-router/internal/common/logging"
	"view-router/internal/mvc"
	"view-router/internal/routing"
)

// ShellCreator constructs the shell for one shell configuration.
type ShellCreator func(env mvc.Env, cfg *routing.ShellConfig) (mvc.Shell, error)

// ShellFactory creates shells by shell type and keeps one instance per
// shell id for the lifetime of the router.
type ShellFactory struct {
	env     mvc.Env
	logger  logging.Logger
	factory *generic.Factory[ShellCreator, mvc.Shell]
}

// NewShellFactory creates a shell factory.
func NewShellFactory(env mvc.Env, logger logging.Logger) *ShellFactory {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ShellFactory{
		env:     env,
		logger:  logger.WithFields(logging.String("factory", "shell")),
		factory: generic.NewFactory[ShellCreator, mvc.Shell]("shell"),
	}
}

// Register associates a shell type with its creator.
func (f *ShellFactory) Register(shellType routing.TypeID, creator ShellCreator) error {
	if creator == nil {
		return errors.ConfigError("shell creator for " + shellType.String() + " is nil")
	}
	return f.factory.Register(shellType, creator)
}

// IsRegistered reports whether a creator exists for shellType.
func (f *ShellFactory) IsRegistered(shellType routing.TypeID) bool {
	return f.factory.IsRegistered(shellType)
}

// Resolve returns the shell for cfg, creating it on first use. Shells are
// cached by their exact id.
func (f *ShellFactory) Resolve(cfg *routing.ShellConfig) (mvc.Shell, error) {
	key := cfg.ShellID
	if shell, ok := f.factory.Cached(key); ok {
		return shell, nil
	}

	creator, ok := f.factory.Creator(cfg.ShellType)
	if !ok {
		return nil, errors.UnknownShellError(cfg.ShellID).WithContext("type", cfg.ShellType.String())
	}

	shell, err := creator(f.env, cfg)
	if err != nil {
		return nil, errors.InternalError("create shell "+cfg.ShellID, err)
	}
	if shell == nil {
		return nil, errors.InternalError("creator for shell "+cfg.ShellID+" returned no shell", nil)
	}

	f.factory.Store(key, shell)
	f.logger.Debug("shell created", logging.String("shell", cfg.ShellID))
	return shell, nil
}

// Clear drops every created shell.
func (f *ShellFactory) Clear() {
	f.factory.Clear()
}

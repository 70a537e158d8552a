package field

import (
	"log/slog"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/host"
)

// Binding attaches particle fields to containers of one host environment.
// Every successful Attach must be paired with Engine.Detach.
type Binding struct {
	env Env
}

// NewBinding creates a binding. Missing logger and config fall back to defaults.
func NewBinding(env Env) *Binding {
	return &Binding{env: env.withDefaults()}
}

// Attach starts a particle field in container. On error nothing is left allocated.
func (b *Binding) Attach(container host.Container, cfg config.FieldConfig) (*Engine, error) {
	e := newEngine(b.env)
	if err := e.attach(container, cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Mount attaches like Attach but never fails: on error it logs and returns a
// no-op detach, leaving the container without a background.
func (b *Binding) Mount(container host.Container, cfg config.FieldConfig) (detach func()) {
	e, err := b.Attach(container, cfg)
	if err != nil {
		b.env.Logger.Warn("particle field unavailable", slog.Any("error", err))
		return func() {}
	}
	return e.Detach
}

// Logger returns the binding's logger.
func (b *Binding) Logger() *slog.Logger {
	return b.env.Logger
}

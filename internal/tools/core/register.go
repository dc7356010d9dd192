package core

import (
	"fixturekit/internal/tools"
)

// RegisterAll registers all core tools bound to env.
func RegisterAll(registry *tools.Registry, env *Env) error {
	for _, tool := range env.Tools() {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

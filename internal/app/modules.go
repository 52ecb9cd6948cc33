package app

import (
	"github.com/specialistvlad/celerity/internal/registry"
	"github.com/specialistvlad/celerity/modules/diagnostics"
	"github.com/specialistvlad/celerity/modules/physics"
)

// coreModules returns the modules compiled into the celerity binary. The
// diagnostics reporter summarizes the physics store it shares a world with.
func coreModules(cfg *Config) []registry.Module {
	phys := physics.NewModule(physics.Config{Step: cfg.FixedStep})
	return []registry.Module{
		phys,
		diagnostics.NewModule(diagnostics.Config{Every: 60, Sources: []diagnostics.Source{phys.Store()}}),
	}
}

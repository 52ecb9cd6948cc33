package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/celerity/internal/config"
	"github.com/specialistvlad/celerity/internal/ctxlog"
)

// Validate checks that every handler referenced by the model is registered.
// A mismatch between the pipeline files and the compiled modules is reported
// as a single error listing every problem.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string
	used := make(map[string]struct{})

	for _, p := range model.Pipelines {
		for _, t := range p.Tasks {
			if t.Handler == "" {
				errs = append(errs, fmt.Sprintf("pipeline '%s', task '%s': no handler declared (%s)", p.Name, t.Name, t.Source))
				continue
			}
			if _, ok := r.handlers[t.Handler]; !ok {
				errs = append(errs, fmt.Sprintf("pipeline '%s', task '%s': handler '%s' is not registered (%s)", p.Name, t.Name, t.Handler, t.Source))
				continue
			}
			used[t.Handler] = struct{}{}
		}
	}

	for name := range r.handlers {
		if _, ok := used[name]; !ok {
			logger.Debug("Registered handler is not referenced by any pipeline.", "handler", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

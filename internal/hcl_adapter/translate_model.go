// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/celerity/internal/config"
	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/task"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// translatePipeline converts a pipeline block into the agnostic model.
func (l *Loader) translatePipeline(ctx context.Context, evalCtx *hcl.EvalContext, b *PipelineBlock) (*config.Pipeline, error) {
	ctx, logger := ctxlog.With(ctx, "pipeline", b.Name)
	logger.Debug("Translating HCL pipeline to internal config model.")

	p := &config.Pipeline{Name: b.Name, Source: sourceOf(b.DefRange)}

	kind, err := pipelineType(ctx, evalCtx, b.Type)
	if err != nil {
		return nil, fmt.Errorf("pipeline '%s': %w", b.Name, err)
	}
	p.Type = kind

	threads, err := childThreads(ctx, evalCtx, b.MaxChildThreads)
	if err != nil {
		return nil, fmt.Errorf("pipeline '%s': %w", b.Name, err)
	}
	p.MaxChildThreads = threads

	for _, cb := range b.Checkpoints {
		cp, err := translateCheckpoint(ctx, cb)
		if err != nil {
			return nil, fmt.Errorf("pipeline '%s', checkpoint '%s': %w", b.Name, cb.Name, err)
		}
		p.Checkpoints = append(p.Checkpoints, cp)
	}
	for _, tb := range b.Tasks {
		t, err := translateTask(ctx, tb)
		if err != nil {
			return nil, fmt.Errorf("pipeline '%s', task '%s': %w", b.Name, tb.Name, err)
		}
		p.Tasks = append(p.Tasks, t)
	}

	logger.Debug("Translated pipeline.", "type", p.Type, "checkpoints", len(p.Checkpoints), "tasks", len(p.Tasks))
	return p, nil
}

// pipelineType accepts both `type = fixed` and `type = "fixed"`.
func pipelineType(ctx context.Context, evalCtx *hcl.EvalContext, expr hcl.Expression) (string, error) {
	if !isExprDefined(ctx, expr, "type") {
		return "", nil
	}
	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		return kw, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return "", fmt.Errorf("'type' must be a string, got %s", val.Type().FriendlyName())
	}
	return val.AsString(), nil
}

func childThreads(ctx context.Context, evalCtx *hcl.EvalContext, expr hcl.Expression) (*int, error) {
	if !isExprDefined(ctx, expr, "max_child_threads") {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	var n int
	if err := gocty.FromCtyValue(val, &n); err != nil {
		return nil, fmt.Errorf("'max_child_threads' must be a whole number: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("'max_child_threads' must not be negative, got %d", n)
	}
	return &n, nil
}

func translateCheckpoint(ctx context.Context, b *CheckpointBlock) (*task.Checkpoint, error) {
	after, err := refsFromExpr(ctx, b.After, "after")
	if err != nil {
		return nil, err
	}
	before, err := refsFromExpr(ctx, b.Before, "before")
	if err != nil {
		return nil, err
	}
	return &task.Checkpoint{Name: b.Name, After: after, Before: before}, nil
}

func translateTask(ctx context.Context, b *TaskBlock) (*config.Task, error) {
	dependsOn, err := refsFromExpr(ctx, b.DependsOn, "depends_on")
	if err != nil {
		return nil, err
	}
	dependencyOf, err := refsFromExpr(ctx, b.DependencyOf, "dependency_of")
	if err != nil {
		return nil, err
	}
	return &config.Task{
		Name:         b.Name,
		Handler:      b.Run,
		DependsOn:    dependsOn,
		DependencyOf: dependencyOf,
		Reads:        resources(b.Reads),
		Writes:       resources(b.Writes),
		Source:       sourceOf(b.DefRange),
	}, nil
}

func resources(names []string) []task.ResourceID {
	if len(names) == 0 {
		return nil
	}
	out := make([]task.ResourceID, len(names))
	for i, n := range names {
		out[i] = task.ResourceID(n)
	}
	return out
}

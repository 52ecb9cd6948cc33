package hcl_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/celerity/internal/ctxlog"
	"github.com/specialistvlad/celerity/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder often populates optional fields with non-nil, zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// formatTraversal converts an hcl.Traversal to a human-readable string for logging.
func formatTraversal(t hcl.Traversal) string {
	var sb strings.Builder
	for i, part := range t {
		switch p := part.(type) {
		case hcl.TraverseRoot:
			sb.WriteString(p.Name)
		case hcl.TraverseAttr:
			sb.WriteRune('.')
			sb.WriteString(p.Name)
		case hcl.TraverseIndex:
			sb.WriteString("[...]")
		default:
			if i > 0 {
				sb.WriteRune('.')
			}
			sb.WriteString("?")
		}
	}
	return sb.String()
}

// refsFromExpr reads a list of references, or a single reference, from expr.
func refsFromExpr(ctx context.Context, expr hcl.Expression, attrName string) ([]task.Ref, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return nil, nil
	}

	elems, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		elems = []hcl.Expression{expr}
	}

	refs := make([]task.Ref, 0, len(elems))
	for _, e := range elems {
		ref, err := refFromExpr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid reference in '%s' at %s: %w", attrName, e.Range().String(), err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// refFromExpr accepts `name`, `task.name`, `checkpoint.name` or the same as a string.
func refFromExpr(expr hcl.Expression) (task.Ref, error) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		switch len(traversal) {
		case 1:
			return task.Ref{Kind: task.KindAny, Name: traversal.RootName()}, nil
		case 2:
			attr, ok := traversal[1].(hcl.TraverseAttr)
			if ok && (traversal.RootName() == "task" || traversal.RootName() == "checkpoint") {
				return task.ParseRef(traversal.RootName() + "." + attr.Name), nil
			}
		}
		return task.Ref{}, fmt.Errorf("%s is not a task or checkpoint reference", formatTraversal(traversal))
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return task.Ref{}, diags
	}
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return task.Ref{}, fmt.Errorf("expected a name or a string, got %s", val.Type().FriendlyName())
	}
	s := val.AsString()
	if s == "" {
		return task.Ref{}, fmt.Errorf("empty reference")
	}
	return task.ParseRef(s), nil
}

// sourceOf formats a block location as file:line.
func sourceOf(r hcl.Range) string {
	return fmt.Sprintf("%s:%d", r.Filename, r.Start.Line)
}

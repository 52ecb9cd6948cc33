package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/celerity/internal/config"
	"github.com/specialistvlad/celerity/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	cpuCount int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCPUCount overrides the value of the cpu_count variable, which defaults
// to runtime.NumCPU().
func WithCPUCount(n int) LoaderOption {
	return func(l *Loader) { l.cpuCount = n }
}

// NewLoader creates a new HCL configuration loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{cpuCount: runtime.NumCPU()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths and returns the pipelines
// they declare, in file then declaration order. Pipeline names are unique
// across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	declaredAt := make(map[string]string)
	parser := hclparse.NewParser()
	evalCtx := evalContext(l.cpuCount)

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Pipelines {
			if prev, ok := declaredAt[block.Name]; ok {
				return nil, fmt.Errorf("pipeline '%s' declared twice: %s and %s", block.Name, prev, sourceOf(block.DefRange))
			}
			p, err := l.translatePipeline(ctx, evalCtx, block)
			if err != nil {
				return nil, err
			}
			declaredAt[p.Name] = p.Source
			model.Pipelines = append(model.Pipelines, p)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "pipelines", len(model.Pipelines))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}

package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Pipelines []*PipelineBlock `hcl:"pipeline,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// PipelineBlock is the HCL schema of a `pipeline "<name>"` block.
type PipelineBlock struct {
	Name            string             `hcl:"name,label"`
	Type            hcl.Expression     `hcl:"type,optional"`
	MaxChildThreads hcl.Expression     `hcl:"max_child_threads,optional"`
	Checkpoints     []*CheckpointBlock `hcl:"checkpoint,block"`
	Tasks           []*TaskBlock       `hcl:"task,block"`
	DefRange        hcl.Range          `hcl:",def_range"`
}

// CheckpointBlock is the HCL schema of a `checkpoint "<name>"` block.
type CheckpointBlock struct {
	Name     string         `hcl:"name,label"`
	After    hcl.Expression `hcl:"after,optional"`
	Before   hcl.Expression `hcl:"before,optional"`
	DefRange hcl.Range      `hcl:",def_range"`
}

// TaskBlock is the HCL schema of a `task "<name>"` block.
type TaskBlock struct {
	Name         string         `hcl:"name,label"`
	Run          string         `hcl:"run"`
	DependsOn    hcl.Expression `hcl:"depends_on,optional"`
	DependencyOf hcl.Expression `hcl:"dependency_of,optional"`
	Reads        []string       `hcl:"reads,optional"`
	Writes       []string       `hcl:"writes,optional"`
	DefRange     hcl.Range      `hcl:",def_range"`
}

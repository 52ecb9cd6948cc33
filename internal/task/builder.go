package task

// Builder accumulates the declaration of a single task. It is returned by the
// pipeline builder's AddTask and is only valid until the pipeline is built.
type Builder struct {
	desc Descriptor
}

// NewBuilder starts the declaration of a task named name.
func NewBuilder(name string) *Builder {
	return &Builder{desc: Descriptor{Name: name}}
}

// DependOn orders the task after each named task or checkpoint.
func (b *Builder) DependOn(names ...string) *Builder {
	for _, n := range names {
		b.desc.DependsOn = append(b.desc.DependsOn, ParseRef(n))
	}
	return b
}

// MakeDependencyOf orders the task before each named task or checkpoint.
func (b *Builder) MakeDependencyOf(names ...string) *Builder {
	for _, n := range names {
		b.desc.DependencyOf = append(b.desc.DependencyOf, ParseRef(n))
	}
	return b
}

// Reads declares shared access to the given resources.
func (b *Builder) Reads(ids ...ResourceID) *Builder {
	for _, id := range ids {
		b.desc.Accesses = append(b.desc.Accesses, ResourceAccess{Resource: id, Mode: Read})
	}
	return b
}

// Writes declares exclusive access to the given resources.
func (b *Builder) Writes(ids ...ResourceID) *Builder {
	for _, id := range ids {
		b.desc.Accesses = append(b.desc.Accesses, ResourceAccess{Resource: id, Mode: Write})
	}
	return b
}

// SetExecutor sets the task body.
func (b *Builder) SetExecutor(r Runnable) *Builder {
	b.desc.Body = r
	return b
}

// SetFunc sets the task body from a plain function.
func (b *Builder) SetFunc(fn func()) *Builder {
	if fn == nil {
		b.desc.Body = nil
		return b
	}
	return b.SetExecutor(Func(fn))
}

// Name returns the task name.
func (b *Builder) Name() string {
	return b.desc.Name
}

// Descriptor returns a copy of the accumulated declaration.
func (b *Builder) Descriptor() *Descriptor {
	d := b.desc
	d.DependsOn = append([]Ref(nil), b.desc.DependsOn...)
	d.DependencyOf = append([]Ref(nil), b.desc.DependencyOf...)
	d.Accesses = append([]ResourceAccess(nil), b.desc.Accesses...)
	return &d
}

// CheckpointBuilder accumulates one declaration of a checkpoint.
type CheckpointBuilder struct {
	decl Checkpoint
}

// NewCheckpointBuilder starts a declaration of the checkpoint named name.
func NewCheckpointBuilder(name string) *CheckpointBuilder {
	return &CheckpointBuilder{decl: Checkpoint{Name: name}}
}

// After places the checkpoint after each named node.
func (c *CheckpointBuilder) After(names ...string) *CheckpointBuilder {
	for _, n := range names {
		c.decl.After = append(c.decl.After, ParseRef(n))
	}
	return c
}

// Before places the checkpoint before each named node.
func (c *CheckpointBuilder) Before(names ...string) *CheckpointBuilder {
	for _, n := range names {
		c.decl.Before = append(c.decl.Before, ParseRef(n))
	}
	return c
}

// Name returns the checkpoint name.
func (c *CheckpointBuilder) Name() string {
	return c.decl.Name
}

// Declaration returns a copy of the accumulated declaration.
func (c *CheckpointBuilder) Declaration() *Checkpoint {
	d := c.decl
	d.After = append([]Ref(nil), c.decl.After...)
	d.Before = append([]Ref(nil), c.decl.Before...)
	return &d
}

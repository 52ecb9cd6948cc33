package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type velocity struct{}

func TestParseRef(t *testing.T) {
	assert.Equal(t, Ref{Kind: KindAny, Name: "gravity"}, ParseRef("gravity"))
	assert.Equal(t, Ref{Kind: KindTask, Name: "gravity"}, ParseRef("task.gravity"))
	assert.Equal(t, Ref{Kind: KindCheckpoint, Name: "physics"}, ParseRef("checkpoint.physics"))
	assert.Equal(t, "checkpoint.physics", ParseRef("checkpoint.physics").String())
	assert.Equal(t, "gravity", ParseRef("gravity").String())
}

func TestConflicts(t *testing.T) {
	readV := ResourceAccess{Resource: "velocity", Mode: Read}
	writeV := ResourceAccess{Resource: "velocity", Mode: Write}
	writeP := ResourceAccess{Resource: "position", Mode: Write}

	assert.False(t, readV.Conflicts(readV), "read/read never conflicts")
	assert.True(t, readV.Conflicts(writeV))
	assert.True(t, writeV.Conflicts(readV))
	assert.True(t, writeV.Conflicts(writeV))
	assert.False(t, writeV.Conflicts(writeP), "different resources never conflict")
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, ResourceID("task.velocity"), ResourceOf[velocity]())
	assert.Equal(t, ResourceOf[velocity](), ResourceOf[velocity]())
	assert.NotEqual(t, ResourceOf[velocity](), ResourceOf[int]())
}

func TestBuilder(t *testing.T) {
	ran := 0
	b := NewBuilder("integrate").
		DependOn("checkpoint.begin", "gravity").
		MakeDependencyOf("render").
		Reads("velocity").
		Writes("position").
		SetFunc(func() { ran++ })

	d := b.Descriptor()
	assert.Equal(t, "integrate", d.Name)
	assert.Equal(t, []Ref{{Kind: KindCheckpoint, Name: "begin"}, {Kind: KindAny, Name: "gravity"}}, d.DependsOn)
	assert.Equal(t, []Ref{{Kind: KindAny, Name: "render"}}, d.DependencyOf)
	assert.Equal(t, []ResourceAccess{{Resource: "velocity", Mode: Read}, {Resource: "position", Mode: Write}}, d.Accesses)
	require.NotNil(t, d.Body)
	d.Body.Run()
	assert.Equal(t, 1, ran)

	// The descriptor is a snapshot.
	b.Reads("mass")
	assert.Len(t, d.Accesses, 2)
}

func TestCheckpointPosition(t *testing.T) {
	a := NewCheckpointBuilder("physics").After("gravity", "drag").Declaration()
	b := NewCheckpointBuilder("physics").After("drag", "gravity").Declaration()
	c := NewCheckpointBuilder("physics").After("gravity").Declaration()
	empty := NewCheckpointBuilder("physics").Declaration()

	assert.True(t, a.HasPosition())
	assert.False(t, empty.HasPosition())
	assert.True(t, a.SamePosition(b), "order of refs does not matter")
	assert.False(t, a.SamePosition(c))
}

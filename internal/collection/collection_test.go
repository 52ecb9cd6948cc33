package collection

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/celerity/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noop = task.Func(func() {})

func chain(t *testing.T) *Collection {
	t.Helper()
	c, err := New([]Item{
		{Name: "gravity", Body: noop, Dependants: []int{1}},
		{Name: "drag", Body: noop, Dependants: []int{2}},
		{Name: "integrate", Body: noop},
		{Name: "audio", Body: noop},
	}, []Edge{{From: "gravity", To: "drag", Resource: "velocity"}})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c := chain(t)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"gravity", "drag", "integrate", "audio"}, c.Names())
	assert.Equal(t, []int{0, 3}, c.Roots())
	assert.Equal(t, 0, c.At(0).DependencyCount)
	assert.Equal(t, 1, c.At(2).DependencyCount)

	i, ok := c.Index("integrate")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
}

func TestNewRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{"duplicate", []Item{{Name: "a", Body: noop}, {Name: "a", Body: noop}}, `duplicate item "a"`},
		{"no body", []Item{{Name: "a"}}, `item "a" has no body`},
		{"backward dependant", []Item{{Name: "a", Body: noop}, {Name: "b", Body: noop, Dependants: []int{0}}}, "invalid dependant index 0"},
		{"self dependant", []Item{{Name: "a", Body: noop, Dependants: []int{0}}}, "invalid dependant index 0"},
		{"out of range", []Item{{Name: "a", Body: noop, Dependants: []int{5}}}, "invalid dependant index 5"},
		{"repeated dependant", []Item{{Name: "a", Body: noop, Dependants: []int{1, 1}}, {Name: "b", Body: noop}}, "lists dependant 1 twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items, nil)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	items := []Item{{Name: "a", Body: noop, Dependants: []int{1}}, {Name: "b", Body: noop}}
	c, err := New(items, nil)
	require.NoError(t, err)

	items[0].Dependants[0] = 7
	assert.Equal(t, []int{1}, c.At(0).Dependants)
}

func TestDependsOn(t *testing.T) {
	c := chain(t)
	assert.True(t, c.DependsOn("drag", "gravity"))
	assert.True(t, c.DependsOn("integrate", "gravity"), "transitive")
	assert.False(t, c.DependsOn("gravity", "integrate"))
	assert.False(t, c.DependsOn("audio", "gravity"))
	assert.False(t, c.DependsOn("audio", "nope"))
}

func TestDescribe(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, chain(t).Describe(&buf))

	out := buf.String()
	assert.Contains(t, out, "TASK")
	assert.Regexp(t, `0\s+gravity\s+0\s+drag`, out)
	assert.Regexp(t, `2\s+integrate\s+1\s+-`, out)
	assert.Contains(t, out, "conflict edges:\n  gravity -> drag (velocity)\n")
}

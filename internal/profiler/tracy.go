package profiler

import "github.com/0xsoniclabs/tracy"

// Tracy forwards zones to the Tracy profiler client. Markers become
// zero-length zones, which Tracy shows as instants on the timeline.
type Tracy struct{}

// Mark records an instant zone named name.
func (Tracy) Mark(name string) {
	zone := tracy.ZoneBegin(name)
	zone.End()
}

// Begin opens a Tracy zone.
func (Tracy) Begin(name string) Zone {
	zone := tracy.ZoneBegin(name)
	return zoneFunc(func() { zone.End() })
}

type zoneFunc func()

func (f zoneFunc) End() { f() }

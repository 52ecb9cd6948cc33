// Package profiler is the telemetry sink for pipeline markers and per-task
// zones. Pipelines emit "<id>Begin" and "<id>End" markers around each pass,
// executors open one zone per task body. Implementations must be safe for
// concurrent use; zones are opened and closed on worker goroutines.
package profiler

// Zone is an open timing region. End closes it.
type Zone interface {
	End()
}

// Profiler receives markers and zones.
type Profiler interface {
	// Mark records an instantaneous named event.
	Mark(name string)
	// Begin opens a zone named name.
	Begin(name string) Zone
}

// Nop discards everything.
type Nop struct{}

func (Nop) Mark(string)       {}
func (Nop) Begin(string) Zone { return nopZone{} }

type nopZone struct{}

func (nopZone) End() {}

// Multi fans out to several profilers.
type Multi []Profiler

// Mark forwards to every profiler.
func (m Multi) Mark(name string) {
	for _, p := range m {
		p.Mark(name)
	}
}

// Begin opens a zone on every profiler; End closes them in reverse order.
func (m Multi) Begin(name string) Zone {
	zones := make(multiZone, len(m))
	for i, p := range m {
		zones[i] = p.Begin(name)
	}
	return zones
}

type multiZone []Zone

func (z multiZone) End() {
	for i := len(z) - 1; i >= 0; i-- {
		z[i].End()
	}
}

// Combine returns the simplest profiler covering ps, skipping nils.
func Combine(ps ...Profiler) Profiler {
	var out Multi
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	default:
		return out
	}
}

package pipeline

import (
	"fmt"
	"strings"
)

// Type is the logical update rate a pipeline represents.
type Type int

const (
	// Normal pipelines run once per frame.
	Normal Type = iota
	// Fixed pipelines run at a fixed simulation step, possibly several times a frame.
	Fixed
	// Custom pipelines run only when explicitly requested.
	Custom
)

func (t Type) String() string {
	switch t {
	case Normal:
		return "normal"
	case Fixed:
		return "fixed"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType parses "normal", "fixed" or "custom", case-insensitively. The
// empty string is Normal.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return Normal, nil
	case "fixed":
		return Fixed, nil
	case "custom":
		return Custom, nil
	default:
		return Normal, fmt.Errorf("unknown pipeline type %q (want normal, fixed or custom)", s)
	}
}

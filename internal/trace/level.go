package trace

import "fmt"

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff Level = iota
	// LevelBuild emits build boundaries and summary points.
	LevelBuild
	// LevelUnit emits one span per build unit.
	LevelUnit
	// LevelDebug emits everything, including skipped notifications.
	LevelDebug
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelBuild:
		return "build"
	case LevelUnit:
		return "unit"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF", "":
		return LevelOff, nil
	case "build", "BUILD":
		return LevelBuild, nil
	case "unit", "UNIT":
		return LevelUnit, nil
	case "debug", "DEBUG":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|build|unit|debug)", s)
	}
}

// ShouldEmit reports whether events of the given scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelBuild:
		return scope <= ScopeBuild
	case LevelUnit:
		return scope <= ScopeUnit
	case LevelDebug:
		return true
	default:
		return false
	}
}

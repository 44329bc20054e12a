// Package constants defines shared constants, types, and configuration values
// used throughout navstack.
package constants

import "os"

// Development is the environment variable value for development mode.
const Development = "DEV"

// LogLevelEnvVar raises the internal navstack logger when set (e.g. "debug").
const LogLevelEnvVar = "NAVSTACK_LOG_LEVEL"

// IsDevMode returns true if running in development mode (ENVIRONMENT=DEV).
func IsDevMode() bool {
	return os.Getenv("ENVIRONMENT") == Development
}

// MetadataNamespace prefixes every metadata key navstack defines itself.
// Application keys should use their own namespace.
const MetadataNamespace = "navstack."

// Interceptor priority tiers. Higher runs first.
const (
	PriorityDefault       = 0
	PriorityDirectionOnly = 100 // Matches on navigation direction only
	PriorityPartialMatch  = 200 // Matches on destination kind
	PriorityExactMatch    = 300 // Matches one specific destination key
)

// HostKind describes what kind of region a destination needs to be rendered in.
type HostKind int

const (
	HostKindAny     HostKind = iota // Any container may host it
	HostKindStack                   // Full-screen, stack style region
	HostKindOverlay                 // Modal / presented region
)

func (h HostKind) GetName() string {
	switch h {
	case HostKindAny:
		return "Any"
	case HostKindStack:
		return "Stack"
	case HostKindOverlay:
		return "Overlay"
	default:
		return "Unknown"
	}
}

// Defaults.
const (
	DefaultLocalizerCacheSize = 5  // Localizers kept per resolver
	DefaultMaxQueuedOps       = 64 // Operations a dispatcher will queue before faulting
)

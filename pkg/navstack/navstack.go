// Package navstack is a declarative navigation runtime for tree-structured UI
// applications. It tracks where the user is, lets independent regions of the UI
// each own an ordered stack of destinations, and tells renderers what changed.
//
// The building blocks are:
//
//   - Instruction: one entry that can sit on a backstack.
//   - Backstack and Transition: an immutable sequence and the diff between two
//     of them.
//   - Pipeline: priority-ordered interceptors that allow, cancel or replace a
//     proposed open, close or result.
//   - Container: a region owning one backstack, with accept filters and an
//     empty behavior.
//   - Tree and Node: the live hierarchy of containers and destinations, used to
//     resolve the single active leaf and to route navigation.
//
// Multi-step flows live in the flow sub-package.
//
// # Basic Usage
//
//	tree := navstack.NewTree(navstack.TreeOptions{})
//	main := navstack.NewContainer(navstack.ContainerConfig{
//	    ID:            "main",
//	    EmptyBehavior: navstack.CloseParent(),
//	})
//	tree.MountContainer(main)
//
//	tree.Navigate(nil, navstack.Push(HomeKey{}))
//	leaf := tree.ActiveLeaf()
//
// Everything runs on one logical UI thread. Operations submitted while another
// is processing are queued, never nested.
package navstack

import (
	"log/slog"
	"os"

	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// Options configures process-wide navstack behavior. Call Init before creating
// registries or containers to have the settings apply to their loggers.
type Options struct {
	LogPath          string // Full path for the log file including filename (creates parent directories)
	LogLevel         string // Application logger level: "debug", "info", "warn", "error"
	InternalLogLevel string // navstack's own logger level; defaults to error
}

// Init applies opts. The NAVSTACK_LOG_LEVEL environment variable overrides
// InternalLogLevel.
func Init(opts Options) {
	if opts.LogPath != "" {
		internal.SetLogPath(opts.LogPath)
	}
	if opts.LogLevel != "" {
		internal.SetRawLogLevel(opts.LogLevel)
	}

	if env := os.Getenv(constants.LogLevelEnvVar); env != "" {
		internal.SetInternalLogLevel(internal.ParseLevel(env))
	} else if opts.InternalLogLevel != "" {
		internal.SetInternalLogLevel(internal.ParseLevel(opts.InternalLogLevel))
	} else if constants.IsDevMode() {
		internal.SetInternalLogLevel(slog.LevelDebug)
	}
}

// Close releases the log file, if one was opened.
func Close() {
	internal.CloseLogger()
}

// SetLogPath sets the full path for the log file, including filename.
// Call before Init() to take effect during initialization.
func SetLogPath(path string) {
	internal.SetLogPath(path)
}

// GetLogger returns the application logger for structured logging.
func GetLogger() *slog.Logger {
	return internal.GetLogger()
}

// SetLogLevel sets the minimum log level for the application logger.
func SetLogLevel(level slog.Level) {
	internal.SetLogLevel(level)
}

// SetRawLogLevel parses and sets the log level from a string (e.g., "debug", "info", "error").
func SetRawLogLevel(level string) {
	internal.SetRawLogLevel(level)
}

// SetInternalLogLevel sets the minimum level for navstack's own logger.
func SetInternalLogLevel(level slog.Level) {
	internal.SetInternalLogLevel(level)
}

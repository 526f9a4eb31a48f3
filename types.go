package sortition

import "github.com/arloliu/sortition/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `sortition` package, while
// still providing a convenient `sortition.Experiment`, `sortition.Logger`, etc.
// for users.
type (
	Experiment = types.Experiment
	Assignment = types.Assignment
	Status     = types.Status
)

// Re-export interfaces from the internal types package for convenience.
type (
	Recorder         = types.Recorder
	ExperimentSource = types.ExperimentSource
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export Status constants from the internal types package.
const (
	StatusActive    = types.StatusActive
	StatusPaused    = types.StatusPaused
	StatusCompleted = types.StatusCompleted
)

// VariantNone is the sentinel variant for subjects that are not in an experiment.
const VariantNone = types.VariantNone

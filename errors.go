package sortition

import "github.com/arloliu/sortition/types"

// Sentinel errors returned by the Engine.
//
// These alias the sentinels in the types package so errors.Is works
// regardless of which package a caller imports.
var (
	// ErrInvalidConfig is returned when the engine configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrExperimentNotFound is returned when resolving an unknown experiment key.
	ErrExperimentNotFound = types.ErrExperimentNotFound

	// ErrSourceRequired is returned when LoadFromSource receives a nil source.
	ErrSourceRequired = types.ErrSourceRequired

	// ErrRecordFailed is returned by recorders when persisting an assignment fails.
	ErrRecordFailed = types.ErrRecordFailed
)

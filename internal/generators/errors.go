package generators

import "errors"

// Generator registry and guide errors.
var (
	// ErrGeneratorNotFound is returned when a generator is not registered.
	ErrGeneratorNotFound = errors.New("generator not found")

	// ErrGeneratorNameEmpty is returned when a generator has no name.
	ErrGeneratorNameEmpty = errors.New("generator name cannot be empty")

	// ErrGuideNil is returned when a generator has no guide function.
	ErrGuideNil = errors.New("generator guide cannot be nil")

	// ErrNoPoints is returned when a generator declares no injection points.
	ErrNoPoints = errors.New("generator declares no injection points")

	// ErrGeneratorAlreadyRegistered is returned when registering a duplicate.
	ErrGeneratorAlreadyRegistered = errors.New("generator already registered")

	// ErrInvalidAnswer is returned when an answer passes the prompt but breaks
	// a naming or range rule of the generator.
	ErrInvalidAnswer = errors.New("invalid answer")
)

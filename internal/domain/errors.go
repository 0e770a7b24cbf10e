package domain

import "errors"

var (
	// ErrInvalidSource signals a nil or unusable feature source.
	ErrInvalidSource = errors.New("invalid feature source")
	// ErrNoCompareFields signals attribute detection with an empty field list.
	ErrNoCompareFields = errors.New("no fields configured for attribute detection")
	// ErrInvalidParams signals malformed detection parameters.
	ErrInvalidParams = errors.New("invalid detection parameters")
	// ErrSourceRead signals a storage failure while reading features.
	// A run that hits it aborts with no partial result.
	ErrSourceRead = errors.New("feature source read failed")
	// ErrShapeDistanceUnavailable signals that a shape distance could not be
	// computed for a geometry pair. Consumed by the centroid fallback, never
	// returned to callers.
	ErrShapeDistanceUnavailable = errors.New("shape distance unavailable for geometry pair")
	// ErrValuesNotComparable signals a priority field rule over mixed-kind
	// values. The rule falls through to the next one.
	ErrValuesNotComparable = errors.New("field values are not mutually comparable")
)

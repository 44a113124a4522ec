package pixel

import "errors"

var (
	// ErrParse reports a color that cannot be decoded.
	ErrParse = errors.New("malformed color")

	// ErrShape reports rows that do not form a non-empty rectangle.
	ErrShape = errors.New("grid is not rectangular")

	// ErrRange reports a non-positive grid dimension.
	ErrRange = errors.New("dimension must be positive")
)

package field

import (
	"errors"
	"fmt"

	"github.com/marodr/coiltrace/internal/geom"
)

var (
	// ErrOutsideDomain indicates a query position outside a model's valid
	// domain. The query is never clamped or extrapolated.
	ErrOutsideDomain = errors.New("field: position outside model domain")

	// ErrNonFinite indicates a non-finite field value, typically from
	// evaluating a Biot-Savart sum on or numerically at a filament.
	ErrNonFinite = errors.New("field: non-finite field value")
)

// DomainError carries the offending position alongside ErrOutsideDomain.
type DomainError struct {
	Position geom.Vec3
	Detail   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("field: position (%g, %g, %g) outside model domain: %s",
		e.Position[0], e.Position[1], e.Position[2], e.Detail)
}

func (e *DomainError) Unwrap() error { return ErrOutsideDomain }

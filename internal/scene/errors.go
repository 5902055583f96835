package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is matched by every *CapacityError.
	ErrCapacityExceeded = errors.New("scene capacity exceeded")
	// ErrUnknownVariant is returned for a variant outside Variants.
	ErrUnknownVariant = errors.New("unknown scene variant")
	// ErrNoMeshPath is returned when a mesh variant has no model to load.
	ErrNoMeshPath = errors.New("no mesh path configured")
	// ErrNoLoader is returned when a mesh variant is built without a MeshLoader.
	ErrNoLoader = errors.New("no mesh loader linked")
)

// CapacityError reports a record count above its buffer capacity.
type CapacityError struct {
	Kind  string
	Count int
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("scene: %s count %d exceeds the limit %d", e.Kind, e.Count, e.Limit)
}

// Is makes errors.Is(err, ErrCapacityExceeded) hold.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

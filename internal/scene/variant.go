package scene

import (
	"fmt"
	"strings"
)

// Variant selects one of the canned scene configurations.
type Variant int

const (
	// SphereRing is a large sphere with an arc of small spheres resting on it.
	SphereRing Variant = iota
	// SingleMesh is one loaded model lit by the environment.
	SingleMesh
	// MeshInRoom is the loaded model standing inside a closed, lamp-lit room.
	MeshInRoom
	// RoomSpheres is a wide room with a row of spheres of increasing smoothness.
	RoomSpheres
	// CustomMesh is a model picked at runtime, lit by the environment.
	CustomMesh
)

// Variants lists every variant in selection order.
var Variants = []Variant{SphereRing, SingleMesh, MeshInRoom, RoomSpheres, CustomMesh}

var variantNames = map[Variant]string{
	SphereRing:  "sphere-ring",
	SingleMesh:  "single-mesh",
	MeshInRoom:  "mesh-in-room",
	RoomSpheres: "room-spheres",
	CustomMesh:  "custom-mesh",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant resolves a variant by name (case-insensitive) or by its 1-based number.
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, name := range variantNames {
		if name == s || fmt.Sprint(int(v)+1) == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if _, ok := variantNames[v]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

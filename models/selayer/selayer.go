// Package selayer describes the squeeze-and-excitation attention variants
// that can be inserted into a video backbone. The variants differ in which
// axes of the feature map they reweight.
package selayer

import (
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned when parsing an unrecognized variant name
var ErrUnknownVariant = errors.New("unknown SELayer variant")

// Variant names an SELayer attention variant
type Variant string

const (
	C   Variant = "SELayerC"   // channel excitation
	T   Variant = "SELayerT"   // temporal excitation
	CoC Variant = "SELayerCoC" // channel excitation via convolution
	MC  Variant = "SELayerMC"  // channel excitation with max pooling
	CT  Variant = "SELayerCT"  // channel then temporal
	TC  Variant = "SELayerTC"  // temporal then channel
	MAC Variant = "SELayerMAC" // channel excitation with max and average pooling
)

// Axis is a feature-map axis an SELayer can reweight
type Axis int

const (
	Channel Axis = iota
	Temporal
)

// Parse validates a variant name
func Parse(s string) (Variant, error) {
	v := Variant(s)
	switch v {
	case C, T, CoC, MC, CT, TC, MAC:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Axes returns the feature-map axes the variant reweights, in application order
func (v Variant) Axes() []Axis {
	switch v {
	case C, CoC, MC, MAC:
		return []Axis{Channel}
	case T:
		return []Axis{Temporal}
	case CT:
		return []Axis{Channel, Temporal}
	case TC:
		return []Axis{Temporal, Channel}
	default:
		return nil
	}
}

func (v Variant) String() string {
	return string(v)
}

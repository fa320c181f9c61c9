package model

import (
	"fmt"
	"strings"
)

// Name identifies a short-rate model family.
// Keep these values stable; they appear in scenario files and CSV output.
type Name string

const (
	Vasicek   Name = "vasicek"
	CIR       Name = "cir"
	HullWhite Name = "hull_white"
	HoLee     Name = "ho_lee"
)

// Names lists every supported model in a fixed order.
func Names() []Name {
	return []Name{Vasicek, CIR, HullWhite, HoLee}
}

// ParseName maps a user-supplied identifier onto a Name.
// Matching ignores case and surrounding whitespace; "hull-white" and "ho-lee" are accepted.
func ParseName(s string) (Name, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, n := range Names() {
		if string(n) == key {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// UsesCurve reports whether the model derives its drift from an observed zero curve.
func (n Name) UsesCurve() bool {
	return n == HullWhite || n == HoLee
}

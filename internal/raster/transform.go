// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package raster

import (
	"errors"
	"fmt"
	"math"
)

// Point2D is a 2-dimensional point with floating point coordinates.
type Point2D struct {
	X float32
	Y float32
}

func (p Point2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Transform2D is an affine 2D coordinate transformation:
// x' = A*x + B*y + C, y' = D*x + E*y + F.
type Transform2D struct {
	A, B, C float32
	D, E, F float32
}

// IdentityTransform2D returns the identity transform.
func IdentityTransform2D() Transform2D {
	return Transform2D{1, 0, 0, 0, 1, 0}
}

func (t Transform2D) String() string {
	return fmt.Sprintf("x'=%.5gx %+.5gy %+.2g, y'=%.5gx %+.5gy %+.2g",
		t.A, t.B, t.C, t.D, t.E, t.F)
}

// Apply transforms a point from the source coordinate space into the
// destination space.
func (t Transform2D) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// Invert returns the inverse transform, or an error if the transform is
// singular.
func (t Transform2D) Invert() (Transform2D, error) {
	det := t.A*t.E - t.B*t.D
	if det < 1e-8 && -det < 1e-8 {
		return Transform2D{}, errors.New("raster: transform has no inverse, determinant near zero")
	}
	return Transform2D{
		A: t.E / det,
		B: -t.B / det,
		C: (t.B*t.F - t.C*t.E) / det,
		D: -t.D / det,
		E: t.A / det,
		F: (t.C*t.D - t.A*t.F) / det,
	}, nil
}

// CoordTransform maps points between two pixel coordinate spaces, e.g. the
// preprocessed image's grid and the DEM's grid. It is satisfied by an affine
// Transform2D; the external reprojection collaborator is free to supply a
// more elaborate implementation (e.g. one backed by true CRS reprojection)
// as long as it honors Forward/Inverse as exact inverses of each other.
type CoordTransform interface {
	Forward(p Point2D) Point2D
	Inverse(p Point2D) (Point2D, error)
}

// AffineCoordTransform adapts a Transform2D to the CoordTransform interface.
type AffineCoordTransform struct {
	Fwd Transform2D
}

func (a AffineCoordTransform) Forward(p Point2D) Point2D {
	return a.Fwd.Apply(p)
}

func (a AffineCoordTransform) Inverse(p Point2D) (Point2D, error) {
	inv, err := a.Fwd.Invert()
	if err != nil {
		return Point2D{}, err
	}
	return inv.Apply(p), nil
}

// Clamp01 restricts v to [0,1], used throughout the fuzzy membership and
// defuzzification code to guard against floating-point overshoot.
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

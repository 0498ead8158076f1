/*
Copyright © 2024 the umcook authors.
This file is part of umcook.

umcook is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

umcook is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with umcook.  If not, see <http://www.gnu.org/licenses/>.
*/

package umcook

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultFractionTolerance is the absolute tolerance used when checking
// that fractions sum to one.
const DefaultFractionTolerance = 1e-6

// FractionError reports a grid cell whose fractions do not sum to one.
type FractionError struct {
	Stash    int
	Row, Col int
	Sum      float64
	Bad      int // number of cells failing the check
}

func (e *FractionError) Error() string {
	return fmt.Sprintf("umcook: stash %d fractions do not sum to 1 at %d grid cells; first at row %d, column %d (sum %g)",
		e.Stash, e.Bad, e.Row, e.Col, e.Sum)
}

// CheckFractions checks that, at every grid cell, the values of c summed
// over levels equal 1 within tol. Cells where any level is missing are
// not checked.
func CheckFractions(c *Cube, tol float64) error {
	nlev, ny, nx := len(c.Levels), c.NY(), c.NX()
	col := make([]float64, nlev)
	var ferr *FractionError
	for j := 0; j < ny; j++ {
	cells:
		for i := 0; i < nx; i++ {
			for k := 0; k < nlev; k++ {
				v := c.Level(k)[j*nx+i]
				if isMissing(v) {
					continue cells
				}
				col[k] = v
			}
			sum := floats.Sum(col)
			if floats.EqualWithinAbs(sum, 1, tol) {
				continue
			}
			if ferr == nil {
				ferr = &FractionError{Stash: c.Stash, Row: j, Col: i, Sum: sum}
			}
			ferr.Bad++
		}
	}
	if ferr != nil {
		return ferr
	}
	return nil
}

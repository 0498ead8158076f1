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

import "fmt"

// AdjustLandCover sets every surface type fraction to zero where m is
// true, then sets bare soil to soilFraction and shrub to one minus
// soilFraction there. Fractions must still sum to one everywhere
// (within tol) afterwards.
func AdjustLandCover(c *Cube, m *Mask, levels PseudoLevels, soilFraction, tol float64) error {
	if soilFraction < 0 || soilFraction > 1 {
		return fmt.Errorf("umcook: soil fraction %g is outside [0, 1]", soilFraction)
	}
	soil, err := levels.ID("soil")
	if err != nil {
		return err
	}
	shrub, err := levels.ID("shrub")
	if err != nil {
		return err
	}
	// Resolve both levels before changing anything.
	for _, id := range []int{soil, shrub} {
		if _, err := c.LevelIndex(id); err != nil {
			return err
		}
	}
	if err := SetWhere(c, m, 0); err != nil {
		return err
	}
	if err := SetLevelWhere(c, m, soil, soilFraction); err != nil {
		return err
	}
	if err := SetLevelWhere(c, m, shrub, 1-soilFraction); err != nil {
		return err
	}
	return CheckFractions(c, tol)
}

// ReduceSoilMoisture multiplies soil moisture on every soil level by
// factor where m is true.
func ReduceSoilMoisture(c *Cube, m *Mask, factor float64) error {
	if factor < 0 {
		return fmt.Errorf("umcook: reduction factor %g is negative", factor)
	}
	return ScaleWhere(c, m, factor)
}

// HalveIntoTile copies tile src into tile dst, halving it where m is
// true.
func HalveIntoTile(c *Cube, m *Mask, src, dst int, opts CopyOptions) error {
	if src == dst {
		return fmt.Errorf("umcook: source and destination tile are both %d", src)
	}
	return CopyScaleWhere(c, m, src, dst, 0.5, opts)
}

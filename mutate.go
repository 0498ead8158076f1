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

// checkMask returns ErrShapeMismatch if m does not match the horizontal
// shape of c.
func (c *Cube) checkMask(m *Mask) error {
	if m == nil || m.NY != c.NY() || m.NX != c.NX() || len(m.Values) != c.NY()*c.NX() {
		var ny, nx int
		if m != nil {
			ny, nx = m.NY, m.NX
		}
		return fmt.Errorf("%w: mask is %dx%d, stash %d field is %dx%d",
			ErrShapeMismatch, ny, nx, c.Stash, c.NY(), c.NX())
	}
	return nil
}

// SetWhere sets every level of c to v where m is true.
func SetWhere(c *Cube, m *Mask, v float64) error {
	if err := c.checkMask(m); err != nil {
		return err
	}
	for k := range c.Levels {
		setLevel(c.Level(k), m, v)
	}
	return nil
}

// SetLevelWhere sets the level with identifier id to v where m is true.
func SetLevelWhere(c *Cube, m *Mask, id int, v float64) error {
	if err := c.checkMask(m); err != nil {
		return err
	}
	k, err := c.LevelIndex(id)
	if err != nil {
		return err
	}
	setLevel(c.Level(k), m, v)
	return nil
}

func setLevel(d []float64, m *Mask, v float64) {
	for i, ok := range m.Values {
		if ok {
			d[i] = v
		}
	}
}

// ScaleWhere multiplies every level of c by factor where m is true.
// Missing values are left as they are.
func ScaleWhere(c *Cube, m *Mask, factor float64) error {
	if err := c.checkMask(m); err != nil {
		return err
	}
	for k := range c.Levels {
		d := c.Level(k)
		for i, ok := range m.Values {
			if ok && !isMissing(d[i]) {
				d[i] *= factor
			}
		}
	}
	return nil
}

// CopyOptions changes the behavior of CopyScaleWhere.
type CopyOptions struct {
	// KeepUnmasked leaves the destination level unchanged where the
	// mask is false. By default the destination takes the unscaled
	// source value there.
	KeepUnmasked bool
}

// CopyScaleWhere writes factor times the source level into the
// destination level where m is true. Where m is false the destination
// takes the source value, unless opts.KeepUnmasked is set. Missing source
// values are copied without scaling.
func CopyScaleWhere(c *Cube, m *Mask, src, dst int, factor float64, opts CopyOptions) error {
	if err := c.checkMask(m); err != nil {
		return err
	}
	ks, err := c.LevelIndex(src)
	if err != nil {
		return err
	}
	kd, err := c.LevelIndex(dst)
	if err != nil {
		return err
	}
	s := append([]float64(nil), c.Level(ks)...)
	d := c.Level(kd)
	for i, ok := range m.Values {
		switch {
		case ok && !isMissing(s[i]):
			d[i] = s[i] * factor
		case ok || !opts.KeepUnmasked:
			d[i] = s[i]
		}
	}
	return nil
}

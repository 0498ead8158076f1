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

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/umcook/umfile"
)

// Cube holds every field of one stash code as a [level, row, col] array.
type Cube struct {
	Stash int

	// Levels gives the pseudo-level of each slice of Data, or the model
	// level for fields without pseudo-levels.
	Levels []int

	Grid Grid
	Data *sparse.DenseArray

	// Lookups holds the lookup entry each level was loaded from.
	Lookups []umfile.Lookup
}

// LoadCube gathers the fields of f with the given stash code, in file
// order, into a cube.
func LoadCube(f *umfile.File, stash int) (*Cube, error) {
	fields := f.FieldsByStash(stash)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: stash %d", umfile.ErrNotFound, stash)
	}
	g := GridFromLookup(&fields[0].Lookup)
	usePseudo := false
	for _, fld := range fields {
		if fld.PseudoLevel() > 0 {
			usePseudo = true
		}
	}
	c := &Cube{
		Stash: stash,
		Grid:  g,
		Data:  sparse.ZerosDense(len(fields), g.NY, g.NX),
	}
	n := g.NY * g.NX
	for k, fld := range fields {
		if fld.Rows() != g.NY || fld.Cols() != g.NX {
			return nil, fmt.Errorf("umcook: stash %d field %d is %dx%d but the first field is %dx%d",
				stash, fld.Index, fld.Rows(), fld.Cols(), g.NY, g.NX)
		}
		d, err := fld.Data()
		if err != nil {
			return nil, err
		}
		copy(c.Data.Elements[k*n:(k+1)*n], d)
		id := fld.Level()
		if usePseudo {
			id = fld.PseudoLevel()
		}
		c.Levels = append(c.Levels, id)
		c.Lookups = append(c.Lookups, fld.Lookup)
	}
	return c, nil
}

// NY returns the number of rows.
func (c *Cube) NY() int { return c.Data.Shape[1] }

// NX returns the number of columns.
func (c *Cube) NX() int { return c.Data.Shape[2] }

// LevelIndex returns the position in the cube of the level with the
// given identifier.
func (c *Cube) LevelIndex(id int) (int, error) {
	for k, l := range c.Levels {
		if l == id {
			return k, nil
		}
	}
	return -1, fmt.Errorf("%w: stash %d has no level %d (levels are %v)", ErrLevelNotFound, c.Stash, id, c.Levels)
}

// Level returns the values of level k. The slice shares memory with
// the cube.
func (c *Cube) Level(k int) []float64 {
	n := c.NY() * c.NX()
	return c.Data.Elements[k*n : (k+1)*n]
}

// Copy returns a deep copy of c.
func (c *Cube) Copy() *Cube {
	return &Cube{
		Stash:   c.Stash,
		Levels:  append([]int(nil), c.Levels...),
		Grid:    c.Grid,
		Data:    c.Data.Copy(),
		Lookups: append([]umfile.Lookup(nil), c.Lookups...),
	}
}

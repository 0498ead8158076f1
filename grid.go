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
	"math"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/umcook/umfile"
)

// Grid is a regular latitude-longitude grid described the way UM lookup
// headers describe it: the first point of each axis lies one spacing
// beyond the zeroth point (BZX, BZY).
type Grid struct {
	X0, DX float64
	Y0, DY float64
	NX, NY int
}

// GridFromLookup returns the grid of a field.
func GridFromLookup(l *umfile.Lookup) Grid {
	return Grid{
		X0: l.GetReal(umfile.BZX),
		DX: l.GetReal(umfile.BDX),
		Y0: l.GetReal(umfile.BZY),
		DY: l.GetReal(umfile.BDY),
		NX: l.Cols(),
		NY: l.Rows(),
	}
}

// Lon returns the longitude of column i.
func (g Grid) Lon(i int) float64 { return g.X0 + float64(i+1)*g.DX }

// Lat returns the latitude of row j.
func (g Grid) Lat(j int) float64 { return g.Y0 + float64(j+1)*g.DY }

// lonEdges returns the western and eastern edges of column i.
func (g Grid) lonEdges(i int) (float64, float64) {
	c := g.Lon(i)
	h := math.Abs(g.DX) / 2
	return c - h, c + h
}

// latEdges returns the southern and northern edges of row j, limited
// to the poles.
func (g Grid) latEdges(j int) (float64, float64) {
	c := g.Lat(j)
	h := math.Abs(g.DY) / 2
	return math.Max(c-h, -90), math.Min(c+h, 90)
}

// Bounds returns the extent of the grid in degrees.
func (g Grid) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, i := range []int{0, g.NX - 1} {
		for _, j := range []int{0, g.NY - 1} {
			w, e := g.lonEdges(i)
			s, n := g.latEdges(j)
			b.Extend(&geom.Bounds{Min: geom.Point{X: w, Y: s}, Max: geom.Point{X: e, Y: n}})
		}
	}
	return b
}

// Equal reports whether g and o describe the same grid.
func (g Grid) Equal(o Grid) bool {
	const tol = 1e-6
	return g.NX == o.NX && g.NY == o.NY &&
		math.Abs(g.X0-o.X0) < tol && math.Abs(g.DX-o.DX) < tol &&
		math.Abs(g.Y0-o.Y0) < tol && math.Abs(g.DY-o.DY) < tol
}

// setLookup writes the grid into a lookup entry.
func (g Grid) setLookup(l *umfile.Lookup) {
	l.SetReal(umfile.BZX, g.X0)
	l.SetReal(umfile.BDX, g.DX)
	l.SetReal(umfile.BZY, g.Y0)
	l.SetReal(umfile.BDY, g.DY)
	l.SetInt(umfile.LBNPT, int64(g.NX))
	l.SetInt(umfile.LBROW, int64(g.NY))
}

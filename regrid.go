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
	"math"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/umcook/umfile"
)

// overlap is the share of one source cell in one target cell along
// one axis.
type overlap struct {
	src    int
	weight float64
}

// axisOverlaps returns, for each of nt target cells, the source cells
// that overlap it and the length of the overlap. target and source
// return the lower and upper edge of a cell; period is the length of a
// cyclic axis, or zero.
func axisOverlaps(nt, ns int, target, source func(int) (float64, float64), period float64) [][]overlap {
	o := make([][]overlap, nt)
	for t := 0; t < nt; t++ {
		tl, tu := target(t)
		for s := 0; s < ns; s++ {
			sl, su := source(s)
			var w float64
			shifts := []float64{0}
			if period > 0 {
				shifts = []float64{-period, 0, period}
			}
			for _, shift := range shifts {
				w += math.Max(0, math.Min(tu, su+shift)-math.Max(tl, sl+shift))
			}
			if w > 0 {
				o[t] = append(o[t], overlap{src: s, weight: w})
			}
		}
	}
	return o
}

// sinLatEdges converts the latitude edges of row j to sines, so that
// overlap lengths are proportional to area on the sphere.
func sinLatEdges(g Grid) func(int) (float64, float64) {
	return func(j int) (float64, float64) {
		s, n := g.latEdges(j)
		if s > n {
			s, n = n, s
		}
		return math.Sin(s * math.Pi / 180), math.Sin(n * math.Pi / 180)
	}
}

func lonEdges(g Grid) func(int) (float64, float64) {
	return func(i int) (float64, float64) {
		w, e := g.lonEdges(i)
		if w > e {
			w, e = e, w
		}
		return w, e
	}
}

// AreaWeighted regrids src onto target with a first-order conservative
// scheme: each target cell takes the mean of the overlapping source
// cells weighted by the area of the overlap. Missing source values do
// not contribute; target cells with no contributing area are missing.
func AreaWeighted(src *Cube, target Grid) (*Cube, error) {
	if target.NX <= 0 || target.NY <= 0 {
		return nil, fmt.Errorf("umcook: target grid is %dx%d", target.NY, target.NX)
	}
	if !src.Grid.Bounds().Overlaps(target.Bounds()) {
		return nil, fmt.Errorf("umcook: source and target grids do not overlap")
	}
	lats := axisOverlaps(target.NY, src.Grid.NY, sinLatEdges(target), sinLatEdges(src.Grid), 0)
	lons := axisOverlaps(target.NX, src.Grid.NX, lonEdges(target), lonEdges(src.Grid), 360)

	o := &Cube{
		Stash:   src.Stash,
		Levels:  append([]int(nil), src.Levels...),
		Grid:    target,
		Data:    sparse.ZerosDense(len(src.Levels), target.NY, target.NX),
		Lookups: append([]umfile.Lookup(nil), src.Lookups...),
	}
	for k := range src.Levels {
		in := src.Level(k)
		out := o.Level(k)
		for jt := 0; jt < target.NY; jt++ {
			for it := 0; it < target.NX; it++ {
				var sum, area float64
				for _, lat := range lats[jt] {
					for _, lon := range lons[it] {
						v := in[lat.src*src.Grid.NX+lon.src]
						if isMissing(v) || math.IsNaN(v) {
							continue
						}
						w := lat.weight * lon.weight
						sum += w * v
						area += w
					}
				}
				if area > 0 {
					out[jt*target.NX+it] = sum / area
				} else {
					out[jt*target.NX+it] = MDI
				}
			}
		}
	}
	for k := range o.Lookups {
		target.setLookup(&o.Lookups[k])
	}
	return o, nil
}

// MakeConsistentWithLSM masks the points of c that are not land and fills
// land points holding missing values from the nearest land point with
// data on the same level. If invert is false, true values of lsm mark
// points to be masked; if invert is true, they mark land.
func MakeConsistentWithLSM(c *Cube, lsm *Mask, invert bool) error {
	if err := c.checkMask(lsm); err != nil {
		return err
	}
	land := lsm
	if !invert {
		land = lsm.Invert()
	}
	ny, nx := c.NY(), c.NX()
	for k := range c.Levels {
		d := c.Level(k)
		var fill []int
		for i, isLand := range land.Values {
			switch {
			case !isLand:
				d[i] = MDI
			case isMissing(d[i]):
				fill = append(fill, i)
			}
		}
		if len(fill) == 0 {
			continue
		}
		valid := make([]bool, len(d))
		nValid := 0
		for i := range d {
			if land.Values[i] && !isMissing(d[i]) {
				valid[i] = true
				nValid++
			}
		}
		if nValid == 0 {
			return fmt.Errorf("umcook: stash %d level %d has no land points with data to fill from",
				c.Stash, c.Levels[k])
		}
		src := make([]int, len(fill))
		for n, i := range fill {
			src[n] = nearest(valid, ny, nx, i/nx, i%nx)
		}
		// Fill after searching so filled points are not used as sources.
		for n, i := range fill {
			d[i] = d[src[n]]
		}
	}
	return nil
}

// nearest returns the index of the valid point closest to (j, i) in index
// space. Ties go to the point that comes first in row-major order.
func nearest(valid []bool, ny, nx, j, i int) int {
	maxR := ny
	if nx > maxR {
		maxR = nx
	}
	best, bestD := -1, math.Inf(1)
	limit, found := maxR, false
	for r := 1; r <= limit; r++ {
		for jj := j - r; jj <= j+r; jj++ {
			if jj < 0 || jj >= ny {
				continue
			}
			for ii := i - r; ii <= i+r; ii++ {
				if ii < 0 || ii >= nx {
					continue
				}
				if abs(jj-j) != r && abs(ii-i) != r {
					continue // inside the ring
				}
				idx := jj*nx + ii
				if !valid[idx] {
					continue
				}
				dist := math.Hypot(float64(jj-j), float64(ii-i))
				if dist < bestD || (dist == bestD && idx < best) {
					best, bestD = idx, dist
				}
			}
		}
		if best >= 0 && !found {
			// A closer point can still lie in rings up to r*sqrt(2).
			limit, found = int(math.Ceil(float64(r)*math.Sqrt2)), true
		}
	}
	return best
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

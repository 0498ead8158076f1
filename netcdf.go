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
	"os"

	"github.com/ctessum/cdf"
)

// WriteNetCDF writes c to w as NetCDF variable varName with dimensions
// (pseudo_level, latitude, longitude). Missing values are written as
// _FillValue.
func WriteNetCDF(w *os.File, c *Cube, varName string) error {
	nlev, ny, nx := len(c.Levels), c.NY(), c.NX()
	h := cdf.NewHeader(
		[]string{"pseudo_level", "latitude", "longitude"},
		[]int{nlev, ny, nx})
	h.AddAttribute("", "comment", "written by umcook")
	h.AddAttribute("", "um_stash_source", fmt.Sprintf("m01s%02di%03d", c.Stash/1000, c.Stash%1000))

	h.AddVariable("pseudo_level", []string{"pseudo_level"}, []int32{0})
	h.AddVariable("latitude", []string{"latitude"}, []float64{0})
	h.AddAttribute("latitude", "units", "degrees_north")
	h.AddVariable("longitude", []string{"longitude"}, []float64{0})
	h.AddAttribute("longitude", "units", "degrees_east")
	h.AddVariable(varName, []string{"pseudo_level", "latitude", "longitude"}, []float64{0})
	h.AddAttribute(varName, "_FillValue", []float64{MDI})
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("umcook: writing netcdf header: %v", err)
	}

	levels := make([]int32, nlev)
	for k, l := range c.Levels {
		levels[k] = int32(l)
	}
	lats := make([]float64, ny)
	for j := range lats {
		lats[j] = c.Grid.Lat(j)
	}
	lons := make([]float64, nx)
	for i := range lons {
		lons[i] = c.Grid.Lon(i)
	}
	vars := []struct {
		name string
		data interface{}
	}{
		{"pseudo_level", levels},
		{"latitude", lats},
		{"longitude", lons},
		{varName, c.Data.Elements},
	}
	for _, v := range vars {
		if err := writeNCF(f, v.name, v.data); err != nil {
			return fmt.Errorf("umcook: writing variable %s to netcdf file: %v", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeNCF writes the whole of variable name. The end corner is given
// explicitly so the writer does not report io.EOF on the last value.
func writeNCF(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(data)
	return err
}

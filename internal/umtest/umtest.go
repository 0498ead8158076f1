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

// Package umtest builds small UM files and NetCDF masks for tests.
package umtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/umcook/umfile"
)

// Grid of the test files: NX columns starting at X0+DX, NY rows starting
// at Y0+DY.
const (
	X0 = 140.0
	DX = 1.0
	Y0 = -40.0
	DY = 1.0
)

// Field describes one field of a test file.
type Field struct {
	Stash       int
	PseudoLevel int
	Level       int
	DataType    int64 // umfile.TypeReal if zero
	Data        []float64
}

// NewFile returns a new in-memory file of the given dataset type holding
// fields on an ny x nx grid.
func NewFile(t testing.TB, datasetType int64, ny, nx int, fields []Field) *umfile.File {
	return NewFileGrid(t, datasetType, ny, nx, X0, DX, Y0, DY, fields)
}

// NewFileGrid is NewFile with an explicit grid.
func NewFileGrid(t testing.TB, datasetType int64, ny, nx int, x0, dx, y0, dy float64, fields []Field) *umfile.File {
	t.Helper()
	h := umfile.NewFixedHeader(datasetType)
	h.Set(umfile.FHHorizGridType, 0)
	ic := make([]int64, 46)
	for i := range ic {
		ic[i] = umfile.IMDI
	}
	ic[umfile.ICNumCols-1] = int64(nx)
	ic[umfile.ICNumRows-1] = int64(ny)
	rc := make([]float64, 38)
	for i := range rc {
		rc[i] = umfile.MDI
	}
	rc[umfile.RCColSpacing-1] = dx
	rc[umfile.RCRowSpacing-1] = dy
	rc[umfile.RCStartLat-1] = y0 + dy
	rc[umfile.RCStartLon-1] = x0 + dx

	f := umfile.New(h, ic, rc)
	for _, fs := range fields {
		l := umfile.NewLookup()
		l.SetInt(umfile.LBROW, int64(ny))
		l.SetInt(umfile.LBNPT, int64(nx))
		l.SetInt(umfile.LBCODE, 1)
		l.SetInt(umfile.LBLEV, int64(fs.Level))
		l.SetInt(umfile.LBUSER4, int64(fs.Stash))
		l.SetInt(umfile.LBUSER5, int64(fs.PseudoLevel))
		l.SetInt(umfile.LBUSER7, 1)
		dt := fs.DataType
		if dt == 0 {
			dt = umfile.TypeReal
		}
		l.SetInt(umfile.LBUSER1, dt)
		l.SetReal(umfile.BZX, x0)
		l.SetReal(umfile.BDX, dx)
		l.SetReal(umfile.BZY, y0)
		l.SetReal(umfile.BDY, dy)
		if _, err := f.AddField(l, fs.Data); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

// WriteFile writes f to name in dir and returns its path.
func WriteFile(t testing.TB, dir, name string, f *umfile.File) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := f.WriteFile(path, true); err != nil {
		t.Fatal(err)
	}
	return path
}

// Fill returns n copies of v.
func Fill(n int, v float64) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = v
	}
	return o
}

// WriteMask writes a NetCDF file holding a byte variable named varName
// with dimensions (lat, lon) and returns its path. Non-zero values of
// mask become 1.
func WriteMask(t testing.TB, dir, name, varName string, ny, nx int, mask []bool) string {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	h := cdf.NewHeader([]string{"lat", "lon"}, []int{ny, nx})
	h.AddVariable(varName, []string{"lat", "lon"}, []uint8{0})
	h.AddAttribute(varName, "long_name", "fire mask")
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]uint8, len(mask))
	for i, m := range mask {
		if m {
			data[i] = 1
		}
	}
	end := f.Header.Lengths(varName)
	if _, err := f.Writer(varName, make([]int, len(end)), end).Write(data); err != nil {
		t.Fatal(err)
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		t.Fatal(err)
	}
	return path
}

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
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/umcook/umfile"
)

// Mask is a boolean [row, col] array.
type Mask struct {
	NY, NX int
	Values []bool
}

// NewMask returns a mask with every value false.
func NewMask(ny, nx int) *Mask {
	return &Mask{NY: ny, NX: nx, Values: make([]bool, ny*nx)}
}

// Count returns the number of true values.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Values {
		if v {
			n++
		}
	}
	return n
}

// Invert returns a mask that is true where m is false.
func (m *Mask) Invert() *Mask {
	o := NewMask(m.NY, m.NX)
	for i, v := range m.Values {
		o.Values[i] = !v
	}
	return o
}

// MaskFromField returns a mask that is true where the field is neither
// zero nor missing, as for logical land-sea mask fields.
func MaskFromField(fld *umfile.Field) (*Mask, error) {
	d, err := fld.Data()
	if err != nil {
		return nil, err
	}
	m := NewMask(fld.Rows(), fld.Cols())
	for i, v := range d {
		m.Values[i] = v != 0 && v != umfile.MDI && v != umfile.IMDI
	}
	return m, nil
}

// LoadMaskNetCDF reads a mask from variable varName of the NetCDF file
// at path. If varName is empty the file must hold exactly one variable
// that is not a coordinate variable. A variable with an unlimited
// dimension must hold exactly one record. Dimensions of length 1 are
// dropped; the remaining variable must be two-dimensional. Non-zero
// values are true.
func LoadMaskNetCDF(path, varName string) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("umcook: opening mask file: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("umcook: reading mask file %s: %v", path, err)
	}
	if varName == "" {
		if varName, err = maskVariable(ff.Header); err != nil {
			return nil, fmt.Errorf("umcook: mask file %s: %v", path, err)
		}
	}
	lengths := ff.Header.Lengths(varName)
	if len(lengths) == 0 {
		return nil, fmt.Errorf("umcook: mask file %s: variable %s not in file", path, varName)
	}
	var start, end []int
	if ff.Header.IsRecordVariable(varName) {
		fi, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("umcook: reading mask file %s: %v", path, err)
		}
		if n := ff.Header.NumRecs(fi.Size()); n != 1 {
			return nil, fmt.Errorf("umcook: mask file %s: variable %s has %d records; expected one",
				path, varName, n)
		}
		lengths = append([]int{1}, lengths[1:]...)
		start, end = make([]int, len(lengths)), make([]int, len(lengths))
		end[0] = 1
	}
	var shape []int
	for _, l := range lengths {
		if l != 1 {
			shape = append(shape, l)
		}
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("umcook: mask file %s: variable %s has shape %v; it must be two-dimensional",
			path, varName, lengths)
	}

	r := ff.Reader(varName, start, end)
	buf := r.Zero(shape[0] * shape[1])
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("umcook: reading mask variable %s: %v", varName, err)
	}
	m := NewMask(shape[0], shape[1])
	switch b := buf.(type) {
	case []uint8:
		for i, v := range b {
			m.Values[i] = v != 0
		}
	case []int16:
		for i, v := range b {
			m.Values[i] = v != 0
		}
	case []int32:
		for i, v := range b {
			m.Values[i] = v != 0
		}
	case []float32:
		for i, v := range b {
			m.Values[i] = v != 0 && !math.IsNaN(float64(v))
		}
	case []float64:
		for i, v := range b {
			m.Values[i] = v != 0 && !math.IsNaN(v)
		}
	default:
		return nil, fmt.Errorf("umcook: mask variable %s has unsupported type %T", varName, buf)
	}
	return m, nil
}

// maskVariable returns the only variable in h that is not named after
// one of the dimensions.
func maskVariable(h *cdf.Header) (string, error) {
	var candidates []string
	for _, v := range h.Variables() {
		dims := h.Dimensions(v)
		if len(dims) == 1 && dims[0] == v {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) != 1 {
		return "", fmt.Errorf("expected one data variable but found %v; choose one with mask_var", candidates)
	}
	return candidates[0], nil
}

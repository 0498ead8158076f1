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

package umfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
)

// ErrNotFound is returned when no field matches a query.
var ErrNotFound = errors.New("umfile: field not found")

// File is a UM file held in memory.
type File struct {
	Header     FixedHeader
	IntConsts  []int64
	RealConsts []float64
	Fields     []*Field

	raw []byte
}

// Field is one record of a File.
type Field struct {
	Lookup

	// Index is the position of the field in the lookup table.
	Index int

	offset int64 // byte offset of the data record
	data   []float64
	dirty  bool
	file   *File
}

// Open reads the file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	uf, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("umfile: reading %s: %v", path, err)
	}
	return uf, nil
}

// Read reads a complete file from r.
func Read(r io.Reader) (*File, error) {
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw)%WordSize != 0 {
		return nil, fmt.Errorf("umfile: file length %d is not a whole number of words", len(raw))
	}
	if len(raw) < FixedHeaderLen*WordSize {
		return nil, fmt.Errorf("umfile: file is too short (%d bytes) to hold a fixed-length header", len(raw))
	}
	f := &File{raw: raw}
	for i := range f.Header {
		f.Header[i] = f.intAt(int64(i))
	}

	if start, n := components[0].words(&f.Header); n > 0 {
		if err := f.checkSection(components[0].name, start, n); err != nil {
			return nil, err
		}
		f.IntConsts = make([]int64, n)
		for i := range f.IntConsts {
			f.IntConsts[i] = f.intAt(start - 1 + int64(i))
		}
	}
	if start, n := components[1].words(&f.Header); n > 0 {
		if err := f.checkSection(components[1].name, start, n); err != nil {
			return nil, err
		}
		f.RealConsts = make([]float64, n)
		for i := range f.RealConsts {
			f.RealConsts[i] = f.realAt(start - 1 + int64(i))
		}
	}
	for _, c := range components[2:] {
		if start, n := c.words(&f.Header); n > 0 {
			if err := f.checkSection(c.name, start, n); err != nil {
				return nil, err
			}
		}
	}

	lookupStart := f.Header.Get(FHLookupStart)
	dim1 := f.Header.Get(FHLookupDim1)
	dim2 := f.Header.Get(FHLookupDim2)
	if lookupStart <= 0 || dim2 <= 0 {
		return f, nil
	}
	if dim1 != LookupLen {
		return nil, fmt.Errorf("umfile: lookup entries are %d words long; expected %d", dim1, LookupLen)
	}
	if err := f.checkSection("lookup table", lookupStart, dim1*dim2); err != nil {
		return nil, err
	}

	// Running data position for files that leave LBEGIN unset.
	next := f.Header.Get(FHDataStart) - 1
	for i := int64(0); i < dim2; i++ {
		base := lookupStart - 1 + i*LookupLen
		var l Lookup
		for j := range l.Int {
			l.Int[j] = f.intAt(base + int64(j))
		}
		for j := range l.Real {
			l.Real[j] = f.realAt(base + lookupInts + int64(j))
		}
		if l.unused() {
			continue
		}
		begin := l.GetInt(LBEGIN)
		if begin <= 0 {
			begin = next
		}
		diskLen := l.GetInt(LBNREC)
		if diskLen <= 0 {
			diskLen = l.GetInt(LBLREC)
		}
		next = begin + diskLen
		f.Fields = append(f.Fields, &Field{
			Lookup: l,
			Index:  int(i),
			offset: begin * WordSize,
			file:   f,
		})
	}
	return f, nil
}

func (f *File) checkSection(name string, start, n int64) error {
	if (start-1+n)*WordSize > int64(len(f.raw)) {
		return fmt.Errorf("umfile: %s (words %d to %d) extend past the end of the file", name, start, start-1+n)
	}
	return nil
}

func (f *File) intAt(word int64) int64 {
	return int64(binary.BigEndian.Uint64(f.raw[word*WordSize:]))
}

func (f *File) realAt(word int64) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(f.raw[word*WordSize:]))
}

// FieldsByStash returns the fields with the given stash code in file order.
func (f *File) FieldsByStash(stash int) []*Field {
	var o []*Field
	for _, fld := range f.Fields {
		if fld.Stash() == stash {
			o = append(o, fld)
		}
	}
	return o
}

// Field returns the first field with the given stash code and pseudo-level.
func (f *File) Field(stash, pseudoLevel int) (*Field, error) {
	for _, fld := range f.Fields {
		if fld.Stash() == stash && fld.PseudoLevel() == pseudoLevel {
			return fld, nil
		}
	}
	return nil, fmt.Errorf("%w: stash %d pseudo-level %d", ErrNotFound, stash, pseudoLevel)
}

// Size returns the length of the file in bytes.
func (f *File) Size() int64 { return int64(len(f.raw)) }

// Len returns the number of values in the field.
func (fld *Field) Len() int { return fld.Rows() * fld.Cols() }

// Data returns the values of the field, row by row. Integer and logical
// data are converted to float64. The returned slice is a copy; use
// SetData to record changes.
func (fld *Field) Data() ([]float64, error) {
	if fld.data != nil {
		return append([]float64(nil), fld.data...), nil
	}
	if fld.Pack() != 0 {
		return nil, fmt.Errorf("umfile: field %d (stash %d): packing code %d is not supported",
			fld.Index, fld.Stash(), fld.Pack())
	}
	n := fld.Len()
	if n <= 0 {
		return nil, fmt.Errorf("umfile: field %d (stash %d) has %d rows and %d columns",
			fld.Index, fld.Stash(), fld.Rows(), fld.Cols())
	}
	if fld.offset+int64(n)*WordSize > int64(len(fld.file.raw)) {
		return nil, fmt.Errorf("umfile: field %d (stash %d) data extends past the end of the file",
			fld.Index, fld.Stash())
	}
	word := fld.offset / WordSize
	d := make([]float64, n)
	switch fld.DataType() {
	case TypeInteger, TypeLogical:
		for i := range d {
			d[i] = float64(fld.file.intAt(word + int64(i)))
		}
	default:
		for i := range d {
			d[i] = fld.file.realAt(word + int64(i))
		}
	}
	fld.data = d
	return append([]float64(nil), d...), nil
}

// SetData replaces the values of the field. The field must be unpacked
// and d must hold Rows*Cols values.
func (fld *Field) SetData(d []float64) error {
	if fld.Pack() != 0 {
		return fmt.Errorf("umfile: field %d (stash %d): cannot replace data with packing code %d",
			fld.Index, fld.Stash(), fld.Pack())
	}
	if len(d) != fld.Len() {
		return fmt.Errorf("umfile: field %d (stash %d) holds %d values but %d were supplied",
			fld.Index, fld.Stash(), fld.Len(), len(d))
	}
	fld.data = append([]float64(nil), d...)
	fld.dirty = true
	return nil
}

// Modified reports whether SetData has been called on the field.
func (fld *Field) Modified() bool { return fld.dirty }

// RawData returns the on-disk bytes of the data record.
func (fld *Field) RawData() []byte {
	n := fld.GetInt(LBNREC)
	if n <= 0 {
		n = fld.GetInt(LBLREC)
	}
	end := fld.offset + n*WordSize
	if end > int64(len(fld.file.raw)) || fld.offset < 0 {
		return nil
	}
	return fld.file.raw[fld.offset:end]
}

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
	"path/filepath"
)

// New returns an empty file with the given headers. Fields are added with
// AddField and the layout of the file is fixed when it is first written.
func New(h FixedHeader, intConsts []int64, realConsts []float64) *File {
	return &File{
		Header:     h,
		IntConsts:  intConsts,
		RealConsts: realConsts,
	}
}

// AddField appends a field holding data to a file created with New.
func (f *File) AddField(l Lookup, data []float64) (*Field, error) {
	if f.raw != nil {
		return nil, errors.New("umfile: fields can only be added to new files")
	}
	if n := l.Rows() * l.Cols(); n <= 0 || n != len(data) {
		return nil, fmt.Errorf("umfile: field with %d rows and %d columns cannot hold %d values",
			l.Rows(), l.Cols(), len(data))
	}
	l.SetInt(LBPACK, 0)
	fld := &Field{
		Lookup: l,
		Index:  len(f.Fields),
		data:   append([]float64(nil), data...),
		dirty:  true,
		file:   f,
	}
	f.Fields = append(f.Fields, fld)
	return fld, nil
}

// layout assigns positions to every section of a new file and allocates
// its contents.
func (f *File) layout() {
	h := &f.Header
	pos := int64(FixedHeaderLen + 1) // next free word, 1-based

	place := func(start, dim1 int, n int64) {
		if n == 0 {
			h.Set(start, IMDI)
			h.Set(dim1, IMDI)
			return
		}
		h.Set(start, pos)
		h.Set(dim1, n)
		pos += n
	}
	place(FHIntConstStart, FHIntConstLen, int64(len(f.IntConsts)))
	place(FHRealConstStart, FHRealConstLen, int64(len(f.RealConsts)))
	for _, c := range components[2:] {
		h.Set(c.start, IMDI)
		h.Set(c.dim1, IMDI)
		h.Set(c.dim2, IMDI)
	}

	h.Set(FHLookupStart, pos)
	h.Set(FHLookupDim1, LookupLen)
	h.Set(FHLookupDim2, int64(len(f.Fields)))
	pos += int64(len(f.Fields)) * LookupLen

	dataStart := pos
	h.Set(FHDataStart, dataStart)
	for _, fld := range f.Fields {
		n := int64(fld.Len())
		fld.SetInt(LBLREC, n)
		fld.SetInt(LBNREC, n)
		fld.SetInt(LBEGIN, pos-1)
		fld.SetInt(LBUSER2, pos-dataStart+1)
		fld.offset = (pos - 1) * WordSize
		pos += n
	}
	h.Set(FHDataLen, pos-dataStart)
	f.raw = make([]byte, (pos-1)*WordSize)
}

// Write writes the file to w. Header words, constants and lookup entries
// are written from their in-memory values; data records are copied from
// the file read from disk unless the field was changed with SetData.
func (f *File) Write(w io.Writer) error {
	if f.raw == nil {
		f.layout()
	}
	out := make([]byte, len(f.raw))
	copy(out, f.raw)

	putInt := func(word, v int64) { binary.BigEndian.PutUint64(out[word*WordSize:], uint64(v)) }
	putReal := func(word int64, v float64) { putInt(word, int64(math.Float64bits(v))) }

	for i, v := range f.Header {
		putInt(int64(i), v)
	}
	if start, n := components[0].words(&f.Header); n > 0 {
		if int64(len(f.IntConsts)) != n {
			return fmt.Errorf("umfile: header declares %d integer constants but there are %d", n, len(f.IntConsts))
		}
		for i, v := range f.IntConsts {
			putInt(start-1+int64(i), v)
		}
	}
	if start, n := components[1].words(&f.Header); n > 0 {
		if int64(len(f.RealConsts)) != n {
			return fmt.Errorf("umfile: header declares %d real constants but there are %d", n, len(f.RealConsts))
		}
		for i, v := range f.RealConsts {
			putReal(start-1+int64(i), v)
		}
	}

	lookupStart := f.Header.Get(FHLookupStart)
	for _, fld := range f.Fields {
		base := lookupStart - 1 + int64(fld.Index)*LookupLen
		if (base+LookupLen)*WordSize > int64(len(out)) {
			return fmt.Errorf("umfile: lookup entry %d lies outside the file", fld.Index)
		}
		for j, v := range fld.Int {
			putInt(base+int64(j), v)
		}
		for j, v := range fld.Real {
			putReal(base+lookupInts+int64(j), v)
		}
		if !fld.dirty {
			continue
		}
		word := fld.offset / WordSize
		if (word+int64(len(fld.data)))*WordSize > int64(len(out)) {
			return fmt.Errorf("umfile: data for field %d lies outside the file", fld.Index)
		}
		switch fld.DataType() {
		case TypeInteger, TypeLogical:
			for j, v := range fld.data {
				putInt(word+int64(j), int64(math.Round(v)))
			}
		default:
			for j, v := range fld.data {
				putReal(word+int64(j), v)
			}
		}
	}
	_, err := w.Write(out)
	return err
}

// WriteFile writes the file to path. If validate is true the file is
// checked with Validate first and nothing is written if it fails. The
// output is written to a temporary file in the same directory and then
// renamed, so a failed write leaves no file at path.
func (f *File) WriteFile(path string, validate bool) error {
	if validate {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	tmp, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("umfile: %v", err)
	}
	defer os.Remove(tmp.Name())
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("umfile: %v", err)
	}
	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("umfile: writing %s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("umfile: writing %s: %v", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("umfile: %v", err)
	}
	return nil
}

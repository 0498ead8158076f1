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
	"fmt"
	"math"
	"strings"
)

// gridTolerance is the relative tolerance used when comparing field grid
// spacing with the real constants.
const gridTolerance = 1e-6

// ValidationError lists the problems found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("umfile: file failed validation: %s", strings.Join(e.Problems, "; "))
}

// Validate checks that the headers and lookup table are consistent with
// each other and with the size of the file.
func (f *File) Validate() error {
	if f.raw == nil {
		f.layout()
	}
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch dt := f.Header.DatasetType(); dt {
	case DatasetDump, DatasetFieldsFile, DatasetAncillary:
	default:
		add("unsupported dataset type %d", dt)
	}
	if n := f.Header.Get(FHLookupDim1); len(f.Fields) > 0 && n != LookupLen {
		add("lookup entries are %d words long; expected %d", n, LookupLen)
	}
	if n := f.Header.Get(FHLookupDim2); int64(len(f.Fields)) > n {
		add("%d fields but the lookup table has %d entries", len(f.Fields), n)
	}
	dataStart := (f.Header.Get(FHDataStart) - 1) * WordSize
	if len(f.Fields) > 0 && (dataStart < 0 || dataStart > f.Size()) {
		add("data start word %d is outside the file", f.Header.Get(FHDataStart))
	}

	checkGrid := f.Header.DatasetType() == DatasetAncillary
	var nx, ny int64
	if checkGrid && len(f.IntConsts) >= ICNumRows {
		nx, ny = f.IntConsts[ICNumCols-1], f.IntConsts[ICNumRows-1]
	}
	var dx, dy float64
	if checkGrid && len(f.RealConsts) >= RCRowSpacing {
		dx, dy = f.RealConsts[RCColSpacing-1], f.RealConsts[RCRowSpacing-1]
	}

	for _, fld := range f.Fields {
		n := int64(fld.Len())
		if n <= 0 {
			add("field %d (stash %d) has %d rows and %d columns", fld.Index, fld.Stash(), fld.Rows(), fld.Cols())
			continue
		}
		if fld.Pack() == 0 && fld.GetInt(LBLREC) < n {
			add("field %d (stash %d) record length %d is shorter than its %d values",
				fld.Index, fld.Stash(), fld.GetInt(LBLREC), n)
		}
		if fld.dirty && fld.Pack() != 0 {
			add("field %d (stash %d) was modified but has packing code %d", fld.Index, fld.Stash(), fld.Pack())
		}
		if fld.offset < dataStart && len(f.Fields) > 0 {
			add("field %d (stash %d) data begins before the data section", fld.Index, fld.Stash())
		}
		diskLen := fld.GetInt(LBNREC)
		if diskLen <= 0 {
			diskLen = fld.GetInt(LBLREC)
		}
		if fld.offset+diskLen*WordSize > f.Size() {
			add("field %d (stash %d) data extends past the end of the file", fld.Index, fld.Stash())
		}
		for _, v := range fld.data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				add("field %d (stash %d) contains non-finite values", fld.Index, fld.Stash())
				break
			}
		}
		if nx > 0 && ny > 0 && (int64(fld.Cols()) != nx || int64(fld.Rows()) != ny) {
			add("field %d (stash %d) is %dx%d but the file grid is %dx%d",
				fld.Index, fld.Stash(), fld.Rows(), fld.Cols(), ny, nx)
		}
		if dx > 0 && dy > 0 {
			if !closeRel(fld.GetReal(BDX), dx) || !closeRel(fld.GetReal(BDY), dy) {
				add("field %d (stash %d) grid spacing (%g, %g) does not match the file (%g, %g)",
					fld.Index, fld.Stash(), fld.GetReal(BDX), fld.GetReal(BDY), dx, dy)
			}
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func closeRel(a, b float64) bool {
	return math.Abs(a-b) <= gridTolerance*math.Max(math.Abs(a), math.Abs(b))
}

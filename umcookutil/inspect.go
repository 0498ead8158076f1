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

package umcookutil

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kr/pretty"
	"github.com/spatialmodel/umcook/internal/hash"
	"github.com/spatialmodel/umcook/umfile"
)

var datasetTypes = map[int64]string{
	umfile.DatasetDump:       "dump",
	umfile.DatasetFieldsFile: "fields file",
	umfile.DatasetAncillary:  "ancillary",
}

// Inspect writes a summary of the UM file at path to w. Field names are
// taken from sm if it is not nil. If verbose is true the integer and
// real constants are included.
func Inspect(w io.Writer, path string, sm umfile.STASHmaster, verbose bool) error {
	if err := checkInputFile("UM file", path); err != nil {
		return err
	}
	f, err := umfile.Open(path)
	if err != nil {
		return err
	}
	dt := f.Header.DatasetType()
	name, ok := datasetTypes[dt]
	if !ok {
		name = "unknown"
	}
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "dataset type: %d (%s)\n", dt, name)
	fmt.Fprintf(w, "size: %d bytes, %d fields\n", f.Size(), len(f.Fields))
	if verbose {
		fmt.Fprintf(w, "integer constants: %# v\n", pretty.Formatter(f.IntConsts))
		fmt.Fprintf(w, "real constants: %# v\n", pretty.Formatter(f.RealConsts))
	}

	tw := new(tabwriter.Writer)
	tw.Init(w, 0, 2, 1, ' ', 0)
	fmt.Fprintln(tw, "index\tstash\tpseudo\tlevel\trows\tcols\tpack\tname\t")
	for _, fld := range f.Fields {
		var stashName string
		if e, ok := sm[fld.Stash()]; ok {
			stashName = e.Name
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t\n",
			fld.Index, fld.Stash(), fld.PseudoLevel(), fld.Level(),
			fld.Rows(), fld.Cols(), fld.Pack(), stashName)
	}
	return tw.Flush()
}

// Compare writes to w the fields of the UM files at paths a and b whose
// lookup entries or data records differ, and returns how many differ.
// Fields are matched by position.
func Compare(w io.Writer, a, b string) (int, error) {
	fa, err := umfile.Open(a)
	if err != nil {
		return 0, err
	}
	fb, err := umfile.Open(b)
	if err != nil {
		return 0, err
	}
	var n int
	if fa.Header != fb.Header {
		fmt.Fprintf(w, "fixed-length headers differ\n")
		n++
	}
	if len(fa.Fields) != len(fb.Fields) {
		fmt.Fprintf(w, "%s has %d fields but %s has %d\n", a, len(fa.Fields), b, len(fb.Fields))
		n++
	}
	for i := 0; i < len(fa.Fields) && i < len(fb.Fields); i++ {
		x, y := fa.Fields[i], fb.Fields[i]
		var diffs []string
		if hash.Value(x.Lookup) != hash.Value(y.Lookup) {
			diffs = append(diffs, "lookup ("+strings.Join(pretty.Diff(x.Lookup, y.Lookup), ", ")+")")
		}
		if hash.Bytes(x.RawData()) != hash.Bytes(y.RawData()) {
			diffs = append(diffs, "data")
		}
		if len(diffs) > 0 {
			fmt.Fprintf(w, "field %d (stash %d, pseudo-level %d, level %d): %s differ\n",
				x.Index, x.Stash(), x.PseudoLevel(), x.Level(), strings.Join(diffs, " and "))
			n++
		}
	}
	return n, nil
}

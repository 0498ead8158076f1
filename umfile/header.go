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

// Package umfile reads and writes Unified Model fields files, ancillary
// files and start dumps that hold unpacked 64-bit big-endian data.
//
// Files are held in memory as the bytes read from disk. Writing copies
// those bytes and replaces only the data records of fields whose data
// was changed with SetData, so every other byte of the file is
// preserved exactly.
package umfile

// WordSize is the length in bytes of one file word.
const WordSize = 8

// FixedHeaderLen is the number of words in the fixed-length header.
const FixedHeaderLen = 256

// LookupLen is the number of words in one lookup entry.
const LookupLen = 64

// Missing data indicators.
const (
	MDI  = -1073741824.0
	IMDI = -32768
)

// Dataset types stored in the fixed-length header.
const (
	DatasetDump       = 1
	DatasetFieldsFile = 3
	DatasetAncillary  = 4
)

// Positions (1-based, as in UM documentation) of fixed-length header words.
const (
	FHFormatVersion    = 1
	FHSubModel         = 2
	FHVertCoordType    = 3
	FHHorizGridType    = 4
	FHDatasetType      = 5
	FHRunIdentifier    = 6
	FHGridStaggering   = 9
	FHIntConstStart    = 100
	FHIntConstLen      = 101
	FHRealConstStart   = 105
	FHRealConstLen     = 106
	FHLevelConstStart  = 110
	FHLevelConstDim1   = 111
	FHLevelConstDim2   = 112
	FHRowConstStart    = 115
	FHRowConstDim1     = 116
	FHRowConstDim2     = 117
	FHColConstStart    = 120
	FHColConstDim1     = 121
	FHColConstDim2     = 122
	FHLookupStart      = 150
	FHLookupDim1       = 151
	FHLookupDim2       = 152
	FHDataStart        = 160
	FHDataLen          = 161
	fixedHeaderVersion = 20
)

// Positions (1-based) of integer constants used for grid checks.
const (
	ICNumCols = 6
	ICNumRows = 7
)

// Positions (1-based) of real constants describing a regular grid.
const (
	RCColSpacing = 1
	RCRowSpacing = 2
	RCStartLat   = 3
	RCStartLon   = 4
)

// FixedHeader is the fixed-length header at the start of every file.
type FixedHeader [FixedHeaderLen]int64

// Get returns the word at 1-based position pos.
func (h *FixedHeader) Get(pos int) int64 { return h[pos-1] }

// Set sets the word at 1-based position pos.
func (h *FixedHeader) Set(pos int, v int64) { h[pos-1] = v }

// DatasetType returns the kind of file (dump, fields file, ancillary).
func (h *FixedHeader) DatasetType() int64 { return h.Get(FHDatasetType) }

// NewFixedHeader returns a header with every word set to IMDI, apart
// from the format version and the dataset type.
func NewFixedHeader(datasetType int64) FixedHeader {
	var h FixedHeader
	for i := range h {
		h[i] = IMDI
	}
	h.Set(FHFormatVersion, fixedHeaderVersion)
	h.Set(FHSubModel, 1)
	h.Set(FHDatasetType, datasetType)
	return h
}

// component describes one optional header section by its start word and
// the two dimensions giving its length.
type component struct {
	name       string
	start      int
	dim1, dim2 int
}

// components lists the header sections between the fixed-length header
// and the lookup table.
var components = []component{
	{"integer constants", FHIntConstStart, FHIntConstLen, 0},
	{"real constants", FHRealConstStart, FHRealConstLen, 0},
	{"level dependent constants", FHLevelConstStart, FHLevelConstDim1, FHLevelConstDim2},
	{"row dependent constants", FHRowConstStart, FHRowConstDim1, FHRowConstDim2},
	{"column dependent constants", FHColConstStart, FHColConstDim1, FHColConstDim2},
}

// words returns the start word (1-based) and length in words of c, or
// zero values if the section is absent.
func (c component) words(h *FixedHeader) (start, n int64) {
	start = h.Get(c.start)
	if start <= 0 {
		return 0, 0
	}
	n = h.Get(c.dim1)
	if n <= 0 {
		return 0, 0
	}
	if c.dim2 != 0 {
		d2 := h.Get(c.dim2)
		if d2 > 0 {
			n *= d2
		}
	}
	return start, n
}

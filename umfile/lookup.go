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

// Number of integer and real words in a lookup entry.
const (
	lookupInts  = 45
	lookupReals = 19
)

// Positions (1-based) of the lookup words used here.
const (
	LBYR    = 1
	LBLREC  = 15
	LBCODE  = 16
	LBROW   = 18
	LBNPT   = 19
	LBEXT   = 20
	LBPACK  = 21
	LBREL   = 22
	LBEGIN  = 29
	LBNREC  = 30
	LBLEV   = 33
	LBUSER1 = 39
	LBUSER2 = 40
	LBUSER4 = 42
	LBUSER5 = 43
	LBUSER7 = 45

	BLEV = 52
	BZY  = 59
	BDY  = 60
	BZX  = 61
	BDX  = 62
	BMDI = 63
)

// Data types held in LBUSER1.
const (
	TypeReal    = 1
	TypeInteger = 2
	TypeLogical = 3
)

// Lookup is one entry of the lookup table: the header of a field.
type Lookup struct {
	Int  [lookupInts]int64
	Real [lookupReals]float64
}

// NewLookup returns an entry with every integer word zero and every
// real word set to MDI, apart from LBREL and BMDI.
func NewLookup() Lookup {
	var l Lookup
	for i := range l.Real {
		l.Real[i] = MDI
	}
	l.SetInt(LBREL, 3)
	l.SetReal(BMDI, MDI)
	return l
}

// GetInt returns the integer word at 1-based position pos.
func (l *Lookup) GetInt(pos int) int64 { return l.Int[pos-1] }

// SetInt sets the integer word at 1-based position pos.
func (l *Lookup) SetInt(pos int, v int64) { l.Int[pos-1] = v }

// GetReal returns the real word at 1-based position pos.
func (l *Lookup) GetReal(pos int) float64 { return l.Real[pos-1-lookupInts] }

// SetReal sets the real word at 1-based position pos.
func (l *Lookup) SetReal(pos int, v float64) { l.Real[pos-1-lookupInts] = v }

// Stash returns the stash code (LBUSER4).
func (l *Lookup) Stash() int { return int(l.GetInt(LBUSER4)) }

// PseudoLevel returns the pseudo-level (LBUSER5).
func (l *Lookup) PseudoLevel() int { return int(l.GetInt(LBUSER5)) }

// Level returns the model level (LBLEV).
func (l *Lookup) Level() int { return int(l.GetInt(LBLEV)) }

// Rows returns the number of rows in the field (LBROW).
func (l *Lookup) Rows() int { return int(l.GetInt(LBROW)) }

// Cols returns the number of points per row (LBNPT).
func (l *Lookup) Cols() int { return int(l.GetInt(LBNPT)) }

// Pack returns the packing code (LBPACK).
func (l *Lookup) Pack() int64 { return l.GetInt(LBPACK) }

// DataType returns the data type code (LBUSER1).
func (l *Lookup) DataType() int64 { return l.GetInt(LBUSER1) }

// unused reports whether the entry is a blank slot at the end of
// the lookup table.
func (l *Lookup) unused() bool {
	return l.GetInt(LBREL) == -99 || l.GetInt(LBYR) == -99
}

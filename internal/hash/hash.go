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
along with umcook.  If not, see <http://www.gnu.org/licenses/>.*/

// Package hash computes short keys identifying UM file records.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Value returns a hash key for v, such as a lookup entry.
func Value(v interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(v); err != nil {
		// gob rejects some values, e.g. NaN map keys, so fall back to a
		// deterministic dump.
		h.Reset()
		printer.Fprintf(h, "%#v", v)
	}
	return key(h)
}

// Bytes returns a hash key for a raw data record.
func Bytes(b []byte) string {
	h := fnv.New128a()
	h.Write(b)
	return key(h)
}

func key(h hash.Hash) string {
	return fmt.Sprintf("%x", h.Sum(nil))
}

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
	"sort"

	"github.com/BurntSushi/toml"
)

// PseudoLevels maps surface type names to pseudo-level identifiers.
type PseudoLevels map[string]int

// JULESPseudoLevels are the JULES surface types of the land cover
// fraction ancillary.
var JULESPseudoLevels = PseudoLevels{
	"broad_leaf":  1,
	"needle_leaf": 2,
	"c3_grass":    3,
	"c4_grass":    4,
	"shrub":       5,
	"urban":       6,
	"lake":        7,
	"soil":        8,
	"ice":         9,
	"roof":        601,
	"canyon":      602,
}

// LoadPseudoLevels reads a TOML file of `name = id` pairs.
func LoadPseudoLevels(path string) (PseudoLevels, error) {
	p := make(PseudoLevels)
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("umcook: reading pseudo-level file %s: %v", path, err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("umcook: pseudo-level file %s defines no surface types", path)
	}
	return p, nil
}

// ID returns the pseudo-level of the named surface type.
func (p PseudoLevels) ID(name string) (int, error) {
	id, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("%w: no surface type named %q", ErrLevelNotFound, name)
	}
	return id, nil
}

// Name returns the name of the surface type with pseudo-level id, or an
// empty string.
func (p PseudoLevels) Name(id int) string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if p[n] == id {
			return n
		}
	}
	return ""
}

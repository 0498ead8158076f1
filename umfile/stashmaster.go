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
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// STASHEntry is the description of one stash item.
type STASHEntry struct {
	Model, Section, Item int
	Name                 string
}

// Code returns the stash code stored in LBUSER4 for fields of this item.
func (e *STASHEntry) Code() int { return e.Section*1000 + e.Item }

// STASHmaster holds stash entries keyed by stash code.
type STASHmaster map[int]*STASHEntry

// ReadSTASHmaster reads the "1|" lines of a STASHmaster file. Reading
// stops at the terminating entry with model -1.
func ReadSTASHmaster(r io.Reader) (STASHmaster, error) {
	sm := make(STASHmaster)
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, "1|") {
			continue
		}
		parts := strings.Split(text, "|")
		if len(parts) < 2 {
			continue
		}
		model, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("umfile: STASHmaster line %d: %v", line, err)
		}
		if model == -1 {
			break
		}
		if len(parts) < 5 {
			return nil, fmt.Errorf("umfile: STASHmaster line %d: too few columns", line)
		}
		section, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("umfile: STASHmaster line %d: %v", line, err)
		}
		item, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return nil, fmt.Errorf("umfile: STASHmaster line %d: %v", line, err)
		}
		e := &STASHEntry{
			Model:   model,
			Section: section,
			Item:    item,
			Name:    strings.TrimSpace(parts[4]),
		}
		sm[e.Code()] = e
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("umfile: reading STASHmaster: %v", err)
	}
	return sm, nil
}

// OpenSTASHmaster reads the STASHmaster file at path.
func OpenSTASHmaster(path string) (STASHmaster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSTASHmaster(f)
}

// Update adds the entries of o to sm, replacing entries with the same code.
func (sm STASHmaster) Update(o STASHmaster) {
	for k, v := range o {
		sm[k] = v
	}
}

// BySection returns the entries in the given section.
func (sm STASHmaster) BySection(section int) STASHmaster {
	o := make(STASHmaster)
	for k, v := range sm {
		if v.Section == section {
			o[k] = v
		}
	}
	return o
}

// ByRegex returns the entries whose names match pattern.
func (sm STASHmaster) ByRegex(pattern string) (STASHmaster, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("umfile: %v", err)
	}
	o := make(STASHmaster)
	for k, v := range sm {
		if re.MatchString(v.Name) {
			o[k] = v
		}
	}
	return o, nil
}

// Codes returns the stash codes in ascending order.
func (sm STASHmaster) Codes() []int {
	codes := make([]int, 0, len(sm))
	for k := range sm {
		codes = append(codes, k)
	}
	sort.Ints(codes)
	return codes
}

// First returns the entry with the lowest stash code whose name matches
// pattern.
func (sm STASHmaster) First(pattern string) (*STASHEntry, error) {
	m, err := sm.ByRegex(pattern)
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("umfile: no STASHmaster entry matches %q", pattern)
	}
	return m[m.Codes()[0]], nil
}

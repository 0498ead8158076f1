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

// Package umcook holds the building blocks of the umcook cookbooks:
// loading UM fields into cubes, loading masks, updating cubes where a
// mask is true, regridding, and saving the result back into a UM file.
package umcook

import (
	"errors"

	"github.com/spatialmodel/umcook/umfile"
)

// Version gives the version number.
const Version = "0.1.0"

// MDI is the missing data indicator used for real fields.
const MDI = umfile.MDI

var (
	// ErrShapeMismatch is returned when a mask does not have the
	// horizontal shape of the cube it is applied to.
	ErrShapeMismatch = errors.New("umcook: mask shape does not match field shape")

	// ErrLevelNotFound is returned when a pseudo-level or level
	// identifier is not present in a cube.
	ErrLevelNotFound = errors.New("umcook: level not found")
)

func isMissing(v float64) bool { return v == MDI }

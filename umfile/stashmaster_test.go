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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSTASHmaster = `H1| SUBMODEL_NUMBER=1
H2| SUBMODEL_NAME=ATMOS
#
#|Model |Sectn | Item |Name                                |
1|    1 |    0 |    9 |SOIL MOISTURE CONTENT IN A LAYER    |
2|    2 |    0 |    1 |    1 |    2 |   10 |   11 |    0 |    0 |    0 |    0 |
#
1|    1 |    0 |   30 |LAND MASK (No halo) (LAND=TRUE)     |
2|    0 |    0 |    1 |    1 |    3 |    1 |    1 |    0 |    0 |    0 |    0 |
#
1|    1 |    0 |  216 |FRACTIONS OF SURFACE TYPES          |
2|    2 |    0 |    1 |    1 |    2 |   10 |   11 |    0 |    0 |    0 |    0 |
#
1|    1 |    3 |  395 |FRACTION OF LAND                    |
#
1|   -1 |   -1 |   -1 |END OF FILE MARK                    |
1|    1 |    0 |  999 |AFTER THE END                       |
`

const testExtension = `1|    1 |    0 |  833 |CARBON POOL LABILE ON TILES         |
1|    1 |    0 |   30 |LAND MASK (UPDATED)                 |
`

func TestReadSTASHmaster(t *testing.T) {
	sm, err := ReadSTASHmaster(strings.NewReader(testSTASHmaster))
	require.NoError(t, err)
	assert.Equal(t, []int{9, 30, 216, 3395}, sm.Codes())
	assert.Equal(t, "LAND MASK (No halo) (LAND=TRUE)", sm[30].Name)
	assert.Equal(t, 3, sm[3395].Section)

	ext, err := ReadSTASHmaster(strings.NewReader(testExtension))
	require.NoError(t, err)
	sm.Update(ext)
	assert.Equal(t, "LAND MASK (UPDATED)", sm[30].Name)
	assert.Equal(t, 833, sm[833].Code())

	prog := sm.BySection(0)
	assert.Equal(t, []int{9, 30, 216, 833}, prog.Codes())

	e, err := prog.First("LAND MASK")
	require.NoError(t, err)
	assert.Equal(t, 30, e.Code())

	e, err = prog.First("CARBON POOL LABILE ON TILES")
	require.NoError(t, err)
	assert.Equal(t, 833, e.Code())

	e, err = sm.First("FRACTION")
	require.NoError(t, err)
	assert.Equal(t, 216, e.Code())

	_, err = prog.First("NO SUCH FIELD")
	assert.Error(t, err)
	_, err = prog.ByRegex("(")
	assert.Error(t, err)
}

func TestReadSTASHmasterBadLine(t *testing.T) {
	_, err := ReadSTASHmaster(strings.NewReader("1|    1 |    x |    9 |NAME |\n"))
	assert.Error(t, err)
}

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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// landCoverCube returns a 3-level fraction cube (broad leaf, shrub, soil)
// on a 2x3 grid whose fractions sum to one.
func landCoverCube() *Cube {
	c := &Cube{
		Stash:  216,
		Levels: []int{1, 5, 8},
		Grid:   Grid{X0: 140, DX: 1, Y0: -40, DY: 1, NX: 3, NY: 2},
		Data:   sparse.ZerosDense(3, 2, 3),
	}
	copy(c.Level(0), []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1})
	copy(c.Level(1), []float64{0.25, 0.2, 0.15, 0.1, 0.05, 0})
	copy(c.Level(2), []float64{0.25, 0.2, 0.15, 0.1, 0.05, 0})
	return c
}

func TestAdjustLandCover(t *testing.T) {
	c := landCoverCube()
	orig := c.Copy()
	m := testMask()
	require.NoError(t, AdjustLandCover(c, m, JULESPseudoLevels, 0.8, DefaultFractionTolerance))
	for i, masked := range m.Values {
		if !masked {
			for k := range c.Levels {
				assert.Equal(t, orig.Level(k)[i], c.Level(k)[i])
			}
			continue
		}
		assert.Equal(t, 0.0, c.Level(0)[i])
		assert.InDelta(t, 0.2, c.Level(1)[i], 1e-15)
		assert.Equal(t, 0.8, c.Level(2)[i])
	}
	assert.NoError(t, CheckFractions(c, 1e-6))
}

func TestAdjustLandCoverMissingLevel(t *testing.T) {
	c := landCoverCube()
	c.Levels = []int{1, 4, 8}
	orig := c.Copy()
	err := AdjustLandCover(c, testMask(), JULESPseudoLevels, 0.8, DefaultFractionTolerance)
	assert.True(t, errors.Is(err, ErrLevelNotFound))
	assert.Equal(t, orig.Data.Elements, c.Data.Elements, "cube changed before the error")
}

func TestAdjustLandCoverBadFraction(t *testing.T) {
	assert.Error(t, AdjustLandCover(landCoverCube(), testMask(), JULESPseudoLevels, 1.5, DefaultFractionTolerance))
}

func TestAdjustLandCoverInconsistentInput(t *testing.T) {
	c := landCoverCube()
	c.Level(0)[1] = 0.1 // unmasked cell no longer sums to one
	err := AdjustLandCover(c, testMask(), JULESPseudoLevels, 0.8, DefaultFractionTolerance)
	var ferr *FractionError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 1, ferr.Col)
}

func TestReduceSoilMoisture(t *testing.T) {
	c := testCube(1, 2, 3, 4)
	c.Stash = 9
	orig := c.Copy()
	m := testMask()
	require.NoError(t, ReduceSoilMoisture(c, m, 0.5))
	for k := range c.Levels {
		for i, v := range c.Level(k) {
			if m.Values[i] {
				assert.Equal(t, orig.Level(k)[i]*0.5, v)
			} else {
				assert.Equal(t, orig.Level(k)[i], v)
			}
		}
	}
	assert.Error(t, ReduceSoilMoisture(c, m, -1))
}

func TestHalveIntoTile(t *testing.T) {
	c := testCube(1, 2, 12)
	orig := c.Copy()
	m := testMask()
	require.NoError(t, HalveIntoTile(c, m, 2, 12, CopyOptions{}))
	for i, v := range c.Level(2) {
		if m.Values[i] {
			assert.Equal(t, orig.Level(1)[i]/2, v)
		} else {
			assert.Equal(t, orig.Level(1)[i], v)
		}
	}
	assert.Equal(t, orig.Level(0), c.Level(0))
	assert.Equal(t, orig.Level(1), c.Level(1))
	assert.Error(t, HalveIntoTile(c, m, 2, 2, CopyOptions{}))
}

func TestPseudoLevels(t *testing.T) {
	id, err := JULESPseudoLevels.ID("soil")
	require.NoError(t, err)
	assert.Equal(t, 8, id)
	assert.Equal(t, "canyon", JULESPseudoLevels.Name(602))
	assert.Equal(t, "", JULESPseudoLevels.Name(42))
	_, err = JULESPseudoLevels.ID("tundra")
	assert.True(t, errors.Is(err, ErrLevelNotFound))

	path := filepath.Join(t.TempDir(), "tiles.toml")
	require.NoError(t, os.WriteFile(path, []byte("# CABLE tiles\nshrub = 4\nsoil = 14\n"), 0644))
	p, err := LoadPseudoLevels(path)
	require.NoError(t, err)
	assert.Equal(t, PseudoLevels{"shrub": 4, "soil": 14}, p)

	empty := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = LoadPseudoLevels(empty)
	assert.Error(t, err)
}

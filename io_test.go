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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/umcook/internal/umtest"
	"github.com/spatialmodel/umcook/umfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ancilFields() []umtest.Field {
	return []umtest.Field{
		{Stash: 30, DataType: umfile.TypeLogical, Data: []float64{1, 1, 0, 1, 1, 1}},
		{Stash: 216, PseudoLevel: 1, Data: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1}},
		{Stash: 216, PseudoLevel: 5, Data: []float64{0.25, 0.2, 0.15, 0.1, 0.05, 0}},
		{Stash: 216, PseudoLevel: 8, Data: []float64{0.25, 0.2, 0.15, 0.1, 0.05, 0}},
		{Stash: 9, Level: 1, Data: []float64{1, 2, 3, 4, 5, 6}},
		{Stash: 9, Level: 2, Data: []float64{7, 8, 9, 10, 11, 12}},
	}
}

func TestLoadCube(t *testing.T) {
	f := umtest.NewFile(t, umfile.DatasetAncillary, 2, 3, ancilFields())
	c, err := LoadCube(f, 216)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 8}, c.Levels)
	assert.Equal(t, []int{3, 2, 3}, c.Data.Shape)
	assert.Equal(t, []float64{0.25, 0.2, 0.15, 0.1, 0.05, 0}, c.Level(2))
	assert.Equal(t, Grid{X0: umtest.X0, DX: umtest.DX, Y0: umtest.Y0, DY: umtest.DY, NX: 3, NY: 2}, c.Grid)
	assert.Equal(t, umtest.X0+umtest.DX, c.Grid.Lon(0))

	sm, err := LoadCube(f, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, sm.Levels)

	_, err = LoadCube(f, 833)
	assert.True(t, errors.Is(err, umfile.ErrNotFound))
}

func TestSaveCubeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := umtest.WriteFile(t, dir, "qrparm.veg.frac", umtest.NewFile(t, umfile.DatasetAncillary, 2, 3, ancilFields()))
	orig, err := ioutil.ReadFile(path)
	require.NoError(t, err)

	f, err := umfile.Open(path)
	require.NoError(t, err)
	c, err := LoadCube(f, 216)
	require.NoError(t, err)
	m := &Mask{NY: 2, NX: 3, Values: []bool{false, true, false, false, false, false}}
	require.NoError(t, AdjustLandCover(c, m, JULESPseudoLevels, 0.8, DefaultFractionTolerance))

	log, hook := test.NewNullLogger()
	out := path + "_updated"
	require.NoError(t, SaveCube(f, out, c, SaveOptions{Log: log}))
	assert.Len(t, hook.Entries, 4)

	got, err := umfile.Open(out)
	require.NoError(t, err)
	before, err := umfile.Open(path)
	require.NoError(t, err)
	require.Len(t, got.Fields, len(before.Fields))
	for i, fld := range got.Fields {
		b := before.Fields[i]
		assert.Equal(t, b.Lookup, fld.Lookup, "lookup %d changed", i)
		if fld.Stash() != 216 {
			assert.Equal(t, b.RawData(), fld.RawData(), "field %d (stash %d) changed", i, fld.Stash())
		}
	}
	c2, err := LoadCube(got, 216)
	require.NoError(t, err)
	assert.Equal(t, c.Data.Elements, c2.Data.Elements)

	// The input is untouched.
	now, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, orig, now)
}

func TestSaveCubeMismatch(t *testing.T) {
	f := umtest.NewFile(t, umfile.DatasetAncillary, 2, 3, ancilFields())
	c, err := LoadCube(f, 216)
	require.NoError(t, err)
	c.Levels = c.Levels[:2]
	out := filepath.Join(t.TempDir(), "out")
	assert.Error(t, SaveCube(f, out, c, SaveOptions{}))

	c, err = LoadCube(f, 216)
	require.NoError(t, err)
	c.Levels[0] = 2
	assert.Error(t, SaveCube(f, out, c, SaveOptions{}))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveCubeValidation(t *testing.T) {
	dir := t.TempDir()
	path := umtest.WriteFile(t, dir, "ancil", umtest.NewFile(t, umfile.DatasetAncillary, 2, 3, ancilFields()))
	f, err := umfile.Open(path)
	require.NoError(t, err)
	c, err := LoadCube(f, 9)
	require.NoError(t, err)
	f.Fields[0].SetReal(umfile.BDX, 0.25) // inconsistent with the file grid

	out := filepath.Join(dir, "out")
	err = SaveCube(f, out, c, SaveOptions{Log: logrus.New()})
	var verr *umfile.ValidationError
	require.True(t, errors.As(err, &verr))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "file written despite failed validation")

	log, hook := test.NewNullLogger()
	require.NoError(t, SaveCube(f, out, c, SaveOptions{Force: true, Log: log}))
	_, err = os.Stat(out)
	assert.NoError(t, err)
	var warnings int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "RAL3P2_astart")
	require.NoError(t, ioutil.WriteFile(path, []byte("dump"), 0640))

	b, err := Backup(path, "_original")
	require.NoError(t, err)
	assert.Equal(t, path+"_original", b)
	data, err := ioutil.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "dump", string(data))
	fi, err := os.Stat(b)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), fi.Mode().Perm())
	ofi, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, ofi.ModTime().Equal(fi.ModTime()))

	_, err = Backup(path, "_original")
	assert.Error(t, err, "existing backup overwritten")

	_, err = Backup(filepath.Join(dir, "missing"), "_original")
	assert.Error(t, err)
}

func TestMaskFromField(t *testing.T) {
	f := umtest.NewFile(t, umfile.DatasetAncillary, 2, 3, ancilFields())
	m, err := MaskFromField(f.Fields[0])
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, true, true, true}, m.Values)
	assert.Equal(t, 5, m.Count())
	assert.Equal(t, 1, m.Invert().Count())
}

func TestLoadMaskNetCDF(t *testing.T) {
	dir := t.TempDir()
	want := []bool{true, false, false, true, true, false}
	path := umtest.WriteMask(t, dir, "fire_mask.nc", "fire_mask", 2, 3, want)

	m, err := LoadMaskNetCDF(path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, m.NY)
	assert.Equal(t, 3, m.NX)
	assert.Equal(t, want, m.Values)

	m, err = LoadMaskNetCDF(path, "fire_mask")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Count())

	_, err = LoadMaskNetCDF(path, "burnt")
	assert.Error(t, err)
	_, err = LoadMaskNetCDF(filepath.Join(dir, "missing.nc"), "")
	assert.Error(t, err)
}

func TestLoadMaskNetCDFFloat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.nc")
	w, err := os.Create(path)
	require.NoError(t, err)
	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{1, 2, 2})
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddVariable("burnt", []string{"time", "lat", "lon"}, []float32{0})
	h.Define()
	ff, err := cdf.Create(w, h)
	require.NoError(t, err)
	_, err = ff.Writer("burnt", []int{0, 0, 0}, []int{1, 2, 2}).Write([]float32{0, 0.5, 1, 0})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	m, err := LoadMaskNetCDF(path, "")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, false}, m.Values)
}

// writeRecordMask writes variable burnt with an unlimited time dimension
// holding one 2x2 record per four values of data.
func writeRecordMask(t *testing.T, path string, data []float32) {
	t.Helper()
	w, err := os.Create(path)
	require.NoError(t, err)
	defer w.Close()
	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{0, 2, 2})
	h.AddVariable("burnt", []string{"time", "lat", "lon"}, []float32{0})
	h.Define()
	ff, err := cdf.Create(w, h)
	require.NoError(t, err)
	_, err = ff.Writer("burnt", nil, nil).Write(data)
	require.NoError(t, err)
	require.NoError(t, cdf.UpdateNumRecs(w))
}

func TestLoadMaskNetCDFRecord(t *testing.T) {
	dir := t.TempDir()
	one := filepath.Join(dir, "one.nc")
	writeRecordMask(t, one, []float32{1, 0, 0, 1})
	m, err := LoadMaskNetCDF(one, "")
	require.NoError(t, err)
	assert.Equal(t, 2, m.NY)
	assert.Equal(t, 2, m.NX)
	assert.Equal(t, []bool{true, false, false, true}, m.Values)

	two := filepath.Join(dir, "two.nc")
	writeRecordMask(t, two, []float32{1, 0, 0, 1, 0, 1, 1, 0})
	_, err = LoadMaskNetCDF(two, "burnt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 records")
}

func TestWriteNetCDF(t *testing.T) {
	c := &Cube{
		Stash:  216,
		Levels: []int{3, 9},
		Grid:   Grid{X0: 10, DX: 2, Y0: -5, DY: 1, NX: 2, NY: 1},
		Data:   sparse.ZerosDense(2, 1, 2),
	}
	copy(c.Data.Elements, []float64{0.25, MDI, 0.75, 1})
	path := filepath.Join(t.TempDir(), "out.nc")
	w, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteNetCDF(w, c, "frac"))
	require.NoError(t, w.Close())

	r, err := os.Open(path)
	require.NoError(t, err)
	defer r.Close()
	ff, err := cdf.Open(r)
	require.NoError(t, err)

	lev := make([]int32, 2)
	_, err = ff.Reader("pseudo_level", nil, nil).Read(lev)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 9}, lev)
	lat := make([]float64, 1)
	_, err = ff.Reader("latitude", nil, nil).Read(lat)
	require.NoError(t, err)
	assert.Equal(t, []float64{-4}, lat)
	lon := make([]float64, 2)
	_, err = ff.Reader("longitude", nil, nil).Read(lon)
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 14}, lon)
	data := make([]float64, 4)
	_, err = ff.Reader("frac", nil, nil).Read(data)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, MDI, 0.75, 1}, data)
	assert.Equal(t, []float64{MDI}, ff.Header.GetAttribute("frac", "_FillValue"))
}

func TestRegridSaveNewAncilAndNetCDF(t *testing.T) {
	dir := t.TempDir()
	src := umtest.NewFile(t, umfile.DatasetAncillary, 2, 4, []umtest.Field{
		{Stash: 216, PseudoLevel: 1, Data: []float64{1, 1, 0, 0, 1, 1, 0, 0}},
		{Stash: 216, PseudoLevel: 8, Data: []float64{0, 0, 1, 1, 0, 0, 1, 1}},
	})
	lsm := umtest.NewFileGrid(t, umfile.DatasetAncillary, 1, 2, umtest.X0-0.5, 2, umtest.Y0-0.5, 2, []umtest.Field{
		{Stash: 30, DataType: umfile.TypeLogical, Data: []float64{1, 0}},
	})
	c, err := LoadCube(src, 216)
	require.NoError(t, err)
	target := GridFromLookup(&lsm.Fields[0].Lookup)
	r, err := AreaWeighted(c, target)
	require.NoError(t, err)
	land, err := MaskFromField(lsm.Fields[0])
	require.NoError(t, err)
	require.NoError(t, MakeConsistentWithLSM(r, land, true))
	assert.Equal(t, []float64{1, MDI}, r.Level(0))
	assert.Equal(t, []float64{0, MDI}, r.Level(1))

	out := filepath.Join(dir, "regridded_to_2p0")
	require.NoError(t, SaveNewAncil(lsm, out, r, SaveOptions{Log: logrus.New()}))
	got, err := umfile.Open(out)
	require.NoError(t, err)
	c2, err := LoadCube(got, 216)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 8}, c2.Levels)
	assert.True(t, target.Equal(c2.Grid))
	assert.Equal(t, r.Data.Elements, c2.Data.Elements)

	ncPath := out + ".nc"
	w, err := os.Create(ncPath)
	require.NoError(t, err)
	require.NoError(t, WriteNetCDF(w, r, "surface_cover_fraction"))
	require.NoError(t, w.Close())

	rf, err := os.Open(ncPath)
	require.NoError(t, err)
	defer rf.Close()
	ff, err := cdf.Open(rf)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 2}, ff.Header.Lengths("surface_cover_fraction"))
	buf := make([]float64, 4)
	_, err = ff.Reader("surface_cover_fraction", nil, nil).Read(buf)
	require.NoError(t, err)
	assert.Equal(t, r.Data.Elements, buf)
	lev := make([]int32, 2)
	_, err = ff.Reader("pseudo_level", nil, nil).Read(lev)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 8}, lev)
}

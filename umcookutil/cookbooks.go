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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/umcook"
	"github.com/spatialmodel/umcook/umfile"
)

const (
	// landCoverStash is surface type fraction, m01s00i216.
	landCoverStash = 216

	// soilMoistureStash is moisture content of soil layer, m01s00i009.
	soilMoistureStash = 9
)

// LandCover replaces the land cover in the ancillary at fpath inside
// the fire mask in maskFile with bare soil and shrub, and writes the
// result to fpath with "_updated" appended.
func LandCover(log logrus.FieldLogger, fpath, maskFile, maskVar string, levels umcook.PseudoLevels, soilFraction, tol float64, force bool) error {
	if err := checkInputFile("land cover file", fpath); err != nil {
		return err
	}
	log.WithField("path", fpath).Info("processing land cover")
	f, err := umfile.Open(fpath)
	if err != nil {
		return err
	}
	c, err := umcook.LoadCube(f, landCoverStash)
	if err != nil {
		return err
	}

	log.WithField("path", maskFile).Info("loading fire mask")
	m, err := loadMask(maskFile, maskVar)
	if err != nil {
		return err
	}
	log.Infof("loaded mask with %d fire-affected grid cells", m.Count())

	if err := umcook.AdjustLandCover(c, m, levels, soilFraction, tol); err != nil {
		return err
	}
	return umcook.SaveCube(f, fpath+"_updated", c, umcook.SaveOptions{Force: force, Log: log})
}

// SoilMoisture multiplies soil moisture in the start dump at fpath by
// factor inside the fire mask in maskFile. The dump is backed up to
// fpath with "_original" appended and then overwritten, using the backup
// as the template.
func SoilMoisture(log logrus.FieldLogger, fpath, maskFile, maskVar string, factor float64, force bool) error {
	if err := checkInputFile("start dump", fpath); err != nil {
		return err
	}
	// The mask is checked before anything is copied.
	log.WithField("path", maskFile).Info("loading fire mask")
	m, err := loadMask(maskFile, maskVar)
	if err != nil {
		return err
	}
	log.Infof("loaded mask with %d fire-affected grid cells", m.Count())

	log.WithField("path", fpath).Info("processing soil moisture")
	f, err := umfile.Open(fpath)
	if err != nil {
		return err
	}
	c, err := umcook.LoadCube(f, soilMoistureStash)
	if err != nil {
		return err
	}
	if err := umcook.ReduceSoilMoisture(c, m, factor); err != nil {
		return err
	}

	backup, err := umcook.Backup(fpath, "_original")
	if err != nil {
		return err
	}
	log.WithField("path", backup).Info("created backup")
	template, err := umfile.Open(backup)
	if err != nil {
		return err
	}
	return umcook.SaveCube(template, fpath, c, umcook.SaveOptions{Force: force, Log: log})
}

// Tile halves the values of tile src of the field with stash code
// fieldStash where the land mask (stash code maskStash) is true, stores
// them in tile dst and writes the result to output.
func Tile(log logrus.FieldLogger, fpath, output string, fieldStash, maskStash, src, dst int, opts umcook.CopyOptions, force bool) error {
	if err := checkInputFile("restart file", fpath); err != nil {
		return err
	}
	if err := checkOutputFile(output); err != nil {
		return err
	}
	log.WithField("path", fpath).Info("processing restart")
	f, err := umfile.Open(fpath)
	if err != nil {
		return err
	}
	masks := f.FieldsByStash(maskStash)
	if len(masks) == 0 {
		return fmt.Errorf("umcook: land mask: %w: stash %d", umfile.ErrNotFound, maskStash)
	}
	m, err := umcook.MaskFromField(masks[0])
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"stash": maskStash,
		"land":  m.Count(),
	}).Info("loaded land mask")

	c, err := umcook.LoadCube(f, fieldStash)
	if err != nil {
		return err
	}
	if err := umcook.HalveIntoTile(c, m, src, dst, opts); err != nil {
		return err
	}
	return umcook.SaveCube(f, output, c, umcook.SaveOptions{Force: force, Log: log})
}

// Regrid regrids the field with the given stash code in the ancillary at
// fpath onto the grid of the land-sea mask in targetLSM, makes it
// consistent with the mask and saves it as an ancillary at output and as
// NetCDF variable ncVar at output+".nc". If output is empty a name based
// on the target resolution is used.
func Regrid(log logrus.FieldLogger, fpath, targetLSM, output, ncVar string, stash, lsmStash int, force bool) error {
	if err := checkInputFile("source ancillary", fpath); err != nil {
		return err
	}
	if err := checkInputFile("target land-sea mask", targetLSM); err != nil {
		return err
	}
	log.Info("loading data")
	f, err := umfile.Open(fpath)
	if err != nil {
		return err
	}
	c, err := umcook.LoadCube(f, stash)
	if err != nil {
		return err
	}
	lsmFile, err := umfile.Open(targetLSM)
	if err != nil {
		return err
	}
	lsmFields := lsmFile.FieldsByStash(lsmStash)
	if len(lsmFields) == 0 {
		return fmt.Errorf("umcook: target land-sea mask: %w: stash %d", umfile.ErrNotFound, lsmStash)
	}
	land, err := umcook.MaskFromField(lsmFields[0])
	if err != nil {
		return err
	}
	target := umcook.GridFromLookup(&lsmFields[0].Lookup)

	log.WithFields(logrus.Fields{
		"from": fmt.Sprintf("%dx%d", c.Grid.NY, c.Grid.NX),
		"to":   fmt.Sprintf("%dx%d", target.NY, target.NX),
	}).Info("regridding with area weighted scheme")
	r, err := umcook.AreaWeighted(c, target)
	if err != nil {
		return err
	}
	log.Info("making regridded field consistent with the land-sea mask")
	if err := umcook.MakeConsistentWithLSM(r, land, true); err != nil {
		return err
	}

	if output == "" {
		output = regridOutputName(target.DX)
	}
	if err := checkOutputFile(output); err != nil {
		return err
	}
	opts := umcook.SaveOptions{Force: force, Log: log}
	if err := umcook.SaveNewAncil(lsmFile, output, r, opts); err != nil {
		return err
	}
	ncPath := output + ".nc"
	log.WithField("path", ncPath).Info("saving netcdf")
	w, err := os.Create(ncPath)
	if err != nil {
		return fmt.Errorf("umcook: %v", err)
	}
	if err := umcook.WriteNetCDF(w, r, ncVar); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

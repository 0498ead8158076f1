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
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/umcook/umfile"
)

// SaveOptions changes the behavior of SaveCube.
type SaveOptions struct {
	// Force writes the file even if it fails validation. Each problem
	// is logged as a warning.
	Force bool

	// Log receives progress messages. The standard logger is used if
	// Log is nil.
	Log logrus.FieldLogger
}

func (o SaveOptions) log() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// SaveCube replaces the fields of template that have the stash code of c
// with the levels of c and writes the result to path. The n-th field
// with that stash code, in file order, receives the n-th level of c.
// The file is validated before it is written; if validation fails
// nothing is written unless opts.Force is set.
func SaveCube(template *umfile.File, path string, c *Cube, opts SaveOptions) error {
	log := opts.log()
	fields := template.FieldsByStash(c.Stash)
	if len(fields) != len(c.Levels) {
		return fmt.Errorf("umcook: template has %d fields with stash %d but the cube has %d levels",
			len(fields), c.Stash, len(c.Levels))
	}
	for k, fld := range fields {
		if fld.Rows() != c.NY() || fld.Cols() != c.NX() {
			return fmt.Errorf("umcook: field %d (stash %d) is %dx%d but the cube is %dx%d",
				fld.Index, c.Stash, fld.Rows(), fld.Cols(), c.NY(), c.NX())
		}
		id := fld.Level()
		if fld.PseudoLevel() > 0 {
			id = fld.PseudoLevel()
		}
		if id != c.Levels[k] {
			return fmt.Errorf("umcook: field %d (stash %d) is level %d but cube level %d is %d",
				fld.Index, c.Stash, id, k, c.Levels[k])
		}
		log.WithFields(logrus.Fields{
			"field": fld.Index,
			"stash": fld.Stash(),
			"level": id,
		}).Infof("updating field %d: %d", fld.Index, fld.Stash())
		if err := fld.SetData(c.Level(k)); err != nil {
			return err
		}
	}
	return writeChecked(template, path, opts)
}

// writeChecked validates f and writes it to path.
func writeChecked(f *umfile.File, path string, opts SaveOptions) error {
	log := opts.log()
	log.WithField("path", path).Info("saving updated file")
	err := f.Validate()
	var verr *umfile.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr) && opts.Force:
		for _, p := range verr.Problems {
			log.WithField("path", path).Warnf("validation problem ignored: %s", p)
		}
		log.WithField("path", path).Warn("writing file that failed validation because force is set")
	default:
		return err
	}
	return f.WriteFile(path, false)
}

// NewAncil returns a new ancillary file holding the levels of c. The
// headers are copied from template, which should be an ancillary on the
// grid of c, such as a land-sea mask.
func NewAncil(template *umfile.File, c *Cube) (*umfile.File, error) {
	if len(c.Lookups) != len(c.Levels) {
		return nil, fmt.Errorf("umcook: cube has %d levels but %d lookup entries", len(c.Levels), len(c.Lookups))
	}
	h := template.Header
	h.Set(umfile.FHDatasetType, umfile.DatasetAncillary)
	ic := append([]int64(nil), template.IntConsts...)
	rc := append([]float64(nil), template.RealConsts...)
	if len(ic) >= umfile.ICNumRows {
		ic[umfile.ICNumCols-1] = int64(c.NX())
		ic[umfile.ICNumRows-1] = int64(c.NY())
	}
	if len(rc) >= umfile.RCStartLon {
		rc[umfile.RCColSpacing-1] = c.Grid.DX
		rc[umfile.RCRowSpacing-1] = c.Grid.DY
		rc[umfile.RCStartLat-1] = c.Grid.Lat(0)
		rc[umfile.RCStartLon-1] = c.Grid.Lon(0)
	}
	f := umfile.New(h, ic, rc)
	for k := range c.Levels {
		l := c.Lookups[k]
		c.Grid.setLookup(&l)
		if _, err := f.AddField(l, c.Level(k)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SaveNewAncil writes the levels of c to a new ancillary file at path
// using the headers of template.
func SaveNewAncil(template *umfile.File, path string, c *Cube, opts SaveOptions) error {
	f, err := NewAncil(template, c)
	if err != nil {
		return err
	}
	return writeChecked(f, path, opts)
}

// Backup copies the file at path to path+suffix, keeping its permissions
// and modification time, and returns the path of the copy. An existing
// file at the backup path is never overwritten.
func Backup(path, suffix string) (string, error) {
	dst := path + suffix
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("umcook: backing up %s: %v", path, err)
	}
	defer src.Close()
	fi, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("umcook: backing up %s: %v", path, err)
	}
	w, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("umcook: backup %s already exists; remove it or restore it first", dst)
		}
		return "", fmt.Errorf("umcook: backing up %s: %v", path, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		os.Remove(dst)
		return "", fmt.Errorf("umcook: backing up %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("umcook: backing up %s: %v", path, err)
	}
	if err := os.Chtimes(dst, fi.ModTime(), fi.ModTime()); err != nil {
		return "", fmt.Errorf("umcook: backing up %s: %v", path, err)
	}
	return dst, nil
}

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
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spatialmodel/umcook"
	"github.com/spatialmodel/umcook/umfile"
	"github.com/spf13/cast"
)

// defaultLandMaskStash is the stash code of the land mask, m01s00i030.
const defaultLandMaskStash = 30

// checkInputFile makes sure that the file at path exists. kind describes
// the file in the error message.
func checkInputFile(kind, path string) error {
	if path == "" {
		return fmt.Errorf("umcook: no %s was specified", kind)
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("umcook: %s not found: %s", kind, path)
		}
		return fmt.Errorf("umcook: checking %s: %v", kind, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("umcook: %s %s is a directory", kind, path)
	}
	return nil
}

// checkOutputFile makes sure that the directory of the output file exists.
func checkOutputFile(path string) error {
	if path == "" {
		return fmt.Errorf("umcook: no output file was specified")
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return fmt.Errorf("umcook: the output directory doesn't exist: %v", err)
	}
	return nil
}

// outputPath returns the expanded path, or def if path is empty.
func outputPath(path, def string) string {
	if path == "" {
		return def
	}
	return os.ExpandEnv(path)
}

// regridOutputName returns the default regrid output name for grid
// spacing dx, e.g. "regridded_to_1p5" for 1.5 degrees.
func regridOutputName(dx float64) string {
	s := strconv.FormatFloat(dx, 'f', -1, 64)
	return "regridded_to_" + strings.Replace(s, ".", "p", 1)
}

// toStringSliceE converts a list option to a slice. Options set from
// the command line may arrive as a bracketed, comma-separated string.
func toStringSliceE(v interface{}) ([]string, error) {
	s, ok := v.(string)
	if !ok {
		return cast.ToStringSliceE(v)
	}
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")
	if s == "" {
		return nil, nil
	}
	o := strings.Split(s, ",")
	for i := range o {
		o[i] = strings.TrimSpace(o[i])
	}
	return o, nil
}

// loadSTASHmaster reads the STASHmaster files in paths, later files
// taking precedence. It returns nil if paths is empty.
func loadSTASHmaster(paths []string) (umfile.STASHmaster, error) {
	var sm umfile.STASHmaster
	for _, p := range paths {
		p = os.ExpandEnv(p)
		if p == "" {
			continue
		}
		s, err := umfile.OpenSTASHmaster(p)
		if err != nil {
			return nil, err
		}
		if sm == nil {
			sm = s
			continue
		}
		sm.Update(s)
	}
	return sm, nil
}

// resolveStash returns the stash code to use for a field. A positive
// override wins; otherwise pattern is matched against section 0 of sm.
// Without a STASHmaster, fallback is used if it is positive.
func resolveStash(sm umfile.STASHmaster, pattern string, override, fallback int) (int, error) {
	if override > 0 {
		return override, nil
	}
	if sm == nil {
		if fallback > 0 {
			return fallback, nil
		}
		return 0, fmt.Errorf("umcook: a STASHmaster file or stash code is needed to find %q", pattern)
	}
	e, err := sm.BySection(0).First(pattern)
	if err != nil {
		return 0, err
	}
	return e.Code(), nil
}

// loadPseudoLevels returns the pseudo-level map in the TOML file at path,
// or the JULES map if path is empty.
func loadPseudoLevels(path string) (umcook.PseudoLevels, error) {
	if path == "" {
		return umcook.JULESPseudoLevels, nil
	}
	return umcook.LoadPseudoLevels(os.ExpandEnv(path))
}

// loadMask loads the fire mask from a NetCDF file.
func loadMask(path, varName string) (*umcook.Mask, error) {
	if err := checkInputFile("fire mask file", path); err != nil {
		return nil, err
	}
	return umcook.LoadMaskNetCDF(path, varName)
}

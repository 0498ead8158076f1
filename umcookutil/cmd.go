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
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/umcook"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to umcook.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "fpath",
			usage: `
              fpath is the path to the UM file to be read. For landcover it is
              the land cover fraction ancillary, for soilmoisture the start dump,
              for tile the restart dump and for regrid the source ancillary.
              It can include environment variables.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags(), soilMoistureCmd.Flags(), tileCmd.Flags(), regridCmd.Flags()},
		},
		{
			name: "mask_file",
			usage: `
              mask_file is the path to a NetCDF file holding the fire mask.
              Grid cells where the mask is non-zero are modified.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags(), soilMoistureCmd.Flags()},
		},
		{
			name: "mask_var",
			usage: `
              mask_var is the name of the mask variable in mask_file. If it is
              empty, the file must hold exactly one non-coordinate variable.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags(), soilMoistureCmd.Flags()},
		},
		{
			name: "plot",
			usage: `
              plot is accepted for compatibility but plots are not produced.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags(), soilMoistureCmd.Flags()},
		},
		{
			name: "soil_fraction",
			usage: `
              soil_fraction is the bare soil fraction set inside the mask. The
              shrub fraction is set to 1 - soil_fraction and all other surface
              types to zero.`,
			defaultVal: 0.8,
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags()},
		},
		{
			name: "tolerance",
			usage: `
              tolerance is the absolute tolerance allowed when checking that
              surface type fractions sum to one.`,
			defaultVal: umcook.DefaultFractionTolerance,
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags()},
		},
		{
			name: "pseudolevels",
			usage: `
              pseudolevels is the path to a TOML file mapping surface type names
              to pseudo-level numbers. It must define "soil" and "shrub". If it
              is empty, the JULES surface types are used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags()},
		},
		{
			name: "reduction_factor",
			usage: `
              reduction_factor multiplies soil moisture inside the mask.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{soilMoistureCmd.Flags()},
		},
		{
			name: "source_tile",
			usage: `
              source_tile is the pseudo-level (tile) the values are read from.`,
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{tileCmd.Flags()},
		},
		{
			name: "target_tile",
			usage: `
              target_tile is the pseudo-level (tile) the halved values are
              written to.`,
			defaultVal: 12,
			flagsets:   []*pflag.FlagSet{tileCmd.Flags()},
		},
		{
			name: "keep_unmasked",
			usage: `
              keep_unmasked leaves target_tile unchanged outside the land mask
              instead of copying source_tile there.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{tileCmd.Flags()},
		},
		{
			name: "stashmaster",
			usage: `
              stashmaster lists STASHmaster files. Entries in later files replace
              entries in earlier ones, so a model's STASHmaster_A can be followed
              by a configuration's prefix file.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{tileCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "field_name",
			usage: `
              field_name is a regular expression matched against section 0
              STASHmaster names to find the tiled field.`,
			defaultVal: "CARBON POOL LABILE ON TILES",
			flagsets:   []*pflag.FlagSet{tileCmd.Flags()},
		},
		{
			name: "mask_name",
			usage: `
              mask_name is a regular expression matched against section 0
              STASHmaster names to find the land mask.`,
			defaultVal: "LAND MASK",
			flagsets:   []*pflag.FlagSet{tileCmd.Flags()},
		},
		{
			name: "field_stash",
			usage: `
              field_stash is the stash code of the tiled field. If it is greater
              than zero it is used instead of looking up field_name.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{tileCmd.Flags()},
		},
		{
			name: "mask_stash",
			usage: `
              mask_stash is the stash code of the land mask. If it is greater than
              zero it is used instead of looking up mask_name.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{tileCmd.Flags()},
		},
		{
			name: "stash",
			usage: `
              stash is the stash code of the field to regrid.`,
			defaultVal: 216,
			flagsets:   []*pflag.FlagSet{regridCmd.Flags()},
		},
		{
			name: "target_lsm",
			usage: `
              target_lsm is the path to a land-sea mask ancillary on the target
              grid.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{regridCmd.Flags()},
		},
		{
			name: "lsm_stash",
			usage: `
              lsm_stash is the stash code of the land-sea mask in target_lsm.`,
			defaultVal: defaultLandMaskStash,
			flagsets:   []*pflag.FlagSet{regridCmd.Flags()},
		},
		{
			name: "nc_var",
			usage: `
              nc_var is the variable name used in the NetCDF copy of the
              regridded field.`,
			defaultVal: "surface_cover_fraction",
			flagsets:   []*pflag.FlagSet{regridCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the path of the file to write. For tile the default is
              fpath with "_updated" appended; for regrid it is
              "regridded_to_<resolution>" in the working directory.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{tileCmd.Flags(), regridCmd.Flags()},
		},
		{
			name: "force",
			usage: `
              force writes output files that fail validation. Each problem is
              logged as a warning.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{landCoverCmd.Flags(), soilMoistureCmd.Flags(), tileCmd.Flags(), regridCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("UMCOOK")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // The flag is shared rather than created twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(landCoverCmd)
	Root.AddCommand(soilMoistureCmd)
	Root.AddCommand(tileCmd)
	Root.AddCommand(regridCmd)
	Root.AddCommand(inspectCmd)
	Root.AddCommand(compareCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("umcook: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// setLogger configures the standard logger.
func setLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "umcook",
	Short: "Edit Unified Model ancillary and start files.",
	Long: `umcook applies small, single-purpose edits ("cookbooks") to Unified Model
ancillary files, fields files and start dumps. Use the subcommands specified
below to choose a cookbook.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'UMCOOK_var' where 'var' is the
name of the variable to be set. Paths can contain environment variables.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		setLogger()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of umcook.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("umcook v%s\n", umcook.Version)
	},
	DisableAutoGenTag: true,
}

var landCoverCmd = &cobra.Command{
	Use:   "landcover",
	Short: "Replace land cover inside a fire mask with soil and shrub.",
	Long: `landcover sets every surface type fraction (stash 216) to zero inside the
fire mask, then sets bare soil to soil_fraction and shrub to 1 - soil_fraction.
The fractions are checked to sum to one everywhere and the result is written
to fpath with "_updated" appended. The input file is not changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.StandardLogger()
		warnPlot(log)
		levels, err := loadPseudoLevels(Cfg.GetString("pseudolevels"))
		if err != nil {
			return err
		}
		return LandCover(log,
			os.ExpandEnv(Cfg.GetString("fpath")),
			os.ExpandEnv(Cfg.GetString("mask_file")),
			Cfg.GetString("mask_var"),
			levels,
			Cfg.GetFloat64("soil_fraction"),
			Cfg.GetFloat64("tolerance"),
			Cfg.GetBool("force"),
		)
	},
	DisableAutoGenTag: true,
}

var soilMoistureCmd = &cobra.Command{
	Use:   "soilmoisture",
	Short: "Reduce start dump soil moisture inside a fire mask.",
	Long: `soilmoisture multiplies soil moisture (stash 9) on every soil level by
reduction_factor inside the fire mask. The start dump is first copied to
fpath with "_original" appended; the copy is then used as the template for
overwriting fpath. An existing backup is never replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.StandardLogger()
		warnPlot(log)
		return SoilMoisture(log,
			os.ExpandEnv(Cfg.GetString("fpath")),
			os.ExpandEnv(Cfg.GetString("mask_file")),
			Cfg.GetString("mask_var"),
			Cfg.GetFloat64("reduction_factor"),
			Cfg.GetBool("force"),
		)
	},
	DisableAutoGenTag: true,
}

var tileCmd = &cobra.Command{
	Use:   "tile",
	Short: "Copy half of one tile of a field into another tile on land.",
	Long: `tile reads the land mask and the source_tile pseudo-level of a tiled field
from a restart dump, halves the values on land and stores them in target_tile.
The fields are found by matching field_name and mask_name against section 0 of
the STASHmaster files, unless field_stash or mask_stash are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.StandardLogger()
		paths, err := toStringSliceE(Cfg.Get("stashmaster"))
		if err != nil {
			return fmt.Errorf("umcook: stashmaster: %v", err)
		}
		sm, err := loadSTASHmaster(paths)
		if err != nil {
			return err
		}
		fieldStash, err := resolveStash(sm, Cfg.GetString("field_name"), Cfg.GetInt("field_stash"), 0)
		if err != nil {
			return err
		}
		maskStash, err := resolveStash(sm, Cfg.GetString("mask_name"), Cfg.GetInt("mask_stash"), defaultLandMaskStash)
		if err != nil {
			return err
		}
		fpath := os.ExpandEnv(Cfg.GetString("fpath"))
		return Tile(log,
			fpath,
			outputPath(Cfg.GetString("output"), fpath+"_updated"),
			fieldStash, maskStash,
			Cfg.GetInt("source_tile"), Cfg.GetInt("target_tile"),
			umcook.CopyOptions{KeepUnmasked: Cfg.GetBool("keep_unmasked")},
			Cfg.GetBool("force"),
		)
	},
	DisableAutoGenTag: true,
}

var regridCmd = &cobra.Command{
	Use:   "regrid",
	Short: "Regrid an ancillary field onto the grid of a land-sea mask.",
	Long: `regrid regrids a field onto the grid of the land-sea mask in target_lsm with
an area-weighted scheme, then makes the result consistent with the mask: sea
points are set to missing and land points without data are filled from the
nearest land point. The result is saved as an ancillary file and as a NetCDF
file with ".nc" appended.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Regrid(logrus.StandardLogger(),
			os.ExpandEnv(Cfg.GetString("fpath")),
			os.ExpandEnv(Cfg.GetString("target_lsm")),
			os.ExpandEnv(Cfg.GetString("output")),
			Cfg.GetString("nc_var"),
			Cfg.GetInt("stash"), Cfg.GetInt("lsm_stash"),
			Cfg.GetBool("force"),
		)
	},
	DisableAutoGenTag: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "List the headers and fields of a UM file.",
	Long: `inspect prints a summary of the fixed-length header and one line for each
field. If STASHmaster files are given, field names are included. With
--verbose the integer and real constants are printed as well.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := toStringSliceE(Cfg.Get("stashmaster"))
		if err != nil {
			return fmt.Errorf("umcook: stashmaster: %v", err)
		}
		sm, err := loadSTASHmaster(paths)
		if err != nil {
			return err
		}
		return Inspect(cmd.OutOrStdout(), os.ExpandEnv(args[0]), sm, Cfg.GetBool("verbose"))
	},
	DisableAutoGenTag: true,
}

var compareCmd = &cobra.Command{
	Use:   "compare A B",
	Short: "List the fields that differ between two UM files.",
	Long: `compare hashes the lookup entry and data record of each field in two UM
files and lists the fields that differ. It exits with an error if any do.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := Compare(cmd.OutOrStdout(), os.ExpandEnv(args[0]), os.ExpandEnv(args[1]))
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("umcook: %d fields differ", n)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func warnPlot(log logrus.FieldLogger) {
	if Cfg.GetBool("plot") {
		log.Warn("plotting is not supported; the plot option is ignored")
	}
}

// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"

	"github.com/spf13/viper"
)

// RootSettingsFile is the optional settings file read from the
// working directory.
const RootSettingsFile = ".darn.yaml"

// AlignConfig is settings for the minimap2 wrapper
type AlignConfig struct {
	// the minimap2 preset passed via -x
	Preset string `mapstructure:"preset"`

	// the number of minimap2 threads
	Threads int `mapstructure:"threads"`

	// the path of the minimap2 binary
	Minimap2 string `mapstructure:"minimap2"`

	// whether to reuse an existing PAF for the same inputs
	Reuse bool `mapstructure:"reuse"`

	// the directory derived PAF outputs are written to
	Dir string `mapstructure:"dir"`
}

// StitchConfig is settings for merge sessions
type StitchConfig struct {
	// the number of flanking bases fetched around each breakpoint
	Context int `mapstructure:"context"`
}

// OutputConfig is settings for written FASTA files
type OutputConfig struct {
	// the number of bases per FASTA line
	LineWidth int `mapstructure:"line-width"`
}

// TelomereConfig is settings for the telomere scan
type TelomereConfig struct {
	// the telomeric repeat probe
	Motif string `mapstructure:"motif"`

	// the number of bases scanned at each end
	Window int `mapstructure:"window"`

	// the back-to-back copies required to call an end telomeric
	MinRepeats int `mapstructure:"min-repeats"`
}

// GapsConfig is settings for the gap scan
type GapsConfig struct {
	// the minimum run of Ns reported as a gap
	MinGap int `mapstructure:"min-gap"`
}

// Config is the root-level settings struct and is a mix of settings
// available in a settings file and those bound from the command line
type Config struct {
	// whether to log extra detail to stdout
	Verbose bool `mapstructure:"verbose"`

	// alignment settings
	Align AlignConfig `mapstructure:"align"`

	// merge session settings
	Stitch StitchConfig `mapstructure:"stitch"`

	// FASTA output settings
	Output OutputConfig `mapstructure:"output"`

	// telomere scan settings
	Telomere TelomereConfig `mapstructure:"telomere"`

	// gap scan settings
	Gaps GapsConfig `mapstructure:"gaps"`
}

// New returns a new Config populated by Viper settings (from an optional
// settings file and/or bound command line flags), with package defaults
// where neither names a value.
func New() *Config {
	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		log.Fatalf("unable to decode settings: %v", err)
	}
	c.setDefaults()

	return c
}

// setDefaults fills any setting left at its zero value.
func (c *Config) setDefaults() {
	if c.Align.Preset == "" {
		c.Align.Preset = "asm10"
	}
	if c.Align.Threads == 0 {
		c.Align.Threads = 4
	}
	if c.Align.Minimap2 == "" {
		c.Align.Minimap2 = "minimap2"
	}
	if c.Stitch.Context == 0 {
		c.Stitch.Context = 200
	}
	if c.Output.LineWidth == 0 {
		c.Output.LineWidth = 80
	}
	if c.Telomere.Motif == "" {
		c.Telomere.Motif = "CCCTAA"
	}
	if c.Telomere.Window == 0 {
		c.Telomere.Window = 1000
	}
	if c.Telomere.MinRepeats == 0 {
		c.Telomere.MinRepeats = 15
	}
	if c.Gaps.MinGap == 0 {
		c.Gaps.MinGap = 10
	}
}

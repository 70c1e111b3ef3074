// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestNew_defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	c := New()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"align preset", c.Align.Preset, "asm10"},
		{"align threads", c.Align.Threads, 4},
		{"align binary", c.Align.Minimap2, "minimap2"},
		{"stitch context", c.Stitch.Context, 200},
		{"output line width", c.Output.LineWidth, 80},
		{"telomere motif", c.Telomere.Motif, "CCCTAA"},
		{"telomere window", c.Telomere.Window, 1000},
		{"telomere min repeats", c.Telomere.MinRepeats, 15},
		{"gaps min gap", c.Gaps.MinGap, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("New() %s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestNew_viperOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("verbose", true)
	viper.Set("align.preset", "asm20")
	viper.Set("align.threads", 8)
	viper.Set("stitch.context", 500)
	viper.Set("telomere.motif", "TTAGGG")
	viper.Set("gaps.min-gap", 25)

	c := New()

	if !c.Verbose {
		t.Error("New() Verbose = false, want true")
	}
	if c.Align.Preset != "asm20" {
		t.Errorf("New() Align.Preset = %q, want %q", c.Align.Preset, "asm20")
	}
	if c.Align.Threads != 8 {
		t.Errorf("New() Align.Threads = %d, want 8", c.Align.Threads)
	}
	if c.Stitch.Context != 500 {
		t.Errorf("New() Stitch.Context = %d, want 500", c.Stitch.Context)
	}
	if c.Telomere.Motif != "TTAGGG" {
		t.Errorf("New() Telomere.Motif = %q, want %q", c.Telomere.Motif, "TTAGGG")
	}
	if c.Gaps.MinGap != 25 {
		t.Errorf("New() Gaps.MinGap = %d, want 25", c.Gaps.MinGap)
	}

	// defaults still fill what the overrides left out
	if c.Align.Minimap2 != "minimap2" {
		t.Errorf("New() Align.Minimap2 = %q, want %q", c.Align.Minimap2, "minimap2")
	}
}

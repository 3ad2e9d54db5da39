// Package config holds the two options the core analyzer/table-builder
// consumes (spec.md §6 "Configuration options consumed by the core"). All
// other options — target language flavor, emitter output names, and so
// on — belong to the emitter collaborator and are out of scope here.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// NoExpectCheck disables the conflict-count check entirely (spec.md §6,
// "A value of -1 disables the check").
const NoExpectCheck = -1

// Options are the core's two configuration knobs.
type Options struct {
	// CompactReduces enables default-action row compaction (spec.md
	// §4.5 step 4).
	CompactReduces bool `toml:"compact_reduces"`

	// Expect is the required conflict count for success. NoExpectCheck
	// disables the check.
	Expect int `toml:"expect"`
}

// Default returns the options the core uses when nothing overrides them:
// compaction off, and exactly zero conflicts expected.
func Default() Options {
	return Options{
		CompactReduces: false,
		Expect:         0,
	}
}

// fileOptions mirrors Options but distinguishes "not present" from a
// present zero value, so a config file may set only one of the two
// fields without clobbering the other with its zero value.
type fileOptions struct {
	CompactReduces *bool `toml:"compact_reduces"`
	Expect         *int  `toml:"expect"`
}

// Load reads an optional TOML config file and merges it over base. A
// missing path is not an error; it simply returns base unchanged,
// matching the CLI convention that an unset config flag is an opt-out,
// not a mistake.
func Load(path string, base Options) (Options, error) {
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return Options{}, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var fo fileOptions
	if err := toml.Unmarshal(data, &fo); err != nil {
		return Options{}, fmt.Errorf("config: cannot parse %s: %w", path, err)
	}

	out := base
	if fo.CompactReduces != nil {
		out.CompactReduces = *fo.CompactReduces
	}
	if fo.Expect != nil {
		out.Expect = *fo.Expect
	}
	return out, nil
}

package camzip

import (
	"bufio"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/fumin/camzip/ac/witten"
)

// Config holds the settings shared by the command line tools.
type Config struct {
	Precision        uint // bit width of the coder registers
	ContextLen       int  // symbols per context for the contextual method
	MaxContextLen    int  // bound on ContextLen
	ProgressInterval int  // symbols between progress reports, 0 disables them
}

// DefaultConfig contains the default settings.
var DefaultConfig = Config{
	Precision:        witten.DefaultPrecision,
	ContextLen:       2,
	MaxContextLen:    DefaultMaxContextLen,
	ProgressInterval: 100000,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// LoadConfig overrides the fields of cfg that are present in the TOML file at path.
func LoadConfig(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	if err != nil {
		return errors.Wrap(err, "")
	}
	return cfg.Validate()
}

// Validate checks the ranges of the fields of cfg.
func (cfg *Config) Validate() error {
	if _, err := witten.NewParams(cfg.Precision); err != nil {
		return errors.Wrap(err, "")
	}
	if err := checkContextLen(cfg.ContextLen, cfg.MaxContextLen); err != nil {
		return err
	}
	if cfg.ProgressInterval < 0 {
		return errors.Errorf("negative progress interval %d", cfg.ProgressInterval)
	}
	return nil
}

// Options returns the coding options implied by cfg.
func (cfg *Config) Options() []Option {
	return []Option{
		WithPrecision(cfg.Precision),
		WithMaxContextLen(cfg.MaxContextLen),
	}
}

package config

import (
	"errors"
	"io/ioutil"
	"os"

	"github.com/pelletier/go-toml"
)

// DefaultFileName is looked up in the working directory when no config path is given.
const DefaultFileName = "compiler.toml"

// Config holds the knobs of the compiler driver. Verbose is the single verbosity switch:
// when it is off, DEBUG diagnostics are suppressed while INFO, WARN and ERROR still flow.
type Config struct {
	Verbose bool   `toml:"verbose" default:"true"`
	Listing bool   `toml:"listing"`
	Output  string `toml:"output,omitempty"`
}

// tomlConfigFile represents the config file as it is encoded in TOML
type tomlConfigFile struct {
	Compiler *Config `toml:"compiler"`
}

func Default() *Config {
	return &Config{Verbose: true}
}

// Load reads the config file at path. A missing file at the default location is not an
// error, the defaults are returned instead.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return Parse(buff)
}

// Parse decodes the TOML contents of a config file on top of the defaults.
func Parse(buff []byte) (*Config, error) {
	tcf := &tomlConfigFile{Compiler: Default()}
	if err := toml.Unmarshal(buff, tcf); err != nil {
		return nil, err
	}
	if tcf.Compiler == nil {
		return Default(), nil
	}
	return tcf.Compiler, nil
}

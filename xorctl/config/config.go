// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides basic infrastructure to set configuration settings
// for xorctl. Each setting is a flag and may also be given in a TOML file
// named by --config. Flags set explicitly on the command line take
// precedence over the file.
package config

import (
	"fmt"
	"reflect"

	"gvisor.dev/xorlist/pkg/log"
	"gvisor.dev/xorlist/pkg/parallel"
	"gvisor.dev/xorlist/pkg/xorlist"
)

// Config holds configuration that is shared by all xorctl commands.
type Config struct {
	// ConfigFile is the path of an optional TOML file with the settings
	// below. Its keys are the toml tags.
	ConfigFile string `flag:"config" toml:"-"`

	// Debug indicates that debug logging should be enabled.
	Debug bool `flag:"debug" toml:"debug"`

	// LogFormat is the log format: text or json.
	LogFormat string `flag:"log-format" toml:"log_format"`

	// Size is the number of elements in the lists commands build.
	Size int `flag:"size" toml:"size"`

	// Policy is the length policy of the lists commands build.
	Policy xorlist.LengthPolicy `flag:"policy" toml:"policy"`

	// MinLen is the smallest piece a parallel traversal splits off.
	MinLen int `flag:"min-len" toml:"min_len"`

	// Splits bounds the number of leaves of a parallel traversal. Zero means
	// one per available CPU.
	Splits int `flag:"splits" toml:"splits"`
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be 'text' or 'json'", c.LogFormat)
	}
	if c.Size < 0 {
		return fmt.Errorf("size must be non-negative, got %d", c.Size)
	}
	if c.MinLen < 1 {
		return fmt.Errorf("min-len must be at least 1, got %d", c.MinLen)
	}
	if c.Splits < 0 {
		return fmt.Errorf("splits must be non-negative, got %d", c.Splits)
	}
	return nil
}

// Options returns the parallel traversal options the config selects.
func (c *Config) Options() parallel.Options {
	opts := parallel.DefaultOptions()
	opts.MinLen = c.MinLen
	if c.Splits > 0 {
		opts.Splits = c.Splits
	}
	return opts
}

// Log logs important aspects of the configuration to the debug log.
func (c *Config) Log() {
	log.Infof("Config:")
	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		name, ok := st.Field(i).Tag.Lookup("flag")
		if !ok {
			continue
		}
		log.Infof("\t%s: %v", name, obj.Field(i).Interface())
	}
}

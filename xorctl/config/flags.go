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

package config

import (
	"flag"
	"fmt"
	"reflect"
	"strconv"

	"github.com/BurntSushi/toml"
	"gvisor.dev/xorlist/pkg/xorlist"
)

// RegisterFlags registers flags used to populate Config.
func RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.String("config", "", "path to a TOML file with default settings. Flags set on the command line override it.")

	// Debugging flags.
	flagSet.Bool("debug", false, "enable debug logging.")
	flagSet.String("log-format", "text", "log format: text (default) or json.")

	// Flags that shape the lists and traversals commands run.
	flagSet.Int("size", 10000, "number of elements in generated lists.")
	flagSet.Var(policyPtr(xorlist.ComputeLength), "policy", "list length policy: computed (default) walks the list, counted keeps a counter.")
	flagSet.Int("min-len", 1, "smallest piece a parallel traversal splits off.")
	flagSet.Int("splits", 0, "maximum number of leaves of a parallel traversal. 0 means one per CPU.")
}

// NewFromFlags creates a new Config with values coming from command line flags
// and, if --config is set, the named file.
func NewFromFlags(flagSet *flag.FlagSet) (*Config, error) {
	conf := &Config{}
	if err := conf.setFlags(flagSet, flagSet.VisitAll); err != nil {
		return nil, err
	}

	if conf.ConfigFile != "" {
		md, err := toml.DecodeFile(conf.ConfigFile, conf)
		if err != nil {
			return nil, fmt.Errorf("error loading config file %q: %w", conf.ConfigFile, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %q has unknown keys: %v", conf.ConfigFile, undecoded)
		}
		// Only flags that were set explicitly take precedence over the file.
		if err := conf.setFlags(flagSet, flagSet.Visit); err != nil {
			return nil, err
		}
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// setFlags copies the value of every flag visited by visit into the field
// tagged with its name.
func (c *Config) setFlags(flagSet *flag.FlagSet, visit func(func(*flag.Flag))) error {
	fields := make(map[string]int)
	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		if name, ok := st.Field(i).Tag.Lookup("flag"); ok {
			if flagSet.Lookup(name) == nil {
				panic(fmt.Sprintf("Flag %q not found", name))
			}
			fields[name] = i
		}
	}

	var err error
	visit(func(fl *flag.Flag) {
		i, ok := fields[fl.Name]
		if !ok || err != nil {
			return
		}
		getter, ok := fl.Value.(flag.Getter)
		if !ok {
			err = fmt.Errorf("flag %q has no typed value", fl.Name)
			return
		}
		obj.Field(i).Set(reflect.ValueOf(getter.Get()))
	})
	return err
}

// ToFlags returns a slice of flags that correspond to the given Config.
// Settings that match the flag default are omitted.
func (c *Config) ToFlags() []string {
	var rv []string

	// Construct a temporary set for default plumbing.
	flagSet := flag.NewFlagSet("tmp", flag.ContinueOnError)
	RegisterFlags(flagSet)

	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		name, ok := st.Field(i).Tag.Lookup("flag")
		if !ok {
			continue
		}
		val := getVal(obj.Field(i))

		fl := flagSet.Lookup(name)
		if fl == nil {
			panic(fmt.Sprintf("Flag %q not found", name))
		}
		if val == fl.DefValue {
			continue
		}
		rv = append(rv, fmt.Sprintf("--%s=%s", fl.Name, val))
	}
	return rv
}

func getVal(field reflect.Value) string {
	if str, ok := field.Addr().Interface().(fmt.Stringer); ok {
		return str.String()
	}
	switch field.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(field.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10)
	case reflect.String:
		return field.String()
	default:
		panic("unknown type " + field.Kind().String())
	}
}

// policyValue adapts xorlist.LengthPolicy to flag.Getter.
type policyValue xorlist.LengthPolicy

func policyPtr(p xorlist.LengthPolicy) *policyValue {
	v := policyValue(p)
	return &v
}

// Set implements flag.Value.Set.
func (p *policyValue) Set(s string) error {
	v, err := xorlist.ParseLengthPolicy(s)
	if err != nil {
		return err
	}
	*p = policyValue(v)
	return nil
}

// Get implements flag.Getter.Get.
func (p *policyValue) Get() any {
	return xorlist.LengthPolicy(*p)
}

// String implements flag.Value.String.
func (p *policyValue) String() string {
	return xorlist.LengthPolicy(*p).String()
}

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

// Package cmd holds implementations of the xorctl commands.
package cmd

import (
	"fmt"
	"os"

	"gvisor.dev/xorlist/pkg/log"
	"gvisor.dev/xorlist/pkg/xorlist"
	"gvisor.dev/xorlist/xorctl/config"
)

// Fatalf logs the same message to the debug log and to stderr, and exits with
// a status that no command uses for an ordinary failure.
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warningf("FATAL ERROR: %s", msg)
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(128)
}

// newList returns the list [0, size) with the configured length policy.
func newList(conf *config.Config, size int) *xorlist.List[int64] {
	l := xorlist.New[int64](conf.Policy)
	for i := 0; i < size; i++ {
		l.PushBack(int64(i))
	}
	log.Debugf("Built list of %d elements, arena %d/%d slots", size, l.Arena().Live(), l.Arena().Cap())
	return l
}

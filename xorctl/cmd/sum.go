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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"gvisor.dev/xorlist/pkg/log"
	"gvisor.dev/xorlist/pkg/parallel"
	"gvisor.dev/xorlist/xorctl/config"
)

// Sum implements subcommands.Command for the "sum" command.
type Sum struct{}

// Name implements subcommands.Command.Name.
func (*Sum) Name() string {
	return "sum"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Sum) Synopsis() string {
	return "sum a generated list sequentially and in parallel and compare the results"
}

// Usage implements subcommands.Command.Usage.
func (*Sum) Usage() string {
	return `sum - sum the list [0, size) both ways. Fails if the sums differ.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Sum) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Sum) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)

	seqSum, parSum, err := sums(ctx, conf)
	if err != nil {
		Fatalf("parallel sum: %v", err)
	}
	return reportSums(os.Stdout, conf.Size, seqSum, parSum)
}

// sums returns the sequential and the parallel sum of [0, conf.Size).
func sums(ctx context.Context, conf *config.Config) (int64, int64, error) {
	l := newList(conf, conf.Size)
	defer l.Release()

	var seqSum int64
	for v := range l.All() {
		seqSum += v
	}
	parSum, err := parallel.Sum[int64](ctx, l.Producer(), conf.Options())
	return seqSum, parSum, err
}

func reportSums(w io.Writer, size int, seqSum, parSum int64) subcommands.ExitStatus {
	fmt.Fprintf(w, "size:       %d\n", size)
	fmt.Fprintf(w, "sequential: %d\n", seqSum)
	fmt.Fprintf(w, "parallel:   %d\n", parSum)
	if seqSum != parSum {
		log.Warningf("Sequential sum %d differs from parallel sum %d", seqSum, parSum)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

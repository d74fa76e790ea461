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
	"iter"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"gvisor.dev/xorlist/pkg/parallel"
	"gvisor.dev/xorlist/pkg/xorlist"
	"gvisor.dev/xorlist/xorctl/config"
)

// Split implements subcommands.Command for the "split" command.
type Split struct {
	depth int
}

// Name implements subcommands.Command.Name.
func (*Split) Name() string {
	return "split"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Split) Synopsis() string {
	return "print the leaves a parallel traversal splits a list into"
}

// Usage implements subcommands.Command.Usage.
func (*Split) Usage() string {
	return `split [flags] - print the first and last element and the length of each leaf.

Without --depth, the leaves are the ones a parallel traversal with the
configured --min-len and --splits visits.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (s *Split) SetFlags(f *flag.FlagSet) {
	f.IntVar(&s.depth, "depth", -1, "halve the list exactly this many times instead of following the traversal options.")
}

// leaf describes one contiguous piece of a split list.
type leaf struct {
	first, last int64
	length      int
}

// Execute implements subcommands.Command.Execute.
func (s *Split) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	l := newList(conf, conf.Size)
	defer l.Release()

	var leaves []leaf
	if s.depth >= 0 {
		leaves = splitToDepth(l.Producer(), s.depth)
	} else {
		var err error
		leaves, err = traversalLeaves(ctx, l.Producer(), conf.Options())
		if err != nil {
			Fatalf("traversal: %v", err)
		}
	}
	if err := printLeaves(os.Stdout, leaves); err != nil {
		Fatalf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

// splitToDepth halves p depth times, or until pieces are single elements.
func splitToDepth(p xorlist.Producer[int64], depth int) []leaf {
	if depth == 0 || p.Len() < 2 {
		return []leaf{describe(p.IntoIter())}
	}
	left, right := p.SplitAt(p.Len() / 2)
	return append(splitToDepth(left, depth-1), splitToDepth(right, depth-1)...)
}

// describe reads the ends of a leaf from both sides.
func describe(it *xorlist.SeqIter[int64]) leaf {
	lf := leaf{length: it.Len()}
	first, ok := it.Next()
	if !ok {
		return lf
	}
	lf.first, lf.last = first, first
	if last, ok := it.NextBack(); ok {
		lf.last = last
	}
	return lf
}

// traversalLeaves returns the leaves parallel.Drive visits, in order.
func traversalLeaves(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) ([]leaf, error) {
	return parallel.Drive[int64, []leaf](ctx, p, opts, func(_ context.Context, seq iter.Seq[int64]) ([]leaf, error) {
		var lf leaf
		for v := range seq {
			if lf.length == 0 {
				lf.first = v
			}
			lf.last = v
			lf.length++
		}
		return []leaf{lf}, nil
	}, func(a, b []leaf) []leaf {
		return append(a, b...)
	})
}

func printLeaves(w io.Writer, leaves []leaf) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEAF\tFIRST\tLAST\tLEN")
	for i, lf := range leaves {
		if lf.length == 0 {
			fmt.Fprintf(tw, "%d\t-\t-\t0\n", i)
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", i, lf.first, lf.last, lf.length)
	}
	return tw.Flush()
}

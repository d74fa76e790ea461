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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
	"gvisor.dev/xorlist/pkg/log"
	"gvisor.dev/xorlist/pkg/parallel"
	"gvisor.dev/xorlist/pkg/xorlist"
	"gvisor.dev/xorlist/xorctl/config"
)

// Bench implements subcommands.Command for the "bench" command.
type Bench struct {
	reps   int
	format string
}

// BenchReport is the output of the bench command.
type BenchReport struct {
	GOMAXPROCS int                  `json:"gomaxprocs" yaml:"gomaxprocs"`
	Policy     xorlist.LengthPolicy `json:"policy" yaml:"policy"`
	MinLen     int                  `json:"min_len" yaml:"min_len"`
	Splits     int                  `json:"splits" yaml:"splits"`
	Reps       int                  `json:"reps" yaml:"reps"`

	// MaxRSSKB is the peak resident set size of the process, in kilobytes.
	MaxRSSKB int64 `json:"max_rss_kb" yaml:"max_rss_kb"`

	Results []BenchResult `json:"results" yaml:"results"`
}

// BenchResult is the timing of one operation on one list size.
type BenchResult struct {
	Op           string `json:"op" yaml:"op"`
	Size         int    `json:"size" yaml:"size"`
	SequentialNs int64  `json:"sequential_ns_per_op" yaml:"sequential_ns_per_op"`
	ParallelNs   int64  `json:"parallel_ns_per_op" yaml:"parallel_ns_per_op"`

	// ArenaLive and ArenaCap are the list's arena slots in use and
	// allocated.
	ArenaLive int `json:"arena_live" yaml:"arena_live"`
	ArenaCap  int `json:"arena_cap" yaml:"arena_cap"`
}

// benchOp is one operation timed both ways. Both functions return a digest
// of their result so the two can be checked against each other. size is the
// list length.
type benchOp struct {
	name string
	seq  func(l *xorlist.List[int64], size int) int64
	par  func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error)
}

func even(v int64) bool { return v%2 == 0 }

func double(v int64) int64 { return 2 * v }

func sumOf(s []int64) int64 {
	var n int64
	for _, v := range s {
		n += v
	}
	return n
}

func boolDigest(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

var benchOps = []benchOp{
	{
		name: "sum",
		seq: func(l *xorlist.List[int64], _ int) int64 {
			var n int64
			for v := range l.All() {
				n += v
			}
			return n
		},
		par: func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error) {
			return parallel.Sum[int64](ctx, p, opts)
		},
	},
	{
		name: "map",
		seq: func(l *xorlist.List[int64], _ int) int64 {
			var out []int64
			for v := range l.All() {
				out = append(out, double(v))
			}
			return sumOf(out)
		},
		par: func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error) {
			out, err := parallel.Map(ctx, p, opts, double)
			return sumOf(out), err
		},
	},
	{
		name: "filter",
		seq: func(l *xorlist.List[int64], _ int) int64 {
			var out []int64
			for v := range l.All() {
				if even(v) {
					out = append(out, v)
				}
			}
			return sumOf(out)
		},
		par: func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error) {
			out, err := parallel.Filter(ctx, p, opts, even)
			return sumOf(out), err
		},
	},
	{
		// Looks for the middle element.
		name: "find",
		seq: func(l *xorlist.List[int64], size int) int64 {
			target := int64(size / 2)
			for v := range l.All() {
				if v == target {
					return v
				}
			}
			return -1
		},
		par: func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error) {
			target := int64(p.Len() / 2)
			v, ok, err := parallel.FindAny(ctx, p, opts, func(v int64) bool { return v == target })
			if !ok {
				v = -1
			}
			return v, err
		},
	},
	{
		name: "fold",
		seq: func(l *xorlist.List[int64], _ int) int64 {
			var acc int64
			for v := range l.All() {
				acc += v * v
			}
			return acc
		},
		par: func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error) {
			return parallel.Fold(ctx, p, opts,
				func() int64 { return 0 },
				func(acc, v int64) int64 { return acc + v*v },
				func(a, b int64) int64 { return a + b })
		},
	},
	{
		name: "any",
		seq: func(l *xorlist.List[int64], _ int) int64 {
			for v := range l.All() {
				if v < 0 {
					return 1
				}
			}
			return 0
		},
		par: func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error) {
			found, err := parallel.Any(ctx, p, opts, func(v int64) bool { return v < 0 })
			return boolDigest(found), err
		},
	},
	{
		name: "all",
		seq: func(l *xorlist.List[int64], _ int) int64 {
			for v := range l.All() {
				if v < 0 {
					return 0
				}
			}
			return 1
		},
		par: func(ctx context.Context, p xorlist.Producer[int64], opts parallel.Options) (int64, error) {
			all, err := parallel.All(ctx, p, opts, func(v int64) bool { return v >= 0 })
			return boolDigest(all), err
		},
	},
}

type benchOutputFunc func(io.Writer, *BenchReport) error

// benchOutputMap maps output format names to output functions.
var benchOutputMap = map[string]benchOutputFunc{
	"text":       benchOutputText,
	"json":       benchOutputJSON,
	"yaml":       benchOutputYAML,
	"prometheus": benchOutputPrometheus,
}

// Name implements subcommands.Command.Name.
func (*Bench) Name() string {
	return "bench"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Bench) Synopsis() string {
	return "time sequential and parallel traversals of generated lists"
}

// Usage implements subcommands.Command.Usage.
func (*Bench) Usage() string {
	return `bench [flags] [sizes...] - time sum, map, filter, find, fold, any and all
both ways on lists of each size. Defaults to --size.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (b *Bench) SetFlags(f *flag.FlagSet) {
	f.IntVar(&b.reps, "reps", 10, "number of timed repetitions per operation.")
	f.StringVar(&b.format, "format", "text", "output format (text, json, yaml, prometheus).")
}

// Execute implements subcommands.Command.Execute.
func (b *Bench) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf := args[0].(*config.Config)
	out, ok := benchOutputMap[b.format]
	if !ok {
		Fatalf("Unsupported output format %q", b.format)
	}
	if b.reps < 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	sizes := []int{conf.Size}
	if f.NArg() > 0 {
		sizes = sizes[:0]
		for _, arg := range f.Args() {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				fmt.Fprintf(os.Stderr, "invalid size %q\n", arg)
				f.Usage()
				return subcommands.ExitUsageError
			}
			sizes = append(sizes, n)
		}
	}

	report, err := b.run(ctx, conf, sizes)
	if err != nil {
		Fatalf("%v", err)
	}
	if err := out(os.Stdout, report); err != nil {
		Fatalf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

// run times every benchOp on a list of each size.
func (b *Bench) run(ctx context.Context, conf *config.Config, sizes []int) (*BenchReport, error) {
	opts := conf.Options()
	report := &BenchReport{
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		Policy:     conf.Policy,
		MinLen:     opts.MinLen,
		Splits:     opts.Splits,
		Reps:       b.reps,
	}
	progress := log.BasicRateLimitedLogger(time.Second)

	for _, size := range sizes {
		l := newList(conf, size)
		for _, op := range benchOps {
			progress.Infof("Benchmarking %s on %d elements", op.name, size)
			res := BenchResult{
				Op:        op.name,
				Size:      size,
				ArenaLive: l.Arena().Live(),
				ArenaCap:  l.Arena().Cap(),
			}

			var want int64
			start := time.Now()
			for i := 0; i < b.reps; i++ {
				want = op.seq(l, size)
			}
			res.SequentialNs = time.Since(start).Nanoseconds() / int64(b.reps)

			var got int64
			start = time.Now()
			for i := 0; i < b.reps; i++ {
				var err error
				if got, err = op.par(ctx, l.Producer(), opts); err != nil {
					return nil, fmt.Errorf("%s on %d elements: %w", op.name, size, err)
				}
			}
			res.ParallelNs = time.Since(start).Nanoseconds() / int64(b.reps)

			if got != want {
				return nil, fmt.Errorf("%s on %d elements: parallel result %d differs from sequential result %d", op.name, size, got, want)
			}
			report.Results = append(report.Results, res)
		}
		l.Release()
	}

	rss, err := maxRSS()
	if err != nil {
		return nil, err
	}
	report.MaxRSSKB = rss
	return report, nil
}

// maxRSS returns the peak resident set size of this process in kilobytes.
func maxRSS() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, fmt.Errorf("getrusage: %w", err)
	}
	return int64(ru.Maxrss), nil
}

func benchOutputText(w io.Writer, r *BenchReport) error {
	fmt.Fprintf(w, "gomaxprocs=%d policy=%v min-len=%d splits=%d reps=%d max-rss=%dKB\n",
		r.GOMAXPROCS, r.Policy, r.MinLen, r.Splits, r.Reps, r.MaxRSSKB)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "OP\tSIZE\tSEQ NS/OP\tPAR NS/OP\tARENA\t")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d/%d\t\n", res.Op, res.Size, res.SequentialNs, res.ParallelNs, res.ArenaLive, res.ArenaCap)
	}
	return tw.Flush()
}

func benchOutputJSON(w io.Writer, r *BenchReport) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func benchOutputYAML(w io.Writer, r *BenchReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

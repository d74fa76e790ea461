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
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
	"gvisor.dev/xorlist/pkg/parallel"
	"gvisor.dev/xorlist/pkg/xorlist"
	"gvisor.dev/xorlist/xorctl/config"
)

func testConfig(size int, policy xorlist.LengthPolicy) *config.Config {
	return &config.Config{
		LogFormat: "text",
		Size:      size,
		Policy:    policy,
		MinLen:    1,
		Splits:    8,
	}
}

func TestSums(t *testing.T) {
	for _, policy := range []xorlist.LengthPolicy{xorlist.ComputeLength, xorlist.CountLength} {
		seqSum, parSum, err := sums(context.Background(), testConfig(1000, policy))
		if err != nil {
			t.Fatalf("sums(%v) failed: %v", policy, err)
		}
		if seqSum != 499500 || parSum != 499500 {
			t.Errorf("sums(%v) = %d, %d, want 499500 both ways", policy, seqSum, parSum)
		}
	}
}

func TestReportSums(t *testing.T) {
	var buf bytes.Buffer
	if got := reportSums(&buf, 3, 3, 3); got != subcommands.ExitSuccess {
		t.Errorf("reportSums with equal sums = %v, want success", got)
	}
	if !strings.Contains(buf.String(), "parallel:   3") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
	if got := reportSums(&buf, 3, 3, 4); got != subcommands.ExitFailure {
		t.Errorf("reportSums with different sums = %v, want failure", got)
	}
}

func TestSplitToDepth(t *testing.T) {
	for _, tc := range []struct {
		size  int
		depth int
		want  []leaf
	}{
		{size: 8, depth: 0, want: []leaf{{0, 7, 8}}},
		{size: 8, depth: 2, want: []leaf{{0, 1, 2}, {2, 3, 2}, {4, 5, 2}, {6, 7, 2}}},
		{size: 5, depth: 1, want: []leaf{{0, 1, 2}, {2, 4, 3}}},
		// Stops at single elements.
		{size: 2, depth: 5, want: []leaf{{0, 0, 1}, {1, 1, 1}}},
		{size: 0, depth: 3, want: []leaf{{}}},
	} {
		l := newList(testConfig(tc.size, xorlist.CountLength), tc.size)
		got := splitToDepth(l.Producer(), tc.depth)
		if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(leaf{})); diff != "" {
			t.Errorf("splitToDepth(size=%d, depth=%d) mismatch (-want +got):\n%s", tc.size, tc.depth, diff)
		}
	}
}

func TestTraversalLeaves(t *testing.T) {
	l := newList(testConfig(100, xorlist.ComputeLength), 100)
	got, err := traversalLeaves(context.Background(), l.Producer(), parallel.Options{MinLen: 1, Splits: 4})
	if err != nil {
		t.Fatalf("traversalLeaves failed: %v", err)
	}
	want := []leaf{{0, 24, 25}, {25, 49, 25}, {50, 74, 25}, {75, 99, 25}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(leaf{})); diff != "" {
		t.Errorf("traversalLeaves mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintLeaves(t *testing.T) {
	var buf bytes.Buffer
	if err := printLeaves(&buf, []leaf{{0, 4, 5}, {}}); err != nil {
		t.Fatalf("printLeaves failed: %v", err)
	}
	want := "LEAF  FIRST  LAST  LEN\n" +
		"0     0      4     5\n" +
		"1     -      -     0\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("printLeaves mismatch (-want +got):\n%s", diff)
	}
}

func TestBenchRun(t *testing.T) {
	b := &Bench{reps: 2, format: "yaml"}
	conf := testConfig(0, xorlist.CountLength)
	report, err := b.run(context.Background(), conf, []int{0, 1, 300})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got, want := len(report.Results), 3*len(benchOps); got != want {
		t.Fatalf("got %d results, want %d", got, want)
	}
	for _, res := range report.Results {
		if res.ArenaLive != res.Size {
			t.Errorf("%s on %d elements: %d live arena slots, want %d", res.Op, res.Size, res.ArenaLive, res.Size)
		}
		if res.ArenaCap < res.ArenaLive {
			t.Errorf("%s on %d elements: arena capacity %d below live slots %d", res.Op, res.Size, res.ArenaCap, res.ArenaLive)
		}
	}
	if report.MaxRSSKB <= 0 {
		t.Errorf("MaxRSSKB = %d, want a positive value", report.MaxRSSKB)
	}

	var buf bytes.Buffer
	if err := benchOutputYAML(&buf, report); err != nil {
		t.Fatalf("benchOutputYAML failed: %v", err)
	}
	var fromYAML BenchReport
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(*report, fromYAML); diff != "" {
		t.Errorf("YAML report mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "policy: counted") {
		t.Errorf("YAML report does not name the policy:\n%s", buf.String())
	}

	buf.Reset()
	if err := benchOutputJSON(&buf, report); err != nil {
		t.Fatalf("benchOutputJSON failed: %v", err)
	}
	var fromJSON BenchReport
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(*report, fromJSON); diff != "" {
		t.Errorf("JSON report mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := benchOutputText(&buf, report); err != nil {
		t.Fatalf("benchOutputText failed: %v", err)
	}
	if got, want := strings.Count(buf.String(), "\n"), 2+len(report.Results); got != want {
		t.Errorf("text report has %d lines, want %d:\n%s", got, want, buf.String())
	}
}

func TestBenchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &Bench{reps: 1, format: "text"}
	if _, err := b.run(ctx, testConfig(0, xorlist.ComputeLength), []int{10}); err == nil {
		t.Errorf("run on a cancelled context succeeded")
	}
}

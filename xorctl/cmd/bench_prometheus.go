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
	"io"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names in the Prometheus exposition of a BenchReport.
const (
	nsPerOpMetric    = "xorctl_bench_ns_per_op"
	arenaSlotsMetric = "xorctl_bench_arena_slots"
	maxRSSMetric     = "xorctl_max_rss_kilobytes"
)

func labels(kv ...string) []*dto.LabelPair {
	var pairs []*dto.LabelPair
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, &dto.LabelPair{Name: proto.String(kv[i]), Value: proto.String(kv[i+1])})
	}
	return pairs
}

func gauge(value float64, kv ...string) *dto.Metric {
	return &dto.Metric{
		Label: labels(kv...),
		Gauge: &dto.Gauge{Value: proto.Float64(value)},
	}
}

// benchMetricFamilies converts r into gauge families.
func benchMetricFamilies(r *BenchReport) []*dto.MetricFamily {
	nsPerOp := &dto.MetricFamily{
		Name: proto.String(nsPerOpMetric),
		Help: proto.String("Nanoseconds per traversal of a generated list."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	arena := &dto.MetricFamily{
		Name: proto.String(arenaSlotsMetric),
		Help: proto.String("Arena slots of the list each operation traversed."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	seen := make(map[int]bool)
	for _, res := range r.Results {
		size := strconv.Itoa(res.Size)
		nsPerOp.Metric = append(nsPerOp.Metric,
			gauge(float64(res.SequentialNs), "op", res.Op, "size", size, "mode", "sequential"),
			gauge(float64(res.ParallelNs), "op", res.Op, "size", size, "mode", "parallel"))
		if !seen[res.Size] {
			seen[res.Size] = true
			arena.Metric = append(arena.Metric,
				gauge(float64(res.ArenaLive), "size", size, "state", "live"),
				gauge(float64(res.ArenaCap), "size", size, "state", "allocated"))
		}
	}
	rss := &dto.MetricFamily{
		Name:   proto.String(maxRSSMetric),
		Help:   proto.String("Peak resident set size of the benchmark process."),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{gauge(float64(r.MaxRSSKB))},
	}
	return []*dto.MetricFamily{nsPerOp, arena, rss}
}

func benchOutputPrometheus(w io.Writer, r *BenchReport) error {
	for _, mf := range benchMetricFamilies(r) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Package results assembles the engine's aggregated envelopes into the
// JSON-serializable "workflow step" tree the external driver/CLI consumes
// (spec §6). The engine itself produces only in-memory Go values
// (internal/aggregate.Aggregator); this package is the one place that
// knows the wire shape, so the core stays free of marshaling concerns.
package results

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"netgraph/internal/aggregate"
)

// Metadata carries the run parameters and identity the output's
// "metadata" object reports alongside the envelopes.
type Metadata struct {
	Iterations    int
	Baseline      bool
	Parallelism   int
	StorePatterns bool
	RunID         string // defaults to a fresh uuid.New() string if empty
}

// Document is the top-level "workflow step" tree: a workflow index keyed
// by step name, plus the step's own body (envelopes, pattern results,
// metadata) keyed under that same step name.
type Document struct {
	StepName string
	Meta     Metadata
	agg      *aggregate.Aggregator
	// CapacityMode stamps every capacity envelope's "mode" field (spec §3's
	// CapacityEnvelope.mode): the aggregator itself folds records without
	// tracking which flow mode produced them, since one engine run's
	// capacity analyzer always uses a single configured mode.
	CapacityMode string
}

// New builds a Document wrapping agg's current (possibly not yet
// finalized-by-caller; Aggregator finalizes lazily on read) state.
func New(stepName string, agg *aggregate.Aggregator, meta Metadata, capacityMode string) *Document {
	if meta.RunID == "" {
		meta.RunID = uuid.New().String()
	}
	return &Document{StepName: stepName, Meta: meta, agg: agg, CapacityMode: capacityMode}
}

// Build renders the document into the plain map[string]any tree matching
// spec §6, ready for json.Marshal or further inspection.
func (d *Document) Build() map[string]any {
	step := map[string]any{
		"metadata": map[string]any{
			"iterations":     d.Meta.Iterations,
			"baseline":       d.Meta.Baseline,
			"parallelism":    d.Meta.Parallelism,
			"store_patterns": d.Meta.StorePatterns,
			"run_id":         d.Meta.RunID,
		},
	}

	if caps := d.buildCapacityEnvelopes(); len(caps) > 0 {
		step["capacity_envelopes"] = caps
	}
	if plc := d.buildPlacementEnvelopes(); len(plc) > 0 {
		step["placement_envelopes"] = plc
	}
	if pats := d.buildPatternResults(); len(pats) > 0 {
		step["failure_pattern_results"] = pats
	}

	return map[string]any{
		"workflow": map[string]any{
			d.StepName: map[string]any{
				"step_type":       "monte_carlo_failure_analysis",
				"step_name":       d.StepName,
				"execution_order": 1,
			},
		},
		d.StepName: step,
	}
}

// MarshalJSON lets a Document be passed directly to json.Marshal/Encode.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Build())
}

func (d *Document) buildCapacityEnvelopes() map[string]any {
	out := map[string]any{}
	for key, fin := range d.agg.CapacityEnvelopes() {
		src, dst, ok := d.agg.CapacityEnvelopeMeta(key)
		if !ok {
			continue
		}
		entry := map[string]any{
			"source":        src,
			"sink":          dst,
			"mode":          d.CapacityMode,
			"total_samples": fin.TotalSamples,
			"frequencies":   formatFrequencies(fin.Frequencies),
			"min":           fin.Min,
			"max":           fin.Max,
			"mean":          fin.Mean,
			"stdev":         fin.Stdev,
		}
		if fs := buildFlowSummary(fin.FlowSummary); fs != nil {
			entry["flow_summary_stats"] = fs
		}
		out[key] = entry
	}
	return out
}

func (d *Document) buildPlacementEnvelopes() map[string]any {
	out := map[string]any{}
	for key, fin := range d.agg.PlacementEnvelopes() {
		src, dst, priority, ok := d.agg.PlacementEnvelopeMeta(key)
		if !ok {
			continue
		}
		entry := map[string]any{
			"src":           src,
			"dst":           dst,
			"priority":      priority,
			"total_samples": fin.TotalSamples,
			"frequencies":   formatFrequencies(fin.Frequencies),
			"min":           fin.Min,
			"max":           fin.Max,
			"mean":          fin.Mean,
			"stdev":         fin.Stdev,
		}
		if fs := buildFlowSummary(fin.FlowSummary); fs != nil {
			entry["flow_summary_stats"] = fs
		}
		out[key] = entry
	}
	return out
}

func (d *Document) buildPatternResults() map[string]any {
	out := map[string]any{}
	for hash, rec := range d.agg.Patterns() {
		nodes := append([]string{}, rec.ExcludedNodes...)
		links := append([]string{}, rec.ExcludedLinks...)
		sort.Strings(nodes)
		sort.Strings(links)
		entry := map[string]any{
			"excluded_nodes": nodes,
			"excluded_links": links,
			"count":          rec.Count,
			"is_baseline":    rec.IsBaseline,
		}
		if len(rec.CapacityMatrix) > 0 {
			entry["capacity_matrix"] = rec.CapacityMatrix
		}
		out[hash] = entry
	}
	return out
}

func buildFlowSummary(fs *aggregate.FlowSummaryStats) map[string]any {
	if fs == nil {
		return nil
	}
	costStats := map[string]any{}
	for cost, stats := range fs.Finalize() {
		costStats[strconv.FormatFloat(cost, 'g', -1, 64)] = map[string]any{
			"min":           stats.Min,
			"mean":          stats.Mean,
			"max":           stats.Max,
			"total_samples": stats.TotalSamples,
			"frequencies":   formatFrequencies(stats.Frequencies),
		}
	}
	return map[string]any{
		"total_flow_summaries":    fs.TotalFlowSummaries,
		"cost_distribution_stats": costStats,
		"min_cut_frequencies":     fs.MinCutFrequencies,
		"edge_usage_frequencies":  fs.EdgeUsageFrequencies,
	}
}

// formatFrequencies renders a float-keyed histogram using the canonical
// string form of each value (spec §6), so the JSON document never depends
// on Go's map iteration order or float formatting quirks.
func formatFrequencies(freq map[float64]int) map[string]int {
	out := make(map[string]int, len(freq))
	for v, c := range freq {
		out[strconv.FormatFloat(v, 'g', -1, 64)] = c
	}
	return out
}

// Command netgraph-run is a minimal wiring example, not the external
// workflow driver or CLI spec §1 places out of scope: it builds a small
// Network and FailurePolicy directly in Go, runs the Monte Carlo engine,
// and writes the resulting envelopes to a results.json file in the §6
// output shape.
package main

import (
	"context"
	"flag"
	"os"

	"netgraph/internal/analyzer"
	"netgraph/internal/demand"
	"netgraph/internal/engine"
	"netgraph/internal/network"
	"netgraph/internal/policyio"
	"netgraph/internal/results"
	"netgraph/pkg/config"
	"netgraph/pkg/logger"
	"netgraph/pkg/metrics"
	"netgraph/pkg/telemetry"
)

// demoFailurePolicySet is the serialized policy form from spec §6: three
// weighted modes mirroring scenario 5 (node-only, link-only, risk-group).
const demoFailurePolicySet = `
failure_policy_set:
  clos_fabric:
    modes:
      - weight: 0.5
        rules:
          - entity_scope: node
            rule_type: choice
            count: 1
      - weight: 0.3
        rules:
          - entity_scope: link
            rule_type: random
            probability: 0.25
      - weight: 0.2
        rules:
          - entity_scope: risk_group
            rule_type: all
            conditions: []
`

func main() {
	outPath := flag.String("out", "results.json", "path to write the results document")
	iterations := flag.Int("iterations", 1000, "number of Monte Carlo iterations")
	parallelism := flag.Int("parallelism", 4, "worker pool size")
	seedFlag := flag.String("seed", "netgraph-demo", "master seed; empty disables deterministic sampling")
	flag.Parse()

	cfg, err := config.NewLoader().Load()
	if err != nil {
		logger.Init("info")
		logger.Error("failed to load config, continuing with built-in defaults", "error", err)
		cfg = &config.Config{}
		cfg.Log.Level = "info"
		cfg.Log.Format = "json"
		cfg.Log.Output = "stdout"
		cfg.Metrics.Namespace = "netgraph"
		cfg.Metrics.Subsystem = "engine"
	}

	logger.InitWithConfig(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	ctx := context.Background()
	if cfg.Tracing.Enabled {
		provider, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     true,
			ServiceName: "netgraph-run",
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Error("failed to init telemetry, continuing without tracing", "error", err)
		} else {
			defer func() { _ = provider.Shutdown(context.Background()) }()
		}
	}

	m := metrics.Init(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	net := buildDemoNetwork()

	policies, err := policyio.LoadBytes([]byte(demoFailurePolicySet))
	if err != nil {
		logger.Error("failed to load failure policy", "error", err)
		os.Exit(1)
	}
	pol := policies["clos_fabric"]

	placement := &analyzer.PlacementAnalyzer{
		Demands: []demand.TrafficDemand{
			{SourcePath: "^S\\d+$", SinkPath: "^L\\d+$", Priority: 1, Demand: 250, Mode: demand.ModeCombine},
		},
		IncludeFlowDetails: true,
	}
	capacity := &analyzer.CapacityAnalyzer{
		SourcePattern:      "^S\\d+$",
		SinkPattern:        "^L\\d+$",
		Mode:               network.ModeCombine,
		IncludeFlowDetails: true,
	}

	var masterSeed *string
	if *seedFlag != "" {
		masterSeed = seedFlag
	}

	fm := engine.New(engine.Config{
		Network:       net,
		Policy:        pol,
		Analyzers:     []analyzer.Analyzer{capacity, placement},
		Iterations:    *iterations,
		Parallelism:   *parallelism,
		Baseline:      true,
		StorePatterns: true,
		MasterSeed:    masterSeed,
		Metrics:       m,
	})

	res, err := fm.Run(ctx)
	if res == nil {
		// Run returns a nil *Result for every validation error (bad
		// network, bad policy, no analyzers, negative iterations): only
		// the fatal-iteration-error path returns a partial Result alongside
		// a non-nil error.
		logger.Error("engine run failed validation", "error", err)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("engine run failed", "error", err, "completed", res.Completed)
	}

	doc := results.New("failure_analysis", res.Aggregator, results.Metadata{
		Iterations:    *iterations,
		Baseline:      true,
		Parallelism:   *parallelism,
		StorePatterns: true,
	}, string(network.ModeCombine))

	raw, marshalErr := doc.MarshalJSON()
	if marshalErr != nil {
		logger.Error("failed to marshal results", "error", marshalErr)
		os.Exit(1)
	}
	if writeErr := os.WriteFile(*outPath, raw, 0o644); writeErr != nil {
		logger.Error("failed to write results file", "error", writeErr, "path", *outPath)
		os.Exit(1)
	}

	logger.Info("engine run complete", "completed", res.Completed, "path", *outPath)
}

// buildDemoNetwork constructs the 2-spine/4-leaf fabric used throughout
// spec §8's scenarios, tagging L1/L2 with a shared risk group so the demo
// policy's risk_group mode has something to select.
func buildDemoNetwork() *network.Network {
	n := network.New()
	spines := []string{"S1", "S2"}
	leaves := []string{"L1", "L2", "L3", "L4"}

	for _, s := range spines {
		_ = n.AddNode(&network.Node{Name: s})
	}
	for _, l := range leaves {
		rg := []string{"leaf-pair-a"}
		if l == "L3" || l == "L4" {
			rg = []string{"leaf-pair-b"}
		}
		_ = n.AddNode(&network.Node{Name: l, RiskGroups: rg})
	}

	id := 0
	for _, s := range spines {
		for _, l := range leaves {
			id++
			_ = n.AddLink(&network.Link{
				ID:       "link-" + s + "-" + l,
				Source:   s,
				Target:   l,
				Capacity: 100,
				Cost:     1,
			})
		}
	}
	return n
}

// Package deploy hands parsed deployment directives to a runner after a
// cluster has been created. Directive semantics belong to the runner
// implementation; this layer only preserves order and counts failures.
package deploy

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/surgecloud/surge/pkg/driver"
	"github.com/surgecloud/surge/pkg/spec"
)

// Runner executes a single directive against the nodes of a freshly
// created cluster.
type Runner interface {
	Run(ctx context.Context, directive spec.Deployment, nodes []driver.Node) error
}

// RunAll executes the directives in order and returns the number of
// failures. Failed directives do not stop the remaining ones; that matches
// the fire-and-report contract deployments have always had.
func RunAll(ctx context.Context, runner Runner, directives []spec.Deployment, nodes []driver.Node, log zerolog.Logger) int {
	failures := 0
	for _, directive := range directives {
		if err := runner.Run(ctx, directive, nodes); err != nil {
			log.Error().Err(err).Str("deployment", directive.Name).Msg("deployment failed")
			failures++
		}
	}
	return failures
}

// LogRunner is the built-in runner: it records each directive without
// executing it, for setups where deployments are applied by external
// tooling after provisioning.
type LogRunner struct {
	Log zerolog.Logger
}

// Run logs the directive and the target nodes.
func (r LogRunner) Run(_ context.Context, directive spec.Deployment, nodes []driver.Node) error {
	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = node.Name
	}
	r.Log.Info().
		Str("deployment", directive.Name).
		Interface("params", directive.Params).
		Strs("nodes", names).
		Msg("deployment recorded, apply with external tooling")
	return nil
}

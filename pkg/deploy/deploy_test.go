package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/surgecloud/surge/pkg/driver"
	"github.com/surgecloud/surge/pkg/spec"
)

// scriptedRunner fails the directives whose names appear in failing.
type scriptedRunner struct {
	ran     []string
	failing map[string]bool
}

func (r *scriptedRunner) Run(_ context.Context, d spec.Deployment, _ []driver.Node) error {
	r.ran = append(r.ran, d.Name)
	if r.failing[d.Name] {
		return errors.New("boom")
	}
	return nil
}

func TestRunAllPreservesOrderAndCountsFailures(t *testing.T) {
	runner := &scriptedRunner{failing: map[string]bool{"b": true, "d": true}}
	directives := []spec.Deployment{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}

	failed := RunAll(context.Background(), runner, directives, nil, zerolog.Nop())

	assert.Equal(t, 2, failed)
	// Failures never stop the remaining directives.
	assert.Equal(t, []string{"a", "b", "c", "d"}, runner.ran)
}

func TestRunAllEmpty(t *testing.T) {
	runner := &scriptedRunner{}
	assert.Zero(t, RunAll(context.Background(), runner, nil, nil, zerolog.Nop()))
	assert.Empty(t, runner.ran)
}

func TestLogRunnerNeverFails(t *testing.T) {
	runner := LogRunner{Log: zerolog.Nop()}
	err := runner.Run(context.Background(), spec.Deployment{
		Name:   "ssh.AddAuthorizedKey",
		Params: map[string]string{"publicKeyPath": "/tmp/key.pub"},
	}, []driver.Node{{Name: "node1"}})
	assert.NoError(t, err)
}

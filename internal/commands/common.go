// Package commands defines the CLI command tree and flag bindings. Each
// constructor returns a *cobra.Command wired to the shared root options;
// the cluster lifecycle work itself lives in pkg/cluster.
package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/surgecloud/surge/internal/logging"
	"github.com/surgecloud/surge/pkg/cluster"
	"github.com/surgecloud/surge/pkg/config"
	"github.com/surgecloud/surge/pkg/driver"
	"github.com/surgecloud/surge/pkg/driver/azure"
	"github.com/surgecloud/surge/pkg/driver/hcloud"
	"github.com/surgecloud/surge/pkg/knownhosts"
)

// RootOptions carries the persistent flags shared by every command.
type RootOptions struct {
	// Driver overrides the driver named in the tool configuration.
	Driver string
	// DriverConfig is an explicit tool configuration path; empty probes the
	// default search paths.
	DriverConfig string
	// Verbosity counts -v flags.
	Verbosity int
}

// Logger builds the process logger from the verbosity flags.
func (o *RootOptions) Logger() zerolog.Logger {
	return logging.New(logging.Config{Verbosity: o.Verbosity, Console: true})
}

// Manager loads the tool configuration and builds the cluster manager for
// the selected driver.
func (o *RootOptions) Manager() (*cluster.Manager, error) {
	log := o.Logger()

	cfg, err := config.Load(o.DriverConfig)
	if err != nil {
		return nil, err
	}
	if o.Driver != "" {
		cfg.Driver = o.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d, err := newDriver(cfg, log)
	if err != nil {
		return nil, err
	}

	hosts, err := knownhostsFile()
	if err != nil {
		log.Warn().Err(err).Msg("known_hosts maintenance disabled")
		hosts = nil
	}

	return cluster.NewManager(d, hosts, log), nil
}

// newDriver is a variable so tests can substitute a fake driver.
var newDriver = func(cfg *config.Config, log zerolog.Logger) (driver.Driver, error) {
	switch cfg.Driver {
	case config.DriverHCloud:
		return hcloud.New(cfg.HCloud.Token, log)
	case config.DriverAzure:
		return azure.New(azure.Options{
			SubscriptionID:   cfg.Azure.SubscriptionID,
			TenantID:         cfg.Azure.TenantID,
			ClientID:         cfg.Azure.ClientID,
			ClientSecret:     cfg.Azure.ClientSecret,
			Location:         cfg.Azure.Location,
			SSHPublicKeyPath: cfg.Azure.SSHPublicKeyPath,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}

// knownhostsFile is a variable so tests can avoid touching the real file.
var knownhostsFile = func() (cluster.HostsCleaner, error) {
	return knownhosts.Default()
}

// ExitError requests a specific process exit code without any further
// message; the condition it reports has already been logged.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

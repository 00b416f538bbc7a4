// Package config loads the tool configuration: which driver to use and
// the credentials it needs. Configuration comes from a YAML file, with
// environment variables overriding the secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Driver identifiers accepted in configuration and on the command line.
const (
	DriverHCloud = "hcloud"
	DriverAzure  = "azure"
)

// Config is the full tool configuration.
type Config struct {
	// Driver names the cloud driver to use. The --driver flag overrides it.
	Driver string       `yaml:"driver"`
	HCloud HCloudConfig `yaml:"hcloud"`
	Azure  AzureConfig  `yaml:"azure"`
}

// HCloudConfig holds Hetzner Cloud credentials.
type HCloudConfig struct {
	Token string `yaml:"token"`
}

// AzureConfig holds the service principal credentials and deployment
// settings for the Azure driver.
type AzureConfig struct {
	SubscriptionID   string `yaml:"subscription_id"`
	TenantID         string `yaml:"tenant_id"`
	ClientID         string `yaml:"client_id"`
	ClientSecret     string `yaml:"client_secret"`
	Location         string `yaml:"location"`
	SSHPublicKeyPath string `yaml:"ssh_public_key_path"`
}

// SearchPaths returns the config file locations probed in order when no
// explicit path is given.
func SearchPaths() []string {
	paths := []string{"surge.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".surge", "config.yaml"))
	}
	return append(paths, "/etc/surge/config.yaml")
}

// Load reads the configuration. With an empty path the search paths are
// probed and the first existing file wins; if none exists an empty config
// is returned so that environment variables alone can carry the
// credentials.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, candidate := range SearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return loadFile(candidate)
		}
	}
	config := &Config{}
	config.applyEnv()
	return config, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Tokens pasted from clipboards tend to carry trailing newlines.
	config.HCloud.Token = strings.TrimSpace(config.HCloud.Token)
	config.applyEnv()

	return &config, nil
}

// applyEnv overrides secrets from the environment.
func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv("HCLOUD_TOKEN")); token != "" {
		c.HCloud.Token = token
	}
	setFromEnv(&c.Azure.SubscriptionID, "AZURE_SUBSCRIPTION_ID")
	setFromEnv(&c.Azure.TenantID, "AZURE_TENANT_ID")
	setFromEnv(&c.Azure.ClientID, "AZURE_CLIENT_ID")
	setFromEnv(&c.Azure.ClientSecret, "AZURE_CLIENT_SECRET")
	setFromEnv(&c.Azure.Location, "AZURE_LOCATION")
}

func setFromEnv(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

// Validate checks that the selected driver has the credentials it needs.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverHCloud:
		if c.HCloud.Token == "" {
			return fmt.Errorf("hcloud.token is required (set via config or HCLOUD_TOKEN env var)")
		}
	case DriverAzure:
		if c.Azure.SubscriptionID == "" {
			return fmt.Errorf("azure.subscription_id is required (set via config or AZURE_SUBSCRIPTION_ID env var)")
		}
		if c.Azure.TenantID == "" || c.Azure.ClientID == "" || c.Azure.ClientSecret == "" {
			return fmt.Errorf("azure credentials are incomplete (tenant_id, client_id, client_secret are required)")
		}
		if c.Azure.Location == "" {
			return fmt.Errorf("azure.location is required (set via config or AZURE_LOCATION env var)")
		}
	case "":
		return fmt.Errorf("driver is required (set via config or --driver flag)")
	default:
		return fmt.Errorf("unsupported driver: %s (supported: %s, %s)", c.Driver, DriverHCloud, DriverAzure)
	}

	return nil
}

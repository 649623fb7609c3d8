package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osGetenv = os.Getenv
var osGetwd = os.Getwd

const (
	projectConfigDir = ".icdctl"
	configFileName   = "config.yaml"
)

// Environment keys. The required trio must be present before any stage runs.
const (
	EnvModelAPIToken = "MODEL_API_TOKEN"
	EnvModelURL      = "MODEL_URL"
	EnvModelName     = "MODEL_NAME"

	EnvNamespace       = "ICD_NAMESPACE"
	EnvGitOpsNamespace = "GITOPS_NAMESPACE"
	EnvPollInterval    = "ICD_POLL_INTERVAL"
)

var requiredEnvKeys = []string{EnvModelAPIToken, EnvModelURL, EnvModelName}

// Load resolves the configuration by layering defaults, an optional YAML
// file, and the process environment. filePath may be empty, in which case
// the project-local ./.icdctl/config.yaml is used when present.
//
// Load fails fast with MissingConfigurationError (listing every absent key)
// before the caller has a chance to touch the cluster.
func Load(filePath string) (Config, error) {
	config := DefaultConfig()

	path := filePath
	explicit := filePath != ""
	if !explicit {
		projectPath, err := getProjectConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
		} else {
			path = projectPath
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileConfig, err := loadConfigFromFile(path)
			if err != nil {
				return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			config = mergeConfigs(config, fileConfig)
		} else if explicit {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := applyEnvironment(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config overlay from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// applyEnvironment validates the required keys and layers the optional
// overrides on top. All required keys are checked before returning so the
// error names every absent one.
func applyEnvironment(config *Config) error {
	var missing []string
	for _, key := range requiredEnvKeys {
		if osGetenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingConfigurationError{Keys: missing}
	}

	config.Model.Token = osGetenv(EnvModelAPIToken)
	config.Model.URL = osGetenv(EnvModelURL)
	config.Model.Name = osGetenv(EnvModelName)

	if v := osGetenv(EnvNamespace); v != "" {
		config.Cluster.Namespace = v
	}
	if v := osGetenv(EnvGitOpsNamespace); v != "" {
		config.GitOps.Namespace = v
	}
	if v := osGetenv(EnvPollInterval); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPollInterval, v, err)
		}
		config.Polling.Interval = interval
	}

	return nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Only fields the
// overlay actually sets override the base.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.Model.URL != "" {
		merged.Model.URL = overlay.Model.URL
	}
	if overlay.Model.Name != "" {
		merged.Model.Name = overlay.Model.Name
	}

	if overlay.Cluster.KubeContext != "" {
		merged.Cluster.KubeContext = overlay.Cluster.KubeContext
	}
	if overlay.Cluster.Namespace != "" {
		merged.Cluster.Namespace = overlay.Cluster.Namespace
	}

	if overlay.GitOps.Namespace != "" {
		merged.GitOps.Namespace = overlay.GitOps.Namespace
	}
	if overlay.GitOps.Username != "" {
		merged.GitOps.Username = overlay.GitOps.Username
	}
	if len(overlay.GitOps.RouteCandidates) > 0 {
		merged.GitOps.RouteCandidates = overlay.GitOps.RouteCandidates
	}
	if len(overlay.GitOps.AdminSecrets) > 0 {
		merged.GitOps.AdminSecrets = overlay.GitOps.AdminSecrets
	}

	if overlay.Charts.Storage != "" {
		merged.Charts.Storage = overlay.Charts.Storage
	}
	if overlay.Charts.Tracing != "" {
		merged.Charts.Tracing = overlay.Charts.Tracing
	}
	if overlay.Charts.App != "" {
		merged.Charts.App = overlay.Charts.App
	}

	if overlay.Tracing.Namespace != "" {
		merged.Tracing.Namespace = overlay.Tracing.Namespace
	}
	if overlay.Tracing.CSVName != "" {
		merged.Tracing.CSVName = overlay.Tracing.CSVName
	}

	if len(overlay.Ingest.Command) > 0 {
		merged.Ingest.Command = overlay.Ingest.Command
	}
	if len(overlay.Ingest.RouteCandidates) > 0 {
		merged.Ingest.RouteCandidates = overlay.Ingest.RouteCandidates
	}

	if overlay.Polling.Interval != 0 {
		merged.Polling.Interval = overlay.Polling.Interval
	}
	if overlay.Polling.StageTimeout != 0 {
		merged.Polling.StageTimeout = overlay.Polling.StageTimeout
	}

	return merged
}

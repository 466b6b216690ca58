// Package config loads harness settings from defaults, an optional config
// file, CBCI_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/maxkimambo/cbci/internal/build"
	"github.com/maxkimambo/cbci/internal/cluster"
	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/validation"
)

const (
	EnvPrefix      = "CBCI"
	ConfigName     = "cbci"
	DefaultBucket  = "default"
	DefaultWorkdir = "."

	DefaultMemoryQuotaMB      = 2048
	DefaultBucketRAMQuotaMB   = 100
	DefaultAdminReadyTimeout  = 2 * time.Minute
	DefaultTeardownTimeout    = 5 * time.Minute
	DefaultMavenRepoDirectory = ".repository"

	// WorkspaceDirectory holds one checkout directory per version under
	// Workdir. Only this directory is ever wiped.
	WorkspaceDirectory = ".cbci"
)

// Keys
const (
	KeyBucket            = "bucket"
	KeyPassword          = "password"
	KeyAdminUser         = "admin_user"
	KeyAdminPassword     = "admin_password"
	KeyAdminPort         = "admin_port"
	KeyMemoryQuotaMB     = "memory_quota_mb"
	KeyBucketRAMQuotaMB  = "bucket_ram_quota_mb"
	KeyAllocatorBin      = "allocator_bin"
	KeyGitBin            = "git_bin"
	KeyMavenBin          = "maven_bin"
	KeyWorkdir           = "workdir"
	KeyMavenRepoDir      = "maven_repo_dir"
	KeyRerunFailingTests = "rerun_failing_tests"
	KeyCommandTimeout    = "command_timeout"
	KeyAdminReadyTimeout = "admin_ready_timeout"
	KeyTeardownTimeout   = "teardown_timeout"
	KeyKeepCluster       = "keep_cluster"
	KeyFailOnBuildError  = "fail_on_build_error"
	KeyDryRun            = "dry_run"
	KeyRepositories      = "repositories"
)

// Config holds everything a run needs besides the version list.
type Config struct {
	Bucket        string `mapstructure:"bucket"`
	Password      string `mapstructure:"password"`
	AdminUser     string `mapstructure:"admin_user"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminPort     int    `mapstructure:"admin_port"`

	MemoryQuotaMB    int `mapstructure:"memory_quota_mb"`
	BucketRAMQuotaMB int `mapstructure:"bucket_ram_quota_mb"`

	AllocatorBin string `mapstructure:"allocator_bin"`
	GitBin       string `mapstructure:"git_bin"`
	MavenBin     string `mapstructure:"maven_bin"`

	Workdir string `mapstructure:"workdir"`
	// MavenRepoDir is relative to Workdir unless absolute.
	MavenRepoDir      string `mapstructure:"maven_repo_dir"`
	RerunFailingTests int    `mapstructure:"rerun_failing_tests"`

	// CommandTimeout bounds each external command; zero disables it.
	CommandTimeout    time.Duration `mapstructure:"command_timeout"`
	AdminReadyTimeout time.Duration `mapstructure:"admin_ready_timeout"`
	TeardownTimeout   time.Duration `mapstructure:"teardown_timeout"`

	KeepCluster      bool `mapstructure:"keep_cluster"`
	FailOnBuildError bool `mapstructure:"fail_on_build_error"`
	DryRun           bool `mapstructure:"dry_run"`

	Repositories []build.Repository `mapstructure:"repositories"`

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBucket, DefaultBucket)
	v.SetDefault(KeyPassword, "password")
	v.SetDefault(KeyAdminUser, cluster.DefaultAdminUser)
	v.SetDefault(KeyAdminPassword, cluster.DefaultAdminPassword)
	v.SetDefault(KeyAdminPort, cluster.DefaultAdminPort)
	v.SetDefault(KeyMemoryQuotaMB, DefaultMemoryQuotaMB)
	v.SetDefault(KeyBucketRAMQuotaMB, DefaultBucketRAMQuotaMB)
	v.SetDefault(KeyAllocatorBin, cluster.DefaultAllocatorBin)
	v.SetDefault(KeyGitBin, build.DefaultGitBin)
	v.SetDefault(KeyMavenBin, build.DefaultMavenBin)
	v.SetDefault(KeyWorkdir, DefaultWorkdir)
	v.SetDefault(KeyMavenRepoDir, DefaultMavenRepoDirectory)
	v.SetDefault(KeyRerunFailingTests, build.DefaultRerunFailingTests)
	v.SetDefault(KeyCommandTimeout, time.Duration(0))
	v.SetDefault(KeyAdminReadyTimeout, DefaultAdminReadyTimeout)
	v.SetDefault(KeyTeardownTimeout, DefaultTeardownTimeout)
	v.SetDefault(KeyKeepCluster, false)
	v.SetDefault(KeyFailOnBuildError, false)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyRepositories, repositoriesDefault())
}

func repositoriesDefault() []map[string]interface{} {
	repos := build.DefaultRepositories()
	out := make([]map[string]interface{}, 0, len(repos))
	for _, r := range repos {
		out = append(out, map[string]interface{}{
			"name":            r.Name,
			"url":             r.URL,
			"properties_path": r.PropertiesPath,
			"cluster_params":  r.ClusterParams,
		})
	}
	return out
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Loader resolves a Config.
type Loader struct {
	Viper *viper.Viper
	// File is an explicit config file; when empty cbci.yaml is looked up in SearchPaths.
	File        string
	SearchPaths []string
}

func NewLoader(file string) *Loader {
	return &Loader{
		Viper:       NewViper(),
		File:        file,
		SearchPaths: []string{"."},
	}
}

// BindFlags maps flags whose names match config keys (with '-' for '_').
// Only flags the user actually set override lower layers.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKey(key) {
			return
		}
		if err := l.Viper.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("binding flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

func isKey(key string) bool {
	switch key {
	case KeyBucket, KeyPassword, KeyAdminUser, KeyAdminPassword, KeyAdminPort,
		KeyMemoryQuotaMB, KeyBucketRAMQuotaMB, KeyAllocatorBin, KeyGitBin, KeyMavenBin,
		KeyWorkdir, KeyMavenRepoDir, KeyRerunFailingTests, KeyCommandTimeout,
		KeyAdminReadyTimeout, KeyTeardownTimeout, KeyKeepCluster, KeyFailOnBuildError,
		KeyDryRun:
		return true
	}
	return false
}

// Load reads the config file (if any) and decodes the merged settings.
func (l *Loader) Load() (*Config, error) {
	if err := l.readConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.Viper.Unmarshal(cfg, decodeHook); err != nil {
		return nil, harnesserrors.NewConfigurationError(harnesserrors.CodeConfigLoad,
			"Failed to decode configuration", "Configuration loading").
			WithOriginalError(err)
	}
	cfg.ConfigFile = l.Viper.ConfigFileUsed()

	return cfg, nil
}

func (l *Loader) readConfig() error {
	if l.File != "" {
		l.Viper.SetConfigFile(l.File)
	} else {
		l.Viper.SetConfigName(ConfigName)
		for _, p := range l.SearchPaths {
			l.Viper.AddConfigPath(p)
		}
	}

	err := l.Viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if l.File == "" && errors.As(err, &notFound) {
		return nil
	}
	return harnesserrors.NewConfigurationError(harnesserrors.CodeConfigLoad,
		"Failed to read configuration file", "Configuration loading").
		WithContext("file", l.File).
		WithOriginalError(err).
		WithTroubleshooting(
			"Check that the file exists and is valid YAML",
			"Keys use snake_case, e.g. memory_quota_mb",
		)
}

// Validate checks the settings that would otherwise fail half way through a run.
func (c *Config) Validate() error {
	checks := []struct {
		key string
		err error
	}{
		{KeyBucket, validation.ValidateBucketName(c.Bucket)},
		{KeyAdminPort, validation.ValidatePort(c.AdminPort)},
		{KeyBucketRAMQuotaMB, validation.ValidateQuotas(c.MemoryQuotaMB, c.BucketRAMQuotaMB)},
		{KeyAllocatorBin, nonEmpty(c.AllocatorBin)},
		{KeyGitBin, nonEmpty(c.GitBin)},
		{KeyMavenBin, nonEmpty(c.MavenBin)},
		{KeyWorkdir, nonEmpty(c.Workdir)},
		{KeyAdminUser, nonEmpty(c.AdminUser)},
		{KeyRerunFailingTests, nonNegative(c.RerunFailingTests)},
		{KeyCommandTimeout, nonNegativeDuration(c.CommandTimeout)},
		{KeyAdminReadyTimeout, nonNegativeDuration(c.AdminReadyTimeout)},
		{KeyTeardownTimeout, positiveDuration(c.TeardownTimeout)},
		{KeyRepositories, validateRepositories(c.Repositories)},
	}

	for _, check := range checks {
		if check.err != nil {
			return harnesserrors.NewValidationError(harnesserrors.CodeValidationConfig,
				fmt.Sprintf("Invalid configuration value for '%s'", check.key),
				"Configuration validation").
				WithContext("key", check.key).
				WithOriginalError(check.err).
				WithTroubleshooting(
					fmt.Sprintf("Set %s in cbci.yaml or %s_%s in the environment", check.key, EnvPrefix, strings.ToUpper(check.key)),
				)
		}
	}
	return nil
}

// MavenRepoPath returns the Maven cache as an absolute path, since Maven
// runs inside each checkout. A relative maven_repo_dir is under Workdir.
func (c *Config) MavenRepoPath() string {
	path := c.MavenRepoDir
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Workdir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Workspace is the per-version checkout directory.
func (c *Config) Workspace(version string) string {
	return filepath.Join(c.Workdir, WorkspaceDirectory, version)
}

func validateRepositories(repos []build.Repository) error {
	if len(repos) == 0 {
		return fmt.Errorf("at least one repository is required")
	}
	seen := map[string]bool{}
	for _, r := range repos {
		if err := validation.ValidateName(r.Name); err != nil {
			return err
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate repository name %q", r.Name)
		}
		seen[r.Name] = true
		if err := validation.ValidateRepositoryURL(r.URL); err != nil {
			return err
		}
		if filepath.IsAbs(r.PropertiesPath) || strings.HasPrefix(filepath.Clean(r.PropertiesPath), "..") {
			return fmt.Errorf("properties path %q must stay inside the checkout", r.PropertiesPath)
		}
	}
	return nil
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

func nonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("value cannot be negative, got %d", n)
	}
	return nil
}

func nonNegativeDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("duration cannot be negative, got %s", d)
	}
	return nil
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

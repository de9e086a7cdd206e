// Package probe checks that the configured language runtime is callable
// before a language server is started on top of it.
package probe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	tally "github.com/uber-go/tally/v4"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/editor"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/executor"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey   = "probe"
	_configKey = "runtime"

	_msgNotRunnable     = "Could not run %q. Please check that the runtime is installed and on your PATH."
	_msgExtraneousPrint = "%q printed unexpected output on startup. Startup files that print to stdout will break the language server."
	_msgOldVersion      = "Runtime version %s is older than the minimum supported version %s. Language features may not work correctly."

	_unknownVersion = "unknown"
)

// Config holds the runtime probe settings.
type Config struct {
	// Command is the runtime executable name, resolved against PATH.
	Command string `yaml:"command"`
	// SilentEvalArgs run the runtime with a no-op evaluation that should
	// exit zero and print nothing.
	SilentEvalArgs []string `yaml:"silentEvalArgs"`
	// VersionArgs make the runtime print its version string.
	VersionArgs []string `yaml:"versionArgs"`
	// MinVersion is the oldest runtime version the language server supports.
	// Empty disables the check.
	MinVersion string `yaml:"minVersion"`
}

// Report summarizes the outcome of a runtime probe.
type Report struct {
	// Found indicates the runtime executable started and exited zero.
	Found bool
	// ResolvedPath is the absolute runtime path when PATH lookup succeeded.
	ResolvedPath string
	// ExtraneousOutput indicates the silent evaluation printed to stdout.
	ExtraneousOutput bool
	// Version is the runtime's reported version string, or "unknown".
	Version string
}

// Controller probes the configured language runtime.
type Controller interface {
	// CheckRuntime probes the runtime and surfaces warnings to the editor.
	// Probe failures are reported to the user, never returned as errors:
	// server startup proceeds regardless of the outcome.
	CheckRuntime(ctx context.Context) Report
	// RuntimeVersion returns the version string captured by the most recent
	// probe, or "unknown" if no probe has succeeded.
	RuntimeVersion(ctx context.Context) string
}

// Params are inbound parameters to initialize a new probe controller.
type Params struct {
	fx.In

	EditorGateway editor.Gateway
	Executor      executor.Executor
	Logger        *zap.SugaredLogger
	Config        config.Provider
	Stats         tally.Scope
}

type controller struct {
	config        Config
	editorGateway editor.Gateway
	executor      executor.Executor
	logger        *zap.SugaredLogger
	stats         tally.Scope

	mu          sync.Mutex
	lastVersion string
}

// New creates a controller that probes the configured language runtime.
func New(p Params) (Controller, error) {
	cfg := Config{}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _configKey, err)
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("configuration %q is missing a runtime command", _configKey)
	}
	return &controller{
		config:        cfg,
		editorGateway: p.EditorGateway,
		executor:      p.Executor,
		logger:        p.Logger.With("controller", _nameKey),
		stats:         p.Stats.SubScope("probe"),
	}, nil
}

func (c *controller) CheckRuntime(ctx context.Context) Report {
	report := Report{Version: _unknownVersion}

	stdout, _, exitCode, err := c.executor.Run(exec.Command(c.config.Command, c.config.SilentEvalArgs...))
	if err != nil || exitCode != 0 {
		// One retry with the absolute path, in case the shell resolved the
		// command differently than this process would.
		resolved, lookErr := c.executor.LookPath(c.config.Command)
		if lookErr == nil {
			report.ResolvedPath = resolved
			stdout, _, exitCode, err = c.executor.Run(exec.Command(resolved, c.config.SilentEvalArgs...))
		}
	}

	if err != nil || exitCode != 0 {
		c.stats.Counter("runtime_missing").Inc(1)
		c.logger.Warnf("runtime %q is not runnable (exit %d, err %v); PATH=%s",
			c.config.Command, exitCode, err, os.Getenv("PATH"))
		c.warn(ctx, fmt.Sprintf(_msgNotRunnable, c.config.Command))
		return report
	}

	report.Found = true
	if strings.TrimSpace(stdout) != "" {
		report.ExtraneousOutput = true
		c.stats.Counter("extraneous_output").Inc(1)
		c.logger.Warnf("runtime %q produced unexpected stdout during silent evaluation: %q", c.config.Command, stdout)
		c.warn(ctx, fmt.Sprintf(_msgExtraneousPrint, c.config.Command))
	}

	report.Version = c.queryVersion(ctx)
	c.mu.Lock()
	c.lastVersion = report.Version
	c.mu.Unlock()

	return report
}

func (c *controller) RuntimeVersion(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastVersion == "" {
		return _unknownVersion
	}
	return c.lastVersion
}

// queryVersion asks the runtime for its version and checks it against the
// configured minimum. Returns "unknown" when the query fails.
func (c *controller) queryVersion(ctx context.Context) string {
	if len(c.config.VersionArgs) == 0 {
		return _unknownVersion
	}

	stdout, _, exitCode, err := c.executor.Run(exec.Command(c.config.Command, c.config.VersionArgs...))
	if err != nil || exitCode != 0 {
		c.logger.Infof("runtime version query failed (exit %d, err %v)", exitCode, err)
		return _unknownVersion
	}

	version := strings.TrimSpace(stdout)
	if version == "" {
		return _unknownVersion
	}

	c.checkMinVersion(ctx, version)
	return version
}

func (c *controller) checkMinVersion(ctx context.Context, version string) {
	if c.config.MinVersion == "" {
		return
	}
	min, err := semver.NewVersion(c.config.MinVersion)
	if err != nil {
		c.logger.Warnf("invalid minVersion %q in configuration: %v", c.config.MinVersion, err)
		return
	}
	current, err := semver.NewVersion(extractVersionNumber(version))
	if err != nil {
		c.logger.Infof("runtime version %q is not semver, skipping minimum version check", version)
		return
	}
	if current.LessThan(min) {
		c.warn(ctx, fmt.Sprintf(_msgOldVersion, current.String(), min.String()))
	}
}

// extractVersionNumber pulls the first dotted version number out of a version
// banner such as "Welcome to runtime v2023.08".
func extractVersionNumber(banner string) string {
	for _, field := range strings.Fields(banner) {
		candidate := strings.TrimPrefix(field, "v")
		candidate = strings.TrimSuffix(candidate, ".")
		if _, err := semver.NewVersion(candidate); err == nil {
			return candidate
		}
	}
	return banner
}

func (c *controller) warn(ctx context.Context, message string) {
	err := c.editorGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
		Message: message,
		Type:    protocol.MessageTypeWarning,
	})
	if err != nil {
		c.logger.Warnf("unable to deliver warning to editor: %v", err)
	}
}

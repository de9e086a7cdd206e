// Package debuginfo assembles a diagnostic report and copies it to the
// system clipboard on request.
package debuginfo

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	tally "github.com/uber-go/tally/v4"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/probe"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/entity"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/editor"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/executor"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey = "debuginfo"

	// CommandCopyDebugInfo is the workspace/executeCommand identifier that
	// triggers the clipboard copy.
	CommandCopyDebugInfo = "sidecar.copyDebugInfo"

	_msgCopied = "Debug information copied to clipboard."

	_unknown = "unknown"
)

// Controller gathers debug information for support requests.
type Controller interface {
	// CopyDebugInfo writes the debug report to the clipboard and confirms to
	// the editor. Missing values are reported as "unknown" rather than
	// failing the command.
	CopyDebugInfo(ctx context.Context) (string, error)
	// Report returns the formatted debug report without copying it.
	Report(ctx context.Context) string
}

// Params are inbound parameters to initialize a new debuginfo controller.
type Params struct {
	fx.In

	EditorGateway editor.Gateway
	Executor      executor.Executor
	Probe         probe.Controller
	Logger        *zap.SugaredLogger
	Stats         tally.Scope
	Version       entity.SidecarVersion
}

type controller struct {
	editorGateway editor.Gateway
	executor      executor.Executor
	probe         probe.Controller
	logger        *zap.SugaredLogger
	stats         tally.Scope
	version       string

	goos          string
	clipboardFunc func(text string) error
}

// Option allows test overrides during initialization.
type Option func(*controller)

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) Option {
	return func(c *controller) {
		c.goos = goos
	}
}

// WithClipboardFunc overrides the clipboard write implementation.
func WithClipboardFunc(f func(text string) error) Option {
	return func(c *controller) {
		c.clipboardFunc = f
	}
}

// New creates a controller for the copy-debug-info command.
func New(p Params, opts ...Option) Controller {
	c := &controller{
		editorGateway: p.EditorGateway,
		executor:      p.Executor,
		probe:         p.Probe,
		logger:        p.Logger.With("controller", _nameKey),
		stats:         p.Stats.SubScope("debuginfo"),
		version:       string(p.Version),
		goos:          runtime.GOOS,
		clipboardFunc: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *controller) CopyDebugInfo(ctx context.Context) (string, error) {
	report := c.Report(ctx)
	if err := c.clipboardFunc(report); err != nil {
		c.stats.Counter("clipboard_failure").Inc(1)
		return "", fmt.Errorf("writing debug report to clipboard: %w", err)
	}

	c.stats.Counter("copied").Inc(1)
	err := c.editorGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
		Message: _msgCopied,
		Type:    protocol.MessageTypeInfo,
	})
	if err != nil {
		c.logger.Warnf("unable to confirm clipboard copy to editor: %v", err)
	}
	return report, nil
}

func (c *controller) Report(ctx context.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Runtime version: %s\n", valueOrUnknown(c.probe.RuntimeVersion(ctx)))
	fmt.Fprintf(&b, "Extension version: %s\n", valueOrUnknown(c.version))
	fmt.Fprintf(&b, "OS platform: %s\n", c.goos)
	fmt.Fprintf(&b, "OS release: %s\n", valueOrUnknown(c.osRelease()))
	return b.String()
}

// osRelease queries the kernel or OS build version, depending on platform.
func (c *controller) osRelease() string {
	var cmd *exec.Cmd
	if c.goos == "windows" {
		cmd = exec.Command("cmd", "/c", "ver")
	} else {
		cmd = exec.Command("uname", "-r")
	}

	stdout, _, exitCode, err := c.executor.Run(cmd)
	if err != nil || exitCode != 0 {
		c.logger.Infof("unable to determine OS release (exit %d, err %v)", exitCode, err)
		return _unknown
	}
	return strings.TrimSpace(stdout)
}

func valueOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return _unknown
	}
	return s
}

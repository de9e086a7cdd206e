// Package conflicts warns when the editor reports extensions that are known
// to interfere with the language server.
package conflicts

import (
	"context"
	"fmt"

	tally "github.com/uber-go/tally/v4"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/editor"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey   = "conflicts"
	_configKey = "conflicts"

	_msgConflict = "The extension %q is known to conflict with this language server. Consider disabling it."
)

// Controller checks the installed extension list for known conflicts.
type Controller interface {
	// CheckInstalled warns once for each installed extension that appears in
	// the configured conflict list, and returns the conflicts it found.
	// Detection never blocks startup.
	CheckInstalled(ctx context.Context, installed []string) []string
}

// Params are inbound parameters to initialize a new conflicts controller.
type Params struct {
	fx.In

	EditorGateway editor.Gateway
	Logger        *zap.SugaredLogger
	Config        config.Provider
	Stats         tally.Scope
}

type controller struct {
	conflicting   map[string]struct{}
	editorGateway editor.Gateway
	logger        *zap.SugaredLogger
	stats         tally.Scope
}

// New creates a controller that detects conflicting editor extensions.
func New(p Params) (Controller, error) {
	ids := []string{}
	if err := p.Config.Get(_configKey).Populate(&ids); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _configKey, err)
	}

	conflicting := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		conflicting[id] = struct{}{}
	}

	return &controller{
		conflicting:   conflicting,
		editorGateway: p.EditorGateway,
		logger:        p.Logger.With("controller", _nameKey),
		stats:         p.Stats.SubScope("conflicts"),
	}, nil
}

func (c *controller) CheckInstalled(ctx context.Context, installed []string) []string {
	found := []string{}
	for _, id := range installed {
		if _, ok := c.conflicting[id]; !ok {
			continue
		}
		found = append(found, id)
		c.stats.Counter("conflict_detected").Inc(1)
		c.logger.Warnf("conflicting extension %q is installed", id)

		err := c.editorGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
			Message: fmt.Sprintf(_msgConflict, id),
			Type:    protocol.MessageTypeWarning,
		})
		if err != nil {
			c.logger.Warnf("unable to deliver conflict warning to editor: %v", err)
		}
	}
	return found
}

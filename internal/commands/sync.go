package commands

import (
	"errors"
	"fmt"

	"aria-bot/internal/logging"
)

var errNoRegistrar = errors.New("command registration is not available")

func (d *Dispatcher) sync(req *Request) (*Reply, error) {
	if err := d.gate.requireOwner(req); err != nil {
		return nil, err
	}
	if d.registrar == nil {
		return nil, errNoRegistrar
	}

	n, err := d.registrar.SyncCommands()
	if err != nil {
		return nil, fmt.Errorf("failed to sync commands: %w", err)
	}

	logging.Info("Slash commands re-synced by owner: %d", n)
	return text("✅ Synced %d command(s).", n), nil
}

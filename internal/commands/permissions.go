package commands

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrNotAuthorized is matched by every AccessError.
var ErrNotAuthorized = errors.New("not authorized")

// AccessError carries the denial text shown to the invoker.
type AccessError struct {
	Reason string
}

func (e *AccessError) Error() string {
	return "not authorized: " + e.Reason
}

func (e *AccessError) Is(target error) bool {
	return target == ErrNotAuthorized
}

func deny(reason string) error {
	return &AccessError{Reason: reason}
}

// manageGuildMask is the set of permission bits that count as manage-capability.
// Administrator implies every permission, including Manage Server.
const manageGuildMask = discordgo.PermissionManageServer | discordgo.PermissionAdministrator

// Gate decides who may mutate guild settings and who may run owner commands.
type Gate struct {
	ownerID string
}

// NewGate returns a gate for the configured owner. An empty ownerID means no
// one passes IsOwner.
func NewGate(ownerID string) *Gate {
	return &Gate{ownerID: ownerID}
}

// CanManageGuild checks the member's resolved permission bits in the guild.
func (g *Gate) CanManageGuild(permissions int64) bool {
	return permissions&manageGuildMask != 0
}

// IsOwner checks the acting user against the configured owner id.
func (g *Gate) IsOwner(userID string) bool {
	return g.ownerID != "" && userID == g.ownerID
}

func (g *Gate) requireManageGuild(req *Request) error {
	if !g.CanManageGuild(req.Permissions) {
		return deny("You need the **Manage Server** permission to change settings.")
	}
	return nil
}

func (g *Gate) requireOwner(req *Request) error {
	if !g.IsOwner(req.UserID) {
		return deny("Only the bot owner can use this command.")
	}
	return nil
}

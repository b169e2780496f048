package commands

import (
	"errors"

	"catering/internal/pkg/guard"
)

var ErrAuditTrackingCommandIsNotConstructed = errors.New(
	"AuditTrackingCommand must be created via NewAuditTrackingCommand constructor",
)

// AuditTrackingCommand triggers the keep-alive pass over in-flight orders.
// This is a parameterless command.
type AuditTrackingCommand struct {
	guard guard.ConstructorGuard
}

// NewAuditTrackingCommand creates the command.
func NewAuditTrackingCommand() AuditTrackingCommand {
	return AuditTrackingCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c *AuditTrackingCommand) Validate() error {
	return c.guard.Validate(ErrAuditTrackingCommandIsNotConstructed)
}

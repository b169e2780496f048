package commands

import (
	"errors"

	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

const (
	DefaultScheduleBatch = 100
	MaxScheduleBatch     = 1000
)

var ErrScheduleAcceptedOrdersCommandIsNotConstructed = errors.New(
	"ScheduleAcceptedOrdersCommand must be created via NewScheduleAcceptedOrdersCommand constructor",
)

// ScheduleAcceptedOrdersCommand triggers scheduling of up to Limit accepted
// orders, oldest first.
//
// Example:
//
//	cmd, _ := NewScheduleAcceptedOrdersCommand(DefaultScheduleBatch)
//	scheduled, err := handler.Handle(ctx, cmd)
type ScheduleAcceptedOrdersCommand struct { //nolint:recvcheck //using for validation
	limit int

	guard guard.ConstructorGuard
}

// NewScheduleAcceptedOrdersCommand creates the command.
func NewScheduleAcceptedOrdersCommand(limit int) (ScheduleAcceptedOrdersCommand, error) {
	if limit < 1 || limit > MaxScheduleBatch {
		return ScheduleAcceptedOrdersCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxScheduleBatch)
	}
	return ScheduleAcceptedOrdersCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ScheduleAcceptedOrdersCommand) Validate() error {
	return c.guard.Validate(ErrScheduleAcceptedOrdersCommandIsNotConstructed)
}

func (c ScheduleAcceptedOrdersCommand) Limit() int {
	return c.limit
}

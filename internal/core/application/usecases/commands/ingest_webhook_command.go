package commands

import (
	"errors"
	"strings"

	"catering/internal/core/domain/model/kernel"
	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrIngestWebhookCommandIsNotConstructed = errors.New(
	"IngestWebhookCommand must be created via NewIngestWebhookCommand constructor",
)

// IngestWebhookCommand is a status push from a provider.
type IngestWebhookCommand struct { //nolint:recvcheck //using for validation
	provider   string
	externalID string
	status     string
	location   *kernel.Location

	guard guard.ConstructorGuard
}

// NewIngestWebhookCommand creates the command. location is optional and only
// meaningful for delivery providers.
func NewIngestWebhookCommand(
	provider, externalID, status string,
	location *kernel.Location,
) (IngestWebhookCommand, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))

	var errList []error
	if provider == "" {
		errList = append(errList, errs.NewValueIsRequiredError("provider"))
	}
	if externalID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("external id"))
	}
	if status == "" {
		errList = append(errList, errs.NewValueIsRequiredError("status"))
	}
	if err := errors.Join(errList...); err != nil {
		return IngestWebhookCommand{}, err
	}

	return IngestWebhookCommand{
		provider:   provider,
		externalID: externalID,
		status:     status,
		location:   location,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestWebhookCommand) Validate() error {
	return c.guard.Validate(ErrIngestWebhookCommandIsNotConstructed)
}

func (c IngestWebhookCommand) Provider() string           { return c.provider }
func (c IngestWebhookCommand) ExternalID() string         { return c.externalID }
func (c IngestWebhookCommand) Status() string             { return c.status }
func (c IngestWebhookCommand) Location() *kernel.Location { return c.location }

// Package command adapts the federation flows to go-command handlers.
// Outcomes are delivered to the caller through the go-command result
// collector on the execution context.
package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-federation/core"
)

// FlowService is the slice of the federation service the command handlers
// depend on.
type FlowService interface {
	Authenticate(ctx context.Context, username, password string) (core.Outcome, error)
	Register(ctx context.Context, req core.RegisterRequest) (core.Outcome, error)
	UpdateAttributes(ctx context.Context, user core.DirectoryUser, attrs core.Attributes) (core.Outcome, error)
	ChangePassword(ctx context.Context, user core.DirectoryUser, oldPassword, newPassword string) error
}

type LoginCommand struct {
	service FlowService
}

func NewLoginCommand(service FlowService) *LoginCommand {
	return &LoginCommand{service: service}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: login service is required")
	}
	out, err := c.service.Authenticate(ctx, msg.Username, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterCommand struct {
	service FlowService
}

func NewRegisterCommand(service FlowService) *RegisterCommand {
	return &RegisterCommand{service: service}
}

func (c *RegisterCommand) Execute(ctx context.Context, msg RegisterMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register service is required")
	}
	out, err := c.service.Register(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateAttributesCommand struct {
	service FlowService
}

func NewUpdateAttributesCommand(service FlowService) *UpdateAttributesCommand {
	return &UpdateAttributesCommand{service: service}
}

func (c *UpdateAttributesCommand) Execute(ctx context.Context, msg UpdateAttributesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: attribute service is required")
	}
	out, err := c.service.UpdateAttributes(ctx, msg.User, msg.Attributes)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ChangePasswordCommand struct {
	service FlowService
}

func NewChangePasswordCommand(service FlowService) *ChangePasswordCommand {
	return &ChangePasswordCommand{service: service}
}

func (c *ChangePasswordCommand) Execute(ctx context.Context, msg ChangePasswordMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password service is required")
	}
	return c.service.ChangePassword(ctx, msg.User, msg.OldPassword, msg.NewPassword)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

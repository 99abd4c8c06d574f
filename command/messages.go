package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-federation/core"
)

const (
	TypeLogin            = "federation.command.login"
	TypeRegister         = "federation.command.register"
	TypeUpdateAttributes = "federation.command.attributes.update"
	TypeChangePassword   = "federation.command.password.change"
)

type LoginMessage struct {
	Username string
	Password string
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if strings.TrimSpace(m.Username) == "" {
		return fmt.Errorf("command: username is required")
	}
	if m.Password == "" {
		return fmt.Errorf("command: password is required")
	}
	return nil
}

type RegisterMessage struct {
	Request core.RegisterRequest
}

func (RegisterMessage) Type() string { return TypeRegister }

func (m RegisterMessage) Validate() error {
	if strings.TrimSpace(m.Request.Username) == "" {
		return fmt.Errorf("command: username is required")
	}
	if m.Request.Password == "" {
		return fmt.Errorf("command: password is required")
	}
	return nil
}

type UpdateAttributesMessage struct {
	User       core.DirectoryUser
	Attributes core.Attributes
}

func (UpdateAttributesMessage) Type() string { return TypeUpdateAttributes }

func (m UpdateAttributesMessage) Validate() error {
	if m.User == nil {
		return fmt.Errorf("command: user handle is required")
	}
	if len(m.Attributes) == 0 {
		return fmt.Errorf("command: at least one attribute is required")
	}
	return nil
}

type ChangePasswordMessage struct {
	User        core.DirectoryUser
	OldPassword string
	NewPassword string
}

func (ChangePasswordMessage) Type() string { return TypeChangePassword }

func (m ChangePasswordMessage) Validate() error {
	if m.User == nil {
		return fmt.Errorf("command: user handle is required")
	}
	if m.OldPassword == "" || m.NewPassword == "" {
		return fmt.Errorf("command: old and new passwords are required")
	}
	return nil
}

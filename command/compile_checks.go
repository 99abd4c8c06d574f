package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[LoginMessage]            = (*LoginCommand)(nil)
	_ gocmd.Commander[RegisterMessage]         = (*RegisterCommand)(nil)
	_ gocmd.Commander[UpdateAttributesMessage] = (*UpdateAttributesCommand)(nil)
	_ gocmd.Commander[ChangePasswordMessage]   = (*ChangePasswordCommand)(nil)
)

package core

import (
	"fmt"
	"strings"
)

// Config carries the federation settings for a flow. It is supplied once at
// service construction and read-only afterwards.
type Config struct {
	ServiceName    string `koanf:"service_name" mapstructure:"service_name"`
	Region         string `koanf:"region" mapstructure:"region"`
	UserPoolID     string `koanf:"user_pool_id" mapstructure:"user_pool_id"`
	IdentityPoolID string `koanf:"identity_pool_id" mapstructure:"identity_pool_id"`
	// DirectoryHost is the host portion of the login assertion key. When
	// empty it is derived from Region.
	DirectoryHost string `koanf:"directory_host" mapstructure:"directory_host"`
	// MandatoryEmailVerification gates logins on a verified email address.
	// The policy fails closed: nil (unset) means mandatory, and only an
	// explicit false disables it.
	MandatoryEmailVerification *bool `koanf:"mandatory_email_verification" mapstructure:"mandatory_email_verification"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "federation",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	return nil
}

// EmailVerificationIsMandatory reports whether the verification gate must
// run. Absence of the flag defaults to mandatory.
func (c Config) EmailVerificationIsMandatory() bool {
	if c.MandatoryEmailVerification == nil {
		return true
	}
	return *c.MandatoryEmailVerification
}

// LoginProviderKey is the key of the login assertion map handed to the
// credential exchange: "{directoryHost}/{userPoolId}".
func (c Config) LoginProviderKey() string {
	host := strings.TrimSpace(c.DirectoryHost)
	if host == "" {
		host = fmt.Sprintf("cognito-idp.%s.amazonaws.com", strings.TrimSpace(c.Region))
	}
	return host + "/" + strings.TrimSpace(c.UserPoolID)
}

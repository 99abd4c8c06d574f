package core

import (
	"strings"
	"time"
)

// Attributes maps profile attribute names to their string values. The
// directory represents every attribute as a string, including booleans such
// as email_verified.
type Attributes map[string]string

func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	copied := make(Attributes, len(a))
	for key, value := range a {
		copied[key] = value
	}
	return copied
}

// WireAttribute is the directory's wire list form of a single attribute.
type WireAttribute struct {
	Name  string
	Value string
}

// Session is proof of a successful directory authentication. It is produced
// once per authentication and never mutated afterwards.
type Session struct {
	IdentityToken string
	Username      string
	ExpiresAt     *time.Time
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.IdentityToken) != ""
}

// TemporaryCredentials are pool-scoped credentials issued by the exchange
// service in return for a verified identity token.
type TemporaryCredentials struct {
	AccessKeyID  string
	SecretKey    string
	SessionToken string
	Expiration   *time.Time
}

type OutcomeKind string

const (
	OutcomeLoggedIn                  OutcomeKind = "logged_in"
	OutcomeLoginFailure              OutcomeKind = "login_failure"
	OutcomeMFARequired               OutcomeKind = "mfa_required"
	OutcomeNewPasswordRequired       OutcomeKind = "new_password_required"
	OutcomeConfirmationRequired      OutcomeKind = "confirmation_required"
	OutcomeEmailVerificationRequired OutcomeKind = "email_verification_required"
	OutcomeEmailVerificationFailed   OutcomeKind = "email_verification_failed"
	OutcomeAttributesUpdated         OutcomeKind = "attributes_updated"
)

// Outcome is the single tagged result of a flow invocation. Exactly one
// Outcome (or one error, never both) is produced per call into the service.
type Outcome struct {
	Kind           OutcomeKind
	User           DirectoryUser
	Attributes     Attributes
	DeliveryMedium string
	Reason         string
}

func (o Outcome) Terminal() bool {
	return o.Kind != ""
}

type ChallengeKind string

const (
	ChallengeNone        ChallengeKind = ""
	ChallengeMFA         ChallengeKind = "mfa"
	ChallengeNewPassword ChallengeKind = "new_password"
)

// AuthenticateResult is the flattened result of a directory authentication
// call. A non-empty Challenge means the directory accepted the credentials
// but requires further caller-driven interaction before a session exists.
type AuthenticateResult struct {
	Challenge ChallengeKind
}

// VerificationDelivery describes how the directory delivered (or will
// deliver) a verification code for an attribute. InputRequired is false when
// the directory reports that no further user input is needed.
type VerificationDelivery struct {
	InputRequired bool
	Medium        string
	Destination   string
}

type SignUpInput struct {
	Username       string
	Password       string
	Attributes     []WireAttribute
	ValidationData []WireAttribute
}

type SignUpResult struct {
	Confirmed bool
	User      DirectoryUser
}

// RegisterRequest is the input to Service.Register.
type RegisterRequest struct {
	Username       string
	Password       string
	Attributes     Attributes
	ValidationData Attributes
}

// ExchangeRequest asks the credential exchange to issue temporary
// credentials for the given login assertions. LoginHint disambiguates the
// federated identity when multiple directory logins map to the same one.
type ExchangeRequest struct {
	IdentityPoolID string
	Logins         map[string]string
	LoginHint      string
}

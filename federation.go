package federation

import "github.com/goliatone/go-federation/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type Outcome = core.Outcome
type OutcomeKind = core.OutcomeKind

type Attributes = core.Attributes
type WireAttribute = core.WireAttribute
type Session = core.Session
type TemporaryCredentials = core.TemporaryCredentials
type RegisterRequest = core.RegisterRequest
type ExchangeRequest = core.ExchangeRequest
type AuthenticateResult = core.AuthenticateResult
type VerificationDelivery = core.VerificationDelivery
type SignUpInput = core.SignUpInput
type SignUpResult = core.SignUpResult

type DirectoryUser = core.DirectoryUser
type DirectoryPool = core.DirectoryPool
type CredentialExchange = core.CredentialExchange
type CredentialProvider = core.CredentialProvider
type AttributeCodec = core.AttributeCodec
type OutcomeDispatcher = core.OutcomeDispatcher
type DispatcherFunc = core.DispatcherFunc
type MetricsRecorder = core.MetricsRecorder

const (
	OutcomeLoggedIn                  = core.OutcomeLoggedIn
	OutcomeLoginFailure              = core.OutcomeLoginFailure
	OutcomeMFARequired               = core.OutcomeMFARequired
	OutcomeNewPasswordRequired       = core.OutcomeNewPasswordRequired
	OutcomeConfirmationRequired      = core.OutcomeConfirmationRequired
	OutcomeEmailVerificationRequired = core.OutcomeEmailVerificationRequired
	OutcomeEmailVerificationFailed   = core.OutcomeEmailVerificationFailed
	OutcomeAttributesUpdated         = core.OutcomeAttributesUpdated
)

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithDirectoryPool      = core.WithDirectoryPool
	WithCredentialExchange = core.WithCredentialExchange
	WithCredentialProvider = core.WithCredentialProvider
	WithAttributeCodec     = core.WithAttributeCodec
	WithDispatcher         = core.WithDispatcher
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

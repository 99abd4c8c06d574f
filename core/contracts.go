package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// DirectoryUser is an opaque handle to an account in the identity directory.
// Handles are owned by the caller for the duration of a flow; the core never
// retains one after producing a terminal Outcome.
type DirectoryUser interface {
	Username() string
	Authenticate(ctx context.Context, password string) (AuthenticateResult, error)
	Session(ctx context.Context) (Session, error)
	Attributes(ctx context.Context) ([]WireAttribute, error)
	UpdateAttributes(ctx context.Context, attrs []WireAttribute) error
	RequestAttributeVerification(ctx context.Context, attribute string) (VerificationDelivery, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}

// DirectoryPool exposes pool-level directory operations and resolves user
// handles by username.
type DirectoryPool interface {
	ID() string
	User(username string) DirectoryUser
	SignUp(ctx context.Context, input SignUpInput) (SignUpResult, error)
}

// CredentialExchange converts a verified identity token into temporary
// pool-scoped credentials.
type CredentialExchange interface {
	Exchange(ctx context.Context, req ExchangeRequest) (TemporaryCredentials, error)
}

// CredentialProvider owns the credential slot populated by federation. It
// replaces the ambient process-wide credential object: the slot is explicit,
// injected, and shared only as far as the caller shares the provider. The
// last federation to complete wins; there is no versioning or locking, and
// callers that run federation-sensitive flows concurrently must serialize
// them against the same provider.
type CredentialProvider interface {
	Store(ctx context.Context, creds TemporaryCredentials) error
	Active(ctx context.Context) (TemporaryCredentials, bool)
}

// AttributeCodec converts between the attribute map form used by callers and
// the wire list form the directory expects.
type AttributeCodec interface {
	Encode(attrs Attributes) []WireAttribute
	Decode(list []WireAttribute) Attributes
}

// OutcomeDispatcher is an optional sink that receives every terminal Outcome
// the service produces. Routing the outcome into application state is the
// dispatcher's concern, not the core's.
type OutcomeDispatcher interface {
	Dispatch(ctx context.Context, outcome Outcome)
}

// DispatcherFunc adapts a function to the OutcomeDispatcher interface.
type DispatcherFunc func(ctx context.Context, outcome Outcome)

func (f DispatcherFunc) Dispatch(ctx context.Context, outcome Outcome) {
	if f == nil {
		return
	}
	f(ctx, outcome)
}

// FederationService is the flow surface implemented by Service.
type FederationService interface {
	Authenticate(ctx context.Context, username, password string) (Outcome, error)
	Register(ctx context.Context, req RegisterRequest) (Outcome, error)
	UpdateAttributes(ctx context.Context, user DirectoryUser, attrs Attributes) (Outcome, error)
	ChangePassword(ctx context.Context, user DirectoryUser, oldPassword, newPassword string) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

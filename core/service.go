package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Service drives the login, registration, and attribute-update flows against
// the configured directory pool and credential exchange. Every public flow
// resolves to exactly one Outcome or one error; remote failures that have a
// dedicated Outcome variant are recovered into it, the rest surface as
// errors with the remote message intact.
type Service struct {
	config             Config
	logger             Logger
	metricsRecorder    MetricsRecorder
	errorFactory       ErrorFactory
	errorMapper        ErrorMapper
	pool               DirectoryPool
	exchange           CredentialExchange
	credentialProvider CredentialProvider
	attributeCodec     AttributeCodec
	dispatcher         OutcomeDispatcher
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	logger := resolveLogger(&builder)

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.credentialProvider == nil {
		builder.credentialProvider = NewMemoryCredentialProvider()
	}
	if builder.attributeCodec == nil {
		builder.attributeCodec = WireAttributeCodec{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:             finalConfig,
		logger:             logger,
		metricsRecorder:    builder.metricsRecorder,
		errorFactory:       builder.errorFactory,
		errorMapper:        builder.errorMapper,
		pool:               builder.pool,
		exchange:           builder.exchange,
		credentialProvider: builder.credentialProvider,
		attributeCodec:     builder.attributeCodec,
		dispatcher:         builder.dispatcher,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Authenticate submits the credentials to the directory and runs the full
// login sequence: directory authentication, session fetch, credential
// federation, and the email-verification gate.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Outcome, error) {
	if s == nil {
		return Outcome{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := time.Now()
	fields := s.flowFields(username)

	outcome, err := s.authenticate(ctx, username, password)
	s.observeFlow(ctx, startedAt, "login", outcome, err, fields)
	if err != nil {
		return Outcome{}, s.mapError(err)
	}
	s.dispatch(ctx, outcome)
	return outcome, nil
}

// Register creates a new directory account. Unless the directory reports the
// account still needs confirmation, the freshly created account is
// immediately authenticated and passes the identical verification gate as
// any other login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Outcome, error) {
	if s == nil {
		return Outcome{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := time.Now()
	fields := s.flowFields(req.Username)

	outcome, err := s.register(ctx, req)
	s.observeFlow(ctx, startedAt, "register", outcome, err, fields)
	if err != nil {
		return Outcome{}, s.mapError(err)
	}
	s.dispatch(ctx, outcome)
	return outcome, nil
}

// UpdateAttributes applies an attribute change to the directory record. When
// email verification is mandatory the gate re-runs, since the change may
// have touched the email address and invalidated a prior verification.
func (s *Service) UpdateAttributes(ctx context.Context, user DirectoryUser, attrs Attributes) (Outcome, error) {
	if s == nil {
		return Outcome{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := time.Now()
	fields := s.flowFields(usernameOf(user))

	outcome, err := s.updateAttributes(ctx, user, attrs)
	s.observeFlow(ctx, startedAt, "update_attributes", outcome, err, fields)
	if err != nil {
		return Outcome{}, s.mapError(err)
	}
	s.dispatch(ctx, outcome)
	return outcome, nil
}

// ChangePassword changes the directory password for an authenticated user.
func (s *Service) ChangePassword(ctx context.Context, user DirectoryUser, oldPassword, newPassword string) error {
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	startedAt := time.Now()
	fields := s.flowFields(usernameOf(user))

	err := s.changePassword(ctx, user, oldPassword, newPassword)
	s.observeFlow(ctx, startedAt, "change_password", Outcome{}, err, fields)
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (Outcome, error) {
	if s.pool == nil {
		return Outcome{}, ErrPoolNotConfigured
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return Outcome{}, fmt.Errorf("core: username is required")
	}

	user := s.pool.User(username)
	result, err := user.Authenticate(ctx, password)
	if err != nil {
		if IsUserNotConfirmed(err) {
			return Outcome{Kind: OutcomeConfirmationRequired, User: user}, nil
		}
		return Outcome{Kind: OutcomeLoginFailure, User: user, Reason: ReasonFromError(err)}, nil
	}

	switch result.Challenge {
	case ChallengeMFA:
		return Outcome{Kind: OutcomeMFARequired, User: user}, nil
	case ChallengeNewPassword:
		return Outcome{Kind: OutcomeNewPasswordRequired, User: user}, nil
	}

	return s.completeLogin(ctx, user)
}

// completeLogin continues a successful directory authentication through
// session fetch, federation, and the verification gate. A nil user means the
// continuation was invoked out of order; that is a caller bug surfaced as an
// error, never as an Outcome.
func (s *Service) completeLogin(ctx context.Context, user DirectoryUser) (Outcome, error) {
	if user == nil {
		return Outcome{}, ErrNotAuthenticated
	}

	session, err := user.Session(ctx)
	if err != nil {
		return Outcome{Kind: OutcomeLoginFailure, User: user, Reason: ReasonFromError(err)}, nil
	}

	if err := s.federate(ctx, session); err != nil {
		return Outcome{Kind: OutcomeLoginFailure, User: user, Reason: ReasonFromError(err)}, nil
	}

	return s.decideVerification(ctx, user)
}

func (s *Service) register(ctx context.Context, req RegisterRequest) (Outcome, error) {
	if s.pool == nil {
		return Outcome{}, ErrPoolNotConfigured
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return Outcome{}, fmt.Errorf("core: username is required")
	}

	result, err := s.pool.SignUp(ctx, SignUpInput{
		Username:       username,
		Password:       req.Password,
		Attributes:     s.attributeCodec.Encode(req.Attributes),
		ValidationData: s.attributeCodec.Encode(req.ValidationData),
	})
	if err != nil {
		return Outcome{}, err
	}

	if !result.Confirmed {
		return Outcome{Kind: OutcomeConfirmationRequired, User: result.User}, nil
	}
	return s.authenticate(ctx, username, req.Password)
}

func (s *Service) updateAttributes(ctx context.Context, user DirectoryUser, attrs Attributes) (Outcome, error) {
	if user == nil {
		return Outcome{}, ErrNotAuthenticated
	}

	if err := user.UpdateAttributes(ctx, s.attributeCodec.Encode(attrs)); err != nil {
		return Outcome{}, err
	}

	if s.config.EmailVerificationIsMandatory() {
		return s.decideVerification(ctx, user)
	}
	return Outcome{Kind: OutcomeAttributesUpdated, Attributes: attrs.Clone()}, nil
}

func (s *Service) changePassword(ctx context.Context, user DirectoryUser, oldPassword, newPassword string) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	return user.ChangePassword(ctx, oldPassword, newPassword)
}

func (s *Service) dispatch(ctx context.Context, outcome Outcome) {
	if s == nil || s.dispatcher == nil || !outcome.Terminal() {
		return
	}
	s.dispatcher.Dispatch(ctx, outcome)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (s *Service) flowFields(username string) map[string]any {
	fields := map[string]any{
		"flow_id": uuid.NewString(),
	}
	if strings.TrimSpace(username) != "" {
		fields["username"] = username
	}
	if s != nil {
		if strings.TrimSpace(s.config.UserPoolID) != "" {
			fields["user_pool_id"] = s.config.UserPoolID
		}
		if strings.TrimSpace(s.config.IdentityPoolID) != "" {
			fields["identity_pool_id"] = s.config.IdentityPoolID
		}
	}
	return fields
}

func usernameOf(user DirectoryUser) string {
	if user == nil {
		return ""
	}
	return user.Username()
}

package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestService_Authenticate_LoggedInStoresCredentials(t *testing.T) {
	user := &fakeUser{
		username: "ada",
		session:  Session{IdentityToken: "id-token", Username: "ada"},
		attrs: []WireAttribute{
			{Name: "email", Value: "ada@example.com"},
			{Name: "email_verified", Value: "true"},
		},
	}
	exchange := &fakeExchange{creds: TemporaryCredentials{AccessKeyID: "AKIA", SecretKey: "secret"}}
	creds := NewMemoryCredentialProvider()

	svc := newTestService(t, testConfig(nil),
		WithDirectoryPool(&fakePool{user: user}),
		WithCredentialExchange(exchange),
		WithCredentialProvider(creds),
	)

	outcome, err := svc.Authenticate(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if outcome.Kind != OutcomeLoggedIn {
		t.Fatalf("expected logged_in, got %q", outcome.Kind)
	}
	if outcome.Attributes["email"] != "ada@example.com" {
		t.Fatalf("expected decoded attributes on outcome, got %v", outcome.Attributes)
	}

	if exchange.lastRequest.IdentityPoolID != "us-east-1:pool" {
		t.Fatalf("expected identity pool id on exchange request, got %q", exchange.lastRequest.IdentityPoolID)
	}
	if exchange.lastRequest.LoginHint != "ada" {
		t.Fatalf("expected login hint %q, got %q", "ada", exchange.lastRequest.LoginHint)
	}
	token, ok := exchange.lastRequest.Logins["cognito-idp.us-east-1.amazonaws.com/us-east-1_pool"]
	if !ok || token != "id-token" {
		t.Fatalf("expected identity token under login provider key, got %v", exchange.lastRequest.Logins)
	}

	active, ok := creds.Active(context.Background())
	if !ok || active.AccessKeyID != "AKIA" {
		t.Fatalf("expected stored credentials, got %v ok=%v", active, ok)
	}
}

func TestService_Authenticate_UnconfirmedAccount(t *testing.T) {
	user := &fakeUser{
		username: "ada",
		authErr:  &DirectoryError{Code: DirectoryCodeUserNotConfirmed, Message: "User is not confirmed."},
	}
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(&fakePool{user: user}))

	outcome, err := svc.Authenticate(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if outcome.Kind != OutcomeConfirmationRequired {
		t.Fatalf("expected confirmation_required, got %q", outcome.Kind)
	}
	if user.sessionCalls != 0 {
		t.Fatalf("expected no session fetch for unconfirmed account")
	}
}

func TestService_Authenticate_DirectoryRejection(t *testing.T) {
	user := &fakeUser{
		username: "ada",
		authErr:  &DirectoryError{Code: "NotAuthorizedException", Message: "Incorrect username or password."},
	}
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(&fakePool{user: user}))

	outcome, err := svc.Authenticate(context.Background(), "ada", "wrong")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if outcome.Kind != OutcomeLoginFailure {
		t.Fatalf("expected login_failure, got %q", outcome.Kind)
	}
	if outcome.Reason != "Incorrect username or password." {
		t.Fatalf("expected verbatim directory message, got %q", outcome.Reason)
	}
}

func TestService_Authenticate_Challenges(t *testing.T) {
	cases := []struct {
		challenge ChallengeKind
		want      OutcomeKind
	}{
		{ChallengeMFA, OutcomeMFARequired},
		{ChallengeNewPassword, OutcomeNewPasswordRequired},
	}
	for _, tc := range cases {
		user := &fakeUser{username: "ada", authResult: AuthenticateResult{Challenge: tc.challenge}}
		exchange := &fakeExchange{}
		svc := newTestService(t, testConfig(nil),
			WithDirectoryPool(&fakePool{user: user}),
			WithCredentialExchange(exchange),
		)

		outcome, err := svc.Authenticate(context.Background(), "ada", "pw")
		if err != nil {
			t.Fatalf("authenticate with challenge %q: %v", tc.challenge, err)
		}
		if outcome.Kind != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, outcome.Kind)
		}
		if exchange.calls != 0 {
			t.Fatalf("expected no federation before challenge %q completes", tc.challenge)
		}
		if user.sessionCalls != 0 {
			t.Fatalf("expected no session fetch before challenge %q completes", tc.challenge)
		}
	}
}

func TestService_Authenticate_SessionFetchFailure(t *testing.T) {
	user := &fakeUser{
		username:   "ada",
		sessionErr: &DirectoryError{Message: "Refresh Token has expired"},
	}
	exchange := &fakeExchange{}
	svc := newTestService(t, testConfig(nil),
		WithDirectoryPool(&fakePool{user: user}),
		WithCredentialExchange(exchange),
	)

	outcome, err := svc.Authenticate(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if outcome.Kind != OutcomeLoginFailure {
		t.Fatalf("expected login_failure, got %q", outcome.Kind)
	}
	if outcome.Reason != "Refresh Token has expired" {
		t.Fatalf("expected verbatim directory message, got %q", outcome.Reason)
	}
	if exchange.calls != 0 {
		t.Fatalf("expected no federation without a session")
	}
}

func TestService_Authenticate_ExchangeFailure(t *testing.T) {
	user := &fakeUser{
		username: "ada",
		session:  Session{IdentityToken: "id-token", Username: "ada"},
	}
	exchange := &fakeExchange{err: errors.New("exchange: identity pool rejected token")}
	creds := NewMemoryCredentialProvider()

	svc := newTestService(t, testConfig(nil),
		WithDirectoryPool(&fakePool{user: user}),
		WithCredentialExchange(exchange),
		WithCredentialProvider(creds),
	)

	outcome, err := svc.Authenticate(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if outcome.Kind != OutcomeLoginFailure {
		t.Fatalf("expected login_failure, got %q", outcome.Kind)
	}
	if outcome.Reason != "exchange: identity pool rejected token" {
		t.Fatalf("expected exchange message on outcome, got %q", outcome.Reason)
	}
	if _, ok := creds.Active(context.Background()); ok {
		t.Fatalf("expected no credentials stored after failed federation")
	}
}

func TestService_Authenticate_MissingUsername(t *testing.T) {
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(&fakePool{user: &fakeUser{}}))

	_, err := svc.Authenticate(context.Background(), "  ", "pw")
	if err == nil {
		t.Fatalf("expected error for blank username")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected mapped error, got %T", err)
	}
	if richErr.TextCode != FederationErrorBadInput {
		t.Fatalf("expected %s, got %s", FederationErrorBadInput, richErr.TextCode)
	}
}

func TestService_Register_UnconfirmedSkipsAuthentication(t *testing.T) {
	user := &fakeUser{username: "ada"}
	pool := &fakePool{user: user, signUpResult: SignUpResult{Confirmed: false, User: user}}
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(pool))

	outcome, err := svc.Register(context.Background(), RegisterRequest{Username: "ada", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if outcome.Kind != OutcomeConfirmationRequired {
		t.Fatalf("expected confirmation_required, got %q", outcome.Kind)
	}
	if user.authCalls != 0 {
		t.Fatalf("expected no authentication attempt for unconfirmed sign-up")
	}
}

func TestService_Register_ConfirmedAuthenticatesImmediately(t *testing.T) {
	user := &fakeUser{
		username: "ada",
		session:  Session{IdentityToken: "id-token", Username: "ada"},
		attrs: []WireAttribute{
			{Name: "email_verified", Value: "true"},
		},
	}
	pool := &fakePool{user: user, signUpResult: SignUpResult{Confirmed: true, User: user}}
	svc := newTestService(t, testConfig(nil),
		WithDirectoryPool(pool),
		WithCredentialExchange(&fakeExchange{}),
	)

	outcome, err := svc.Register(context.Background(), RegisterRequest{
		Username: "ada",
		Password: "pw",
		Attributes: Attributes{
			"name":  "Ada",
			"email": "ada@example.com",
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if outcome.Kind != OutcomeLoggedIn {
		t.Fatalf("expected logged_in, got %q", outcome.Kind)
	}
	if user.authCalls != 1 {
		t.Fatalf("expected one authentication attempt, got %d", user.authCalls)
	}

	want := []WireAttribute{
		{Name: "email", Value: "ada@example.com"},
		{Name: "name", Value: "Ada"},
	}
	if len(pool.lastSignUp.Attributes) != len(want) {
		t.Fatalf("expected %d encoded attributes, got %v", len(want), pool.lastSignUp.Attributes)
	}
	for i, attr := range want {
		if pool.lastSignUp.Attributes[i] != attr {
			t.Fatalf("expected attribute %v at %d, got %v", attr, i, pool.lastSignUp.Attributes[i])
		}
	}
}

func TestService_Register_SignUpErrorSurfaces(t *testing.T) {
	pool := &fakePool{
		user:      &fakeUser{username: "ada"},
		signUpErr: &DirectoryError{Code: "UsernameExistsException", Message: "User already exists"},
	}
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(pool))

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "ada", Password: "pw"})
	if err == nil {
		t.Fatalf("expected sign-up rejection to surface as error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected mapped error, got %T", err)
	}
	if richErr.TextCode != FederationErrorDirectory {
		t.Fatalf("expected %s, got %s", FederationErrorDirectory, richErr.TextCode)
	}
}

func TestService_UpdateAttributes_MandatoryRerunsGate(t *testing.T) {
	user := &fakeUser{
		username: "ada",
		attrs: []WireAttribute{
			{Name: "email", Value: "new@example.com"},
			{Name: "email_verified", Value: "false"},
		},
		delivery: VerificationDelivery{InputRequired: true, Medium: "EMAIL", Destination: "n***@example.com"},
	}
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(&fakePool{user: user}))

	outcome, err := svc.UpdateAttributes(context.Background(), user, Attributes{"email": "new@example.com"})
	if err != nil {
		t.Fatalf("update attributes: %v", err)
	}
	if outcome.Kind != OutcomeEmailVerificationRequired {
		t.Fatalf("expected email_verification_required, got %q", outcome.Kind)
	}
	if outcome.DeliveryMedium != "EMAIL" {
		t.Fatalf("expected delivery medium EMAIL, got %q", outcome.DeliveryMedium)
	}
	if user.verifyCalls != 1 {
		t.Fatalf("expected one verification request, got %d", user.verifyCalls)
	}
}

func TestService_UpdateAttributes_OptionalSkipsGate(t *testing.T) {
	user := &fakeUser{username: "ada"}
	svc := newTestService(t, testConfig(boolPtr(false)), WithDirectoryPool(&fakePool{user: user}))

	attrs := Attributes{"name": "Ada"}
	outcome, err := svc.UpdateAttributes(context.Background(), user, attrs)
	if err != nil {
		t.Fatalf("update attributes: %v", err)
	}
	if outcome.Kind != OutcomeAttributesUpdated {
		t.Fatalf("expected attributes_updated, got %q", outcome.Kind)
	}
	if outcome.Attributes["name"] != "Ada" {
		t.Fatalf("expected submitted attributes on outcome, got %v", outcome.Attributes)
	}
	if user.attrsCalls != 0 {
		t.Fatalf("expected no attribute fetch when verification is optional")
	}
}

func TestService_UpdateAttributes_NilUser(t *testing.T) {
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(&fakePool{user: &fakeUser{}}))

	_, err := svc.UpdateAttributes(context.Background(), nil, Attributes{"name": "Ada"})
	if err == nil {
		t.Fatalf("expected error for nil user")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected mapped error, got %T", err)
	}
	if richErr.TextCode != FederationErrorNotAuthenticated {
		t.Fatalf("expected %s, got %s", FederationErrorNotAuthenticated, richErr.TextCode)
	}
}

func TestService_ChangePassword_Delegates(t *testing.T) {
	user := &fakeUser{username: "ada"}
	svc := newTestService(t, testConfig(nil), WithDirectoryPool(&fakePool{user: user}))

	if err := svc.ChangePassword(context.Background(), user, "old", "new"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if user.changeOld != "old" || user.changeNew != "new" {
		t.Fatalf("expected passwords forwarded, got %q/%q", user.changeOld, user.changeNew)
	}

	if err := svc.ChangePassword(context.Background(), nil, "old", "new"); err == nil {
		t.Fatalf("expected error for nil user")
	}
}

func TestService_DispatcherReceivesTerminalOutcomes(t *testing.T) {
	user := &fakeUser{
		username: "ada",
		authErr:  &DirectoryError{Code: "NotAuthorizedException", Message: "nope"},
	}
	var dispatched []Outcome
	svc := newTestService(t, testConfig(nil),
		WithDirectoryPool(&fakePool{user: user}),
		WithDispatcher(DispatcherFunc(func(_ context.Context, outcome Outcome) {
			dispatched = append(dispatched, outcome)
		})),
	)

	if _, err := svc.Authenticate(context.Background(), "ada", "pw"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if len(dispatched) != 1 {
		t.Fatalf("expected exactly one dispatched outcome, got %d", len(dispatched))
	}
	if dispatched[0].Kind != OutcomeLoginFailure {
		t.Fatalf("expected login_failure dispatched, got %q", dispatched[0].Kind)
	}
}

func TestService_Authenticate_PoolNotConfigured(t *testing.T) {
	svc := newTestService(t, testConfig(nil))

	_, err := svc.Authenticate(context.Background(), "ada", "pw")
	if err == nil {
		t.Fatalf("expected error without a directory pool")
	}
}

func newTestService(t *testing.T, cfg Config, options ...Option) *Service {
	t.Helper()
	svc, err := NewService(cfg, options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func testConfig(mandatory *bool) Config {
	return Config{
		Region:                     "us-east-1",
		UserPoolID:                 "us-east-1_pool",
		IdentityPoolID:             "us-east-1:pool",
		MandatoryEmailVerification: mandatory,
	}
}

func boolPtr(v bool) *bool { return &v }

type fakePool struct {
	user         *fakeUser
	signUpResult SignUpResult
	signUpErr    error
	lastSignUp   SignUpInput
}

func (p *fakePool) ID() string { return "us-east-1_pool" }

func (p *fakePool) User(username string) DirectoryUser {
	if p.user != nil && p.user.username == "" {
		p.user.username = username
	}
	return p.user
}

func (p *fakePool) SignUp(_ context.Context, input SignUpInput) (SignUpResult, error) {
	p.lastSignUp = input
	if p.signUpErr != nil {
		return SignUpResult{}, p.signUpErr
	}
	return p.signUpResult, nil
}

type fakeUser struct {
	username string

	authResult AuthenticateResult
	authErr    error
	authCalls  int

	session      Session
	sessionErr   error
	sessionCalls int

	attrs      []WireAttribute
	attrsErr   error
	attrsCalls int

	updateErr error

	delivery    VerificationDelivery
	verifyErr   error
	verifyCalls int

	changeErr error
	changeOld string
	changeNew string
}

func (u *fakeUser) Username() string { return u.username }

func (u *fakeUser) Authenticate(_ context.Context, _ string) (AuthenticateResult, error) {
	u.authCalls++
	if u.authErr != nil {
		return AuthenticateResult{}, u.authErr
	}
	return u.authResult, nil
}

func (u *fakeUser) Session(_ context.Context) (Session, error) {
	u.sessionCalls++
	if u.sessionErr != nil {
		return Session{}, u.sessionErr
	}
	return u.session, nil
}

func (u *fakeUser) Attributes(_ context.Context) ([]WireAttribute, error) {
	u.attrsCalls++
	if u.attrsErr != nil {
		return nil, u.attrsErr
	}
	return u.attrs, nil
}

func (u *fakeUser) UpdateAttributes(_ context.Context, _ []WireAttribute) error {
	return u.updateErr
}

func (u *fakeUser) RequestAttributeVerification(_ context.Context, _ string) (VerificationDelivery, error) {
	u.verifyCalls++
	if u.verifyErr != nil {
		return VerificationDelivery{}, u.verifyErr
	}
	return u.delivery, nil
}

func (u *fakeUser) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	u.changeOld = oldPassword
	u.changeNew = newPassword
	return u.changeErr
}

type fakeExchange struct {
	creds       TemporaryCredentials
	err         error
	calls       int
	lastRequest ExchangeRequest
}

func (e *fakeExchange) Exchange(_ context.Context, req ExchangeRequest) (TemporaryCredentials, error) {
	e.calls++
	e.lastRequest = req
	if e.err != nil {
		return TemporaryCredentials{}, e.err
	}
	return e.creds, nil
}

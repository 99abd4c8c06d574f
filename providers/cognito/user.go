package cognito

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-federation/core"
)

// User is a directory-user handle bound to a pool. A handle starts without a
// session; Authenticate establishes one and the remaining operations require
// it. Handles are not safe for concurrent use across flows.
type User struct {
	pool     *Pool
	username string

	mu          sync.Mutex
	session     core.Session
	accessToken string
}

func (u *User) Username() string {
	if u == nil {
		return ""
	}
	return u.username
}

func (u *User) Authenticate(ctx context.Context, password string) (core.AuthenticateResult, error) {
	if u == nil || u.pool == nil {
		return core.AuthenticateResult{}, fmt.Errorf("cognito: user handle is not bound to a pool")
	}

	payload := initiateAuthPayload{
		AuthFlow: authFlowUserPassword,
		ClientID: u.pool.config.ClientID,
		AuthParameters: map[string]string{
			"USERNAME": u.username,
			"PASSWORD": password,
		},
	}
	var response initiateAuthResponse
	if err := u.pool.call(ctx, "InitiateAuth", payload, &response); err != nil {
		return core.AuthenticateResult{}, err
	}

	switch response.ChallengeName {
	case challengeSMSMFA, challengeSoftwareMFA:
		return core.AuthenticateResult{Challenge: core.ChallengeMFA}, nil
	case challengeNewPassword:
		return core.AuthenticateResult{Challenge: core.ChallengeNewPassword}, nil
	}

	if response.AuthenticationResult == nil || strings.TrimSpace(response.AuthenticationResult.IDToken) == "" {
		return core.AuthenticateResult{}, fmt.Errorf("cognito: authentication response carries no identity token")
	}

	var expiresAt *time.Time
	if response.AuthenticationResult.ExpiresIn > 0 {
		value := u.pool.config.Now().Add(time.Duration(response.AuthenticationResult.ExpiresIn) * time.Second)
		expiresAt = &value
	}

	u.mu.Lock()
	u.session = core.Session{
		IdentityToken: response.AuthenticationResult.IDToken,
		Username:      u.username,
		ExpiresAt:     expiresAt,
	}
	u.accessToken = response.AuthenticationResult.AccessToken
	u.mu.Unlock()

	return core.AuthenticateResult{}, nil
}

func (u *User) Session(_ context.Context) (core.Session, error) {
	if u == nil || u.pool == nil {
		return core.Session{}, fmt.Errorf("cognito: user handle is not bound to a pool")
	}
	u.mu.Lock()
	session := u.session
	u.mu.Unlock()

	if !session.Valid() {
		return core.Session{}, fmt.Errorf("cognito: user %q has no active session", u.username)
	}
	if session.ExpiresAt != nil && u.pool.config.Now().After(*session.ExpiresAt) {
		return core.Session{}, fmt.Errorf("cognito: session for user %q has expired", u.username)
	}
	return session, nil
}

func (u *User) Attributes(ctx context.Context) ([]core.WireAttribute, error) {
	token, err := u.activeAccessToken()
	if err != nil {
		return nil, err
	}

	var response getUserResponse
	if err := u.pool.call(ctx, "GetUser", accessTokenPayload{AccessToken: token}, &response); err != nil {
		return nil, err
	}
	return fromWireAttributes(response.UserAttributes), nil
}

func (u *User) UpdateAttributes(ctx context.Context, attrs []core.WireAttribute) error {
	token, err := u.activeAccessToken()
	if err != nil {
		return err
	}

	payload := updateAttributesPayload{
		AccessToken:    token,
		UserAttributes: toWireAttributes(attrs),
	}
	return u.pool.call(ctx, "UpdateUserAttributes", payload, nil)
}

func (u *User) RequestAttributeVerification(ctx context.Context, attribute string) (core.VerificationDelivery, error) {
	token, err := u.activeAccessToken()
	if err != nil {
		return core.VerificationDelivery{}, err
	}

	payload := verificationCodePayload{
		AccessToken:   token,
		AttributeName: strings.TrimSpace(attribute),
	}
	var response verificationCodeResponse
	if err := u.pool.call(ctx, "GetUserAttributeVerificationCode", payload, &response); err != nil {
		return core.VerificationDelivery{}, err
	}

	// A missing delivery block means the directory needs no code from the
	// user for this attribute.
	if response.CodeDeliveryDetails == nil {
		return core.VerificationDelivery{InputRequired: false}, nil
	}
	return core.VerificationDelivery{
		InputRequired: true,
		Medium:        response.CodeDeliveryDetails.DeliveryMedium,
		Destination:   response.CodeDeliveryDetails.Destination,
	}, nil
}

func (u *User) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	token, err := u.activeAccessToken()
	if err != nil {
		return err
	}

	payload := changePasswordPayload{
		AccessToken:      token,
		PreviousPassword: oldPassword,
		ProposedPassword: newPassword,
	}
	return u.pool.call(ctx, "ChangePassword", payload, nil)
}

func (u *User) activeAccessToken() (string, error) {
	if u == nil || u.pool == nil {
		return "", fmt.Errorf("cognito: user handle is not bound to a pool")
	}
	u.mu.Lock()
	token := u.accessToken
	u.mu.Unlock()
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("cognito: user %q has no active session", u.username)
	}
	return token, nil
}

type initiateAuthPayload struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

type authenticationResult struct {
	IDToken     string `json:"IdToken"`
	AccessToken string `json:"AccessToken"`
	ExpiresIn   int64  `json:"ExpiresIn"`
}

type initiateAuthResponse struct {
	ChallengeName        string                `json:"ChallengeName"`
	AuthenticationResult *authenticationResult `json:"AuthenticationResult"`
}

type accessTokenPayload struct {
	AccessToken string `json:"AccessToken"`
}

type getUserResponse struct {
	Username       string          `json:"Username"`
	UserAttributes []wireAttribute `json:"UserAttributes"`
}

type updateAttributesPayload struct {
	AccessToken    string          `json:"AccessToken"`
	UserAttributes []wireAttribute `json:"UserAttributes"`
}

type verificationCodePayload struct {
	AccessToken   string `json:"AccessToken"`
	AttributeName string `json:"AttributeName"`
}

type codeDeliveryDetails struct {
	DeliveryMedium string `json:"DeliveryMedium"`
	Destination    string `json:"Destination"`
	AttributeName  string `json:"AttributeName"`
}

type verificationCodeResponse struct {
	CodeDeliveryDetails *codeDeliveryDetails `json:"CodeDeliveryDetails"`
}

type changePasswordPayload struct {
	AccessToken      string `json:"AccessToken"`
	PreviousPassword string `json:"PreviousPassword"`
	ProposedPassword string `json:"ProposedPassword"`
}

var (
	_ core.DirectoryPool = (*Pool)(nil)
	_ core.DirectoryUser = (*User)(nil)
)

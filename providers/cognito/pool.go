// Package cognito implements the core directory contracts against a
// Cognito-style user-pool HTTP API (JSON operations addressed through the
// X-Amz-Target header).
package cognito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-federation/core"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20 // 1 MiB

	targetPrefix    = "AWSCognitoIdentityProviderService."
	jsonContentType = "application/x-amz-json-1.1"

	authFlowUserPassword = "USER_PASSWORD_AUTH"

	challengeSMSMFA      = "SMS_MFA"
	challengeSoftwareMFA = "SOFTWARE_TOKEN_MFA"
	challengeNewPassword = "NEW_PASSWORD_REQUIRED"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type PoolConfig struct {
	Region         string
	UserPoolID     string
	ClientID       string
	Endpoint       string
	RequestTimeout time.Duration
	HTTPClient     HTTPDoer
	Now            func() time.Time
}

// Pool is a directory-pool client. It is safe for concurrent use; per-user
// session state lives on the user handles it resolves.
type Pool struct {
	config     PoolConfig
	httpClient HTTPDoer
}

func NewPool(cfg PoolConfig) (*Pool, error) {
	cfg.UserPoolID = strings.TrimSpace(cfg.UserPoolID)
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.Region = strings.TrimSpace(cfg.Region)
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.UserPoolID == "" {
		return nil, fmt.Errorf("cognito: user pool id is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("cognito: client id is required")
	}
	if cfg.Endpoint == "" {
		if cfg.Region == "" {
			return nil, fmt.Errorf("cognito: region or endpoint is required")
		}
		cfg.Endpoint = fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", cfg.Region)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &Pool{config: cfg, httpClient: httpClient}, nil
}

func (p *Pool) ID() string {
	if p == nil {
		return ""
	}
	return p.config.UserPoolID
}

func (p *Pool) User(username string) core.DirectoryUser {
	return &User{pool: p, username: strings.TrimSpace(username)}
}

func (p *Pool) SignUp(ctx context.Context, input core.SignUpInput) (core.SignUpResult, error) {
	if p == nil {
		return core.SignUpResult{}, fmt.Errorf("cognito: pool is not configured")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return core.SignUpResult{}, fmt.Errorf("cognito: username is required")
	}

	payload := signUpPayload{
		ClientID:       p.config.ClientID,
		Username:       username,
		Password:       input.Password,
		UserAttributes: toWireAttributes(input.Attributes),
		ValidationData: toWireAttributes(input.ValidationData),
	}
	var response signUpResponse
	if err := p.call(ctx, "SignUp", payload, &response); err != nil {
		return core.SignUpResult{}, err
	}

	return core.SignUpResult{
		Confirmed: response.UserConfirmed,
		User:      p.User(username),
	}, nil
}

func (p *Pool) call(ctx context.Context, operation string, payload any, out any) error {
	if p == nil || p.httpClient == nil {
		return fmt.Errorf("cognito: http client is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cognito: encode %s request: %w", operation, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx := ctx
	cancel := func() {}
	if p.config.RequestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, p.config.RequestTimeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, p.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cognito: build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("X-Amz-Target", targetPrefix+operation)

	response, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cognito: %s request failed: %w", operation, err)
	}
	defer response.Body.Close()

	responseBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if readErr != nil {
		return fmt.Errorf("cognito: read %s response: %w", operation, readErr)
	}
	if int64(len(responseBody)) > maxResponseBodyBytes {
		return fmt.Errorf("cognito: %s response exceeds %d bytes", operation, maxResponseBodyBytes)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeDirectoryError(response.StatusCode, responseBody)
	}

	if out == nil || len(bytes.TrimSpace(responseBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("cognito: decode %s response: %w", operation, err)
	}
	return nil
}

type wireAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type signUpPayload struct {
	ClientID       string          `json:"ClientId"`
	Username       string          `json:"Username"`
	Password       string          `json:"Password"`
	UserAttributes []wireAttribute `json:"UserAttributes,omitempty"`
	ValidationData []wireAttribute `json:"ValidationData,omitempty"`
}

type signUpResponse struct {
	UserConfirmed bool   `json:"UserConfirmed"`
	UserSub       string `json:"UserSub"`
}

func toWireAttributes(list []core.WireAttribute) []wireAttribute {
	if len(list) == 0 {
		return nil
	}
	out := make([]wireAttribute, 0, len(list))
	for _, attr := range list {
		out = append(out, wireAttribute{Name: attr.Name, Value: attr.Value})
	}
	return out
}

func fromWireAttributes(list []wireAttribute) []core.WireAttribute {
	out := make([]core.WireAttribute, 0, len(list))
	for _, attr := range list {
		out = append(out, core.WireAttribute{Name: attr.Name, Value: attr.Value})
	}
	return out
}

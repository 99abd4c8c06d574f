// Package identitypool implements core.CredentialExchange against a
// Cognito-identity-style HTTP API: a login assertion map is resolved to a
// federated identity and exchanged for temporary credentials.
package identitypool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-federation/core"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20 // 1 MiB

	targetPrefix    = "AWSCognitoIdentityService."
	jsonContentType = "application/x-amz-json-1.1"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	Region         string
	Endpoint       string
	RequestTimeout time.Duration
	HTTPClient     HTTPDoer
	Now            func() time.Time
}

// Client exchanges login assertions for temporary credentials. Resolved
// identity IDs are cached per login hint so repeated federations for the
// same login skip the resolution round-trip; distinct hints never share a
// cached identity.
type Client struct {
	config     ClientConfig
	httpClient HTTPDoer

	mu         sync.Mutex
	identities map[string]string
}

func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.Region = strings.TrimSpace(cfg.Region)
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		if cfg.Region == "" {
			return nil, fmt.Errorf("identitypool: region or endpoint is required")
		}
		cfg.Endpoint = fmt.Sprintf("https://cognito-identity.%s.amazonaws.com/", cfg.Region)
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
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		identities: map[string]string{},
	}, nil
}

func (c *Client) Exchange(ctx context.Context, req core.ExchangeRequest) (core.TemporaryCredentials, error) {
	if c == nil || c.httpClient == nil {
		return core.TemporaryCredentials{}, &ExchangeError{Message: "http client is not configured"}
	}
	poolID := strings.TrimSpace(req.IdentityPoolID)
	if poolID == "" {
		return core.TemporaryCredentials{}, &ExchangeError{Message: "identity pool id is required"}
	}
	if len(req.Logins) == 0 {
		return core.TemporaryCredentials{}, &ExchangeError{Message: "at least one login assertion is required"}
	}

	identityID, err := c.resolveIdentity(ctx, poolID, req)
	if err != nil {
		return core.TemporaryCredentials{}, err
	}

	payload := credentialsPayload{
		IdentityID: identityID,
		Logins:     req.Logins,
	}
	var response credentialsResponse
	if err := c.call(ctx, "GetCredentialsForIdentity", payload, &response); err != nil {
		return core.TemporaryCredentials{}, err
	}
	if response.Credentials == nil || strings.TrimSpace(response.Credentials.AccessKeyID) == "" {
		return core.TemporaryCredentials{}, &ExchangeError{Message: "exchange response carries no credentials"}
	}

	creds := core.TemporaryCredentials{
		AccessKeyID:  response.Credentials.AccessKeyID,
		SecretKey:    response.Credentials.SecretKey,
		SessionToken: response.Credentials.SessionToken,
	}
	if response.Credentials.Expiration > 0 {
		value := time.Unix(int64(response.Credentials.Expiration), 0).UTC()
		creds.Expiration = &value
	}
	return creds, nil
}

func (c *Client) resolveIdentity(ctx context.Context, poolID string, req core.ExchangeRequest) (string, error) {
	cacheKey := poolID + "|" + strings.TrimSpace(req.LoginHint)

	c.mu.Lock()
	cached, ok := c.identities[cacheKey]
	c.mu.Unlock()
	if ok && cached != "" {
		return cached, nil
	}

	payload := getIDPayload{
		IdentityPoolID: poolID,
		Logins:         req.Logins,
	}
	var response getIDResponse
	if err := c.call(ctx, "GetId", payload, &response); err != nil {
		return "", err
	}
	identityID := strings.TrimSpace(response.IdentityID)
	if identityID == "" {
		return "", &ExchangeError{Message: "exchange response carries no identity id"}
	}

	c.mu.Lock()
	c.identities[cacheKey] = identityID
	c.mu.Unlock()

	return identityID, nil
}

func (c *Client) call(ctx context.Context, operation string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ExchangeError{Message: fmt.Sprintf("encode %s request", operation), Cause: err}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx := ctx
	cancel := func() {}
	if c.config.RequestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &ExchangeError{Message: fmt.Sprintf("build %s request", operation), Cause: err}
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("X-Amz-Target", targetPrefix+operation)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return &ExchangeError{Message: fmt.Sprintf("%s request failed", operation), Cause: err}
	}
	defer response.Body.Close()

	responseBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if readErr != nil {
		return &ExchangeError{Message: fmt.Sprintf("read %s response", operation), Cause: readErr}
	}
	if int64(len(responseBody)) > maxResponseBodyBytes {
		return &ExchangeError{Message: fmt.Sprintf("%s response exceeds %d bytes", operation, maxResponseBodyBytes)}
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeExchangeError(response.StatusCode, responseBody)
	}

	if out == nil || len(bytes.TrimSpace(responseBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return &ExchangeError{Message: fmt.Sprintf("decode %s response", operation), Cause: err}
	}
	return nil
}

type getIDPayload struct {
	IdentityPoolID string            `json:"IdentityPoolId"`
	Logins         map[string]string `json:"Logins"`
}

type getIDResponse struct {
	IdentityID string `json:"IdentityId"`
}

type credentialsPayload struct {
	IdentityID string            `json:"IdentityId"`
	Logins     map[string]string `json:"Logins"`
}

type wireCredentials struct {
	AccessKeyID  string  `json:"AccessKeyId"`
	SecretKey    string  `json:"SecretKey"`
	SessionToken string  `json:"SessionToken"`
	Expiration   float64 `json:"Expiration"`
}

type credentialsResponse struct {
	IdentityID  string           `json:"IdentityId"`
	Credentials *wireCredentials `json:"Credentials"`
}

var _ core.CredentialExchange = (*Client)(nil)

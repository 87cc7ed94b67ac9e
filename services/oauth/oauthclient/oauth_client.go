package oauthclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/insightsbackend/lib/mylog"
	"github.com/MarcGrol/insightsbackend/services/oauth/oautherrors"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient/challenge"
	"github.com/MarcGrol/insightsbackend/services/oauth/providers"
)

type GetTokenRequest struct {
	Code         string
	CodeVerifier string
}

type RefreshTokenRequest struct {
	RefreshToken string
}

type CancelTokenRequest struct {
	Token string
}

type GetTokenResponse struct {
	TokenType    string
	AccessToken  string
	RefreshToken string
	Scopes       []string
	Expiry       time.Time
}

//go:generate mockgen -source=oauth_client.go -package oauthclient -destination oauth_client_mock.go OauthClient
type OauthClient interface {
	ComposeAuthURL(c context.Context, state string) (string, string, error)
	GetAccessToken(c context.Context, req GetTokenRequest) (GetTokenResponse, error)
	RefreshAccessToken(c context.Context, req RefreshTokenRequest) (GetTokenResponse, error)
	CancelAccessToken(c context.Context, req CancelTokenRequest) error
}

type oauthClient struct {
	provider       providers.Provider
	config         *oauth2.Config
	randomStringer challenge.RandomStringer
	httpClient     *http.Client
	logger         mylog.Logger
}

func NewOAuthClient(provider providers.Provider, randomStringer challenge.RandomStringer) (*oauthClient, error) {
	err := provider.Validate()
	if err != nil {
		return nil, err
	}

	return &oauthClient{
		provider:       provider,
		config:         provider.Config(),
		randomStringer: randomStringer,
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
		logger: mylog.New("oauthclient"),
	}, nil
}

// BuildAuthorizationURL composes the url the user is sent to for consent. It performs no I/O.
func BuildAuthorizationURL(provider providers.Provider, state string, opts ...oauth2.AuthCodeOption) (string, error) {
	err := provider.Validate()
	if err != nil {
		return "", err
	}
	if state == "" {
		return "", oautherrors.NewConfigurationError("state", "missing")
	}

	/*  Example:
	https://accounts.google.com/o/oauth2/auth
		?access_type=offline
		&client_id=1234.apps.googleusercontent.com
		&include_granted_scopes=true
		&prompt=consent
		&redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Foauth%2Fdone
		&response_type=code
		&scope=https%3A%2F%2Fwww.googleapis.com%2Fauth%2Fyoutube.readonly
		&state=Qm9vb2JhYmFuYW5hcw...
	*/

	opts = append([]oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce, // a refresh token is only (re-)issued on the consent screen
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}, opts...)

	return provider.Config().AuthCodeURL(state, opts...), nil
}

func (oc oauthClient) ComposeAuthURL(c context.Context, state string) (string, string, error) {
	verifier := oc.randomStringer.Create()

	authURL, err := BuildAuthorizationURL(oc.provider, state, oauth2.S256ChallengeOption(verifier))
	if err != nil {
		return "", "", err
	}

	return authURL, verifier, nil
}

func (oc oauthClient) GetAccessToken(c context.Context, req GetTokenRequest) (GetTokenResponse, error) {
	opts := []oauth2.AuthCodeOption{}
	if req.CodeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(req.CodeVerifier))
	}

	token, err := oc.config.Exchange(oc.withHTTPClient(c), req.Code, opts...)
	if err != nil {
		return GetTokenResponse{}, fmt.Errorf("error getting token: %w", err)
	}

	return toResponse(token), nil
}

func (oc oauthClient) RefreshAccessToken(c context.Context, req RefreshTokenRequest) (GetTokenResponse, error) {
	token, err := oc.config.TokenSource(oc.withHTTPClient(c), &oauth2.Token{
		RefreshToken: req.RefreshToken,
	}).Token()
	if err != nil {
		return GetTokenResponse{}, fmt.Errorf("error getting refresh-token: %w", err)
	}

	return toResponse(token), nil
}

func (oc oauthClient) CancelAccessToken(c context.Context, req CancelTokenRequest) error {
	if oc.provider.RevokeEndpoint == "" {
		return nil
	}

	requestBody := url.Values{
		"token": {req.Token},
	}.Encode()

	httpRespCode, respBody, err := newHTTPClient(oc.httpClient, oc.logger).Send(c, http.MethodPost, oc.provider.RevokeEndpoint, []byte(requestBody))
	if err != nil {
		return fmt.Errorf("error revoking token: %s", err)
	}

	if httpRespCode != http.StatusOK {
		return fmt.Errorf("error revoking token: %d (%s)", httpRespCode, string(respBody))
	}

	return nil
}

func (oc oauthClient) withHTTPClient(c context.Context) context.Context {
	return context.WithValue(c, oauth2.HTTPClient, oc.httpClient)
}

func toResponse(token *oauth2.Token) GetTokenResponse {
	resp := GetTokenResponse{
		TokenType:    token.Type(),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		resp.Scopes = strings.Fields(scope)
	}
	return resp
}

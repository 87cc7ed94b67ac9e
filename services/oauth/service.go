package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/insightsbackend/lib/myerrors"
	"github.com/MarcGrol/insightsbackend/lib/myevents"
	"github.com/MarcGrol/insightsbackend/lib/mylog"
	"github.com/MarcGrol/insightsbackend/lib/mypublisher"
	"github.com/MarcGrol/insightsbackend/lib/mysession"
	"github.com/MarcGrol/insightsbackend/lib/mytime"
	"github.com/MarcGrol/insightsbackend/services/oauth/oautherrors"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient/challenge"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthevents"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthvault"
	"github.com/MarcGrol/insightsbackend/services/oauth/providers"
)

type service struct {
	provider       providers.Provider
	oauthClient    oauthclient.OauthClient
	stateGenerator challenge.RandomStringer
	nower          mytime.Nower
	logger         mylog.Logger
	publisher      mypublisher.Publisher
}

func newService(provider providers.Provider, oauthClient oauthclient.OauthClient, stateGenerator challenge.RandomStringer, nower mytime.Nower, pub mypublisher.Publisher) *service {
	return &service{
		provider:       provider,
		oauthClient:    oauthClient,
		stateGenerator: stateGenerator,
		nower:          nower,
		logger:         mylog.New("oauth"),
		publisher:      pub,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, oauthevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", oauthevents.TopicName, err)
	}

	return nil
}

func (s *service) start(c context.Context, sess mysession.Session) (string, error) {
	now := s.nower.Now()

	s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Start oauth login for session %s", sess.UID())

	state := s.stateGenerator.Create()
	authURL, codeVerifier, err := s.oauthClient.ComposeAuthURL(c, state)
	if err != nil {
		return "", err
	}

	// A new attempt replaces any pending one, so an older state can never complete
	oauthvault.PopFlash(sess)
	err = oauthvault.SaveLoginAttempt(sess, oauthvault.LoginAttempt{
		State:        state,
		CodeVerifier: codeVerifier,
		CreatedAt:    now,
	})
	if err != nil {
		return "", myerrors.NewInternalError(err)
	}

	s.publish(c, sess, oauthevents.OAuthLoginStarted{
		SessionUID: sess.UID(),
		ClientID:   s.provider.ClientID,
		Scopes:     s.provider.Scopes,
	})

	return authURL, nil
}

func (s *service) done(c context.Context, sess mysession.Session, query CallbackQuery) (CallbackResult, error) {
	if !query.IsCallback() {
		return CallbackIgnored, nil
	}

	// Reload or back-button after a completed login: the state was already consumed
	if _, pending := oauthvault.LoadLoginAttempt(sess); !pending {
		if _, loggedIn := oauthvault.LoadCredential(sess); loggedIn {
			s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Ignore callback for session %s: already logged in", sess.UID())
			return CallbackIgnored, nil
		}
	}

	s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Continue with oauth login (create-token) for session %s", sess.UID())

	attempt, err := s.consumeLoginAttempt(sess, query.State)
	if err != nil {
		return CallbackIgnored, s.loginFailed(c, sess, err)
	}

	if query.Error != "" {
		return CallbackIgnored, s.loginFailed(c, sess, &oautherrors.TokenExchangeError{
			Code:        query.Error,
			Description: query.ErrorDescription,
		})
	}

	cred, err := s.exchange(c, query.Code, attempt.CodeVerifier)
	if err != nil {
		return CallbackIgnored, s.loginFailed(c, sess, err)
	}

	err = oauthvault.SaveCredential(sess, cred)
	if err != nil {
		return CallbackIgnored, myerrors.NewInternalError(err)
	}

	s.publish(c, sess, oauthevents.OAuthLoginCompleted{
		SessionUID: sess.UID(),
		ClientID:   cred.ClientID,
		Scopes:     cred.Scopes,
	})

	s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Completed oauth login for session %s", sess.UID())

	return CallbackAuthenticated, nil
}

// consumeLoginAttempt removes the pending attempt when it matches state. Any mismatch wipes the session.
func (s *service) consumeLoginAttempt(sess mysession.Session, state string) (oauthvault.LoginAttempt, error) {
	attempt, found := oauthvault.LoadLoginAttempt(sess)

	reason := ""
	switch {
	case !found:
		reason = "no pending login"
	case attempt.IsStale(s.nower.Now(), s.provider.LoginTTL):
		reason = "pending login expired"
	case subtle.ConstantTimeCompare([]byte(attempt.State), []byte(state)) != 1:
		reason = "state does not match pending login"
	}

	if reason != "" {
		sess.ClearAll()
		return oauthvault.LoginAttempt{}, oautherrors.NewStateMismatchError(reason)
	}

	oauthvault.ClearLoginAttempt(sess)

	return attempt, nil
}

func (s *service) exchange(c context.Context, code string, codeVerifier string) (oauthvault.Credential, error) {
	resp, err := s.oauthClient.GetAccessToken(c, oauthclient.GetTokenRequest{
		Code:         code,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		exchangeErr := &oautherrors.TokenExchangeError{Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			exchangeErr.Code = retrieveErr.ErrorCode
			exchangeErr.Description = retrieveErr.ErrorDescription
		}
		return oauthvault.Credential{}, exchangeErr
	}

	scopes := resp.Scopes
	if len(scopes) == 0 {
		scopes = s.provider.Scopes
	}

	cred := oauthvault.Credential{
		AccessToken:   resp.AccessToken,
		RefreshToken:  resp.RefreshToken,
		TokenEndpoint: s.provider.TokenEndpoint,
		ClientID:      s.provider.ClientID,
		ClientSecret:  s.provider.ClientSecret,
		Scopes:        scopes,
		Expiry:        resp.Expiry,
	}

	if !cred.IsComplete() {
		return oauthvault.Credential{}, &oautherrors.TokenExchangeError{
			Code:        "invalid_response",
			Description: "token response is incomplete",
		}
	}

	if !cred.HasScopes(s.provider.Scopes) {
		return oauthvault.Credential{}, &oautherrors.TokenExchangeError{
			Code:        "insufficient_scope",
			Description: "not all requested scopes were granted",
		}
	}

	return cred, nil
}

func (s *service) loginFailed(c context.Context, sess mysession.Session, err error) error {
	s.logger.Log(c, sess.UID(), mylog.SeverityWarn, "Oauth login for session %s failed: %s", sess.UID(), err)

	s.publish(c, sess, oauthevents.OAuthLoginFailed{
		SessionUID:   sess.UID(),
		ClientID:     s.provider.ClientID,
		Kind:         oautherrors.Kind(err),
		ErrorMessage: err.Error(),
	})

	return err
}

// ensureValid returns the current credential, refreshing it when expired. It never returns an expired credential.
func (s *service) ensureValid(c context.Context, sess mysession.Session) (oauthvault.Credential, bool, error) {
	now := s.nower.Now()

	cred, found := oauthvault.LoadCredential(sess)
	if !found {
		return oauthvault.Credential{}, false, nil
	}

	if cred.IsValid(now) {
		return cred, true, nil
	}

	if cred.RefreshToken == "" {
		s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Credential expired and cannot be refreshed")
		oauthvault.ClearCredential(sess)
		return oauthvault.Credential{}, false, nil
	}

	s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Start oauth token-refresh")

	resp, err := s.oauthClient.RefreshAccessToken(c, oauthclient.RefreshTokenRequest{
		RefreshToken: cred.RefreshToken,
	})
	if err != nil {
		refreshErr := &oautherrors.RefreshError{Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			refreshErr.Code = retrieveErr.ErrorCode
			refreshErr.Description = retrieveErr.ErrorDescription
		}
		return oauthvault.Credential{}, false, s.refreshFailed(c, sess, cred, refreshErr)
	}

	rotated := false
	cred.AccessToken = resp.AccessToken
	cred.Expiry = resp.Expiry
	if resp.RefreshToken != "" && resp.RefreshToken != cred.RefreshToken {
		cred.RefreshToken = resp.RefreshToken
		rotated = true
	}
	if len(resp.Scopes) > 0 {
		cred.Scopes = resp.Scopes
	}

	if !cred.IsValid(now) {
		return oauthvault.Credential{}, false, s.refreshFailed(c, sess, cred, &oautherrors.RefreshError{
			Code:        "invalid_response",
			Description: "refreshed token is not usable",
		})
	}

	err = oauthvault.SaveCredential(sess, cred)
	if err != nil {
		return oauthvault.Credential{}, false, myerrors.NewInternalError(err)
	}

	s.publish(c, sess, oauthevents.OAuthTokenRefreshCompleted{
		SessionUID: sess.UID(),
		ClientID:   cred.ClientID,
		Rotated:    rotated,
	})

	s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Completed oauth token-refresh")

	return cred, true, nil
}

func (s *service) refreshFailed(c context.Context, sess mysession.Session, cred oauthvault.Credential, err error) error {
	s.logger.Log(c, sess.UID(), mylog.SeverityWarn, "Oauth token-refresh failed: %s", err)

	oauthvault.ClearCredential(sess)

	s.publish(c, sess, oauthevents.OAuthTokenRefreshFailed{
		SessionUID:   sess.UID(),
		ClientID:     cred.ClientID,
		ErrorMessage: err.Error(),
	})

	return err
}

// logout revokes the grant on a best-effort basis and forgets everything about the session.
func (s *service) logout(c context.Context, sess mysession.Session) {
	s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Start logout for session %s", sess.UID())

	cred, found := oauthvault.LoadCredential(sess)
	revoked := false
	if found {
		token := cred.RefreshToken
		if token == "" {
			token = cred.AccessToken
		}
		err := s.oauthClient.CancelAccessToken(c, oauthclient.CancelTokenRequest{
			Token: token,
		})
		if err != nil {
			s.logger.Log(c, sess.UID(), mylog.SeverityWarn, "Error revoking token (ignored): %s", err)
		} else {
			revoked = true
		}
	}

	sess.ClearAll()

	if found {
		s.publish(c, sess, oauthevents.OAuthLoggedOut{
			SessionUID: sess.UID(),
			ClientID:   cred.ClientID,
			Revoked:    revoked,
		})
	}
}

func (s *service) status(c context.Context, sess mysession.Session, state FlowState) OAuthStatus {
	status := OAuthStatus{
		State: state,
	}

	cred, found := oauthvault.LoadCredential(sess)
	if !found {
		return status
	}

	status.Authenticated = cred.IsValid(s.nower.Now())
	status.ClientID = cred.ClientID
	status.Scopes = cred.Scopes
	status.Refreshable = cred.RefreshToken != ""
	if !cred.Expiry.IsZero() {
		expiry := cred.Expiry
		status.ValidUntil = &expiry
	}

	return status
}

// publish never fails the user interaction: events are informational.
func (s *service) publish(c context.Context, sess mysession.Session, event myevents.Event) {
	err := s.publisher.Publish(c, oauthevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, sess.UID(), mylog.SeverityError, "Error publishing event %s: %s", event.GetEventTypeName(), err)
	}
}

package oauth

import (
	"context"
	"fmt"

	"github.com/MarcGrol/insightsbackend/lib/myerrors"
	"github.com/MarcGrol/insightsbackend/lib/mylog"
	"github.com/MarcGrol/insightsbackend/lib/mysession"
	"github.com/MarcGrol/insightsbackend/services/oauth/oautherrors"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthvault"
)

type FlowState string

const (
	LoggedOut       FlowState = "LoggedOut"
	PendingCallback FlowState = "PendingCallback"
	Authenticated   FlowState = "Authenticated"
	Error           FlowState = "Error"
)

type FlowEvent string

const (
	LoginClicked     FlowEvent = "LoginClicked"
	CallbackReceived FlowEvent = "CallbackReceived"
	AccessRequested  FlowEvent = "AccessRequested"
)

// Outcome is the result of feeding one event into the login flow.
type Outcome struct {
	State       FlowState
	RedirectURL string
	Credential  *oauthvault.Credential
}

// CurrentState derives the flow state from what is stored in the session.
// A pending flash wins until it has been shown.
func CurrentState(sess mysession.Session) FlowState {
	if _, found := oauthvault.PeekFlash(sess); found {
		return Error
	}
	if _, found := oauthvault.LoadCredential(sess); found {
		return Authenticated
	}
	if _, found := oauthvault.LoadLoginAttempt(sess); found {
		return PendingCallback
	}
	return LoggedOut
}

// Handle is the single entry point of the login flow. Failures are recorded as a flash in the
// session, so the next page render can show them, and are returned as well.
func (s *service) Handle(c context.Context, sess mysession.Session, event FlowEvent, query CallbackQuery) (Outcome, error) {
	switch event {
	case LoginClicked:
		authURL, err := s.start(c, sess)
		if err != nil {
			return s.fail(c, sess, err)
		}
		return Outcome{
			State:       PendingCallback,
			RedirectURL: authURL,
		}, nil

	case CallbackReceived:
		result, err := s.done(c, sess, query)
		if err != nil {
			return s.fail(c, sess, err)
		}
		if result == CallbackIgnored {
			return Outcome{
				State: CurrentState(sess),
			}, nil
		}
		cred, _ := oauthvault.LoadCredential(sess)
		return Outcome{
			State:       Authenticated,
			RedirectURL: "/",
			Credential:  &cred,
		}, nil

	case AccessRequested:
		cred, found, err := s.ensureValid(c, sess)
		if err != nil {
			return s.fail(c, sess, err)
		}
		if !found {
			return Outcome{
				State: LoggedOut,
			}, nil
		}
		return Outcome{
			State:      Authenticated,
			Credential: &cred,
		}, nil

	default:
		return Outcome{State: CurrentState(sess)}, myerrors.NewInvalidInputError(fmt.Errorf("unknown flow event '%s'", event))
	}
}

func (s *service) fail(c context.Context, sess mysession.Session, err error) (Outcome, error) {
	flashErr := oauthvault.SaveFlash(sess, oauthvault.Flash{
		Kind:    oautherrors.Kind(err),
		Message: oautherrors.UserMessage(err),
	})
	if flashErr != nil {
		s.logger.Log(c, sess.UID(), mylog.SeverityError, "Error storing flash: %s", flashErr)
	}

	return Outcome{
		State: Error,
	}, err
}

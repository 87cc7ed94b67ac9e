package oauth

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/insightsbackend/lib/mycontext"
	"github.com/MarcGrol/insightsbackend/lib/myerrors"
	"github.com/MarcGrol/insightsbackend/lib/myhttp"
	"github.com/MarcGrol/insightsbackend/lib/mylog"
	"github.com/MarcGrol/insightsbackend/lib/mypublisher"
	"github.com/MarcGrol/insightsbackend/lib/mysession"
	"github.com/MarcGrol/insightsbackend/lib/mytime"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient/challenge"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthvault"
	"github.com/MarcGrol/insightsbackend/services/oauth/providers"
)

type SessionManager interface {
	Load(c context.Context, w http.ResponseWriter, r *http.Request) (mysession.Session, error)
	Save(c context.Context, s mysession.Session) error
}

type webService struct {
	service  *service
	sessions SessionManager
	logger   mylog.Logger
}

func NewService(provider providers.Provider, oauthClient oauthclient.OauthClient, stateGenerator challenge.RandomStringer, sessions SessionManager, nower mytime.Nower, pub mypublisher.Publisher) *webService {
	return &webService{
		service:  newService(provider, oauthClient, stateGenerator, nower, pub),
		sessions: sessions,
		logger:   mylog.New("oauth"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/", s.homePage()).Methods("GET")

	router.HandleFunc("/oauth/start", s.startPage()).Methods("POST")
	router.HandleFunc("/oauth/done", s.donePage()).Methods("GET")
	router.HandleFunc("/oauth/logout", s.logoutPage()).Methods("POST")
	router.HandleFunc("/oauth/status", s.statusPage()).Methods("GET")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

// AuthenticatedClient returns a client for the logged in user of this session, or nil.
// Problems are recorded in the session and never passed on to the caller.
func (s *webService) AuthenticatedClient(c context.Context, sess mysession.Session) *oauthclient.ClientHandle {
	outcome, err := s.service.Handle(c, sess, AccessRequested, CallbackQuery{})
	if err != nil {
		s.logger.Log(c, sess.UID(), mylog.SeverityWarn, "No authenticated client: %s", err)
		return nil
	}
	return oauthclient.ClientFor(outcome.Credential)
}

//go:embed templates
var templateFolder embed.FS
var (
	indexPageTemplate *template.Template
)

func init() {
	indexPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/index.html"))
}

type indexPage struct {
	Status OAuthStatus
	Flash  *oauthvault.Flash
}

func (s *webService) homePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sess, err := s.sessions.Load(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		query, err := NewCallbackQuery(r.URL.Query())
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		// The redirect uri may point to this page as well
		if query.IsCallback() {
			s.handleCallback(c, w, r, sess, query)
			return
		}

		outcome, _ := s.service.Handle(c, sess, AccessRequested, CallbackQuery{})

		page := indexPage{
			Status: s.service.status(c, sess, outcome.State),
		}
		flash, found := oauthvault.PopFlash(sess)
		if found {
			page.Flash = &flash
			page.Status.State = Error
		}

		err = s.sessions.Save(c, sess)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = indexPageTemplate.Execute(w, page)
		if err != nil {
			errorWriter.WriteError(c, w, 4, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) startPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sess, err := s.sessions.Load(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		outcome, err := s.service.Handle(c, sess, LoginClicked, CallbackQuery{})
		saveErr := s.sessions.Save(c, sess)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}
		if saveErr != nil {
			errorWriter.WriteError(c, w, 3, saveErr)
			return
		}

		http.Redirect(w, r, outcome.RedirectURL, http.StatusSeeOther)
	}
}

func (s *webService) donePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sess, err := s.sessions.Load(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		query, err := NewCallbackQuery(r.URL.Query())
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		s.handleCallback(c, w, r, sess, query)
	}
}

// handleCallback always redirects to the clean home page so code and state never linger in the address bar.
func (s *webService) handleCallback(c context.Context, w http.ResponseWriter, r *http.Request, sess mysession.Session, query CallbackQuery) {
	errorWriter := myhttp.NewWriter(s.logger)

	outcome, err := s.service.Handle(c, sess, CallbackReceived, query)
	if err != nil {
		s.logger.Log(c, sess.UID(), mylog.SeverityWarn, "Callback failed: %s", err)
	}

	err = s.sessions.Save(c, sess)
	if err != nil {
		errorWriter.WriteError(c, w, 5, err)
		return
	}

	s.logger.Log(c, sess.UID(), mylog.SeverityInfo, "Callback resulted in state %s", outcome.State)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *webService) logoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sess, err := s.sessions.Load(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.service.logout(c, sess)

		err = s.sessions.Save(c, sess)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *webService) statusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sess, err := s.sessions.Load(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		outcome, err := s.service.Handle(c, sess, AccessRequested, CallbackQuery{})
		saveErr := s.sessions.Save(c, sess)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}
		if saveErr != nil {
			errorWriter.WriteError(c, w, 3, saveErr)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, s.service.status(c, sess, outcome.State))
	}
}

package insights

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/insightsbackend/lib/mycontext"
	"github.com/MarcGrol/insightsbackend/lib/myerrors"
	"github.com/MarcGrol/insightsbackend/lib/myhttp"
	"github.com/MarcGrol/insightsbackend/lib/mylog"
	"github.com/MarcGrol/insightsbackend/lib/mysession"
	"github.com/MarcGrol/insightsbackend/services/oauth"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient"
)

//go:generate mockgen -source=web.go -package insights -destination authenticator_mock.go Authenticator
type Authenticator interface {
	AuthenticatedClient(c context.Context, sess mysession.Session) *oauthclient.ClientHandle
}

type webService struct {
	service       *service
	sessions      oauth.SessionManager
	authenticator Authenticator
	logger        mylog.Logger
}

func NewService(config Config, sessions oauth.SessionManager, authenticator Authenticator) *webService {
	return &webService{
		service:       newService(config),
		sessions:      sessions,
		authenticator: authenticator,
		logger:        mylog.New("insights"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/insights/channels", s.channelsPage()).Methods("GET")
}

func (s *webService) channelsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sess, err := s.sessions.Load(c, w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		// may have refreshed the credential
		client := s.authenticator.AuthenticatedClient(c, sess)
		err = s.sessions.Save(c, sess)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		if client == nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewUnauthorizedError(fmt.Errorf("not logged in")))
			return
		}

		channels, err := s.service.listMyChannels(c, client.HTTPClient())
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, ChannelsResponse{
			Channels: channels,
		})
	}
}

package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/insightsbackend/lib/mycontext"
	"github.com/MarcGrol/insightsbackend/lib/myhttp"
	"github.com/MarcGrol/insightsbackend/lib/mylog"
	"github.com/MarcGrol/insightsbackend/lib/mypublisher"
	"github.com/MarcGrol/insightsbackend/lib/mysession"
	"github.com/MarcGrol/insightsbackend/lib/mystore"
	"github.com/MarcGrol/insightsbackend/lib/myuuid"
)

type webService struct {
	logger    mylog.Logger
	store     mystore.Store[mysession.StoredSession]
	uuider    myuuid.UUIDer
	publisher mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(store mystore.Store[mysession.StoredSession], uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	return &webService{
		logger:    mylog.New("warmup"),
		store:     store,
		uuider:    uuider,
		publisher: pub,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")

	return s.publisher.CreateTopic(c, TopicName)
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		// Opens the connection to the session store before real traffic arrives
		_, _, err := s.store.Get(c, "warmup")
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		uid := s.uuider.Create()
		err = s.publisher.Publish(c, TopicName, WarmupKicked{UID: uid})
		if err != nil {
			s.logger.Log(c, uid, mylog.SeverityWarn, "Error publishing warmup event: %s", err)
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/insightsbackend/lib/myconfig"
	"github.com/MarcGrol/insightsbackend/lib/myevents"
	"github.com/MarcGrol/insightsbackend/lib/mypublisher"
	"github.com/MarcGrol/insightsbackend/lib/mypubsub"
	"github.com/MarcGrol/insightsbackend/lib/myqueue"
	"github.com/MarcGrol/insightsbackend/lib/mysession"
	"github.com/MarcGrol/insightsbackend/lib/mystore"
	"github.com/MarcGrol/insightsbackend/lib/mytime"
	"github.com/MarcGrol/insightsbackend/lib/myuuid"
	"github.com/MarcGrol/insightsbackend/services/insights"
	"github.com/MarcGrol/insightsbackend/services/oauth"
	"github.com/MarcGrol/insightsbackend/services/oauth/oautherrors"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient"
	"github.com/MarcGrol/insightsbackend/services/oauth/oauthclient/challenge"
	"github.com/MarcGrol/insightsbackend/services/oauth/providers"
	"github.com/MarcGrol/insightsbackend/services/warmup"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	provider, err := providers.Load()
	if err != nil {
		var configErr *oautherrors.ConfigurationError
		if errors.As(err, &configErr) {
			log.Fatalf("Login is not available, fix configuration of %s: %s", configErr.Field, configErr.Reason)
		}
		log.Fatalf("Error loading oauth provider: %s", err)
	}

	sessionConfig := mysession.Config{}
	err = myconfig.Load(&sessionConfig)
	if err != nil {
		log.Fatalf("Error loading session configuration: %s", err)
	}

	insightsConfig := insights.Config{}
	err = myconfig.Load(&insightsConfig)
	if err != nil {
		log.Fatalf("Error loading insights configuration: %s", err)
	}

	sessionStore, sessionStoreCleanup, err := mystore.New[mysession.StoredSession](c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionStoreCleanup()

	outboxStore, outboxStoreCleanup, err := mystore.New[myevents.EventEnvelope](c)
	if err != nil {
		log.Fatalf("Error creating outbox store: %s", err)
	}
	defer outboxStoreCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer queueCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher := mypublisher.New(outboxStore, pubsub, queue, mytime.RealNower{})
	publisher.RegisterEndpoints(c, router)

	sessions := mysession.NewManager(sessionStore, myuuid.RealUUIDer{}, mytime.RealNower{}, sessionConfig)

	oauthClient, err := oauthclient.NewOAuthClient(provider, challenge.NewRandomStringer())
	if err != nil {
		log.Fatalf("Error creating oauth client: %s", err)
	}

	oauthService := oauth.NewService(provider, oauthClient, challenge.NewRandomStringer(), sessions, mytime.RealNower{}, publisher)
	err = oauthService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering oauth service: %s", err)
	}

	insightsService := insights.NewService(insightsConfig, sessions, oauthService)
	insightsService.RegisterEndpoints(c, router)

	warmupService := warmup.NewService(sessionStore, myuuid.RealUUIDer{}, publisher)
	err = warmupService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering warmup service: %s", err)
	}

	startWebServerBlocking(router)
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}

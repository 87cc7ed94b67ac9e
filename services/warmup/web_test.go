package warmup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/insightsbackend/lib/mypublisher"
	"github.com/MarcGrol/insightsbackend/lib/mysession"
	"github.com/MarcGrol/insightsbackend/lib/mystore"
	"github.com/MarcGrol/insightsbackend/lib/myuuid"
)

func TestWarmup(t *testing.T) {
	t.Run("Warmup touches store and publishes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, uuider, publisher := setup(t, ctrl)

		// given
		uuider.EXPECT().Create().Return("abc")
		publisher.EXPECT().Publish(gomock.Any(), TopicName, WarmupKicked{UID: "abc"}).Return(nil)

		// when
		request, err := http.NewRequest(http.MethodGet, "/_ah/warmup", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully processed warmup request")
	})

	t.Run("Publish failure is not fatal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, uuider, publisher := setup(t, ctrl)

		// given
		uuider.EXPECT().Create().Return("abc")
		publisher.EXPECT().Publish(gomock.Any(), TopicName, gomock.Any()).Return(fmt.Errorf("pubsub down"))

		// when
		request, err := http.NewRequest(http.MethodGet, "/_ah/warmup", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (*mux.Router, *myuuid.MockUUIDer, *mypublisher.MockPublisher) {
	ctx := context.TODO()
	router := mux.NewRouter()
	store, _, err := mystore.NewInMemoryStore[mysession.StoredSession](ctx)
	assert.NoError(t, err)
	uuider := myuuid.NewMockUUIDer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	publisher.EXPECT().CreateTopic(gomock.Any(), TopicName).Return(nil)

	sut := NewService(store, uuider, publisher)
	err = sut.RegisterEndpoints(ctx, router)
	assert.NoError(t, err)

	return router, uuider, publisher
}

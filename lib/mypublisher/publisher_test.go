package mypublisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/insightsbackend/lib/myevents"
	"github.com/MarcGrol/insightsbackend/lib/mypubsub"
	"github.com/MarcGrol/insightsbackend/lib/myqueue"
	"github.com/MarcGrol/insightsbackend/lib/mystore"
	"github.com/MarcGrol/insightsbackend/lib/mytime"
)

type loginHappened struct {
	SessionUID string
}

func (e loginHappened) GetEventTypeName() string {
	return "test.loginHappened"
}

func (e loginHappened) GetAggregateName() string {
	return e.SessionUID
}

func TestPublisher(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	outbox, cleanup, err := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	assert.NoError(t, err)
	defer cleanup()

	pubsub := mypubsub.NewMockPubSub(ctrl)
	queue := myqueue.NewMockTaskQueuer(ctrl)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	sut := New(outbox, pubsub, queue, nower)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	var task myqueue.Task

	t.Run("publish stores envelope and enqueues trigger", func(t *testing.T) {
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, t myqueue.Task) error {
			task = t
			return nil
		})

		err := sut.Publish(c, "oauth", loginHappened{SessionUID: "abc"})
		assert.NoError(t, err)

		envelope, found, err := outbox.Get(c, task.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/pubsub/oauth/"+task.UID, task.WebhookURLPath)
		assert.Equal(t, "oauth", envelope.Topic)
		assert.Equal(t, "abc", envelope.AggregateUID)
		assert.Equal(t, "test.loginHappened", envelope.EventTypeName)
		assert.Equal(t, `{"SessionUID":"abc"}`, envelope.EventPayload)
		assert.Equal(t, mytime.ExampleTime, envelope.CreatedAt)
		assert.False(t, envelope.Published)
	})

	t.Run("retried publish of same occurrence gets same uid", func(t *testing.T) {
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, t myqueue.Task) error {
			assert.Equal(t, task.UID, t.UID)
			return nil
		})

		err := sut.Publish(c, "oauth", loginHappened{SessionUID: "abc"})
		assert.NoError(t, err)
	})

	t.Run("trigger publishes pending envelopes", func(t *testing.T) {
		pubsub.EXPECT().Publish(gomock.Any(), "oauth", gomock.Any()).Return(nil)

		request, _ := http.NewRequest(http.MethodPut, task.WebhookURLPath, nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully published 1 events")

		envelope, _, _ := outbox.Get(c, task.UID)
		assert.True(t, envelope.Published)
	})

	t.Run("second trigger publishes nothing", func(t *testing.T) {
		request, _ := http.NewRequest(http.MethodPut, task.WebhookURLPath, nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully published 0 events")
	})
}

func TestPublisherRepeatedEvent(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// setup
	outbox, cleanup, err := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	require.NoError(t, err)
	defer cleanup()

	queue := myqueue.NewMockTaskQueuer(ctrl)
	nower := mytime.NewMockNower(ctrl)
	sut := New(outbox, mypubsub.NewMockPubSub(ctrl), queue, nower)

	// given
	gomock.InOrder(
		nower.EXPECT().Now().Return(mytime.ExampleTime),
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(time.Hour)),
	)
	uids := []string{}
	queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, task myqueue.Task) error {
		uids = append(uids, task.UID)
		return nil
	}).Times(2)

	// when
	require.NoError(t, sut.Publish(c, "oauth", loginHappened{SessionUID: "abc"}))
	require.NoError(t, sut.Publish(c, "oauth", loginHappened{SessionUID: "abc"}))

	// then
	require.Len(t, uids, 2)
	assert.NotEqual(t, uids[0], uids[1])

	envelopes, err := outbox.List(c)
	require.NoError(t, err)
	assert.Len(t, envelopes, 2)
}

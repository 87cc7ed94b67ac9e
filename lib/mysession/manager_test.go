package mysession

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/insightsbackend/lib/mystore"
	"github.com/MarcGrol/insightsbackend/lib/mytime"
	"github.com/MarcGrol/insightsbackend/lib/myuuid"
)

func TestMemorySession(t *testing.T) {
	s := NewMemorySession("abc")
	assert.Equal(t, "abc", s.UID())

	_, found := s.Get("key")
	assert.False(t, found)

	s.Set("key", "value")
	value, found := s.Get("key")
	assert.True(t, found)
	assert.Equal(t, "value", value)

	s.Delete("key")
	_, found = s.Get("key")
	assert.False(t, found)

	s.Set("a", "1")
	s.Set("b", "2")
	s.ClearAll()
	_, found = s.Get("a")
	assert.False(t, found)
	_, found = s.Get("b")
	assert.False(t, found)
}

func TestManager(t *testing.T) {
	c := context.TODO()

	t.Run("New session sets cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sut, _, nower, uuider := setup(t, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("session-1")

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		response := httptest.NewRecorder()

		s, err := sut.Load(c, response, request)
		require.NoError(t, err)
		assert.Equal(t, "session-1", s.UID())

		cookies := response.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "test_session", cookies[0].Name)
		assert.Equal(t, "session-1", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	})

	t.Run("Saved session is loaded by cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sut, store, nower, uuider := setup(t, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		uuider.EXPECT().Create().Return("session-1")

		s, err := sut.Load(c, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		s.Set("state", "xyz")

		err = sut.Save(c, s)
		require.NoError(t, err)

		stored, exists, err := store.Get(c, "session-1")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, []Value{{Key: "state", Data: "xyz"}}, stored.Values)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: "test_session", Value: "session-1"})
		response := httptest.NewRecorder()

		loaded, err := sut.Load(c, response, request)
		require.NoError(t, err)
		assert.Equal(t, "session-1", loaded.UID())
		value, found := loaded.Get("state")
		assert.True(t, found)
		assert.Equal(t, "xyz", value)
		require.Len(t, response.Result().Cookies(), 1)
		assert.Equal(t, "session-1", response.Result().Cookies()[0].Value)
		assert.Equal(t, 3600, response.Result().Cookies()[0].MaxAge)
	})

	t.Run("Active session does not expire", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut, store, nower, _ := setup(t, ctrl)

		// given
		err := store.Put(c, "session-1", StoredSession{
			UID:          "session-1",
			Values:       []Value{{Key: "credentials", Data: "{}"}},
			CreatedAt:    mytime.ExampleTime,
			LastModified: mytime.ExampleTime,
		})
		require.NoError(t, err)

		visit := func(at time.Time) (Session, *httptest.ResponseRecorder) {
			nower.EXPECT().Now().Return(at).Times(2)

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.AddCookie(&http.Cookie{Name: "test_session", Value: "session-1"})
			response := httptest.NewRecorder()

			s, err := sut.Load(c, response, request)
			require.NoError(t, err)
			require.NoError(t, sut.Save(c, s))
			return s, response
		}

		// when
		visit(mytime.ExampleTime.Add(50 * time.Minute))
		s, response := visit(mytime.ExampleTime.Add(100 * time.Minute))

		// then
		assert.Equal(t, "session-1", s.UID())
		_, found := s.Get("credentials")
		assert.True(t, found)
		require.Len(t, response.Result().Cookies(), 1)
		assert.Equal(t, 3600, response.Result().Cookies()[0].MaxAge)

		stored, exists, err := store.Get(c, "session-1")
		require.NoError(t, err)
		require.True(t, exists)
		assert.Equal(t, mytime.ExampleTime.Add(100*time.Minute), stored.LastModified)
		assert.Equal(t, mytime.ExampleTime, stored.CreatedAt)
	})

	t.Run("Unmodified session is not stored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sut, store, nower, uuider := setup(t, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("session-1")

		s, err := sut.Load(c, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		err = sut.Save(c, s)
		require.NoError(t, err)

		_, exists, err := store.Get(c, "session-1")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Expired session is replaced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sut, store, nower, uuider := setup(t, ctrl)
		err := store.Put(c, "old", StoredSession{
			UID:          "old",
			Values:       []Value{{Key: "credentials", Data: "{}"}},
			CreatedAt:    mytime.ExampleTime,
			LastModified: mytime.ExampleTime,
		})
		require.NoError(t, err)

		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(2 * time.Hour))
		uuider.EXPECT().Create().Return("new")

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: "test_session", Value: "old"})

		s, err := sut.Load(c, httptest.NewRecorder(), request)
		require.NoError(t, err)
		assert.Equal(t, "new", s.UID())
		_, found := s.Get("credentials")
		assert.False(t, found)

		_, exists, err := store.Get(c, "old")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Cleared session is deleted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sut, store, nower, _ := setup(t, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		err := store.Put(c, "session-1", StoredSession{
			UID:          "session-1",
			Values:       []Value{{Key: "credentials", Data: "{}"}},
			LastModified: mytime.ExampleTime,
		})
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: "test_session", Value: "session-1"})

		s, err := sut.Load(c, httptest.NewRecorder(), request)
		require.NoError(t, err)
		s.ClearAll()

		err = sut.Save(c, s)
		require.NoError(t, err)

		_, exists, err := store.Get(c, "session-1")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (*Manager, mystore.Store[StoredSession], *mytime.MockNower, *myuuid.MockUUIDer) {
	store, _, err := mystore.NewInMemoryStore[StoredSession](context.TODO())
	require.NoError(t, err)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)

	sut := NewManager(store, uuider, nower, Config{
		CookieName: "test_session",
		MaxAge:     time.Hour,
	})

	return sut, store, nower, uuider
}

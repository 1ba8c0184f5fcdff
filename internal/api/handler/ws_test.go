package handler_test

import (
	"civicdesk/backend/internal/models"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func feedURL(serverURL, token string) string {
	u := "ws" + strings.TrimPrefix(serverURL, "http") + "/api/complaints/feed"
	if token != "" {
		u += "?access_token=" + url.QueryEscape(token)
	}
	return u
}

func TestFeed_DeliversEventsToStaff(t *testing.T) {
	env := newEnv(t)
	_, adminToken := env.user(t, "admin@example.com", "admin")
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial(feedURL(srv.URL, adminToken), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return env.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	body := validComplaint()
	body["email"] = "visitor@example.com"
	w := env.do(t, http.MethodPost, "/api/complaints", body, "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Complaint](t, w)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt models.ComplaintEvent
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, models.EventComplaintCreated, evt.Type)
	assert.Equal(t, created.ID, evt.ComplaintID)
	assert.Equal(t, "pending", evt.Status)
}

func TestFeed_RequiresToken(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial(feedURL(srv.URL, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFeed_RejectsForeignOrigin(t *testing.T) {
	env := newEnv(t)
	_, token := env.user(t, "jane@example.com", "citizen")
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(feedURL(srv.URL, token), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

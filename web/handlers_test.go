/* handlers_test.go
 * Contains unit tests for handlers.go
 */

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/homebackend/gnome-live-tennis-sub000/api/api"
	"github.com/homebackend/gnome-live-tennis-sub000/api/liveview"
	"github.com/homebackend/gnome-live-tennis-sub000/api/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *api.MockEngine) {
	t.Helper()
	a, engine, _ := api.NewMockAPI(nil, api.SampleEvents()...)
	require.True(t, a.Refresh(context.Background()).OK)
	return NewServer(Config{API: a, Log: logger.Discard()}), engine
}

func serve(s *Server, method string, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	return w
}

// region Method tests

func TestHandlers_WrongMethod(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/status"},
		{http.MethodPost, "/matches"},
		{http.MethodGet, "/refresh"},
		{http.MethodGet, "/matches/toggle?q=sinner"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(s, tt.method, tt.target)
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		})
	}
}

// endregion

// region Status tests

func TestStatusHandler(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/status")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var status liveview.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.OK)
	assert.Equal(t, 3, status.Matches)
	assert.Equal(t, "updated", status.Sources["ATP"])
	assert.False(t, status.LastRefresh.IsZero())
}

func TestMatchesHandler(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/matches")

	require.Equal(t, http.StatusOK, w.Code)
	var matches []api.MatchInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches, 3)
	assert.Equal(t, "311-MS001", matches[0].ID)
}

// endregion

// region Refresh tests

func TestRefreshHandler(t *testing.T) {
	s, engine := newTestServer(t)

	w := serve(s, http.MethodPost, "/refresh")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, engine.QueryCount())
	var status liveview.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.OK)
}

// endregion

// region Toggle tests

func TestToggleHandler(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodPost, "/matches/toggle?q=sinner")
	require.Equal(t, http.StatusOK, w.Code)
	var body toggleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, toggleResponse{ID: "540-MS001", Name: "Sinner vs Alcaraz", Selected: true}, body)

	w = serve(s, http.MethodPost, "/matches/toggle?q=540-MS001")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Selected)
}

func TestToggleHandler_Errors(t *testing.T) {
	events := api.SampleEvents()
	events[1].Matches[0].DisplayName = "Sinner vs Alcaraz"
	a, _, _ := api.NewMockAPI(nil, events...)
	require.True(t, a.Refresh(context.Background()).OK)
	s := NewServer(Config{API: a, Log: logger.Discard()})

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{name: "missing query", target: "/matches/toggle", want: http.StatusBadRequest},
		{name: "blank query", target: "/matches/toggle?q=%20", want: http.StatusBadRequest},
		{name: "no match", target: "/matches/toggle?q=federer", want: http.StatusNotFound},
		{name: "ambiguous", target: "/matches/toggle?q=sinner%20vs%20alcaraz", want: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, http.MethodPost, tt.target)
			assert.Equal(t, tt.want, w.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

// endregion

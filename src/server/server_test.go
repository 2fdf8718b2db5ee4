package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/core/pipeline"
	"github.com/cnaize/blgen/src/types"
)

type fakeUpdater struct {
	list  *types.BlackList
	set   types.PrefixSet
	calls int
}

func (u *fakeUpdater) Update(ctx context.Context) (pipeline.Result, error) {
	u.calls++
	u.list.Store(u.set)

	return pipeline.Result{Set: u.set}, nil
}

func newTestServer(username, password string) (*Server, *fakeUpdater) {
	list := types.NewBlackList()
	list.Store(types.ParsePrefixSet("10.0.0.0/24", "192.168.1.5/32"))
	updater := &fakeUpdater{list: list, set: types.ParsePrefixSet("172.16.0.0/12")}

	return NewServer(":0", username, password, list, updater, output.Options{Mode: output.ModeRaw, SetName: "drop"}), updater
}

func do(s *Server, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(method, target, nil))

	return w
}

func TestBlacklistGet(t *testing.T) {
	s, _ := newTestServer("", "")

	w := do(s, http.MethodGet, "/v1/blacklist")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "10.0.0.0/24\n192.168.1.5\n", w.Body.String())

	w = do(s, http.MethodGet, "/v1/blacklist?format=ipset")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "add drop-tmp 10.0.0.0/24\n")

	w = do(s, http.MethodGet, "/v1/blacklist?format=xml")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlacklistLookup(t *testing.T) {
	s, _ := newTestServer("", "")

	var out struct {
		Found  bool   `json:"found"`
		Prefix string `json:"prefix"`
	}

	w := do(s, http.MethodGet, "/v1/lookup/10.0.0.77")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.True(t, out.Found)
	require.Equal(t, "10.0.0.0/24", out.Prefix)

	out.Found, out.Prefix = false, ""
	w = do(s, http.MethodGet, "/v1/lookup/10.0.1.1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.False(t, out.Found)

	w = do(s, http.MethodGet, "/v1/lookup/::1")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlacklistRefresh(t *testing.T) {
	s, updater := newTestServer("", "")

	w := do(s, http.MethodPost, "/v1/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, updater.calls)

	w = do(s, http.MethodGet, "/v1/blacklist")
	require.Equal(t, "172.16.0.0/12\n", w.Body.String())
}

func TestStatusAndMetrics(t *testing.T) {
	s, _ := newTestServer("", "")

	var out struct {
		Prefixes  int    `json:"prefixes"`
		Addresses uint64 `json:"addresses"`
	}
	w := do(s, http.MethodGet, "/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, 2, out.Prefixes)
	require.Equal(t, uint64(257), out.Addresses)

	w = do(s, http.MethodGet, "/v1/metrics")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBasicAuth(t *testing.T) {
	s, _ := newTestServer("admin", "secret")

	w := do(s, http.MethodGet, "/v1/blacklist")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/blacklist", nil)
	req.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

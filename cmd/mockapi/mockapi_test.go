package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimran/netdata/modules/ipam"
	"github.com/moimran/netdata/pkg/crud"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	router := mux.NewRouter()
	NewServer(store, ipam.BuildRegistry(), logrus.New()).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, crud.Record) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var rec crud.Record
	_ = json.NewDecoder(resp.Body).Decode(&rec)
	return resp, rec
}

func TestContractRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	// Create.
	resp, created := doJSON(t, http.MethodPost, srv.URL+"/tenants",
		crud.Record{"name": "Acme", "slug": "acme"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := created.ID()
	require.True(t, ok)
	assert.NotEmpty(t, crud.AsString(created["created_at"]))

	// List.
	resp, listing := doJSON(t, http.MethodGet, srv.URL+"/tenants?skip=0&limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := listing["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
	total, _ := crud.AsInt64(listing["total"])
	assert.Equal(t, int64(1), total)

	// Update.
	resp, updated := doJSON(t, http.MethodPut, srv.URL+"/tenants/1",
		crud.Record{"name": "Acme Corp", "slug": "acme"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme Corp", crud.AsString(updated["name"]))
	assert.NotEmpty(t, crud.AsString(updated["updated_at"]))

	// Get.
	resp, fetched := doJSON(t, http.MethodGet, srv.URL+"/tenants/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme Corp", crud.AsString(fetched["name"]))

	// Delete.
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/tenants/1", nil)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/tenants/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = id
}

func TestValidationErrorShape(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/tenants", crud.Record{"name": "Acme"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	details, ok := body["detail"].([]any)
	require.True(t, ok)
	require.Len(t, details, 1)
	item := details[0].(map[string]any)
	loc := item["loc"].([]any)
	assert.Equal(t, "body", loc[0])
	assert.Equal(t, "slug", loc[1])
	assert.Contains(t, item["msg"], "required")
}

func TestUnknownEntity(t *testing.T) {
	srv := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/widgets", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, crud.AsString(body["detail"]), "widgets")
}

func TestSearchAndFilter(t *testing.T) {
	srv := newTestServer(t)

	for _, name := range []string{"prod", "staging"} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/vrfs", crud.Record{"name": name})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, listing := doJSON(t, http.MethodGet, srv.URL+"/vrfs?search=prod", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := listing["items"].([]any)
	require.Len(t, items, 1)

	resp, listing = doJSON(t, http.MethodGet, srv.URL+"/vrfs?name=staging", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items = listing["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "staging", crud.AsString(items[0].(map[string]any)["name"]))
}

func TestReferentialDeleteProtection(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/rirs", crud.Record{"name": "ARIN", "slug": "arin"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/aggregates",
		crud.Record{"prefix": "10.0.0.0/8", "rir_id": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/rirs/1", nil)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusConflict, delResp.StatusCode)
}

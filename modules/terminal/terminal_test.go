package terminal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimran/netdata/modules/ipam"
	"github.com/moimran/netdata/modules/terminal"
	"github.com/moimran/netdata/pkg/constants"
	"github.com/moimran/netdata/pkg/crud"
)

func TestSessionRegistry_IssueAndClaim(t *testing.T) {
	r := terminal.NewSessionRegistry(time.Minute)
	id := r.Issue(terminal.Session{DeviceID: 3, Host: "10.0.0.1", Port: 22})
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.Len())

	sess, err := r.Claim(id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sess.DeviceID)
	assert.Equal(t, id, sess.ID)
	assert.Zero(t, r.Len())

	_, err = r.Claim(id)
	assert.ErrorIs(t, err, terminal.ErrSessionNotFound, "session ids are single use")
}

func TestSessionRegistry_Expiry(t *testing.T) {
	r := terminal.NewSessionRegistry(time.Millisecond)
	id := r.Issue(terminal.Session{DeviceID: 1})
	time.Sleep(5 * time.Millisecond)
	_, err := r.Claim(id)
	assert.ErrorIs(t, err, terminal.ErrSessionNotFound)
}

func TestParseControlMessage(t *testing.T) {
	msg, err := terminal.ParseControlMessage([]byte(`{"type":"resize","cols":120,"rows":40}`))
	require.NoError(t, err)
	assert.Equal(t, 120, msg.Cols)
	assert.Equal(t, 40, msg.Rows)

	_, err = terminal.ParseControlMessage([]byte(`{"type":"ping"}`))
	assert.NoError(t, err)

	for _, raw := range []string{
		`{"type":"resize","cols":0,"rows":40}`,
		`{"type":"detonate"}`,
		`not json`,
	} {
		_, err := terminal.ParseControlMessage([]byte(raw))
		assert.Error(t, err, raw)
	}
}

// fakeDeviceAPI resolves one device and one credential.
type fakeDeviceAPI struct {
	device     crud.Record
	credential crud.Record
}

func (f *fakeDeviceAPI) Get(_ context.Context, t crud.EntityType, id int64) (crud.Record, error) {
	if t == ipam.Devices && f.device != nil {
		if devID, _ := f.device.ID(); devID == id {
			return f.device, nil
		}
	}
	return nil, terminal.ErrSessionNotFound
}

func (f *fakeDeviceAPI) List(_ context.Context, t crud.EntityType, p crud.ListParams) ([]crud.Record, int64, error) {
	if t == ipam.Credentials && f.credential != nil && p.Filter != nil &&
		p.Filter.Value == crud.AsString(f.credential["name"]) {
		return []crud.Record{f.credential}, 1, nil
	}
	return nil, 0, nil
}

func newTerminalRouter(api terminal.DeviceAPI) *mux.Router {
	c := terminal.NewController(terminal.ControllerOptions{
		API:      api,
		Registry: terminal.NewSessionRegistry(time.Minute),
		Bridge:   terminal.NewBridge(terminal.BridgeConfig{}, logrus.NewEntry(logrus.New())),
		SSHPort:  22,
	})
	r := mux.NewRouter()
	// Handlers pull the request logger from context.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), constants.LoggerKey, logrus.NewEntry(logrus.New()))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	c.Register(r)
	return r
}

func TestController_CreateSession(t *testing.T) {
	api := &fakeDeviceAPI{
		device: crud.Record{
			"id": float64(7), "name": "edge-1",
			"mgmt_ip": "10.0.0.1", "credential_name": "lab-admin",
		},
		credential: crud.Record{
			"id": float64(1), "name": "lab-admin",
			"username": "admin", "password": "hunter2",
		},
	}
	router := newTerminalRouter(api)

	body, _ := json.Marshal(map[string]any{"device_id": 7})
	req := httptest.NewRequest(http.MethodPost, "/terminal/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		SessionID  string `json:"session_id"`
		DeviceName string `json:"device_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "edge-1", resp.DeviceName)
}

func TestController_CreateSessionRejections(t *testing.T) {
	t.Run("unknown device", func(t *testing.T) {
		router := newTerminalRouter(&fakeDeviceAPI{})
		body, _ := json.Marshal(map[string]any{"device_id": 9})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/terminal/sessions", bytes.NewReader(body)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("device without management IP", func(t *testing.T) {
		router := newTerminalRouter(&fakeDeviceAPI{
			device: crud.Record{"id": float64(7), "name": "edge-1", "credential_name": "lab-admin"},
		})
		body, _ := json.Marshal(map[string]any{"device_id": 7})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/terminal/sessions", bytes.NewReader(body)))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing device_id", func(t *testing.T) {
		router := newTerminalRouter(&fakeDeviceAPI{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/terminal/sessions", bytes.NewReader([]byte(`{}`))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestController_ConnectUnknownSession(t *testing.T) {
	router := newTerminalRouter(&fakeDeviceAPI{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/terminal/ws/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package terminal

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/moimran/netdata/modules/ipam"
	"github.com/moimran/netdata/pkg/composables"
	"github.com/moimran/netdata/pkg/crud"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin only; localhost is allowed for development proxies.
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if strings.Contains(origin, "://localhost:") || strings.Contains(origin, "://127.0.0.1:") {
			return true
		}
		return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host
	},
}

// DeviceAPI resolves devices and their credentials from the IPAM API.
type DeviceAPI interface {
	Get(ctx context.Context, t crud.EntityType, id int64) (crud.Record, error)
	List(ctx context.Context, t crud.EntityType, p crud.ListParams) ([]crud.Record, int64, error)
}

// Controller issues terminal sessions for devices and upgrades them to
// websocket relays.
type Controller struct {
	api      DeviceAPI
	registry *SessionRegistry
	bridge   *Bridge
	sshPort  int
}

type ControllerOptions struct {
	API      DeviceAPI
	Registry *SessionRegistry
	Bridge   *Bridge
	// SSHPort is the port devices listen on; the device record carries no
	// port of its own.
	SSHPort int
}

func NewController(opts ControllerOptions) *Controller {
	port := opts.SSHPort
	if port == 0 {
		port = 22
	}
	return &Controller{
		api:      opts.API,
		registry: opts.Registry,
		bridge:   opts.Bridge,
		sshPort:  port,
	}
}

func (c *Controller) Key() string {
	return "/terminal"
}

func (c *Controller) Register(r *mux.Router) {
	router := r.PathPrefix("/terminal").Subrouter()
	router.HandleFunc("/sessions", c.CreateSession).Methods(http.MethodPost)
	router.HandleFunc("/ws/{id}", c.Connect).Methods(http.MethodGet)
}

type createSessionRequest struct {
	DeviceID int64 `json:"device_id"`
}

type createSessionResponse struct {
	SessionID  string `json:"session_id"`
	DeviceName string `json:"device_name"`
}

// CreateSession resolves the device's management address and credential and
// issues a one-shot session id for the websocket handshake.
func (c *Controller) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx)

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == 0 {
		writeJSONError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	device, err := c.api.Get(ctx, ipam.Devices, req.DeviceID)
	if err != nil {
		logger.WithError(err).Warnf("device %d not found", req.DeviceID)
		writeJSONError(w, http.StatusNotFound, "device not found")
		return
	}

	host := crud.AsString(device["mgmt_ip"])
	if host == "" {
		writeJSONError(w, http.StatusConflict, "device has no management IP")
		return
	}

	cred, err := c.lookupCredential(ctx, crud.AsString(device["credential_name"]))
	if err != nil {
		logger.WithError(err).Warnf("credential lookup for device %d", req.DeviceID)
		writeJSONError(w, http.StatusConflict, "device has no usable credential")
		return
	}

	id := c.registry.Issue(Session{
		DeviceID:   req.DeviceID,
		DeviceName: crud.AsString(device["name"]),
		Host:       host,
		Port:       c.sshPort,
		Username:   crud.AsString(cred["username"]),
		Password:   crud.AsString(cred["password"]),
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(createSessionResponse{
		SessionID:  id,
		DeviceName: crud.AsString(device["name"]),
	})
}

func (c *Controller) lookupCredential(ctx context.Context, name string) (crud.Record, error) {
	if name == "" {
		return nil, ErrSessionNotFound
	}
	records, _, err := c.api.List(ctx, ipam.Credentials, crud.ListParams{
		Filter: &crud.FieldFilter{Field: "name", Value: name},
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrSessionNotFound
	}
	return records[0], nil
}

// Connect claims the session id and upgrades to the relay. The id is
// single-use; a second connect with the same id is rejected.
func (c *Controller) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx)

	sess, err := c.registry.Claim(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer ws.Close()

	logger = logger.WithField("device", sess.DeviceName)
	logger.Info("terminal session opened")
	if err := c.bridge.Run(ws, sess); err != nil {
		logger.WithError(err).Warn("terminal session failed")
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "connection failed"),
			time.Now().Add(time.Second))
		return
	}
	logger.Info("terminal session closed")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

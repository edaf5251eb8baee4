package terminal

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moimran/netdata/pkg/application"
)

type ModuleOptions struct {
	API         DeviceAPI
	SSHPort     int
	DialTimeout time.Duration
	IdleTimeout time.Duration
}

type Module struct {
	opts ModuleOptions
}

func NewModule(opts ModuleOptions) *Module {
	return &Module{opts: opts}
}

func (m *Module) Register(app application.Application) error {
	bridge := NewBridge(BridgeConfig{
		DialTimeout: m.opts.DialTimeout,
		IdleTimeout: m.opts.IdleTimeout,
	}, logrus.NewEntry(app.Logger()).WithField("component", "terminal"))

	app.RegisterControllers(NewController(ControllerOptions{
		API:      m.opts.API,
		Registry: NewSessionRegistry(30 * time.Second),
		Bridge:   bridge,
		SSHPort:  m.opts.SSHPort,
	}))
	return nil
}

func (m *Module) Name() string {
	return "terminal"
}

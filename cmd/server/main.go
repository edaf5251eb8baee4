package main

import (
	"log"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/moimran/netdata/modules/ipam"
	"github.com/moimran/netdata/modules/terminal"
	"github.com/moimran/netdata/pkg/application"
	"github.com/moimran/netdata/pkg/configuration"
	"github.com/moimran/netdata/pkg/eventbus"
	"github.com/moimran/netdata/pkg/ipamapi"
	"github.com/moimran/netdata/pkg/metrics"
	"github.com/moimran/netdata/pkg/middleware"
	"github.com/moimran/netdata/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	client := ipamapi.New(conf.API.BaseURL,
		ipamapi.WithLogger(logger),
		ipamapi.WithHTTPClient(&http.Client{Timeout: conf.API.Timeout}),
	)

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterMiddleware(
		middleware.Recovery(logger),
		middleware.RequestParams(logger),
		middleware.LogRequests(),
	)

	if err := ipam.NewModule(client).Register(app); err != nil {
		log.Fatalf("failed to load ipam module: %v", err)
	}
	if conf.Terminal.Enabled {
		terminalModule := terminal.NewModule(terminal.ModuleOptions{
			API:         client,
			SSHPort:     conf.Terminal.SSHPort,
			DialTimeout: conf.Terminal.DialTimeout,
			IdleTimeout: conf.Terminal.IdleTimeout,
		})
		if err := terminalModule.Register(app); err != nil {
			log.Fatalf("failed to load terminal module: %v", err)
		}
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}
	app.RegisterControllers(newRootController())

	srv := server.NewHTTPServer(app, http.NotFoundHandler(), notAllowedHandler())
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := srv.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func notAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
}

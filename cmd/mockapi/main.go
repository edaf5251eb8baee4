// Command mockapi is a development stand-in for the IPAM REST API. It
// serves the same wire contract over a local sqlite file so the admin UI
// runs without the real backend.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/moimran/netdata/modules/ipam"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	dbPath := flag.String("db", "mockapi.sqlite", "sqlite database path")
	flag.Parse()

	logger := logrus.New()

	store, err := OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	NewServer(store, ipam.BuildRegistry(), logger).Register(api)

	// The UI is served from another origin during development.
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	logger.Infof("mock IPAM API listening on %s (db %s)", *addr, *dbPath)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/moimran/netdata/modules/ipam"
)

// rootController sends the bare origin to the first listing.
type rootController struct{}

func newRootController() *rootController {
	return &rootController{}
}

func (c *rootController) Key() string {
	return "/"
}

func (c *rootController) Register(r *mux.Router) {
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, ipam.BasePath+"/"+string(ipam.Regions), http.StatusSeeOther)
	}).Methods(http.MethodGet)
}

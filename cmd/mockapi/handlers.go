package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/moimran/netdata/pkg/crud"
)

// Server speaks the IPAM API's wire contract: paged `{items, total}`
// listings and `{detail: ...}` errors in both the string and the located
// list shape.
type Server struct {
	store    *Store
	registry *crud.Registry
	logger   *logrus.Logger
}

func NewServer(store *Store, registry *crud.Registry, logger *logrus.Logger) *Server {
	return &Server{store: store, registry: registry, logger: logger}
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/{entity}", s.List).Methods(http.MethodGet)
	r.HandleFunc("/{entity}", s.Create).Methods(http.MethodPost)
	r.HandleFunc("/{entity}/{id:[0-9]+}", s.Get).Methods(http.MethodGet)
	r.HandleFunc("/{entity}/{id:[0-9]+}", s.Update).Methods(http.MethodPut)
	r.HandleFunc("/{entity}/{id:[0-9]+}", s.Delete).Methods(http.MethodDelete)
}

func (s *Server) schema(w http.ResponseWriter, r *http.Request) (crud.Schema, bool) {
	entity := mux.Vars(r)["entity"]
	schema, err := s.registry.Schema(crud.EntityType(entity))
	if err != nil {
		s.writeDetail(w, http.StatusNotFound, "Unknown entity type "+entity)
		return crud.Schema{}, false
	}
	return schema, true
}

func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schema(w, r)
	if !ok {
		return
	}

	query := ListQuery{Search: r.URL.Query().Get("search")}
	query.Skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	query.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	for _, f := range schema.Fields {
		if f.Name == "id" {
			continue
		}
		if v := r.URL.Query().Get(f.Name); v != "" {
			query.FilterField, query.FilterValue = f.Name, v
			break
		}
	}

	records, total, err := s.store.List(r.Context(), string(schema.Type), query)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if records == nil {
		records = []crud.Record{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": records, "total": total})
}

func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schema(w, r)
	if !ok {
		return
	}
	rec, err := s.store.Get(r.Context(), string(schema.Type), pathID(r))
	if err == errNotFound {
		s.writeDetail(w, http.StatusNotFound, crud.SingularLabel(schema.Type)+" not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) Create(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schema(w, r)
	if !ok {
		return
	}
	rec, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	if details := validate(schema, rec); len(details) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": details})
		return
	}
	delete(rec, "id")
	saved, err := s.store.Insert(r.Context(), string(schema.Type), rec)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) Update(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schema(w, r)
	if !ok {
		return
	}
	rec, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	if details := validate(schema, rec); len(details) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": details})
		return
	}
	saved, err := s.store.Update(r.Context(), string(schema.Type), pathID(r), rec)
	if err == errNotFound {
		s.writeDetail(w, http.StatusNotFound, crud.SingularLabel(schema.Type)+" not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schema(w, r)
	if !ok {
		return
	}
	id := pathID(r)
	if ref := s.referencedBy(r, schema.Type, id); ref != "" {
		s.writeDetail(w, http.StatusConflict,
			crud.SingularLabel(schema.Type)+" is still referenced by "+ref)
		return
	}
	err := s.store.Delete(r.Context(), string(schema.Type), id)
	if err == errNotFound {
		s.writeDetail(w, http.StatusNotFound, crud.SingularLabel(schema.Type)+" not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// referencedBy scans other entities for foreign keys pointing at the
// record, mirroring the real API's referential delete protection.
func (s *Server) referencedBy(r *http.Request, t crud.EntityType, id int64) string {
	for _, other := range s.registry.Types() {
		schema, err := s.registry.Schema(other)
		if err != nil {
			continue
		}
		for _, f := range schema.Fields {
			if f.Type != crud.ForeignKeyFieldType || f.Reference != t {
				continue
			}
			records, _, err := s.store.List(r.Context(), string(other), ListQuery{
				FilterField: f.Name,
				FilterValue: strconv.FormatInt(id, 10),
				Limit:       1,
			})
			if err == nil && len(records) > 0 {
				return string(other)
			}
		}
	}
	return ""
}

// validate enforces required fields with the same located-detail shape the
// real API emits.
func validate(schema crud.Schema, rec crud.Record) []map[string]any {
	var details []map[string]any
	for _, f := range schema.Fields {
		if !f.Required || f.Name == "id" {
			continue
		}
		if crud.IsEmpty(f, rec[f.Name]) {
			details = append(details, map[string]any{
				"loc": []any{"body", f.Name},
				"msg": f.DisplayLabel() + " is required",
			})
		}
	}
	return details
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (crud.Record, bool) {
	var rec crud.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "Malformed JSON body")
		return nil, false
	}
	return rec, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("encoding response")
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"detail": msg})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.WithError(err).Error("store failure")
	s.writeDetail(w, http.StatusInternalServerError, "Internal error")
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

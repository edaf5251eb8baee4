package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/moimran/netdata/modules/ipam/presentation/components"
	"github.com/moimran/netdata/pkg/composables"
	"github.com/moimran/netdata/pkg/crud"
	"github.com/moimran/netdata/pkg/eventbus"
	"github.com/moimran/netdata/pkg/htmx"
	"github.com/moimran/netdata/pkg/ipamapi"
)

// EntityChangedEvent is published after every successful create, update or
// delete so listeners can invalidate per-type caches.
type EntityChangedEvent struct {
	Type crud.EntityType
}

// API is the slice of the IPAM client the controller consumes.
type API interface {
	crud.Persister
	crud.Lister
	crud.ReferenceFetcher
	Get(ctx context.Context, t crud.EntityType, id int64) (crud.Record, error)
	Delete(ctx context.Context, t crud.EntityType, id int64) error
}

// EntityController serves the admin CRUD surface of one entity type.
type EntityController struct {
	basePath   string
	schema     crud.Schema
	registry   *crud.Registry
	api        API
	refs       *crud.ReferenceCache
	renderer   *crud.Renderer
	theme      components.Theme
	nav        []components.NavItem
	publisher  eventbus.EventBus
	defaults   crud.Record
	validators []crud.CrossFieldValidator
}

type EntityControllerOptions struct {
	BasePath  string
	Schema    crud.Schema
	Registry  *crud.Registry
	API       API
	Refs      *crud.ReferenceCache
	Renderer  *crud.Renderer
	Theme     components.Theme
	Nav       []components.NavItem
	Publisher eventbus.EventBus
	// Defaults seed new drafts; Validators add entity-specific checks.
	Defaults   crud.Record
	Validators []crud.CrossFieldValidator
}

func NewEntityController(opts EntityControllerOptions) *EntityController {
	return &EntityController{
		basePath:   opts.BasePath + "/" + string(opts.Schema.Type),
		schema:     opts.Schema,
		registry:   opts.Registry,
		api:        opts.API,
		refs:       opts.Refs,
		renderer:   opts.Renderer,
		theme:      opts.Theme,
		nav:        opts.Nav,
		publisher:  opts.Publisher,
		defaults:   opts.Defaults,
		validators: opts.Validators,
	}
}

func (c *EntityController) Key() string {
	return c.basePath
}

func (c *EntityController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/new", c.GetNew).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/edit", c.GetEdit).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

func (c *EntityController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx)

	params := c.listParams(r)
	records, total, err := c.api.List(ctx, c.schema.Type, params)
	if err != nil {
		logger.WithError(err).Errorf("listing %s", c.schema.Type)
		c.renderError(w, r, "The listing could not be loaded. Try again.")
		return
	}

	// Reference columns resolve ids to labels; missing types degrade to
	// raw ids, never to an error.
	if failures := c.refs.Load(ctx, c.registry.References(c.schema.Type)...); len(failures) > 0 {
		for t, lerr := range failures {
			logger.WithError(lerr).Warnf("labels for %s unavailable", t)
		}
	}

	table := crud.BuildTable(c.schema, records, c.refs, params, total)
	content := components.EntityTable(c.theme, table, c.basePath)
	c.render(w, r, crud.Humanize(string(c.schema.Type)), content)
}

type listQuery struct {
	Search string `form:"search"`
}

func (c *EntityController) listParams(r *http.Request) crud.ListParams {
	pagination := composables.UsePaginated(r)
	query, err := composables.UseQuery(&listQuery{}, r)
	if err != nil {
		query = &listQuery{}
	}
	params := crud.ListParams{
		Search: query.Search,
		Offset: pagination.Offset,
		Limit:  pagination.Limit,
	}
	// Any schema field present in the query becomes the equality filter;
	// the first match wins.
	for _, f := range c.schema.Fields {
		if f.Name == "id" {
			continue
		}
		if v := r.URL.Query().Get(f.Name); v != "" {
			params.Filter = &crud.FieldFilter{Field: f.Name, Value: v}
			break
		}
	}
	return params
}

func (c *EntityController) GetNew(w http.ResponseWriter, r *http.Request) {
	form := c.newForm()
	if err := form.Begin(nil); err != nil {
		c.renderError(w, r, err.Error())
		return
	}
	defer form.Close()
	c.renderForm(w, r, form, http.StatusOK)
}

func (c *EntityController) GetEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx)

	id, err := c.pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	existing, err := c.api.Get(ctx, c.schema.Type, id)
	if err != nil {
		logger.WithError(err).Errorf("loading %s/%d", c.schema.Type, id)
		http.NotFound(w, r)
		return
	}

	form := c.newForm()
	if err := form.Begin(existing); err != nil {
		c.renderError(w, r, err.Error())
		return
	}
	defer form.Close()
	c.renderForm(w, r, form, http.StatusOK)
}

func (c *EntityController) Create(w http.ResponseWriter, r *http.Request) {
	c.submit(w, r, nil)
}

func (c *EntityController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	existing, err := c.api.Get(r.Context(), c.schema.Type, id)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Errorf("loading %s/%d", c.schema.Type, id)
		http.NotFound(w, r)
		return
	}
	c.submit(w, r, existing)
}

// submit runs the shared create/update path: seed the form, apply the
// posted values, submit, and either redirect (success) or re-render the
// form with its errors (rejection).
func (c *EntityController) submit(w http.ResponseWriter, r *http.Request, existing crud.Record) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx)

	if err := r.ParseForm(); err != nil {
		c.renderError(w, r, "The submitted form could not be read.")
		return
	}

	form := c.newForm()
	if err := form.Begin(existing); err != nil {
		c.renderError(w, r, err.Error())
		return
	}
	defer form.Close()

	if err := form.ApplyForm(r.PostForm); err != nil {
		c.renderError(w, r, err.Error())
		return
	}

	if _, err := form.Submit(ctx); err != nil {
		logger.WithError(err).Infof("submit %s rejected", c.schema.Type)
		c.renderForm(w, r, form, http.StatusUnprocessableEntity)
		return
	}

	if htmx.IsHxRequest(r) {
		htmx.Redirect(w, c.basePath)
		return
	}
	http.Redirect(w, r, c.basePath, http.StatusSeeOther)
}

func (c *EntityController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx)

	id, err := c.pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := c.api.Delete(ctx, c.schema.Type, id); err != nil {
		logger.WithError(err).Errorf("deleting %s/%d", c.schema.Type, id)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusConflict)
		_ = components.ErrorBanner(c.theme, "The record could not be deleted. It may still be referenced.").Render(ctx, w)
		return
	}
	c.publishChanged()

	if htmx.IsHxRequest(r) {
		// The table is the swap target; re-render it without the row.
		c.List(w, r)
		return
	}
	http.Redirect(w, r, c.basePath, http.StatusSeeOther)
}

func (c *EntityController) newForm() *crud.FormController {
	return crud.NewFormController(crud.FormOptions{
		Schema:     c.schema,
		Persister:  c.api,
		Defaults:   c.defaults,
		Validators: c.validators,
		OnSaved: func(crud.EntityType) {
			c.publishChanged()
		},
	})
}

func (c *EntityController) publishChanged() {
	if c.publisher != nil {
		c.publisher.Publish(EntityChangedEvent{Type: c.schema.Type})
	}
}

func (c *EntityController) renderForm(w http.ResponseWriter, r *http.Request, form *crud.FormController, status int) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx)

	editID := form.EditID()
	refTypes := c.registry.References(c.schema.Type)
	if failures := c.refs.Load(ctx, refTypes...); len(failures) > 0 {
		for t, lerr := range failures {
			logger.WithError(lerr).Warnf("picker options for %s unavailable", t)
		}
	}

	rc := &crud.RenderContext{
		Entity: c.schema.Type,
		Draft:  form.Draft(),
		Errors: form.Errors(),
		Refs:   c.refs,
		EditID: editID,
	}
	controls := c.renderer.RenderForm(rc, c.schema)

	title := "Add " + crud.SingularLabel(c.schema.Type)
	action := c.basePath
	if editID != 0 {
		title = "Edit " + crud.SingularLabel(c.schema.Type)
		action = c.basePath + "/" + strconv.FormatInt(editID, 10)
	}
	content := components.EntityForm(c.theme, title, action, c.basePath, controls, rc.Errors.General())

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	c.render(w, r, title, content)
}

// render writes either the bare content (htmx partial swap) or the full
// page shell around it.
func (c *EntityController) render(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	ctx := r.Context()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var err error
	if htmx.IsHxRequest(r) {
		err = content.Render(ctx, w)
	} else {
		err = components.Page(c.theme, title, c.nav, c.basePath, content).Render(ctx, w)
	}
	if err != nil {
		composables.UseLogger(ctx).WithError(err).Error("rendering response")
	}
}

func (c *EntityController) renderError(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	c.render(w, r, "Error", components.ErrorBanner(c.theme, msg))
}

func (c *EntityController) pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

var _ API = (*ipamapi.Client)(nil)

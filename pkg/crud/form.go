package crud

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

type FormState int

const (
	// StateEmpty: no draft. Begin moves to Editing.
	StateEmpty FormState = iota
	// StateEditing: draft mutated field by field; errors may be stale.
	StateEditing
	// StateSubmitting: draft frozen, API call in flight. Submit and Cancel
	// are rejected until it resolves.
	StateSubmitting
)

// Persister is the slice of the IPAM API a form needs: create when the
// draft has no id, update when it does.
type Persister interface {
	Create(ctx context.Context, t EntityType, rec Record) (Record, error)
	Update(ctx context.Context, t EntityType, id int64, rec Record) (Record, error)
}

// CrossFieldValidator adds entity-specific rules on top of the generic
// required-field checks, e.g. a VLAN id falling inside its group's ranges.
type CrossFieldValidator func(draft Record, errs ValidationErrors)

type FormOptions struct {
	Schema    Schema
	Persister Persister
	// Defaults seed a new draft in add mode, e.g. status "active".
	Defaults Record
	// Validators run after the required-field checks during Validate.
	Validators []CrossFieldValidator
	// OnSaved fires after a successful submit, before the controller
	// returns; used to invalidate caches for the affected entity type.
	OnSaved func(t EntityType)
}

// FormController owns one form instance's draft, validation errors and
// submit lifecycle. Draft and errors die with the instance; the reference
// cache does not belong to it.
type FormController struct {
	opts FormOptions

	mu     sync.Mutex
	state  FormState
	draft  Record
	errors ValidationErrors
	closed bool
}

func NewFormController(opts FormOptions) *FormController {
	return &FormController{opts: opts, errors: ValidationErrors{}}
}

func (c *FormController) EntityType() EntityType {
	return c.opts.Schema.Type
}

func (c *FormController) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the in-progress record.
func (c *FormController) Draft() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return nil
	}
	return c.draft.Clone()
}

// Errors returns a copy of the current validation errors.
func (c *FormController) Errors() ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(ValidationErrors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// EditID returns the id of the record being edited, zero in add mode.
func (c *FormController) EditID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return 0
	}
	id, _ := c.draft.ID()
	return id
}

// Begin opens the form: Empty -> Editing. The draft is seeded from existing
// (edit mode) or from the entity defaults (add mode). Calling Begin on a
// form that is already open is a caller error.
func (c *FormController) Begin(existing Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEmpty {
		return errors.Wrap(ErrSubmitInFlight, "form already open")
	}
	if existing != nil {
		c.draft = existing.Clone()
	} else {
		c.draft = Record{}
		for k, v := range c.opts.Defaults {
			c.draft[k] = v
		}
	}
	c.errors = ValidationErrors{}
	c.state = StateEditing
	return nil
}

// SetField writes one field of the draft and clears that field's error.
// Writing "name" also derives "slug" unless the user has hand-edited the
// slug away from its auto-derived value.
func (c *FormController) SetField(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return ErrNoDraft
	}
	if name == "name" && c.opts.Schema.HasField("slug") {
		prevName := AsString(c.draft["name"])
		curSlug := AsString(c.draft["slug"])
		if curSlug == "" || curSlug == Slugify(prevName) {
			c.draft["slug"] = Slugify(AsString(value))
			delete(c.errors, "slug")
		}
	}
	c.draft[name] = value
	delete(c.errors, name)
	return nil
}

// ApplyForm coerces posted form values through the schema and writes them
// into the draft: foreign keys and numbers become int64, booleans come from
// checkbox conventions, empty strings unset numeric fields. Bool fields
// absent from the values were unchecked and are written as false.
func (c *FormController) ApplyForm(values url.Values) error {
	schema := c.opts.Schema
	for _, f := range schema.Fields {
		if f.Name == "id" {
			continue
		}
		if _, present := values[f.Name]; !present {
			if f.Type == BoolFieldType && c.State() == StateEditing {
				if err := c.SetField(f.Name, false); err != nil {
					return err
				}
			}
			continue
		}
		value, err := CoerceFormValue(f, values[f.Name])
		if err != nil {
			c.mu.Lock()
			c.errors.Set(f.Name, err.Error())
			c.mu.Unlock()
			continue
		}
		if value == nil {
			c.mu.Lock()
			if c.state == StateEditing {
				delete(c.draft, f.Name)
				delete(c.errors, f.Name)
			}
			c.mu.Unlock()
			continue
		}
		if err := c.SetField(f.Name, value); err != nil {
			return err
		}
	}
	return nil
}

// CoerceFormValue converts raw form strings into the draft's value type for
// one field. A nil result means "unset".
func CoerceFormValue(f Field, raw []string) (any, error) {
	first := ""
	if len(raw) > 0 {
		first = raw[0]
	}
	switch f.Type {
	case BoolFieldType:
		return first == "on" || first == "true" || first == "1", nil
	case IntFieldType, ForeignKeyFieldType:
		if first == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(first, 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid number %q", first)
		}
		return n, nil
	case ManyToManyFieldType:
		ids := make([]int64, 0, len(raw))
		for _, s := range raw {
			if s == "" {
				continue
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errors.Errorf("invalid id %q", s)
			}
			ids = append(ids, n)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		return ids, nil
	default:
		return first, nil
	}
}

// Validate recomputes the full error set from the draft without mutating
// controller state: one error per required field whose value is unset, then
// the entity-specific cross-field validators.
func (c *FormController) Validate() ValidationErrors {
	c.mu.Lock()
	draft := c.draft.Clone()
	c.mu.Unlock()
	return c.validate(draft)
}

func (c *FormController) validate(draft Record) ValidationErrors {
	errs := ValidationErrors{}
	for _, f := range c.opts.Schema.Fields {
		if !f.Required || f.Name == "id" {
			continue
		}
		if IsEmpty(f, draft[f.Name]) {
			errs.Set(f.Name, f.DisplayLabel()+" is required")
		}
	}
	for _, v := range c.opts.Validators {
		v(draft, errs)
	}
	return errs
}

// Submit drives Editing -> Submitting -> (Empty | Editing). Local
// validation failures keep the state at Editing with the errors populated
// and return ErrValidation. API rejections are folded into the error set:
// per-field when the response is shaped that way, under the general key
// otherwise. Only one submit may be in flight per instance; a response
// arriving after Close is discarded.
func (c *FormController) Submit(ctx context.Context) (Record, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateEmpty:
		c.mu.Unlock()
		return nil, ErrNoDraft
	case StateEditing:
	}
	draft := c.draft.Clone()
	if errs := c.validate(draft); len(errs) > 0 {
		c.errors = errs
		c.mu.Unlock()
		return nil, ErrValidation
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	t := c.opts.Schema.Type
	var (
		saved Record
		err   error
	)
	if id, ok := draft.ID(); ok {
		saved, err = c.opts.Persister.Update(ctx, t, id, draft)
	} else {
		payload := draft.Clone()
		delete(payload, "id")
		saved, err = c.opts.Persister.Create(ctx, t, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// The form went away while the call was in flight; do not touch
		// its disposed state.
		return nil, ErrFormClosed
	}
	if err != nil {
		c.state = StateEditing
		var fe FieldErrorer
		if errors.As(err, &fe) && len(fe.FieldErrors()) > 0 {
			for field, msg := range fe.FieldErrors() {
				if c.opts.Schema.HasField(field) {
					c.errors.Set(field, msg)
				} else {
					c.errors.Set(GeneralErrorKey, msg)
				}
			}
		} else {
			c.errors.Set(GeneralErrorKey, err.Error())
		}
		return nil, err
	}
	c.state = StateEmpty
	c.draft = nil
	c.errors = ValidationErrors{}
	if c.opts.OnSaved != nil {
		c.opts.OnSaved(t)
	}
	return saved, nil
}

// Cancel discards the draft. It is rejected while a submit is in flight;
// the submit must resolve first.
func (c *FormController) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	c.state = StateEmpty
	c.draft = nil
	c.errors = ValidationErrors{}
	return nil
}

// Close marks the form as unmounted. An in-flight submit's late response is
// discarded instead of mutating disposed state.
func (c *FormController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

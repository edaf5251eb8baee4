package crud

import "strconv"

type ControlKind string

const (
	ControlCheckbox ControlKind = "checkbox"
	ControlNumber   ControlKind = "number"
	ControlText     ControlKind = "text"
	ControlTextarea ControlKind = "textarea"
	ControlSelect   ControlKind = "select"
	ControlPicker   ControlKind = "picker"
)

type Option struct {
	Value string
	Label string
}

// Control is the renderer-agnostic description of one form input. The
// presentation layer turns it into HTML; tests assert on it directly.
type Control struct {
	Kind        ControlKind
	Name        string
	Label       string
	Value       string
	Checked     bool
	Required    bool
	Disabled    bool
	Clearable   bool
	Multiple    bool
	Placeholder string
	Options     []Option
	Error       string
}

// RenderContext carries everything a rule may consult: the draft being
// edited, its validation errors and the reference cache. EditID is non-zero
// when editing an existing record and feeds self-reference exclusion.
type RenderContext struct {
	Entity EntityType
	Draft  Record
	Errors ValidationErrors
	Refs   *ReferenceCache
	EditID int64
}

// Rule pairs a predicate over (entityType, field) with a renderer. Rules are
// evaluated top to bottom and the first match wins; a matching rule that
// renders nil suppresses the field.
type Rule struct {
	Name   string
	When   func(entity EntityType, field Field) bool
	Render func(rc *RenderContext, field Field) *Control
}

// Renderer resolves fields to controls through an ordered rule table.
// Entity-specific overrides run before the generic rules.
type Renderer struct {
	rules []Rule
}

func NewRenderer(overrides ...Rule) *Renderer {
	rules := make([]Rule, 0, len(overrides)+8)
	// Identity fields are suppressed unconditionally, even against overrides.
	rules = append(rules, suppressRule("id"))
	rules = append(rules, overrides...)
	rules = append(rules, baseRules()...)
	return &Renderer{rules: rules}
}

// RenderField resolves one schema field against the draft. Returns nil for
// suppressed fields. It never mutates the reference cache and never fails:
// a picker whose backing list is empty or missing renders disabled with a
// placeholder.
func (r *Renderer) RenderField(rc *RenderContext, field Field) *Control {
	for _, rule := range r.rules {
		if !rule.When(rc.Entity, field) {
			continue
		}
		ctrl := rule.Render(rc, field)
		if ctrl == nil {
			return nil
		}
		if ctrl.Name == "" {
			ctrl.Name = field.Name
		}
		if ctrl.Label == "" {
			ctrl.Label = field.DisplayLabel()
		}
		if !ctrl.Required {
			ctrl.Required = field.Required
		}
		if rc.Errors != nil {
			ctrl.Error = rc.Errors[field.Name]
		}
		return ctrl
	}
	// Unreachable: the fallback rule matches everything.
	return nil
}

// RenderForm resolves a full schema in order, dropping suppressed fields.
func (r *Renderer) RenderForm(rc *RenderContext, schema Schema) []*Control {
	controls := make([]*Control, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		if ctrl := r.RenderField(rc, f); ctrl != nil {
			controls = append(controls, ctrl)
		}
	}
	return controls
}

// SuppressFields builds an override rule hiding entity-internal fields,
// e.g. a VLAN group's derived min/max range bounds.
func SuppressFields(entity EntityType, names ...string) Rule {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Rule{
		Name: "suppress-" + string(entity),
		When: func(t EntityType, f Field) bool {
			if t != entity {
				return false
			}
			_, ok := set[f.Name]
			return ok
		},
		Render: func(*RenderContext, Field) *Control { return nil },
	}
}

// StaticSelect builds an override rule rendering a fixed vocabulary select
// for one (entityType, fieldName) pair.
func StaticSelect(entity EntityType, fieldName string, defaultValue string, options ...Option) Rule {
	return Rule{
		Name: "select-" + string(entity) + "-" + fieldName,
		When: func(t EntityType, f Field) bool {
			return t == entity && f.Name == fieldName
		},
		Render: func(rc *RenderContext, f Field) *Control {
			value := AsString(rc.Draft[f.Name])
			if value == "" {
				value = defaultValue
			}
			return &Control{
				Kind:    ControlSelect,
				Value:   value,
				Options: options,
			}
		},
	}
}

// DefaultStatusOptions is the generic status vocabulary; entity-specific
// vocabularies are installed as overrides and win over it.
func DefaultStatusOptions() []Option {
	return []Option{
		{Value: "active", Label: "Active"},
		{Value: "reserved", Label: "Reserved"},
		{Value: "deprecated", Label: "Deprecated"},
		{Value: "available", Label: "Available"},
	}
}

func suppressRule(names ...string) Rule {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Rule{
		Name: "suppress-identity",
		When: func(_ EntityType, f Field) bool {
			_, ok := set[f.Name]
			return ok
		},
		Render: func(*RenderContext, Field) *Control { return nil },
	}
}

func baseRules() []Rule {
	return []Rule{
		{
			Name: "status-enum",
			When: func(_ EntityType, f Field) bool { return f.Name == "status" },
			Render: func(rc *RenderContext, f Field) *Control {
				value := AsString(rc.Draft[f.Name])
				if value == "" {
					value = "active"
				}
				return &Control{
					Kind:    ControlSelect,
					Value:   value,
					Options: DefaultStatusOptions(),
				}
			},
		},
		{
			Name: "reference-picker",
			When: func(_ EntityType, f Field) bool { return f.Reference != "" },
			Render: func(rc *RenderContext, f Field) *Control {
				return renderPicker(rc, f)
			},
		},
		{
			Name: "boolean-toggle",
			When: func(_ EntityType, f Field) bool { return f.Type == BoolFieldType },
			Render: func(rc *RenderContext, f Field) *Control {
				checked, _ := rc.Draft[f.Name].(bool)
				return &Control{Kind: ControlCheckbox, Checked: checked}
			},
		},
		{
			Name: "number-input",
			When: func(_ EntityType, f Field) bool { return f.Type == IntFieldType },
			Render: func(rc *RenderContext, f Field) *Control {
				ctrl := &Control{Kind: ControlNumber}
				if n, ok := AsInt64(rc.Draft[f.Name]); ok {
					ctrl.Value = strconv.FormatInt(n, 10)
				}
				return ctrl
			},
		},
		{
			Name: "multiline-text",
			When: func(_ EntityType, f Field) bool {
				return f.Name == "description" || f.Name == "comments"
			},
			Render: func(rc *RenderContext, f Field) *Control {
				return &Control{Kind: ControlTextarea, Value: AsString(rc.Draft[f.Name])}
			},
		},
		{
			Name: "readonly-metadata",
			When: func(_ EntityType, f Field) bool {
				return f.Name == "created_at" || f.Name == "updated_at"
			},
			Render: func(rc *RenderContext, f Field) *Control {
				return &Control{Kind: ControlText, Value: AsString(rc.Draft[f.Name]), Disabled: true}
			},
		},
		{
			Name: "text-fallback",
			When: func(EntityType, Field) bool { return true },
			Render: func(rc *RenderContext, f Field) *Control {
				return &Control{Kind: ControlText, Value: AsString(rc.Draft[f.Name])}
			},
		},
	}
}

func renderPicker(rc *RenderContext, f Field) *Control {
	ctrl := &Control{
		Kind:      ControlPicker,
		Clearable: !f.Required,
		Multiple:  f.Type == ManyToManyFieldType,
	}
	var rows []Record
	if rc.Refs != nil {
		rows = rc.Refs.Rows(f.Reference)
	}
	if len(rows) == 0 {
		// A missing or failed reference list degrades this one picker; the
		// rest of the form stays usable.
		ctrl.Disabled = true
		ctrl.Placeholder = "No " + Humanize(string(f.Reference)) + " available"
		return ctrl
	}

	current, _ := AsInt64(rc.Draft[f.Name])
	selfReference := f.Reference == rc.Entity && rc.EditID != 0
	for _, rec := range rows {
		id, ok := rec.ID()
		if !ok {
			continue
		}
		if selfReference && id == rc.EditID {
			// A record must not become its own ancestor.
			continue
		}
		ctrl.Options = append(ctrl.Options, Option{
			Value: strconv.FormatInt(id, 10),
			Label: RecordLabel(rec),
		})
	}
	if current != 0 {
		ctrl.Value = strconv.FormatInt(current, 10)
	}
	ctrl.Placeholder = "Select " + SingularLabel(f.Reference)
	return ctrl
}

package crud

import (
	"strings"

	"github.com/pkg/errors"
)

// EntityType names one kind of manageable record, e.g. "sites" or
// "ip_addresses". The set of entity types is fixed at build time.
type EntityType string

type FieldType string

const (
	BoolFieldType       FieldType = "bool"
	IntFieldType        FieldType = "int"
	StringFieldType     FieldType = "string"
	ForeignKeyFieldType FieldType = "foreign_key"
	ManyToManyFieldType FieldType = "many_to_many"
)

// Field is the per-field schema entry driving both rendering and validation.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Reference names the entity type this field points to. Mandatory for
	// foreign key fields, optional for many-to-many fields.
	Reference EntityType
	// Label overrides the display label derived from Name.
	Label string
}

// DisplayLabel returns the explicit label, or one derived from the field
// name ("vlan_group_id" -> "VLAN Group").
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return Humanize(strings.TrimSuffix(f.Name, "_id"))
}

// Schema is the ordered field list of one entity type.
type Schema struct {
	Type   EntityType
	Fields []Field
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether the schema defines the named field.
func (s Schema) HasField(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Registry is the static, build-time table of entity schemas.
type Registry struct {
	order   []EntityType
	schemas map[EntityType]Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[EntityType]Schema)}
}

// Register adds a schema, rejecting duplicate entity types, duplicate field
// names and foreign keys without a reference.
func (r *Registry) Register(s Schema) error {
	if _, ok := r.schemas[s.Type]; ok {
		return errors.Errorf("schema %q already registered", s.Type)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if _, dup := seen[f.Name]; dup {
			return errors.Errorf("schema %q: duplicate field %q", s.Type, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Type == ForeignKeyFieldType && f.Reference == "" {
			return errors.Errorf("schema %q: foreign key %q has no reference", s.Type, f.Name)
		}
	}
	r.schemas[s.Type] = s
	r.order = append(r.order, s.Type)
	return nil
}

// MustRegister panics on registration errors; schemas are static data, so a
// bad one is a programming error.
func (r *Registry) MustRegister(s Schema) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Schema returns the ordered field list for the entity type, or
// ErrSchemaNotFound. Callers must treat absence as "render nothing".
func (r *Registry) Schema(t EntityType) (Schema, error) {
	s, ok := r.schemas[t]
	if !ok {
		return Schema{}, errors.Wrapf(ErrSchemaNotFound, "entity type %q", t)
	}
	return s, nil
}

// Types returns all registered entity types in registration order.
func (r *Registry) Types() []EntityType {
	out := make([]EntityType, len(r.order))
	copy(out, r.order)
	return out
}

// References returns the set of entity types referenced by the given
// schema's fields, deduplicated in field order.
func (r *Registry) References(t EntityType) []EntityType {
	s, err := r.Schema(t)
	if err != nil {
		return nil
	}
	seen := make(map[EntityType]struct{})
	var out []EntityType
	for _, f := range s.Fields {
		if f.Reference == "" {
			continue
		}
		if _, ok := seen[f.Reference]; ok {
			continue
		}
		seen[f.Reference] = struct{}{}
		out = append(out, f.Reference)
	}
	return out
}

// Validate checks cross-schema invariants: every reference must name a
// registered entity type.
func (r *Registry) Validate() error {
	for _, t := range r.order {
		for _, f := range r.schemas[t].Fields {
			if f.Reference == "" {
				continue
			}
			if _, ok := r.schemas[f.Reference]; !ok {
				return errors.Errorf("schema %q: field %q references unknown entity type %q", t, f.Name, f.Reference)
			}
		}
	}
	return nil
}

var acronyms = map[string]string{
	"id":   "ID",
	"ip":   "IP",
	"vlan": "VLAN",
	"vrf":  "VRF",
	"rir":  "RIR",
	"asn":  "ASN",
	"vid":  "VID",
	"rd":   "RD",
	"ssh":  "SSH",
}

// Humanize turns a snake_case identifier into a display label, upper-casing
// well-known networking acronyms.
func Humanize(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if a, ok := acronyms[p]; ok {
			parts[i] = a
			continue
		}
		if a, ok := acronyms[strings.TrimSuffix(p, "s")]; ok && strings.HasSuffix(p, "s") {
			parts[i] = a + "s"
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// SingularLabel returns a human label for one record of the entity type
// ("ip_addresses" -> "IP Address").
func SingularLabel(t EntityType) string {
	label := Humanize(string(t))
	switch {
	case strings.HasSuffix(label, "ses"), strings.HasSuffix(label, "xes"):
		return strings.TrimSuffix(label, "es")
	case strings.HasSuffix(label, "s"):
		return strings.TrimSuffix(label, "s")
	}
	return label
}

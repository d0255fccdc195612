// Package core holds the record model shared by the storage engine and the shell.
package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ClassKey is the serialized field carrying the kind tag of a record.
const ClassKey = "__class__"

// Saver persists the table an entity is registered in.
type Saver interface {
	Now() time.Time
	Save(ctx context.Context) error
}

// Entity is a typed record: identity, timestamps and an attribute bag holding
// the declared fields of its kind plus any dynamic attributes.
type Entity struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	kind  string
	attrs map[string]any
	saver Saver
}

// Key builds the table key "<Kind>.<id>".
func Key(kind, id string) string {
	return kind + "." + id
}

func blank(c Class, id string, now time.Time) *Entity {
	e := &Entity{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		kind:      c.Name,
		attrs:     make(map[string]any, len(c.Fields)),
	}
	for _, f := range c.Fields {
		e.attrs[f.Name] = f.Default()
	}
	return e
}

func rehydrate(c Class, m map[string]any, now time.Time) (*Entity, error) {
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: %s record has no id", ErrReconstruction, c.Name)
	}

	e := blank(c, id, now)
	for name, v := range m {
		switch name {
		case "id", ClassKey:
			continue
		case "created_at", "updated_at":
			t, err := parseStamp(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s field %s: %v", ErrReconstruction, Key(c.Name, id), name, err)
			}
			if name == "created_at" {
				e.CreatedAt = t
			} else {
				e.UpdatedAt = t
			}
		default:
			if f, ok := c.Field(name); ok {
				if cv, ok := coerce(f.Type, v); ok {
					v = cv
				}
			}
			e.attrs[name] = v
		}
	}
	return e, nil
}

func parseStamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected a string, got %T", v)
	}
	return ParseTime(s)
}

// Kind returns the kind name the entity was built as.
func (e *Entity) Kind() string {
	return e.kind
}

// Key returns the table key of the entity.
func (e *Entity) Key() string {
	return Key(e.kind, e.ID)
}

// Get returns an attribute by name, including id and the timestamps.
func (e *Entity) Get(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "created_at":
		return e.CreatedAt, true
	case "updated_at":
		return e.UpdatedAt, true
	}
	v, ok := e.attrs[name]
	return v, ok
}

// Set assigns an attribute. Identity and timestamp fields are rejected.
func (e *Entity) Set(name string, v any) error {
	if IsReadOnly(name) || name == ClassKey {
		return fmt.Errorf("%w: %s", ErrReadOnlyAttribute, name)
	}
	if e.attrs == nil {
		e.attrs = make(map[string]any)
	}
	e.attrs[name] = v
	return nil
}

// Attributes returns a copy of the attribute bag (without id and timestamps).
func (e *Entity) Attributes() map[string]any {
	out := make(map[string]any, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = cloneValue(v)
	}
	return out
}

// Attach binds the entity to the table that persists it.
func (e *Entity) Attach(s Saver) {
	e.saver = s
}

// Save refreshes UpdatedAt and flushes the whole table through the attached Saver.
// UpdatedAt always moves forward, by one microsecond when the clock has not.
func (e *Entity) Save(ctx context.Context) error {
	if e.saver == nil {
		return ErrDetached
	}
	now := e.saver.Now()
	if !now.After(e.UpdatedAt) {
		now = e.UpdatedAt.Add(time.Microsecond)
	}
	e.UpdatedAt = now
	return e.saver.Save(ctx)
}

// Delete removes a dynamic or declared attribute. Identity and timestamps
// cannot be removed.
func (e *Entity) Delete(name string) {
	if IsReadOnly(name) || name == ClassKey {
		return
	}
	delete(e.attrs, name)
}

// ToMap serializes the entity: every attribute, id, both timestamps in
// TimeFormat and the kind tag. The result shares no state with the entity.
func (e *Entity) ToMap() map[string]any {
	m := make(map[string]any, len(e.attrs)+4)
	for k, v := range e.attrs {
		m[k] = cloneValue(v)
	}
	m["id"] = e.ID
	m["created_at"] = FormatTime(e.CreatedAt)
	m["updated_at"] = FormatTime(e.UpdatedAt)
	m[ClassKey] = e.kind
	return m
}

// String renders "[<Kind>] (<id>) {...}" from the live attributes. Timestamps
// keep their time.Time form here, unlike ToMap.
func (e *Entity) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] (%s) {", e.kind, e.ID)
	writePair(&sb, "id", e.ID, true)
	writePair(&sb, "created_at", e.CreatedAt, false)
	writePair(&sb, "updated_at", e.UpdatedAt, false)
	for _, name := range slices.Sorted(maps.Keys(e.attrs)) {
		writePair(&sb, name, e.attrs[name], false)
	}
	sb.WriteString("}")
	return sb.String()
}

func writePair(sb *strings.Builder, name string, v any, first bool) {
	if !first {
		sb.WriteString(", ")
	}
	sb.WriteString(strconv.Quote(name))
	sb.WriteString(": ")
	sb.WriteString(formatValue(v))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case time.Time:
		return x.String()
	case float64:
		return FormatFloat(x)
	case []string:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			parts = append(parts, strconv.Quote(k)+": "+formatValue(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case nil:
		return "null"
	default:
		return fmt.Sprint(x)
	}
}

// FormatFloat renders f so that it always reads back as a float: integral
// values keep a trailing ".0".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []string:
		return slices.Clone(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

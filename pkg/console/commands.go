package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/introspection"

	"github.com/aretw0/hbnb/pkg/core"
)

// User-facing messages.
const (
	msgClassMissing = "** class name missing **"
	msgClassUnknown = "** class doesn't exist **"
	msgIDMissing    = "** instance id missing **"
	msgNotFound     = "** no instance found **"
	msgAttrMissing  = "** attribute name missing **"
	msgValueMissing = "** value missing **"
	msgInvalidDict  = "** invalid dictionary format **"
	msgReadOnly     = "** attribute can't be updated **"
)

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args string) bool
}

func (c *Console) commandTable() map[string]command {
	return map[string]command{
		"create": {
			usage: "create <Kind>",
			help:  "Creates an instance of <Kind>, saves it and prints its id.",
			run:   c.doCreate,
		},
		"show": {
			usage: "show <Kind> <id>",
			help:  "Prints the instance <Kind>.<id>.",
			run:   c.doShow,
		},
		"destroy": {
			usage: "destroy <Kind> <id>",
			help:  "Deletes the instance <Kind>.<id> and saves.",
			run:   c.doDestroy,
		},
		"all": {
			usage: "all [<Kind>]",
			help:  "Prints every instance, or only those of <Kind>.",
			run:   c.doAll,
		},
		"count": {
			usage: "count <Kind>",
			help:  "Prints the number of instances of <Kind>.",
			run:   c.doCount,
		},
		"update": {
			usage: "update <Kind> <id> <attribute> <value> | update <Kind> <id> <{json}>",
			help:  "Sets attributes on an instance and saves it once.",
			run:   c.doUpdate,
		},
		"reload": {
			usage: "reload",
			help:  "Merges the backing file into the table.",
			run:   c.doReload,
		},
		"state": {
			usage: "state",
			help:  "Prints the storage and shell state as JSON.",
			run:   c.doState,
		},
		"help": {
			usage: "help [command]",
			help:  "Lists commands or describes one.",
			run:   c.doHelp,
		},
		"quit": {
			usage: "quit",
			help:  "Exits the shell.",
			run:   func(context.Context, string) bool { return true },
		},
		"EOF": {
			usage: "EOF",
			help:  "Exits the shell.",
			run: func(context.Context, string) bool {
				c.println()
				return true
			},
		},
	}
}

// resolveKind validates the leading kind argument, printing the error when
// it is missing or unknown.
func (c *Console) resolveKind(args string) (string, string, bool) {
	kind, rest := nextToken(args)
	if kind == "" {
		c.println(msgClassMissing)
		return "", "", false
	}
	if _, ok := c.store.Classes()[kind]; !ok {
		c.println(msgClassUnknown)
		return "", "", false
	}
	return kind, rest, true
}

// resolveInstance validates "<Kind> <id>" and looks the instance up.
func (c *Console) resolveInstance(args string) (*core.Entity, string, bool) {
	kind, rest, ok := c.resolveKind(args)
	if !ok {
		return nil, "", false
	}
	id, rest := nextToken(rest)
	if id == "" {
		c.println(msgIDMissing)
		return nil, "", false
	}
	e, err := c.store.Get(kind, id)
	if err != nil {
		c.println(msgNotFound)
		return nil, "", false
	}
	return e, rest, true
}

func (c *Console) doCreate(ctx context.Context, args string) bool {
	kind, _, ok := c.resolveKind(args)
	if !ok {
		return false
	}
	e, err := c.store.Create(kind)
	if err != nil {
		c.fail("create failed", err)
		return false
	}
	if err := e.Save(ctx); err != nil {
		delete(c.store.All(), e.Key())
		c.fail("save failed", err)
		return false
	}
	c.println(e.ID)
	return false
}

func (c *Console) doShow(_ context.Context, args string) bool {
	if e, _, ok := c.resolveInstance(args); ok {
		c.println(e.String())
	}
	return false
}

func (c *Console) doDestroy(ctx context.Context, args string) bool {
	e, _, ok := c.resolveInstance(args)
	if !ok {
		return false
	}
	if err := c.store.Destroy(ctx, e.Kind(), e.ID); err != nil {
		c.fail("destroy failed", err)
	}
	return false
}

func (c *Console) doAll(_ context.Context, args string) bool {
	kind := ""
	if strings.TrimSpace(args) != "" {
		k, _, ok := c.resolveKind(args)
		if !ok {
			return false
		}
		kind = k
	}
	entities := c.store.Filter(kind)
	parts := make([]string, len(entities))
	for i, e := range entities {
		parts[i] = strconv.Quote(e.String())
	}
	c.println("[" + strings.Join(parts, ", ") + "]")
	return false
}

func (c *Console) doCount(_ context.Context, args string) bool {
	kind, _, ok := c.resolveKind(args)
	if !ok {
		return false
	}
	c.println(c.store.Count(kind))
	return false
}

func (c *Console) doUpdate(ctx context.Context, args string) bool {
	e, rest, ok := c.resolveInstance(args)
	if !ok {
		return false
	}
	if rest == "" {
		c.println(msgAttrMissing)
		return false
	}

	var values map[string]any
	if strings.HasPrefix(rest, "{") {
		values, ok = c.castObject(e.Kind(), rest)
	} else {
		values, ok = c.castPair(e.Kind(), rest)
	}
	if !ok {
		return false
	}

	undo := snapshot(e, values)
	for name, v := range values {
		if err := e.Set(name, v); err != nil {
			undo()
			c.println(msgReadOnly)
			return false
		}
	}
	if err := e.Save(ctx); err != nil {
		undo()
		c.fail("save failed", err)
	}
	return false
}

// snapshot records the attributes an update is about to touch and returns a
// func restoring them along with UpdatedAt.
func snapshot(e *core.Entity, values map[string]any) func() {
	updatedAt := e.UpdatedAt
	prev := make(map[string]any, len(values))
	for name := range values {
		if v, ok := e.Get(name); ok {
			prev[name] = v
		}
	}
	return func() {
		for name := range values {
			if v, ok := prev[name]; ok {
				_ = e.Set(name, v)
			} else {
				e.Delete(name)
			}
		}
		e.UpdatedAt = updatedAt
	}
}

// castPair handles `<attribute> <value>`.
func (c *Console) castPair(kind, rest string) (map[string]any, bool) {
	name, raw := nextToken(rest)
	if raw == "" {
		c.println(msgValueMissing)
		return nil, false
	}
	if name == core.ClassKey {
		c.println(msgReadOnly)
		return nil, false
	}
	v, err := core.CastString(kind, name, valueToken(raw))
	if err != nil {
		c.castFailed(err)
		return nil, false
	}
	return map[string]any{name: v}, true
}

// castObject handles a JSON object literal. Single quotes are accepted in
// place of double quotes. Every value is cast before anything is assigned.
func (c *Console) castObject(kind, rest string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(strings.ReplaceAll(rest, "'", `"`)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil || dec.More() {
		c.println(msgInvalidDict)
		return nil, false
	}

	values := make(map[string]any, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if name == core.ClassKey {
			c.println(msgReadOnly)
			return nil, false
		}
		v, err := core.CastValue(kind, name, raw[name])
		if err != nil {
			c.castFailed(err)
			return nil, false
		}
		values[name] = v
	}
	return values, true
}

func (c *Console) castFailed(err error) {
	var castErr *core.CastError
	switch {
	case errors.Is(err, core.ErrReadOnlyAttribute):
		c.println(msgReadOnly)
	case errors.As(err, &castErr):
		c.println(fmt.Sprintf("** invalid value for attribute %s: expected %s **", castErr.Field, castErr.Type))
	default:
		c.fail("cast failed", err)
	}
}

func (c *Console) doReload(ctx context.Context, _ string) bool {
	if err := c.store.Reload(ctx); err != nil {
		c.fail("reload failed", err)
	}
	return false
}

func (c *Console) doState(_ context.Context, _ string) bool {
	snapshot := map[string]any{
		c.ComponentType(): c.State(),
	}
	if is, ok := c.store.(introspection.Introspectable); ok {
		name := "store"
		if comp, ok := c.store.(introspection.Component); ok {
			name = comp.ComponentType()
		}
		snapshot[name] = is.State()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		c.fail("state failed", err)
		return false
	}
	fmt.Fprint(c.out, buf.String())
	return false
}

func (c *Console) doHelp(_ context.Context, args string) bool {
	name, _ := nextToken(args)
	if name != "" {
		cmd, ok := c.commands[name]
		if !ok {
			fmt.Fprintf(c.out, "*** No help on %s\n", name)
			return false
		}
		fmt.Fprintf(c.out, "%s\n    %s\n", cmd.usage, cmd.help)
		return false
	}

	c.println("Documented commands (type help <command>):")
	c.println(strings.Join(slices.Sorted(maps.Keys(c.commands)), "  "))
	c.println()
	c.println("Dotted form: <Kind>.<command>(<args>), e.g. User.show(\"<id>\")")
	return false
}

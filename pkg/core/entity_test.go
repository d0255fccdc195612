package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hbnb/pkg/core"
)

// fakeSaver counts flushes and hands out a controllable clock.
type fakeSaver struct {
	now   time.Time
	saves int
	err   error
}

func (f *fakeSaver) Now() time.Time { return f.now }

func (f *fakeSaver) Save(ctx context.Context) error {
	f.saves++
	return f.err
}

func newEntity(t *testing.T, kind string, now time.Time) *core.Entity {
	t.Helper()
	c, ok := core.LookupClass(kind)
	require.True(t, ok, "kind %s not registered", kind)
	return c.New(now)
}

func TestEntity_New(t *testing.T) {
	now := core.Truncate(time.Date(2024, 1, 15, 9, 30, 0, 123456000, time.UTC))

	t.Run("Fresh identity and timestamps", func(t *testing.T) {
		a := newEntity(t, core.KindPlace, now)
		b := newEntity(t, core.KindPlace, now.Add(time.Millisecond))

		assert.NotEqual(t, a.ID, b.ID)
		assert.Len(t, a.ID, 36)
		assert.True(t, a.CreatedAt.Equal(a.UpdatedAt))
		assert.False(t, b.CreatedAt.Before(a.CreatedAt))
		assert.Equal(t, core.KindPlace, a.Kind())
		assert.Equal(t, "Place."+a.ID, a.Key())
	})

	t.Run("Declared defaults are materialized per instance", func(t *testing.T) {
		a := newEntity(t, core.KindPlace, now)
		b := newEntity(t, core.KindPlace, now)

		rooms, ok := a.Get("number_rooms")
		require.True(t, ok)
		assert.Equal(t, 0, rooms)
		lat, _ := a.Get("latitude")
		assert.Equal(t, 0.0, lat)
		ids, _ := a.Get("amenity_ids")
		assert.Equal(t, []string{}, ids)

		require.NoError(t, a.Set("name", "Loft"))
		name, _ := b.Get("name")
		assert.Equal(t, "", name, "instances must not share attribute state")
	})
}

func TestEntity_Set(t *testing.T) {
	e := newEntity(t, core.KindUser, core.Now())

	for _, field := range []string{"id", "created_at", "updated_at", core.ClassKey} {
		err := e.Set(field, "x")
		assert.True(t, errors.Is(err, core.ErrReadOnlyAttribute), "field %s: %v", field, err)
	}

	require.NoError(t, e.Set("nickname", "bob"))
	v, ok := e.Get("nickname")
	require.True(t, ok)
	assert.Equal(t, "bob", v)

	e.Delete("nickname")
	_, ok = e.Get("nickname")
	assert.False(t, ok)

	e.Delete("id")
	assert.NotEmpty(t, e.ID)
}

func TestEntity_Save(t *testing.T) {
	start := core.Truncate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	e := newEntity(t, core.KindCity, start)

	t.Run("Detached", func(t *testing.T) {
		err := e.Save(context.Background())
		assert.ErrorIs(t, err, core.ErrDetached)
	})

	t.Run("Touches and flushes", func(t *testing.T) {
		saver := &fakeSaver{now: start.Add(time.Second)}
		e.Attach(saver)

		require.NoError(t, e.Save(context.Background()))
		assert.Equal(t, 1, saver.saves)
		assert.True(t, e.UpdatedAt.After(e.CreatedAt))
		assert.True(t, e.CreatedAt.Equal(start), "created_at must not move")
	})

	t.Run("Moves forward when the clock has not", func(t *testing.T) {
		prev := e.UpdatedAt
		e.Attach(&fakeSaver{now: prev})
		require.NoError(t, e.Save(context.Background()))
		assert.Equal(t, prev.Add(time.Microsecond), e.UpdatedAt)

		e.Attach(&fakeSaver{now: prev.Add(-time.Hour)})
		require.NoError(t, e.Save(context.Background()))
		assert.Equal(t, prev.Add(2*time.Microsecond), e.UpdatedAt)
	})

	t.Run("Propagates flush errors", func(t *testing.T) {
		boom := errors.New("disk full")
		e.Attach(&fakeSaver{now: start, err: boom})
		assert.ErrorIs(t, e.Save(context.Background()), boom)
	})
}

func TestEntity_ToMap(t *testing.T) {
	now := core.Truncate(time.Date(2024, 1, 15, 9, 30, 0, 123456000, time.UTC))
	e := newEntity(t, core.KindPlace, now)
	require.NoError(t, e.Set("amenity_ids", []string{"a1"}))
	require.NoError(t, e.Set("wifi", true))

	m := e.ToMap()
	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, "2024-01-15T09:30:00.123456", m["created_at"])
	assert.Equal(t, "2024-01-15T09:30:00.123456", m["updated_at"])
	assert.Equal(t, "Place", m[core.ClassKey])
	assert.Equal(t, true, m["wifi"])

	// The map is a snapshot.
	m["amenity_ids"].([]string)[0] = "changed"
	m["name"] = "changed"
	ids, _ := e.Get("amenity_ids")
	assert.Equal(t, []string{"a1"}, ids)
	name, _ := e.Get("name")
	assert.Equal(t, "", name)
}

func TestEntity_String(t *testing.T) {
	now := core.Truncate(time.Date(2024, 1, 15, 9, 30, 0, 123456000, time.UTC))
	e := newEntity(t, core.KindState, now)
	require.NoError(t, e.Set("name", "California"))

	s := e.String()
	assert.True(t, strings.HasPrefix(s, "[State] ("+e.ID+") {"), s)
	assert.Contains(t, s, `"name": "California"`)
	// Live timestamps, not the serialized text form.
	assert.Contains(t, s, `"created_at": `+now.String())
	assert.NotContains(t, s, "2024-01-15T09:30:00.123456")
}

func TestRehydrate(t *testing.T) {
	now := core.Truncate(time.Date(2024, 1, 15, 9, 30, 0, 123456000, time.UTC))

	t.Run("Round trip", func(t *testing.T) {
		orig := newEntity(t, core.KindPlace, now)
		require.NoError(t, orig.Set("number_rooms", 3))
		require.NoError(t, orig.Set("latitude", 37.77))
		require.NoError(t, orig.Set("amenity_ids", []string{"a", "b"}))
		require.NoError(t, orig.Set("pets", "yes"))

		back, err := core.Rehydrate(core.KindPlace, orig.ToMap())
		require.NoError(t, err)

		assert.Equal(t, orig.ID, back.ID)
		assert.True(t, orig.CreatedAt.Equal(back.CreatedAt))
		assert.True(t, orig.UpdatedAt.Equal(back.UpdatedAt))
		if diff := cmp.Diff(orig.Attributes(), back.Attributes()); diff != "" {
			t.Errorf("attributes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Coerces declared numbers from JSON shapes", func(t *testing.T) {
		back, err := core.Rehydrate(core.KindPlace, map[string]any{
			"id":           "p1",
			"latitude":     2,
			"number_rooms": 4.0,
			"amenity_ids":  []any{"x"},
		})
		require.NoError(t, err)
		lat, _ := back.Get("latitude")
		assert.Equal(t, 2.0, lat)
		rooms, _ := back.Get("number_rooms")
		assert.Equal(t, 4, rooms)
		ids, _ := back.Get("amenity_ids")
		assert.Equal(t, []string{"x"}, ids)
	})

	t.Run("Dynamic attributes keep their type", func(t *testing.T) {
		back, err := core.Rehydrate(core.KindUser, map[string]any{"id": "u1", "age": 4.0, "tags": []any{"a"}})
		require.NoError(t, err)
		age, _ := back.Get("age")
		assert.Equal(t, 4.0, age)
		tags, _ := back.Get("tags")
		assert.Equal(t, []any{"a"}, tags)
		_, hasTag := back.Get(core.ClassKey)
		assert.False(t, hasTag)
	})

	errorCases := []struct {
		name  string
		input map[string]any
	}{
		{"Missing id", map[string]any{"created_at": "2024-01-15T09:30:00.123456"}},
		{"Empty id", map[string]any{"id": ""}},
		{"Non-string id", map[string]any{"id": 12}},
		{"Bad created_at", map[string]any{"id": "x", "created_at": "yesterday"}},
		{"Non-string updated_at", map[string]any{"id": "x", "updated_at": 12}},
		{"Missing microseconds", map[string]any{"id": "x", "created_at": "2024-01-15T09:30:00"}},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := core.Rehydrate(core.KindUser, tc.input)
			assert.ErrorIs(t, err, core.ErrReconstruction)
		})
	}

	t.Run("Unknown kind", func(t *testing.T) {
		_, err := core.Rehydrate("Spaceship", map[string]any{"id": "x"})
		assert.ErrorIs(t, err, core.ErrUnknownKind)
	})

	t.Run("Rehydrated entities are detached", func(t *testing.T) {
		back, err := core.Rehydrate(core.KindUser, map[string]any{"id": "x"})
		require.NoError(t, err)
		assert.ErrorIs(t, back.Save(context.Background()), core.ErrDetached)
	})
}

func TestTimeFormat_RoundTrip(t *testing.T) {
	ts := core.Now()
	back, err := core.ParseTime(core.FormatTime(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))
	assert.Equal(t, "2024-01-15T09:30:00.000000", core.FormatTime(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)))
}

package docref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReference_Constructors(t *testing.T) {
	t.Run("ByID", func(t *testing.T) {
		ref := ByID(42)
		assert.Equal(t, KindID, ref.Kind())
		assert.False(t, ref.IsZero())

		id, ok := ref.ID()
		assert.True(t, ok)
		assert.Equal(t, uint(42), id)

		_, ok = ref.Path()
		assert.False(t, ok)
	})

	t.Run("ByPath", func(t *testing.T) {
		ref := ByPath("/getting-started")
		assert.Equal(t, KindPath, ref.Kind())
		assert.False(t, ref.IsZero())

		path, ok := ref.Path()
		assert.True(t, ok)
		assert.Equal(t, "/getting-started", path)

		_, ok = ref.ID()
		assert.False(t, ok)
	})

	t.Run("ByRouteID resolves like an id", func(t *testing.T) {
		ref := ByRouteID(7)
		assert.Equal(t, KindRouteID, ref.Kind())

		id, ok := ref.ID()
		assert.True(t, ok)
		assert.Equal(t, uint(7), id)
	})

	t.Run("zero value", func(t *testing.T) {
		var ref Reference
		assert.True(t, ref.IsZero())
		assert.Equal(t, KindNone, ref.Kind())

		_, ok := ref.ID()
		assert.False(t, ok)
		_, ok = ref.Path()
		assert.False(t, ok)
	})
}

func TestReference_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Reference
		want bool
	}{
		{name: "same id", a: ByID(1), b: ByID(1), want: true},
		{name: "different id", a: ByID(1), b: ByID(2), want: false},
		{name: "same path", a: ByPath("/a"), b: ByPath("/a"), want: true},
		{name: "different path", a: ByPath("/a"), b: ByPath("/b"), want: false},
		{name: "id vs route id", a: ByID(1), b: ByRouteID(1), want: false},
		{name: "id vs path", a: ByID(1), b: ByPath("/a"), want: false},
		{name: "both zero", a: Reference{}, b: Reference{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestReference_String(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{name: "id", ref: ByID(42), want: "id:42"},
		{name: "route id", ref: ByRouteID(42), want: "route-id:42"},
		{name: "path", ref: ByPath("/docs/intro"), want: "path:/docs/intro"},
		{name: "zero", ref: Reference{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String())
		})
	}
}

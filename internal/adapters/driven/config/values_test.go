package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues_Getters(t *testing.T) {
	v := Values{
		"s":     "walk",
		"i":     42,
		"i64":   int64(7),
		"f":     12.5,
		"b":     true,
		"list":  []any{"x", 1, "y"},
		"typed": []string{"a"},
	}

	assert.Equal(t, "walk", v.String("s"))
	assert.Empty(t, v.String("i"))

	assert.Equal(t, 42, v.Int("i"))
	assert.Equal(t, 7, v.Int("i64"))
	assert.Equal(t, 12, v.Int("f"))
	assert.Zero(t, v.Int("s"))

	assert.InDelta(t, 12.5, v.Float("f"), 1e-9)
	assert.InDelta(t, 7.0, v.Float("i64"), 1e-9)
	assert.Zero(t, v.Float("b"))

	assert.True(t, v.Bool("b"))
	assert.False(t, v.Bool("s"))

	assert.Equal(t, []string{"x", "y"}, v.Strings("list"))
	assert.Equal(t, []string{"a"}, v.Strings("typed"))
	assert.Nil(t, v.Strings("i"))
	assert.Nil(t, v.Strings("missing"))
}

func TestFlatten(t *testing.T) {
	flat := Flatten(map[string]any{
		"home": map[string]any{"name": "Home"},
		"routes": map[string]any{
			"tolerance_percent": 10.0,
			"nested":            map[string]any{"deep": int64(1)},
		},
		"top": true,
	})

	assert.Equal(t, Values{
		"home.name":                "Home",
		"routes.tolerance_percent": 10.0,
		"routes.nested.deep":       int64(1),
		"top":                      true,
	}, flat)

	assert.Empty(t, Flatten(nil))
}

func TestValues_Nest(t *testing.T) {
	nested := Values{
		"a.b":   1,
		"a.c.d": "x",
		"e":     true,
	}.Nest()

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}, nested)
}

func TestValues_NestValueAndTableClash(t *testing.T) {
	nested := Values{"a": 1, "a.b": 2}.Nest()

	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["a.b"])
	assert.Equal(t, Values{"a": 1, "a.b": 2}, Flatten(nested))
}

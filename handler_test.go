package web_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/web"
)

func TestArgs_accessors(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	args := web.Args{
		"page":    "3",
		"size":    json.Number("25"),
		"ratio":   0.5,
		"bad":     "x",
		"flag":    true,
		"request": req,
	}

	tests := map[string]struct {
		got  any
		want any
	}{
		"string of string":  {got: args.String("page"), want: "3"},
		"string of number":  {got: args.String("size"), want: "25"},
		"string of bool":    {got: args.String("flag"), want: "true"},
		"string of missing": {got: args.String("nope"), want: ""},
		"int of string":     {got: args.Int("page", 1), want: 3},
		"int of number":     {got: args.Int("size", 1), want: 25},
		"int of float":      {got: args.Int("ratio", 1), want: 0},
		"int of bad string": {got: args.Int("bad", 1), want: 1},
		"int of missing":    {got: args.Int("nope", 7), want: 7},
		"has":               {got: args.Has("flag"), want: true},
		"has not":           {got: args.Has("nope"), want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.got)
		})
	}

	assert.Same(t, req, args.Request())
	assert.Nil(t, web.Args{}.Request())
}

func TestArgs_Decode(t *testing.T) {
	t.Parallel()

	type Query struct {
		Page    int           `arg:"page"`
		Size    int64         `arg:"size"`
		Ratio   float64       `arg:"ratio"`
		Admin   bool          `arg:"admin"`
		Name    string        `arg:"name"`
		Wait    time.Duration `arg:"wait"`
		Tags    []any         `arg:"tags"`
		Ignored string
	}

	args := web.Args{
		"page":    "2",
		"size":    json.Number("50"),
		"ratio":   json.Number("0.25"),
		"admin":   "true",
		"name":    "alice",
		"wait":    "1s",
		"tags":    []any{"a"},
		"Ignored": "set",
	}

	var q Query
	require.NoError(t, args.Decode(&q))
	assert.Equal(t, Query{
		Page:  2,
		Size:  50,
		Ratio: 0.25,
		Admin: true,
		Name:  "alice",
		Wait:  time.Second,
		Tags:  []any{"a"},
	}, q)
}

func TestArgs_Decode_errors(t *testing.T) {
	t.Parallel()

	type Query struct {
		Page int `arg:"page"`
	}

	var q Query
	err := web.Args{"page": "two"}.Decode(&q)
	require.Error(t, err)
	assert.ErrorIs(t, err, web.ErrMalformedBody)
	assert.Equal(t, http.StatusBadRequest, web.ErrorStatus(err))

	require.Error(t, web.Args{}.Decode(q))
}

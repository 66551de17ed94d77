package web_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/web"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()

	p, err := web.NewProfile(
		web.Arg("id"),
		web.Required("name"),
		web.Optional("page"),
		web.Required("email"),
		web.RawRequest(),
	)
	require.NoError(t, err)

	assert.True(t, p.HasRequest())
	assert.False(t, p.HasCatchAll())
	assert.True(t, p.NeedsArgs())
	assert.Equal(t, []string{"name", "page", "email"}, p.Named())
	assert.Equal(t, []string{"name", "email"}, p.Required())
	assert.Equal(t, []string{"id", "name", "page", "email", "request"}, p.Names())
}

func TestNewProfile_needs_args(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		params []web.Param
		want   bool
	}{
		"no parameters":       {want: false},
		"plain only":          {params: []web.Param{web.Arg("id")}, want: false},
		"request only":        {params: []web.Param{web.RawRequest()}, want: false},
		"optional named":      {params: []web.Param{web.Optional("q")}, want: true},
		"catch-all":           {params: []web.Param{web.Extra()}, want: true},
		"plain and catch-all": {params: []web.Param{web.Arg("id"), web.Extra()}, want: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := web.NewProfile(tc.params...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.NeedsArgs())
		})
	}
}

func TestNewProfile_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		params []web.Param
		want   error
	}{
		"plain parameter after request": {
			params: []web.Param{web.RawRequest(), web.Arg("id")},
			want:   web.ErrRequestNotLast,
		},
		"duplicate name": {
			params: []web.Param{web.Optional("id"), web.Required("id")},
			want:   web.ErrProfile,
		},
		"empty name": {
			params: []web.Param{web.Optional("")},
			want:   web.ErrProfile,
		},
		"two catch-alls": {
			params: []web.Param{web.Extra(), {Name: "rest", Kind: web.KindCatchAll}},
			want:   web.ErrProfile,
		},
		"two requests": {
			params: []web.Param{web.RawRequest(), {Name: "req", Kind: web.KindRequest}},
			want:   web.ErrProfile,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := web.NewProfile(tc.params...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewProfile_named_after_request(t *testing.T) {
	t.Parallel()

	p, err := web.NewProfile(web.RawRequest(), web.Optional("q"), web.Extra())
	require.NoError(t, err)
	assert.True(t, p.HasRequest())
	assert.True(t, p.HasCatchAll())
}

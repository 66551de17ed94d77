package orm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/web/orm"
)

func TestNewSchema_statements(t *testing.T) {
	t.Parallel()

	s, err := orm.NewSchema("users",
		orm.StringField("id", orm.PrimaryKey(), orm.WithDDL("varchar(50)")),
		orm.StringField("name"),
		orm.StringField("email"),
	)
	require.NoError(t, err)

	assert.Equal(t, "users", s.Table())
	assert.Equal(t, "id", s.PrimaryKey().Name)
	assert.Equal(t, []string{"id", "name", "email"}, s.Names())

	assert.Equal(t, "select `id`, `name`, `email` from `users`", s.SelectSQL())
	assert.Equal(t, "insert into `users` (`name`, `email`, `id`) values (?, ?, ?)", s.InsertSQL())
	assert.Equal(t, "update `users` set `name`=?, `email`=? where `id`=?", s.UpdateSQL())
	assert.Equal(t, "delete from `users` where `id`=?", s.DeleteSQL())
}

func TestNewSchema_column_override(t *testing.T) {
	t.Parallel()

	s, err := orm.NewSchema("blogs",
		orm.IntegerField("id", orm.PrimaryKey(), orm.WithColumn("blog_id")),
		orm.StringField("title", orm.WithColumn("name")),
	)
	require.NoError(t, err)

	assert.Equal(t, "select `blog_id`, `name` from `blogs`", s.SelectSQL())
	assert.Equal(t, "update `blogs` set `name`=? where `blog_id`=?", s.UpdateSQL())

	f, ok := s.Field("title")
	require.True(t, ok)
	assert.Equal(t, "name", f.ColumnName())
}

func TestNewSchema_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		table  string
		fields []orm.Field
		want   error
	}{
		"no primary key": {
			table:  "users",
			fields: []orm.Field{orm.StringField("name"), orm.StringField("email")},
			want:   orm.ErrMissingPrimaryKey,
		},
		"two primary keys": {
			table: "users",
			fields: []orm.Field{
				orm.StringField("id", orm.PrimaryKey()),
				orm.StringField("email", orm.PrimaryKey()),
			},
			want: orm.ErrDuplicatePrimaryKey,
		},
		"no fields at all": {
			table: "users",
			want:  orm.ErrMissingPrimaryKey,
		},
		"duplicate field": {
			table: "users",
			fields: []orm.Field{
				orm.StringField("id", orm.PrimaryKey()),
				orm.StringField("name"),
				orm.TextField("name"),
			},
			want: orm.ErrDuplicateField,
		},
		"two fields on one column": {
			table: "users",
			fields: []orm.Field{
				orm.StringField("id", orm.PrimaryKey()),
				orm.StringField("name"),
				orm.StringField("display", orm.WithColumn("name")),
			},
			want: orm.ErrDuplicateField,
		},
		"empty table": {
			fields: []orm.Field{orm.StringField("id", orm.PrimaryKey())},
			want:   orm.ErrEmptyName,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := orm.NewSchema(tc.table, tc.fields...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, orm.ErrSchema)
		})
	}
}

func TestMustSchema_panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		orm.MustSchema("users", orm.StringField("name"))
	})
}

func TestField_defaults(t *testing.T) {
	t.Parallel()

	calls := 0
	counter := func() string {
		calls++
		return "generated"
	}

	tests := map[string]struct {
		field   orm.Field
		wantDDL string
		want    any
		wantOK  bool
	}{
		"string has none": {
			field:   orm.StringField("name"),
			wantDDL: "varchar(100)",
		},
		"integer is zero": {
			field:   orm.IntegerField("n"),
			wantDDL: "bigint",
			want:    int64(0),
			wantOK:  true,
		},
		"float is zero": {
			field:   orm.FloatField("f"),
			wantDDL: "real",
			want:    0.0,
			wantOK:  true,
		},
		"boolean is false": {
			field:   orm.BooleanField("b"),
			wantDDL: "boolean",
			want:    false,
			wantOK:  true,
		},
		"text has none": {
			field:   orm.TextField("t"),
			wantDDL: "text",
		},
		"explicit value": {
			field:   orm.StringField("s", orm.WithDefault("x"), orm.WithDDL("varchar(50)")),
			wantDDL: "varchar(50)",
			want:    "x",
			wantOK:  true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.wantDDL, tc.field.ColumnType)
			v, ok := tc.field.DefaultValue()
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, v)
		})
	}

	f := orm.StringField("id", orm.WithDefault(counter))
	v, ok := f.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, "generated", v)
	_, _ = f.DefaultValue()
	assert.Equal(t, 2, calls)
}

func TestSchema_DDL(t *testing.T) {
	t.Parallel()

	s := orm.MustSchema("users",
		orm.StringField("id", orm.PrimaryKey(), orm.WithDDL("varchar(50)")),
		orm.BooleanField("admin"),
		orm.FloatField("created_at"),
	)

	want := "create table `users` (\n" +
		"  `id` varchar(50) not null,\n" +
		"  `admin` boolean,\n" +
		"  `created_at` real,\n" +
		"  primary key (`id`)\n)"
	assert.Equal(t, want, s.DDL())
}

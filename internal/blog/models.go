// Package blog is the demo application: users, blogs and comments stored
// through orm and served through web.
package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bjaus/web/orm"
)

// NextID returns a 50 character id: a zero padded millisecond timestamp, a
// random UUID in hex and a fixed suffix. Ids sort by creation time.
func NextID() string {
	return fmt.Sprintf("%015d%s000", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Now returns the current time as fractional Unix seconds, the format of
// every created_at column.
func Now() float64 {
	return float64(time.Now().UnixMicro()) / 1e6
}

// Schemas of the application tables.
var (
	Users = orm.MustSchema("users",
		orm.StringField("id", orm.PrimaryKey(), orm.WithDefault(NextID), orm.WithDDL("varchar(50)")),
		orm.StringField("email", orm.WithDDL("varchar(50)")),
		orm.StringField("passwd", orm.WithDDL("varchar(50)")),
		orm.BooleanField("admin"),
		orm.StringField("name", orm.WithDDL("varchar(50)")),
		orm.StringField("image", orm.WithDDL("varchar(500)")),
		orm.FloatField("created_at", orm.WithDefault(Now)),
	)

	Blogs = orm.MustSchema("blogs",
		orm.StringField("id", orm.PrimaryKey(), orm.WithDefault(NextID), orm.WithDDL("varchar(50)")),
		orm.StringField("user_id", orm.WithDDL("varchar(50)")),
		orm.StringField("user_name", orm.WithDDL("varchar(50)")),
		orm.StringField("user_image", orm.WithDDL("varchar(500)")),
		orm.StringField("name", orm.WithDDL("varchar(50)")),
		orm.StringField("summary", orm.WithDDL("varchar(200)")),
		orm.TextField("content"),
		orm.FloatField("created_at", orm.WithDefault(Now)),
	)

	Comments = orm.MustSchema("comments",
		orm.StringField("id", orm.PrimaryKey(), orm.WithDefault(NextID), orm.WithDDL("varchar(50)")),
		orm.StringField("blog_id", orm.WithDDL("varchar(50)")),
		orm.StringField("user_id", orm.WithDDL("varchar(50)")),
		orm.StringField("user_name", orm.WithDDL("varchar(50)")),
		orm.StringField("user_image", orm.WithDDL("varchar(500)")),
		orm.TextField("content"),
		orm.FloatField("created_at", orm.WithDefault(Now)),
	)
)

// User is the typed view of a users record.
type User struct {
	ID        string  `db:"id" json:"id"`
	Email     string  `db:"email" json:"email"`
	Passwd    string  `db:"passwd" json:"passwd"`
	Admin     bool    `db:"admin" json:"admin"`
	Name      string  `db:"name" json:"name"`
	Image     string  `db:"image" json:"image"`
	CreatedAt float64 `db:"created_at" json:"created_at"`
}

// Blog is the typed view of a blogs record.
type Blog struct {
	ID        string  `db:"id" json:"id"`
	UserID    string  `db:"user_id" json:"user_id"`
	UserName  string  `db:"user_name" json:"user_name"`
	UserImage string  `db:"user_image" json:"user_image"`
	Name      string  `db:"name" json:"name"`
	Summary   string  `db:"summary" json:"summary"`
	Content   string  `db:"content" json:"content"`
	CreatedAt float64 `db:"created_at" json:"created_at"`
}

// Comment is the typed view of a comments record.
type Comment struct {
	ID        string  `db:"id" json:"id"`
	BlogID    string  `db:"blog_id" json:"blog_id"`
	UserID    string  `db:"user_id" json:"user_id"`
	UserName  string  `db:"user_name" json:"user_name"`
	UserImage string  `db:"user_image" json:"user_image"`
	Content   string  `db:"content" json:"content"`
	CreatedAt float64 `db:"created_at" json:"created_at"`
}

// Store holds one model per table.
type Store struct {
	Users    *orm.Model
	Blogs    *orm.Model
	Comments *orm.Model
}

// NewStore binds the application schemas to exec.
func NewStore(exec orm.Executor, opts ...orm.ModelOption) *Store {
	return &Store{
		Users:    orm.NewModel(Users, exec, opts...),
		Blogs:    orm.NewModel(Blogs, exec, opts...),
		Comments: orm.NewModel(Comments, exec, opts...),
	}
}

// CreateTables creates the application tables.
func CreateTables(ctx context.Context, exec orm.Executor) error {
	for _, s := range []*orm.Schema{Users, Blogs, Comments} {
		if _, err := exec.Execute(ctx, s.DDL(), nil, true); err != nil {
			return fmt.Errorf("create table %s: %w", s.Table(), err)
		}
	}
	return nil
}

// scanAll converts records into typed views.
func scanAll[T any](records []*orm.Record) ([]T, error) {
	out := make([]T, len(records))
	for i, rec := range records {
		if err := rec.Scan(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

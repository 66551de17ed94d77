package blog

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/bjaus/web"
	"github.com/bjaus/web/orm"
)

// PageSize is the number of users per page of GET /api/users.
const PageSize = 10

var (
	emailRE   = regexp.MustCompile(`^[a-z0-9.\-_]+@[a-z0-9\-_]+(\.[a-z0-9\-_]+){1,4}$`)
	sha1HexRE = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

type handlers struct {
	store  *Store
	secret string
}

// Routes returns the application routes.
func Routes(s *Store, opts ...Option) []web.Route {
	h := &handlers{store: s}
	for _, opt := range opts {
		opt(h)
	}
	return []web.Route{
		web.GET("/{$}", h.index),
		web.GET("/api/users", h.listUsers, web.Optional("page")),
		web.POST("/api/users", h.register, web.Required("name"), web.Required("email"), web.Required("passwd")),
		web.GET("/api/users/{id}", h.getUser, web.Arg("id")),
		web.POST("/api/authenticate", h.authenticate, web.Required("email"), web.Required("passwd")),
		web.GET("/api/me", h.me, web.RawRequest()),
		web.GET("/api/blogs/{id}", h.getBlog, web.Arg("id")),
		web.POST("/api/blogs", h.createBlog, web.Extra()).With(web.WithStatus(http.StatusCreated)),
		web.DELETE("/api/blogs/{id}", h.deleteBlog, web.Arg("id")),
	}
}

func (h *handlers) index(ctx context.Context, _ web.Args) (any, error) {
	recs, err := h.store.Blogs.FindAll(ctx, orm.OrderBy("created_at desc"))
	if err != nil {
		return nil, err
	}
	blogs, err := scanAll[Blog](recs)
	if err != nil {
		return nil, err
	}
	return map[string]any{"blogs": blogs}, nil
}

func (h *handlers) listUsers(ctx context.Context, args web.Args) (any, error) {
	n, err := h.store.Users.FindNumber(ctx, "count(id)")
	if err != nil {
		return nil, err
	}
	page := NewPage(toInt(n), args.Int("page", 1), PageSize)
	if page.ItemCount == 0 {
		return map[string]any{"page": page, "users": []User{}}, nil
	}

	recs, err := h.store.Users.FindAll(ctx, orm.OrderBy("created_at desc"), orm.Limit(page.Offset, page.Size))
	if err != nil {
		return nil, err
	}
	users, err := scanAll[User](recs)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Passwd = maskedPasswd
	}
	return map[string]any{"page": page, "users": users}, nil
}

const maskedPasswd = "******"

func (h *handlers) register(ctx context.Context, args web.Args) (any, error) {
	name := strings.TrimSpace(args.String("name"))
	email := strings.ToLower(strings.TrimSpace(args.String("email")))
	passwd := args.String("passwd")

	if name == "" {
		return nil, web.InvalidValue("name", "name cannot be empty")
	}
	if !emailRE.MatchString(email) {
		return nil, web.InvalidValue("email", "invalid email")
	}
	if !sha1HexRE.MatchString(passwd) {
		return nil, web.InvalidValue("passwd", "passwd must be a sha1 hex digest")
	}

	existing, err := h.store.Users.FindAll(ctx, orm.Where("email=?", email))
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, web.NewAPIError("register:failed", "email", "email is already in use")
	}

	uid := NextID()
	rec := h.store.Users.New(map[string]any{
		"id":     uid,
		"name":   name,
		"email":  email,
		"passwd": hashPasswd(uid, passwd),
		"admin":  false,
		"image":  gravatar(email),
	})
	if err := rec.Save(ctx); err != nil {
		return nil, err
	}

	var u User
	if err := rec.Scan(&u); err != nil {
		return nil, err
	}
	u.Passwd = maskedPasswd
	return u, nil
}

func (h *handlers) getUser(ctx context.Context, args web.Args) (any, error) {
	rec, err := h.store.Users.Find(ctx, args.String("id"))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, web.ResourceNotFound("user", "user not found")
	}
	var u User
	if err := rec.Scan(&u); err != nil {
		return nil, err
	}
	u.Passwd = maskedPasswd
	return u, nil
}

func (h *handlers) getBlog(ctx context.Context, args web.Args) (any, error) {
	id := args.String("id")
	rec, err := h.store.Blogs.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, web.ResourceNotFound("blog", "blog not found")
	}
	var b Blog
	if err := rec.Scan(&b); err != nil {
		return nil, err
	}

	recs, err := h.store.Comments.FindAll(ctx, orm.Where("blog_id=?", id), orm.OrderBy("created_at desc"))
	if err != nil {
		return nil, err
	}
	comments, err := scanAll[Comment](recs)
	if err != nil {
		return nil, err
	}
	return map[string]any{"blog": b, "comments": comments}, nil
}

// blogInput is the body of POST /api/blogs.
type blogInput struct {
	UserID  string `arg:"user_id"`
	Name    string `arg:"name"`
	Summary string `arg:"summary"`
	Content string `arg:"content"`
}

func (h *handlers) createBlog(ctx context.Context, args web.Args) (any, error) {
	var in blogInput
	if err := args.Decode(&in); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Summary = strings.TrimSpace(in.Summary)
	in.Content = strings.TrimSpace(in.Content)
	for _, f := range []struct{ name, value string }{
		{"user_id", strings.TrimSpace(in.UserID)},
		{"name", in.Name},
		{"summary", in.Summary},
		{"content", in.Content},
	} {
		if f.value == "" {
			return nil, web.InvalidValue(f.name, f.name+" cannot be empty")
		}
	}

	author, err := h.store.Users.Find(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, web.ResourceNotFound("user_id", "author not found")
	}

	rec := h.store.Blogs.New(map[string]any{
		"user_id":    author.String("id"),
		"user_name":  author.String("name"),
		"user_image": author.String("image"),
		"name":       in.Name,
		"summary":    in.Summary,
		"content":    in.Content,
	})
	if err := rec.Save(ctx); err != nil {
		return nil, err
	}

	var b Blog
	if err := rec.Scan(&b); err != nil {
		return nil, err
	}
	return b, nil
}

func (h *handlers) deleteBlog(ctx context.Context, args web.Args) (any, error) {
	rec, err := h.store.Blogs.Find(ctx, args.String("id"))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, web.ResourceNotFound("blog", "blog not found")
	}
	if err := rec.Remove(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"id": rec.String("id")}, nil
}

// hashPasswd is the stored form of a client-side sha1 password digest.
func hashPasswd(uid, passwd string) string {
	sum := sha1.Sum([]byte(uid + ":" + passwd)) //nolint:gosec // stored password format
	return hex.EncodeToString(sum[:])
}

func gravatar(email string) string {
	sum := md5.Sum([]byte(email)) //nolint:gosec // gravatar ids are md5 by definition
	return fmt.Sprintf("http://www.gravatar.com/avatar/%s?d=mm&s=120", hex.EncodeToString(sum[:]))
}

// toInt reads a count returned by the driver.
func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}

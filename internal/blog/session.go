package blog

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bjaus/web"
	"github.com/bjaus/web/orm"
)

// CookieName is the session cookie set by POST /api/authenticate.
const CookieName = "awesession"

const sessionMaxAge = 24 * time.Hour

// Option configures the application routes.
type Option func(*handlers)

// WithCookieSecret sets the secret that signs session cookies.
func WithCookieSecret(secret string) Option {
	return func(h *handlers) {
		h.secret = secret
	}
}

// session is the authenticate response: the signed-in user plus the cookie
// that carries the session.
type session struct {
	User
	cookie *http.Cookie
}

func (s *session) SetHeaders(h http.Header) {
	h.Add("Set-Cookie", s.cookie.String())
}

func (h *handlers) authenticate(ctx context.Context, args web.Args) (any, error) {
	email := strings.ToLower(strings.TrimSpace(args.String("email")))
	passwd := args.String("passwd")
	if email == "" {
		return nil, web.InvalidValue("email", "invalid email")
	}
	if passwd == "" {
		return nil, web.InvalidValue("passwd", "invalid password")
	}

	recs, err := h.store.Users.FindAll(ctx, orm.Where("email=?", email))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, web.InvalidValue("email", "email not exist")
	}
	var u User
	if err := recs[0].Scan(&u); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(hashPasswd(u.ID, passwd)), []byte(u.Passwd)) != 1 {
		return nil, web.InvalidValue("passwd", "invalid password")
	}

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    h.signCookie(u, time.Now().Add(sessionMaxAge)),
		Path:     "/",
		MaxAge:   int(sessionMaxAge / time.Second),
		HttpOnly: true,
	}
	u.Passwd = maskedPasswd
	return &session{User: u, cookie: cookie}, nil
}

// me returns the user of the request's session cookie.
func (h *handlers) me(ctx context.Context, args web.Args) (any, error) {
	u, err := h.cookieUser(ctx, args.Request())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, web.PermissionDenied("please sign in")
	}
	u.Passwd = maskedPasswd
	return u, nil
}

// signCookie builds "<uid>-<expires>-<sha1(uid-passwd-expires-secret)>".
func (h *handlers) signCookie(u User, expires time.Time) string {
	exp := strconv.FormatInt(expires.Unix(), 10)
	return u.ID + "-" + exp + "-" + h.cookieDigest(u.ID, u.Passwd, exp)
}

func (h *handlers) cookieDigest(uid, passwd, exp string) string {
	sum := sha1.Sum([]byte(uid + "-" + passwd + "-" + exp + "-" + h.secret)) //nolint:gosec // session cookie format
	return hex.EncodeToString(sum[:])
}

// cookieUser resolves a session cookie. A missing, expired or forged cookie
// yields no user and no error.
func (h *handlers) cookieUser(ctx context.Context, r *http.Request) (*User, error) {
	if r == nil {
		return nil, nil
	}
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}
	parts := strings.Split(c.Value, "-")
	if len(parts) != 3 {
		return nil, nil
	}
	uid, exp, sig := parts[0], parts[1], parts[2]
	expires, err := strconv.ParseInt(exp, 10, 64)
	if err != nil || expires < time.Now().Unix() {
		return nil, nil
	}

	rec, err := h.store.Users.Find(ctx, uid)
	if err != nil || rec == nil {
		return nil, err
	}
	var u User
	if err := rec.Scan(&u); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(h.cookieDigest(uid, u.Passwd, exp)), []byte(sig)) != 1 {
		return nil, nil
	}
	return &u, nil
}

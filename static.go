package web

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// Static serves the files of fsys under prefix, e.g. "/static".
func (r *Router) Static(prefix string, fsys fs.FS) {
	prefix = strings.Trim(prefix, "/")
	var handler http.Handler = http.FileServerFS(fsys)
	if prefix != "" {
		prefix = "/" + prefix
		handler = http.StripPrefix(prefix, handler)
	}
	r.mux.Handle("GET "+prefix+"/{path...}", handler)
	slog.Info("add static", "prefix", prefix+"/")
}

// StaticDir serves the directory dir under prefix. A missing directory is
// logged and skipped so the application still starts without assets.
func (r *Router) StaticDir(prefix, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		slog.Warn("static directory not found", "dir", dir)
		return
	}
	r.Static(prefix, os.DirFS(dir))
}

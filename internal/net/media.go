package net

import (
	"errors"
	"io/fs"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strings"
)

var errMediaNotFound = errors.New("File not found")

// resolveMediaPath maps a request name to a regular file inside dir. Names
// that escape dir or point at directories are reported as not found.
func resolveMediaPath(dir, name string) (string, error) {
	if dir == "" || name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errMediaNotFound
	}
	if !filepath.IsLocal(name) {
		return "", errMediaNotFound
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errMediaNotFound
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", errMediaNotFound
	}
	return path, nil
}

func (h *handler) media(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet && r.Method != nethttp.MethodHead {
		writeError(w, nethttp.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/media/")
	path, err := resolveMediaPath(h.cfg.MediaDir, name)
	if err != nil {
		if errors.Is(err, errMediaNotFound) {
			h.logger.Printf("media not found: %q", name)
			writeJSON(w, nethttp.StatusNotFound, map[string]string{"error": errMediaNotFound.Error()})
			return
		}
		h.logger.Printf("media lookup failed for %q: %v", name, err)
		writeJSON(w, nethttp.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	nethttp.ServeFile(w, r, path)
}

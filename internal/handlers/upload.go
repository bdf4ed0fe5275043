package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/crucial707/landscape-lab/internal/storage"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// mediaPrefix is the public URL prefix images are served under.
const mediaPrefix = "/media/"

var projectFileExts = extSet(
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".dwg", ".dxf", ".skp", ".3ds", ".fbx", ".obj",
)

var imageExts = extSet(".jpg", ".jpeg", ".png", ".gif", ".webp")

func extSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// upload is a validated multipart file taken from the "file" form field.
type upload struct {
	File        multipart.File
	Name        string
	Size        int64
	ContentType string
}

// readUpload parses the multipart body and returns the "file" part when its
// extension is in allowed. On failure it writes the response and returns false.
// The caller must close File.
func readUpload(w http.ResponseWriter, r *http.Request, allowed map[string]bool) (*upload, bool) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, err, "")
			return nil, false
		}
		JSONError(w, "expected multipart/form-data body", http.StatusBadRequest)
		return nil, false
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		JSONValidationError(w, "validation failed", map[string]string{"file": "required"}, http.StatusBadRequest)
		return nil, false
	}

	name := path.Base(strings.ReplaceAll(hdr.Filename, `\`, "/"))
	ext := strings.ToLower(path.Ext(name))
	if !allowed[ext] {
		f.Close()
		JSONValidationError(w, "validation failed", map[string]string{"file": "file type not allowed"}, http.StatusBadRequest)
		return nil, false
	}
	return &upload{File: f, Name: name, Size: hdr.Size, ContentType: contentTypeFor(name, hdr.Header.Get("Content-Type"))}, true
}

// contentTypeFor prefers the extension's registered type over what the client sent.
func contentTypeFor(name, declared string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}

// putUpload stores up under a fresh key below prefix and returns the key.
func putUpload(ctx context.Context, store storage.Store, prefix string, up *upload) (string, error) {
	key := storage.NewKey(prefix, up.Name, time.Now().UTC())
	if err := store.Put(ctx, key, up.File, up.Size, up.ContentType); err != nil {
		return "", err
	}
	return key, nil
}

// discard deletes stored objects that are no longer referenced. Failures are logged.
func discard(ctx context.Context, store storage.Store, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("stored object cleanup failed", "key", key, "error", err)
		}
	}
}

func mediaURL(key string) string { return mediaPrefix + key }

// mediaKey returns the storage key behind a URL produced by mediaURL, or "".
func mediaKey(url string) string {
	key, ok := strings.CutPrefix(url, mediaPrefix)
	if !ok {
		return ""
	}
	return key
}

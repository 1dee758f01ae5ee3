package agent

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// File is one request attachment: a name, a MIME type, and the content as a
// base64 data URL. This is the shape the backend stores alongside history
// turns, so it round-trips through HistoryTurn unchanged.
type File struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// MaxFileBytes is the largest attachment PrepareFiles will load.
const MaxFileBytes = 10 << 20

var mediaTypesByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".html": "text/html",
	".json": "application/json",
	".js":   "text/javascript",
	".py":   "text/x-python",
	".md":   "text/markdown",
}

// PrepareFiles loads local paths into request attachments. Failures are per
// file: the offending file is skipped with a logged reason and preparation
// continues. The second return value carries one *FileError per skipped
// file so callers can report them.
func PrepareFiles(paths ...string) ([]File, []error) {
	var files []File
	var skipped []error
	for _, p := range paths {
		f, err := prepareFile(p)
		if err != nil {
			slog.Warn("skipping attachment", "path", p, "err", err)
			skipped = append(skipped, &FileError{Path: p, Cause: err})
			continue
		}
		files = append(files, f)
	}
	return files, skipped
}

func prepareFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.Size() > MaxFileBytes {
		return File{}, fmt.Errorf("%d bytes exceeds the %d byte limit", info.Size(), MaxFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	mt := mediaTypeFor(path, data)
	return File{
		Name: filepath.Base(path),
		Type: mt,
		Data: "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// mediaTypeFor resolves the MIME type from the file extension, falling back
// to content sniffing. Parameters like "; charset=utf-8" are stripped so the
// type compares cleanly against the backend's accepted list.
func mediaTypeFor(path string, data []byte) string {
	if mt, ok := mediaTypesByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	mt := http.DetectContentType(data)
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// base64Payload returns the payload after the data URL's comma, the same way
// the backend unwraps it. Data without a comma is assumed to be bare base64.
func (f File) base64Payload() string {
	if i := strings.Index(f.Data, ","); i >= 0 {
		return f.Data[i+1:]
	}
	return f.Data
}

func (f File) isImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

func (f File) isPDF() bool {
	return f.Type == "application/pdf"
}

// isTextLike reports whether the backend inlines this type as text rather
// than passing it through as a content block.
func (f File) isTextLike() bool {
	switch f.Type {
	case "text/csv", "text/plain", "text/html", "application/json",
		"text/javascript", "text/x-python", "text/markdown":
		return true
	}
	return false
}

// decodeText returns the decoded content of a text-like attachment.
func (f File) decodeText() (string, error) {
	b, err := base64.StdEncoding.DecodeString(f.base64Payload())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

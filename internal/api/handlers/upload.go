package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dom/vidshare-backend/internal/domain"
)

// multipartMemory is how much of a multipart body is held in memory before
// the standard library spills parts to disk.
const multipartMemory = 8 << 20

// UploadSettings controls where multipart files are staged for the media store.
type UploadSettings struct {
	Dir      string
	MaxBytes int64
}

func (u UploadSettings) parse(w http.ResponseWriter, r *http.Request) error {
	if u.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, u.MaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.NewError(domain.ErrValidation, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		}
		return domain.NewError(domain.ErrValidation, "invalid multipart form")
	}
	return nil
}

// save copies the multipart file in field to a temp file under the upload
// directory and returns its path. A missing field returns "".
func (u UploadSettings) save(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", domain.NewError(domain.ErrValidation, fmt.Sprintf("invalid %s file", field))
	}
	defer file.Close()

	dir := u.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	out, err := os.CreateTemp(dir, field+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return out.Name(), nil
}

// cleanup removes staged files the media store did not consume along with
// any parts the multipart reader spilled to disk.
func cleanup(r *http.Request, paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

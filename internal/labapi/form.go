package labapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// FormFile is one file part of a multipart form.
type FormFile struct {
	Field    string
	FileName string
	Content  io.Reader
}

// Form is a multipart/form-data body (equipment and profile images).
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// Encode renders the form and returns the body and its content type.
func (f *Form) Encode() ([]byte, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}

	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", file.Field, err)
		}

		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %s: %w", file.FileName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// File is an upload that goes into a multipart request.
type File struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Form is a multipart/form-data body with JSON parts, plain fields and
// files. The boundary and Content-Type are produced by mime/multipart.
type Form struct {
	jsonParts []formJSON
	fields    []formField
	files     []formFile
}

type formJSON struct {
	name  string
	value interface{}
}

type formField struct{ name, value string }

type formFile struct {
	name string
	file File
}

func NewForm() *Form { return &Form{} }

// JSON adds a part holding value encoded as application/json.
func (f *Form) JSON(name string, value interface{}) *Form {
	f.jsonParts = append(f.jsonParts, formJSON{name: name, value: value})
	return f
}

// Field adds a plain text field.
func (f *Form) Field(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File adds a file part. A nil file is ignored so optional uploads can be
// passed through unconditionally.
func (f *Form) File(name string, file *File) *Form {
	if file != nil && file.Content != nil {
		f.files = append(f.files, formFile{name: name, file: *file})
	}
	return f
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.jsonParts {
		data, err := json.Marshal(p.value)
		if err != nil {
			return nil, "", fmt.Errorf("encode part %s: %w", p.name, err)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(p.name)))
		h.Set("Content-Type", "application/json")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", err
		}
	}

	for _, ff := range f.files {
		ct := ff.file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(ff.name), quoteEscaper.Replace(ff.file.Filename)))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, ff.file.Content); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", ff.file.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// binder reads scalar inputs from the query string or a urlencoded form
// body. The first failure is kept and later reads become no-ops, so a
// handler can read every parameter and check Err once.
type binder struct {
	r   *http.Request
	err error
}

func bind(r *http.Request) *binder {
	b := &binder{r: r}
	if err := r.ParseForm(); err != nil {
		b.err = fmt.Errorf("invalid form: %w", err)
	}
	return b
}

// Err returns the first binding failure.
func (b *binder) Err() error { return b.err }

func (b *binder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

func (b *binder) has(name string) bool {
	_, ok := b.r.Form[name]
	return ok
}

// Path returns a chi URL parameter.
func (b *binder) Path(name string) string {
	v := chi.URLParam(b.r, name)
	if v == "" {
		b.fail("missing path parameter %s", name)
	}
	return v
}

// String returns an optional parameter as sent, empty when absent.
func (b *binder) String(name string) string {
	if b.err != nil {
		return ""
	}
	return b.r.Form.Get(name)
}

// scalar is String trimmed, for values parsed as numbers or booleans.
func (b *binder) scalar(name string) string {
	return strings.TrimSpace(b.String(name))
}

// Required returns a parameter that must be present and non-empty.
func (b *binder) Required(name string) string {
	v := b.String(name)
	if v == "" && b.err == nil {
		b.fail("missing required parameter %s", name)
	}
	return v
}

// OptionalInt returns nil when the parameter is absent.
func (b *binder) OptionalInt(name string) *int {
	v := b.scalar(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		b.fail("%s must be an integer, got %q", name, v)
		return nil
	}
	return &n
}

// Int returns def when the parameter is absent.
func (b *binder) Int(name string, def int) int {
	if p := b.OptionalInt(name); p != nil {
		return *p
	}
	return def
}

// OptionalFloat returns nil when the parameter is absent.
func (b *binder) OptionalFloat(name string) *float64 {
	v := b.scalar(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		b.fail("%s must be a number, got %q", name, v)
		return nil
	}
	return &f
}

// OptionalBool returns nil when the parameter is absent. It accepts the
// spellings strconv.ParseBool does plus yes/no and on/off.
func (b *binder) OptionalBool(name string) *bool {
	v := strings.ToLower(b.scalar(name))
	if v == "" {
		return nil
	}
	var out bool
	switch v {
	case "yes", "on":
		out = true
	case "no", "off":
		out = false
	default:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			b.fail("%s must be a boolean, got %q", name, v)
			return nil
		}
		out = parsed
	}
	return &out
}

// Bool returns def when the parameter is absent.
func (b *binder) Bool(name string, def bool) bool {
	if p := b.OptionalBool(name); p != nil {
		return *p
	}
	return def
}

// List returns every value of a repeated parameter, skipping blanks.
func (b *binder) List(name string) []string {
	if b.err != nil || !b.has(name) {
		return nil
	}
	var out []string
	for _, v := range b.r.Form[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

// decodeJSON reads a single JSON document into v. Unknown fields are ignored;
// trailing data is rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON body: unexpected data after document")
	}
	return nil
}

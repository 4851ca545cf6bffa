// Package render turns endpoint JSON into display values. Each panel is a
// table of bindings from a field path to a target id and a formatter.
package render

import (
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Target receives rendered values by id.
type Target interface {
	Set(id, label, text string)
}

// Formatter renders one value. v is a decoded JSON value: float64, string,
// bool, nil, []interface{} or map[string]interface{}.
type Formatter func(r *Renderer, v interface{}) string

// Binding maps a dotted field path (e.g. "house.live_data.pv_production",
// "access_control.rfid_cards.0.name") to a target. If Derive is set it is
// used instead of Path.
type Binding struct {
	Target string
	Label  string
	Path   string
	Derive func(r *Renderer, doc interface{}) (interface{}, bool)
	Format Formatter
}

type Panel struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Href     string    `json:"href"`
	Bindings []Binding `json:"-"`
}

type Renderer struct {
	printer *message.Printer
}

// New returns a renderer formatting numbers for locale (a BCP 47 tag such
// as "en" or "de-DE").
func New(locale string) *Renderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Renderer{printer: message.NewPrinter(tag)}
}

// Sprintf formats with the renderer's locale.
func (r *Renderer) Sprintf(format string, a ...interface{}) string {
	return r.printer.Sprintf(format, a...)
}

// Document converts v into the generic form bindings operate on.
func Document(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to marshal document")
	}
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal document")
	}
	return doc, nil
}

// Lookup resolves a dotted path in doc. Numeric segments index arrays.
func Lookup(doc interface{}, path string) (interface{}, bool) {
	if path == "" {
		return doc, true
	}
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]interface{}:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(c) {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Missing is shown for bindings whose value is absent.
const Missing = "-"

// Render writes every binding of p into t. doc must be in the form
// returned by Document.
func (r *Renderer) Render(p Panel, doc interface{}, t Target) {
	for _, b := range p.Bindings {
		var (
			v  interface{}
			ok bool
		)
		if b.Derive != nil {
			v, ok = b.Derive(r, doc)
		} else {
			v, ok = Lookup(doc, b.Path)
		}
		text := Missing
		if ok && v != nil {
			text = b.Format(r, v)
		}
		t.Set(b.Target, b.Label, text)
	}
}

// RenderValue is Render for a typed value.
func (r *Renderer) RenderValue(p Panel, v interface{}, t Target) error {
	doc, err := Document(v)
	if err != nil {
		return err
	}
	r.Render(p, doc, t)
	return nil
}

package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// MapTarget stores rendered values by target id.
type MapTarget struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMapTarget() *MapTarget {
	return &MapTarget{values: make(map[string]string)}
}

func (t *MapTarget) Set(id, _, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[id] = text
}

func (t *MapTarget) Get(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[id]
}

// Values returns a copy of all values.
func (t *MapTarget) Values() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// TextTarget collects "label: value" lines in binding order.
type TextTarget struct {
	Title string
	// Bold prints labels in bold on color capable terminals.
	Bold bool

	labels []string
	texts  []string
}

func (t *TextTarget) Set(_, label, text string) {
	t.labels = append(t.labels, label)
	t.texts = append(t.texts, text)
}

// WriteTo writes the collected lines to w.
func (t *TextTarget) WriteTo(w io.Writer) (int64, error) {
	width := 0
	for _, l := range t.labels {
		if len(l) > width {
			width = len(l)
		}
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(t.label(t.Title))
		sb.WriteString("\n")
	}
	for i, l := range t.labels {
		pad := strings.Repeat(" ", width-len(l))
		fmt.Fprintf(&sb, "  %s:%s %s\n", t.label(l), pad, t.texts[i])
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (t *TextTarget) label(s string) string {
	if t.Bold {
		return color.New(color.Bold).Sprint(s)
	}
	return s
}

func (t *TextTarget) String() string {
	var sb strings.Builder
	_, _ = t.WriteTo(&sb)
	return sb.String()
}

// Reset drops the collected lines.
func (t *TextTarget) Reset() {
	t.labels, t.texts = nil, nil
}

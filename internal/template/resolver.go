// Package template renders chat messages from user-supplied templates by
// substituting [key] and [key:format] placeholders with event values.
package template

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/rs/zerolog"
)

// DefaultTemplate is used when no message template is configured.
const DefaultTemplate = "<strong>[Level]:</strong> [RenderedMessage]"

// tokenPattern matches [key] and [key:format]. Neither part may contain brackets.
var tokenPattern = regexp.MustCompile(`\[([^\[\]]+?)(?::([^\[\]]+))?\]`)

// computedKeys are always resolvable. Event properties of the same name win.
var computedKeys = [...]struct {
	key   string
	value func(e *model.Event) any
}{
	{"level", func(e *model.Event) any { return e.Level.String() }},
	{"eventtype", func(e *model.Event) any { return e.EventType }},
	{"renderedmessage", func(e *model.Event) any { return e.RenderedMessage }},
}

// Resolver substitutes placeholders. It holds no per-call state and is safe
// for concurrent use.
type Resolver struct {
	logger zerolog.Logger
}

// NewResolver creates a new Resolver that reports format failures to logger.
func NewResolver(logger *zerolog.Logger) *Resolver {
	return &Resolver{
		logger: logger.With().Str("component", "template_resolver").Logger(),
	}
}

// Render returns tpl with every resolvable placeholder replaced by the
// corresponding event value. Unknown placeholders are left untouched and a
// blank tpl falls back to DefaultTemplate.
func (r *Resolver) Render(tpl string, e *model.Event) string {
	if strings.TrimSpace(tpl) == "" {
		tpl = DefaultTemplate
	}

	matches := tokenPattern.FindAllStringSubmatchIndex(tpl, -1)
	if len(matches) == 0 {
		return tpl
	}

	values := Placeholders(e)

	var b strings.Builder
	b.Grow(len(tpl))
	last := 0
	for _, m := range matches {
		b.WriteString(tpl[last:m[0]])
		last = m[1]

		key := tpl[m[2]:m[3]]
		value, ok := values[strings.ToLower(key)]
		if !ok {
			b.WriteString(tpl[m[0]:m[1]])
			continue
		}

		if m[4] < 0 {
			b.WriteString(Stringify(value))
			continue
		}
		b.WriteString(r.format(key, tpl[m[4]:m[5]], value))
	}
	b.WriteString(tpl[last:])

	return b.String()
}

// format applies a placeholder format spec, falling back to the plain value.
func (r *Resolver) format(key, spec string, value any) string {
	out, err := Format(spec, value)
	if err != nil {
		plain := Stringify(value)
		r.logger.Warn().
			Err(err).
			Str("key", key).
			Str("format", spec).
			Str("value", plain).
			Msg("could not format placeholder value, using unformatted value")
		return plain
	}
	return out
}

// Placeholders builds the lower-cased lookup map for an event: its properties
// plus the computed keys that the properties do not already define.
// When two properties differ only by case, the ordinally smaller name wins.
func Placeholders(e *model.Event) map[string]any {
	names := make([]string, 0, len(e.Properties))
	for name := range e.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]any, len(names)+len(computedKeys))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := values[key]; !exists {
			values[key] = e.Properties[name]
		}
	}

	for _, c := range computedKeys {
		if _, exists := values[c.key]; !exists {
			values[c.key] = c.value(e)
		}
	}

	return values
}

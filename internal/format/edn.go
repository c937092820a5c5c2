package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// WriteEDN writes v as EDN. Values go through JSON first so struct tags decide
// field names; keys become kebab-case keywords (entityId -> :entity-id,
// order_index -> :order-index).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := ednEncoder{pretty: pretty, indent: 2}
	enc.value(&buf, x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednEncoder struct {
	pretty bool
	indent int
}

func (e ednEncoder) value(buf *bytes.Buffer, v any, level int) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		buf.WriteString(strconv.Quote(t))
	case json.Number:
		buf.WriteString(ednNumber(t))
	case []any:
		e.seq(buf, '[', ']', len(t), level, func(i int) { e.value(buf, t[i], level+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.seq(buf, '{', '}', len(keys), level, func(i int) {
			buf.WriteByte(':')
			buf.WriteString(Keyword(keys[i]))
			buf.WriteByte(' ')
			e.value(buf, t[keys[i]], level+1)
		})
	default:
		buf.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
	}
}

func (e ednEncoder) seq(buf *bytes.Buffer, open, end byte, n, level int, item func(i int)) {
	buf.WriteByte(open)
	if n == 0 {
		buf.WriteByte(end)
		return
	}
	for i := 0; i < n; i++ {
		if e.pretty {
			buf.WriteByte('\n')
			buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
		} else if i > 0 {
			buf.WriteByte(' ')
		}
		item(i)
	}
	if e.pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", level*e.indent))
	}
	buf.WriteByte(end)
}

// ednNumber prints integral values without a fraction and everything else in
// the shortest float form, so 15 stays 15 and 7.5 stays 7.5.
func ednNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return strconv.Quote(n.String())
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Keyword converts a JSON field name to a kebab-case EDN keyword name.
func Keyword(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == '_' || r == ' ':
			b.WriteByte('-')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}

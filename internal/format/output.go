package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Writer renders CLI output in one format.
//
// Supported formats:
// - json (default)
// - edn
type Writer struct {
	W      io.Writer
	Format string
	Pretty bool
}

func (w Writer) Validate() error {
	switch w.Format {
	case "", "json", "edn":
		return nil
	default:
		return fmt.Errorf("unknown format: %s", w.Format)
	}
}

// Write writes v followed by a newline, so change records stream one per line
// when Pretty is off.
func (w Writer) Write(v any) error {
	switch w.Format {
	case "", "json":
		return WriteJSON(w.W, v, w.Pretty)
	case "edn":
		return WriteEDN(w.W, v, w.Pretty)
	default:
		return fmt.Errorf("unknown format: %s", w.Format)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

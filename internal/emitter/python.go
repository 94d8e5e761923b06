package emitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// pyLiteral renders v as a Python expression. The value goes through JSON
// first so that ordered maps keep their key order and plain maps come out
// sorted.
func pyLiteral(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var b strings.Builder
	if err := writeValue(dec, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(dec *json.Decoder, b *strings.Builder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read value: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			b.WriteByte('{')
			for i := 0; dec.More(); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				key, err := dec.Token()
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
				b.WriteString(strconv.Quote(key.(string)))
				b.WriteString(": ")
				if err := writeValue(dec, b); err != nil {
					return err
				}
			}
			b.WriteByte('}')
		case '[':
			b.WriteByte('[')
			for i := 0; dec.More(); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				if err := writeValue(dec, b); err != nil {
					return err
				}
			}
			b.WriteByte(']')
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil && err != io.EOF {
			return fmt.Errorf("failed to read delimiter: %w", err)
		}
	case string:
		b.WriteString(strconv.Quote(t))
	case json.Number:
		b.WriteString(t.String())
	case bool:
		if t {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case nil:
		b.WriteString("None")
	}
	return nil
}

// pyDocstring makes text safe inside a triple-quoted Python string.
func pyDocstring(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return strings.ReplaceAll(text, `"""`, `\"\"\"`)
}

// pyComment keeps text on a single comment line.
func pyComment(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

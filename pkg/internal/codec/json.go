package codec

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONEncoder encodes a generic type into JSON, one value per line.
type JSONEncoder[T any] struct{}

// JSONDecoder decodes JSON into a generic type.
type JSONDecoder[T any] struct{}

func NewJSONEncoder[T any]() *JSONEncoder[T] {
	return &JSONEncoder[T]{}
}

func NewJSONDecoder[T any]() *JSONDecoder[T] {
	return &JSONDecoder[T]{}
}

// Encode writes the JSON encoding of elem followed by a newline.
func (e *JSONEncoder[T]) Encode(w io.Writer, elem T) error {
	return json.NewEncoder(w).Encode(elem)
}

// EncodeLines writes elems as newline-delimited JSON.
func (e *JSONEncoder[T]) EncodeLines(w io.Writer, elems []T) error {
	enc := json.NewEncoder(w)
	for _, elem := range elems {
		if err := enc.Encode(elem); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads one JSON value from r.
func (d *JSONDecoder[T]) Decode(r io.Reader) (T, error) {
	var t T
	err := json.NewDecoder(r).Decode(&t)
	return t, err
}

// DecodeLines reads newline-delimited JSON until EOF. Blank lines are ignored.
func (d *JSONDecoder[T]) DecodeLines(r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var t T
		if err := json.Unmarshal(line, &t); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, scanner.Err()
}

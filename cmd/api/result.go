package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Field is one key/value pair of a JSON object, kept in document order.
type Field struct {
	Key   string
	Value any
}

// Record is a JSON object whose key order is preserved. The backend builds
// result rows from pandas records, and that column order is the display order.
type Record []Field

// Keys returns the record's keys in document order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Values returns the record's values in document order.
func (r Record) Values() []any {
	values := make([]any, len(r))
	for i, f := range r {
		values[i] = f.Value
	}
	return values
}

// Get looks a key up; the last occurrence wins like in a JSON object.
func (r Record) Get(key string) (any, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Key == key {
			return r[i].Value, true
		}
	}
	return nil, false
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	rec, ok := v.(Record)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*r = rec
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResultKind tags the shape a result payload was decoded into.
type ResultKind int

const (
	ResultTable ResultKind = iota + 1
	ResultKeyValue
	ResultScalar
)

func (k ResultKind) String() string {
	switch k {
	case ResultTable:
		return "table"
	case ResultKeyValue:
		return "key-value"
	case ResultScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Result is the untyped "result" of a chat answer, classified once when the
// response is decoded:
//
//   - a JSON array becomes a Table whose Columns are the first row's keys;
//     every row keeps its own values in its own order (rendered positionally)
//   - a JSON object becomes KeyValue pairs
//   - anything else is a Scalar
//
// A JSON null never produces a Result (the field stays nil).
type Result struct {
	Kind    ResultKind
	Columns []string
	Rows    []Record
	Pairs   Record
	Value   any

	raw json.RawMessage
}

// scalarColumn names the single column used when a result array holds
// plain values instead of objects.
const scalarColumn = "value"

// ParseResult classifies raw JSON. It returns nil, nil for null or empty input.
func ParseResult(raw []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	v, err := decodeValue(newDecoder(trimmed))
	if err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	res := NewResult(v)
	res.raw = append(json.RawMessage(nil), trimmed...)
	return res, nil
}

// NewResult classifies an already decoded value (as produced by this
// package's decoder: Record for objects, []any for arrays).
func NewResult(v any) *Result {
	switch val := v.(type) {
	case []any:
		res := &Result{Kind: ResultTable, Rows: make([]Record, 0, len(val))}
		for i, item := range val {
			row, ok := item.(Record)
			if !ok {
				row = Record{{Key: scalarColumn, Value: item}}
			}
			if i == 0 {
				res.Columns = row.Keys()
			}
			res.Rows = append(res.Rows, row)
		}
		return res
	case Record:
		return &Result{Kind: ResultKeyValue, Pairs: val}
	default:
		return &Result{Kind: ResultScalar, Value: val}
	}
}

func (r *Result) UnmarshalJSON(data []byte) error {
	parsed, err := ParseResult(data)
	if err != nil {
		return err
	}
	if parsed == nil {
		*r = Result{}
		return nil
	}
	*r = *parsed
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	switch r.Kind {
	case ResultTable:
		return json.Marshal(r.Rows)
	case ResultKeyValue:
		return json.Marshal(r.Pairs)
	case ResultScalar:
		return json.Marshal(r.Value)
	}
	return []byte("null"), nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

var errUnexpectedDelim = errors.New("unexpected JSON delimiter")

// decodeValue reads one JSON value from dec, turning objects into Records
// so key order survives. Numbers stay json.Number.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		rec := Record{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			rec = append(rec, Field{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnexpectedDelim, delim)
	}
}

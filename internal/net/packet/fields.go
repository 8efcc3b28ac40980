package packet

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldWriter builds a pipe-delimited UTF-8 payload field by field, in the
// order documented for each message kind.
type FieldWriter struct {
	fields []string
}

func NewFieldWriter() *FieldWriter {
	return &FieldWriter{fields: make([]string, 0, 8)}
}

func (w *FieldWriter) String(s string) *FieldWriter {
	w.fields = append(w.fields, s)
	return w
}

func (w *FieldWriter) Uint64(v uint64) *FieldWriter {
	w.fields = append(w.fields, strconv.FormatUint(v, 10))
	return w
}

func (w *FieldWriter) Int64(v int64) *FieldWriter {
	w.fields = append(w.fields, strconv.FormatInt(v, 10))
	return w
}

func (w *FieldWriter) Int(v int) *FieldWriter {
	return w.Int64(int64(v))
}

func (w *FieldWriter) Float(v float64) *FieldWriter {
	w.fields = append(w.fields, strconv.FormatFloat(v, 'f', -1, 64))
	return w
}

func (w *FieldWriter) Bool(v bool) *FieldWriter {
	if v {
		w.fields = append(w.fields, "1")
	} else {
		w.fields = append(w.fields, "0")
	}
	return w
}

// Bytes returns the joined, pipe-delimited payload.
func (w *FieldWriter) Bytes() []byte {
	return []byte(strings.Join(w.fields, "|"))
}

// FieldReader parses a pipe-delimited UTF-8 payload field by field.
type FieldReader struct {
	fields []string
	pos    int
	err    error
}

func NewFieldReader(payload []byte) *FieldReader {
	return &FieldReader{fields: strings.Split(string(payload), "|")}
}

// Err returns the first parse error encountered, if any.
func (r *FieldReader) Err() error {
	return r.err
}

func (r *FieldReader) next() string {
	if r.pos >= len(r.fields) {
		r.err = fmt.Errorf("field %d: payload has only %d fields", r.pos, len(r.fields))
		return ""
	}
	v := r.fields[r.pos]
	r.pos++
	return v
}

func (r *FieldReader) String() string {
	return r.next()
}

func (r *FieldReader) Uint64() uint64 {
	v, err := strconv.ParseUint(r.next(), 10, 64)
	if err != nil && r.err == nil {
		r.err = err
	}
	return v
}

func (r *FieldReader) Int64() int64 {
	v, err := strconv.ParseInt(r.next(), 10, 64)
	if err != nil && r.err == nil {
		r.err = err
	}
	return v
}

func (r *FieldReader) Int() int {
	return int(r.Int64())
}

func (r *FieldReader) Float() float64 {
	v, err := strconv.ParseFloat(r.next(), 64)
	if err != nil && r.err == nil {
		r.err = err
	}
	return v
}

func (r *FieldReader) Bool() bool {
	return r.next() == "1"
}

// Remaining returns the fields not yet consumed.
func (r *FieldReader) Remaining() []string {
	if r.pos >= len(r.fields) {
		return nil
	}
	return r.fields[r.pos:]
}

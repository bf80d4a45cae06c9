package value

import (
	"bytes"
	"encoding/json"
	"io"

	rerrors "github.com/pedronauck/reworm/internal/errors"
)

// ErrInvalidJSON matches errors returned by Parse.
var ErrInvalidJSON = rerrors.New("R041")

// Parse decodes a JSON document into a Value. Integral numbers decode to
// Int so that round trips keep their type.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, rerrors.New("R041").Wrap(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, rerrors.New("R041").WithDetail("trailing data after JSON value")
	}
	return Of(raw)
}

// Marshal encodes v as JSON. A nil Value encodes as null.
func Marshal(v Value) ([]byte, error) {
	return json.Marshal(Interface(v))
}

// MarshalJSON implements json.Marshaler.
func (p Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(Interface(r))
}

// MarshalJSON implements json.Marshaler.
func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(Interface(s))
}

// Format renders v as compact JSON for logs and CLI output.
func Format(v Value) string {
	data, err := Marshal(v)
	if err != nil {
		return "<unencodable " + KindOf(v).String() + ">"
	}
	return string(data)
}

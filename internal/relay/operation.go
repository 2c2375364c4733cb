package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jwtly10/kid-relay/internal/upstream"
)

// maxBodyBytes matches the JSON body limit the relay has always accepted
const maxBodyBytes = 100 << 10

const invalidJSONMessage = "Request body must be valid JSON"

// Source says where an operation reads its inputs from
type Source int

const (
	SourceQuery Source = iota
	SourceBody
)

type Field struct {
	Name     string
	Required bool
}

// Operation describes one relayed upstream endpoint. The inbound route uses
// the same method and path as the upstream one.
type Operation struct {
	Name   string
	Method string
	Path   string
	Source Source
	Fields []Field

	// RawBody forwards the inbound JSON body unchanged. Fields are ignored.
	RawBody bool
	// RequiredMessage is returned when any required field is absent
	RequiredMessage string
	// Validate runs after the required fields are checked
	Validate func(in Input) error
	// EmptySuccess drops the upstream body from a 2xx response
	EmptySuccess bool
}

// ValidationError is a caller side input defect. No upstream call is made.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Status: http.StatusBadRequest, Message: msg}
}

// Input holds the present values of an inbound request. A value is present
// when it is non-empty: a query parameter needs at least one value other than
// "", body values must not be null or "".
type Input struct {
	query url.Values
	body  map[string]json.RawMessage
	raw   []byte
}

// Has reports whether name was supplied with a non-empty value
func (in Input) Has(name string) bool {
	if in.query != nil {
		return len(in.queryValues(name)) > 0
	}
	v, ok := in.body[name]
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(v)
	return !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte(`""`))
}

// queryValues returns the non-empty values of a repeated query parameter
func (in Input) queryValues(name string) []string {
	var vals []string
	for _, v := range in.query[name] {
		if v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

// ExactlyOneOf requires exactly one of a and b to be present
func ExactlyOneOf(a, b string) func(Input) error {
	return func(in Input) error {
		hasA, hasB := in.Has(a), in.Has(b)
		switch {
		case !hasA && !hasB:
			return invalid(fmt.Sprintf("Either %s or %s is required", a, b))
		case hasA && hasB:
			return invalid(fmt.Sprintf("Provide either %s or %s, not both", a, b))
		}
		return nil
	}
}

// bind reads the inputs of op from r
func (op Operation) bind(w http.ResponseWriter, r *http.Request) (Input, error) {
	if op.Source == SourceQuery {
		return Input{query: r.URL.Query()}, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Input{}, &ValidationError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
		}
		return Input{}, invalid(invalidJSONMessage)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	// Only objects and arrays are accepted at the top level
	if (body[0] != '{' && body[0] != '[') || !json.Valid(body) {
		return Input{}, invalid(invalidJSONMessage)
	}
	if op.RawBody {
		return Input{raw: body}, nil
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		// Valid JSON that is not an object carries none of the fields
		fields = map[string]json.RawMessage{}
	}
	return Input{body: fields}, nil
}

func (op Operation) validate(in Input) error {
	for _, f := range op.Fields {
		if f.Required && !in.Has(f.Name) {
			return invalid(op.RequiredMessage)
		}
	}
	if op.Validate != nil {
		return op.Validate(in)
	}
	return nil
}

// call builds the outbound request carrying only the declared, present fields
func (op Operation) call(in Input) (upstream.Call, error) {
	c := upstream.Call{
		Operation: op.Name,
		Method:    op.Method,
		Path:      op.Path,
	}

	switch {
	case op.RawBody:
		c.Body = in.raw
	case op.Source == SourceQuery:
		q := url.Values{}
		for _, f := range op.Fields {
			if in.Has(f.Name) {
				q[f.Name] = in.queryValues(f.Name)
			}
		}
		c.Query = q
	default:
		payload := make(map[string]json.RawMessage, len(op.Fields))
		for _, f := range op.Fields {
			if in.Has(f.Name) {
				payload[f.Name] = in.body[f.Name]
			}
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return upstream.Call{}, fmt.Errorf("failed to encode %s body: %w", op.Name, err)
		}
		c.Body = b
	}

	return c, nil
}

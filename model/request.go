package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// ParseMethod matches s case-insensitively against the supported verbs.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(s)); m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

// Header is a single name/value pair. On the wire it is a 2-element array
// of strings.
type Header struct {
	Name  string
	Value string
}

func (h Header) MarshalJSON() ([]byte, error) {
	return marshal([2]string{h.Name, h.Value})
}

func (h *Header) UnmarshalJSON(data []byte) error {
	var pair []any
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("header must have exactly 2 elements, got %d", len(pair))
	}
	name, ok := pair[0].(string)
	if !ok {
		return fmt.Errorf("header name must be a string, got %T", pair[0])
	}
	value, ok := pair[1].(string)
	if !ok {
		return fmt.Errorf("header value must be a string, got %T", pair[1])
	}
	h.Name, h.Value = name, value
	return nil
}

// Headers keeps header pairs in order, duplicates included.
type Headers []Header

func (hs Headers) MarshalJSON() ([]byte, error) {
	if hs == nil {
		return []byte("[]"), nil
	}
	return marshal([]Header(hs))
}

// ParseHeaders decodes a JSON array of [name, value] string pairs.
func ParseHeaders(text string) (Headers, error) {
	data := bytes.TrimSpace([]byte(text))
	if !bytes.HasPrefix(data, []byte("[")) {
		return nil, errors.New("headers must be a JSON array")
	}
	var hs []Header
	if err := json.Unmarshal(data, &hs); err != nil {
		return nil, err
	}
	if hs == nil {
		hs = []Header{}
	}
	return hs, nil
}

// Values returns every value for name, compared case-insensitively.
func (hs Headers) Values(name string) []string {
	var values []string
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

// Get returns the first value for name, or "".
func (hs Headers) Get(name string) string {
	if v := hs.Values(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

type Request struct {
	Method  string
	URL     string
	Headers Headers
	// Body is nil when the request carries no body.
	Body *string
}

package model

import (
	"bytes"
	"encoding/json"
)

// ErrorTag prefixes the body of every soft-failure response.
const ErrorTag = "Error: "

type Response struct {
	// StatusCode 0 means the exchange never completed; Body holds the error.
	StatusCode uint16 `json:"status_code"`
	// Headers are sorted by lower-cased name. Repeated names keep the order
	// they arrived in.
	Headers    Headers `json:"headers"`
	Body       string  `json:"body"`
	DurationMs uint64  `json:"duration_ms"`
}

func ErrorResponse(err error) Response {
	return Response{
		StatusCode: 0,
		Headers:    Headers{},
		Body:       ErrorTag + err.Error(),
	}
}

func (r Response) Failed() bool {
	return r.StatusCode == 0
}

// Encode serializes r as compact JSON.
func (r Response) Encode() ([]byte, error) {
	return marshal(r)
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func DecodeResponse(data []byte) (*Response, error) {
	r := &Response{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	if r.Headers == nil {
		r.Headers = Headers{}
	}
	return r, nil
}

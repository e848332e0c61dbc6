package ffi

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ababil/ababil/log"
	"github.com/ababil/ababil/model"
)

var (
	ErrNullArgument = errors.New("null argument")
	ErrInvalidText  = errors.New("argument is not valid UTF-8")
)

// Presence records how an optional boundary argument was resolved.
type Presence uint8

const (
	Absent Presence = iota
	Malformed
	Present
)

func (p Presence) String() string {
	switch p {
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	case Present:
		return "present"
	}
	return fmt.Sprintf("Presence(%d)", uint8(p))
}

// Optional is the outcome of decoding an optional argument. Value is only
// meaningful when Presence is Present; Err explains a Malformed outcome.
type Optional[T any] struct {
	Value    T
	Presence Presence
	Err      error
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Presence == Present
}

// DecodeRequest turns borrowed boundary strings into an owned request.
// A nil pointer stands for the caller's null handle. Method and URL are
// mandatory: a null or non-UTF-8 value is a hard failure. Headers and body
// that are null or malformed are treated as absent.
func DecodeRequest(ctx context.Context, method, url, headersJSON, body *string) (model.Request, error) {
	m, err := requiredText("method", method)
	if err != nil {
		return model.Request{}, err
	}
	u, err := requiredText("url", url)
	if err != nil {
		return model.Request{}, err
	}

	req := model.Request{Method: m, URL: u, Headers: model.Headers{}}

	headers := decodeHeaders(headersJSON)
	if hs, ok := headers.Get(); ok {
		req.Headers = hs
	} else if headers.Presence == Malformed {
		log.Debug(ctx, "Ignoring malformed headers", "url", u, headers.Err)
	}

	b := decodeBody(body)
	if v, ok := b.Get(); ok {
		req.Body = &v
	} else if b.Presence == Malformed {
		log.Debug(ctx, "Ignoring malformed body", "url", u, b.Err)
	}

	return req, nil
}

func requiredText(name string, s *string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%s: %w", name, ErrNullArgument)
	}
	if !utf8.ValidString(*s) {
		return "", fmt.Errorf("%s: %w", name, ErrInvalidText)
	}
	return *s, nil
}

func decodeHeaders(s *string) Optional[model.Headers] {
	if s == nil {
		return Optional[model.Headers]{Presence: Absent}
	}
	if !utf8.ValidString(*s) {
		return Optional[model.Headers]{Presence: Malformed, Err: ErrInvalidText}
	}
	hs, err := model.ParseHeaders(*s)
	if err != nil {
		return Optional[model.Headers]{Presence: Malformed, Err: err}
	}
	return Optional[model.Headers]{Value: hs, Presence: Present}
}

func decodeBody(s *string) Optional[string] {
	if s == nil {
		return Optional[string]{Presence: Absent}
	}
	if !utf8.ValidString(*s) {
		return Optional[string]{Presence: Malformed, Err: ErrInvalidText}
	}
	return Optional[string]{Value: *s, Presence: Present}
}

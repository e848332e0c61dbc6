// Package guest gives Go programs the shim through a single interface,
// whether they run natively or as WebAssembly guests of core/wasmhost.
package guest

import (
	"context"
	"errors"
	"fmt"

	"github.com/ababil/ababil/model"
)

var (
	// ErrHardFailure means no response could be produced for the request.
	ErrHardFailure = errors.New("http request could not be performed")
	ErrTruncated   = errors.New("response payload truncated")
)

// Fetcher performs one HTTP exchange through the shim. Network and protocol
// failures come back as a Response with StatusCode 0; an error is only
// returned when no Response could be produced.
type Fetcher interface {
	Fetch(ctx context.Context, req model.Request) (*model.Response, error)
}

type boundaryArgs struct {
	method  string
	url     string
	headers *string
	body    *string
}

// newBoundaryArgs converts req into the shim's argument strings. Nil headers
// are passed as absent.
func newBoundaryArgs(req model.Request) (boundaryArgs, error) {
	args := boundaryArgs{method: req.Method, url: req.URL, body: req.Body}
	if req.Headers != nil {
		b, err := req.Headers.MarshalJSON()
		if err != nil {
			return boundaryArgs{}, fmt.Errorf("encoding headers: %w", err)
		}
		h := string(b)
		args.headers = &h
	}
	return args, nil
}

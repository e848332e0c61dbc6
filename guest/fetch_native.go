//go:build !wasip1

package guest

import (
	"context"
	"fmt"

	"github.com/ababil/ababil/ffi"
	"github.com/ababil/ababil/model"
)

type nativeFetcher struct{}

var _ Fetcher = (*nativeFetcher)(nil)

// NewFetcher returns a Fetcher that runs the shim in-process.
func NewFetcher() Fetcher {
	return &nativeFetcher{}
}

func (nf *nativeFetcher) Fetch(ctx context.Context, req model.Request) (*model.Response, error) {
	args, err := newBoundaryArgs(req)
	if err != nil {
		return nil, err
	}
	payload, err := ffi.MakeHTTPRequest(ctx, &args.method, &args.url, args.headers, args.body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHardFailure, err)
	}
	return model.DecodeResponse([]byte(payload))
}

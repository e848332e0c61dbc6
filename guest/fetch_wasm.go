//go:build wasip1

package guest

import (
	"context"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ababil/ababil/model"
)

//go:wasmimport ababil http_request
//go:noescape
func hostHTTPRequest(
	methodPtr, methodLen uint32,
	urlPtr, urlLen uint32,
	headersPtr, headersLen uint32,
	bodyPtr, bodyLen uint32,
	resultPtr, resultCapacity, resultLenPtr uint32,
) uint32

const defaultResultCapacity = 64 * 1024

// emptyArg gives empty strings a non-zero address, since 0 means null.
var emptyArg byte

type wasmFetcher struct{}

var _ Fetcher = (*wasmFetcher)(nil)

// NewFetcher returns a Fetcher that calls the host's ababil.http_request.
func NewFetcher() Fetcher {
	return &wasmFetcher{}
}

// Fetch calls the host once with a default sized buffer. When the payload
// does not fit, the host reports its real size and the call is repeated once
// with a buffer of that size, which sends the request a second time.
func (wf *wasmFetcher) Fetch(ctx context.Context, req model.Request) (*model.Response, error) {
	args, err := newBoundaryArgs(req)
	if err != nil {
		return nil, err
	}

	capacity := uint32(defaultResultCapacity)
	for attempt := 0; attempt < 2; attempt++ {
		buf := make([]byte, capacity)
		n, ok := callHost(args, buf)
		if !ok {
			return nil, ErrHardFailure
		}
		if n <= capacity {
			return model.DecodeResponse(buf[:n])
		}
		capacity = n
	}
	return nil, fmt.Errorf("%w: payload grew past %d bytes", ErrTruncated, capacity)
}

func callHost(args boundaryArgs, buf []byte) (uint32, bool) {
	var resultLen uint32
	methodPtr, methodLen := stringArg(&args.method)
	urlPtr, urlLen := stringArg(&args.url)
	headersPtr, headersLen := stringArg(args.headers)
	bodyPtr, bodyLen := stringArg(args.body)

	rc := hostHTTPRequest(
		methodPtr, methodLen,
		urlPtr, urlLen,
		headersPtr, headersLen,
		bodyPtr, bodyLen,
		uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf)))), uint32(len(buf)),
		uint32(uintptr(unsafe.Pointer(&resultLen))),
	)
	runtime.KeepAlive(args)
	runtime.KeepAlive(buf)
	return resultLen, rc == 0
}

// stringArg returns the (ptr, len) view of s. Nil maps to a zero pointer.
func stringArg(s *string) (uint32, uint32) {
	if s == nil {
		return 0, 0
	}
	if len(*s) == 0 {
		return uint32(uintptr(unsafe.Pointer(&emptyArg))), 0
	}
	return uint32(uintptr(unsafe.Pointer(unsafe.StringData(*s)))), uint32(len(*s))
}

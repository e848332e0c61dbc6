package wasmhost

import (
	"context"
	"fmt"

	"github.com/ababil/ababil/ffi"
	"github.com/ababil/ababil/log"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

const (
	// HostModuleName is the import module guests use, e.g.
	// //go:wasmimport ababil http_request
	HostModuleName  = "ababil"
	HTTPRequestFunc = "http_request"
)

const (
	resultWritten     uint32 = 0
	resultHardFailure uint32 = 1
)

// Register instantiates the host module exposing http_request into runtime.
// It must be called before instantiating guests that import it.
func Register(ctx context.Context, runtime wazero.Runtime) error {
	_, err := runtime.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithFunc(httpRequest).
		Export(HTTPRequestFunc).
		Instantiate(ctx)
	if err != nil {
		log.Error(ctx, "Failed to instantiate host module", "module", HostModuleName, err)
		return fmt.Errorf("instantiate host module '%s': %w", HostModuleName, err)
	}
	log.Debug(ctx, "Instantiated host module", "module", HostModuleName, "func", HTTPRequestFunc)
	return nil
}

// httpRequest is the host side of ababil.http_request.
//
// Each input is a (ptr, len) view into guest memory; ptr 0 stands for null.
// The JSON payload is copied into the guest buffer at resultPtr, truncated to
// resultCapacity, and its full length is always stored at resultLenPtr so the
// guest can retry with a bigger buffer.
//
// Returns 0 when a payload was written and 1 on hard failure (null method or
// url, or a guest memory fault). Nothing is allocated in guest memory, so
// there is nothing for the guest to release.
func httpRequest(
	ctx context.Context, mod api.Module,
	methodPtr, methodLen uint32,
	urlPtr, urlLen uint32,
	headersPtr, headersLen uint32,
	bodyPtr, bodyLen uint32,
	resultPtr, resultCapacity, resultLenPtr uint32,
) uint32 {
	mem := mod.Memory()
	if mem == nil {
		log.Error(ctx, "http_request called by a module without memory", "module", mod.Name())
		return resultHardFailure
	}

	var args [4]*string
	for i, a := range [4][2]uint32{
		{methodPtr, methodLen},
		{urlPtr, urlLen},
		{headersPtr, headersLen},
		{bodyPtr, bodyLen},
	} {
		s, ok := readArg(mem, a[0], a[1])
		if !ok {
			log.Error(ctx, "http_request: failed to read argument from guest memory", "arg", i, "ptr", a[0], "len", a[1])
			return resultHardFailure
		}
		args[i] = s
	}

	payload, err := ffi.MakeHTTPRequest(ctx, args[0], args[1], args[2], args[3])
	if err != nil {
		return resultHardFailure
	}

	if !writeResult(ctx, mem, resultPtr, resultCapacity, resultLenPtr, []byte(payload)) {
		return resultHardFailure
	}
	return resultWritten
}

// readArg copies a string out of guest memory. A zero pointer is null.
func readArg(mem api.Memory, ptr, length uint32) (*string, bool) {
	if ptr == 0 {
		return nil, true
	}
	b, ok := mem.Read(ptr, length)
	if !ok {
		return nil, false
	}
	s := string(b)
	return &s, true
}

// writeResult stores as much of the payload as fits in the guest buffer and
// always reports the full payload size at lenPtr, so the guest can retry with
// a bigger buffer. Returns false when either address is outside guest memory.
func writeResult(ctx context.Context, mem api.Memory, ptr, capacity, lenPtr uint32, payload []byte) bool {
	size := uint32(len(payload))
	if size > capacity {
		log.Debug(ctx, "Payload larger than guest buffer, guest must retry", "payloadSize", size, "bufferSize", capacity)
	}
	if n := min(size, capacity); n > 0 && !mem.Write(ptr, payload[:n]) {
		log.Error(ctx, "http_request: result buffer outside guest memory", "ptr", ptr, "n", n)
		return false
	}
	if !mem.WriteUint32Le(lenPtr, size) {
		log.Error(ctx, "http_request: result length pointer outside guest memory", "lenPtr", lenPtr)
		return false
	}
	return true
}

package ffi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ababil/ababil/core/executor"
	"github.com/ababil/ababil/log"
	"github.com/google/uuid"
)

var ErrSerialization = errors.New("serializing response")

// MakeHTTPRequest runs one boundary call: decode the arguments, perform the
// exchange and serialize the outcome as JSON. Network and protocol failures
// are reported inside the payload (status 0). A non-nil error is a hard
// failure and means no payload must be handed to the caller.
//
// DurationMs always holds the wall-clock time measured here, from before
// decoding to after the exchange, on success and failure alike.
func MakeHTTPRequest(ctx context.Context, method, url, headersJSON, body *string) (string, error) {
	start := time.Now()
	ctx = log.NewContext(ctx, "callId", uuid.NewString())

	req, err := DecodeRequest(ctx, method, url, headersJSON, body)
	if err != nil {
		log.Warn(ctx, "Rejecting boundary call", err)
		return "", err
	}

	resp := executor.Execute(ctx, req)
	elapsed := time.Since(start)
	resp.DurationMs = uint64(elapsed.Milliseconds())

	payload, err := resp.Encode()
	if err != nil {
		log.Error(ctx, "Could not serialize response", "url", req.URL, err)
		return "", fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	log.Debug(ctx, "Boundary call finished", "method", req.Method, "url", req.URL,
		"status", resp.StatusCode, "elapsed", elapsed)
	return string(payload), nil
}

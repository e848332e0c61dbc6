// Command cshared builds the C ABI of the HTTP shim:
//
//	go build -buildmode=c-shared -o libababil.so ./cshared
//
// The generated header declares:
//
//	char* make_http_request(char* method, char* url, char* headers_json, char* body);
//	void free_string(char* handle);
//
// Arguments are borrowed for the duration of the call and never retained.
// Every non-NULL string returned by make_http_request is owned by the caller
// and must be released exactly once with free_string. Releasing it twice, or
// passing a pointer that did not come from make_http_request, is undefined
// behavior.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/ababil/ababil/conf"
	"github.com/ababil/ababil/ffi"
	"github.com/ababil/ababil/log"
)

func init() {
	if err := conf.InitConfig(""); err != nil {
		log.Error("Could not read config file, ignoring it", err)
	}
	if err := conf.Load(); err != nil {
		log.Error("Invalid configuration, using defaults", err)
	}
}

// make_http_request performs one HTTP exchange and returns its JSON
// description, or NULL when no response could be built (NULL method or url,
// or a serialization failure). headers_json and body may be NULL.
//
//export make_http_request
func make_http_request(method, url, headersJSON, body *C.char) *C.char {
	payload, err := ffi.MakeHTTPRequest(context.Background(),
		goString(method), goString(url), goString(headersJSON), goString(body))
	if err != nil {
		return nil
	}
	return toCString(payload)
}

// free_string releases a string returned by make_http_request. NULL is
// accepted and ignored.
//
//export free_string
func free_string(handle *C.char) {
	if handle == nil {
		return
	}
	C.free(unsafe.Pointer(handle))
}

// goString copies a borrowed C string. NULL maps to nil.
func goString(s *C.char) *string {
	if s == nil {
		return nil
	}
	v := C.GoString(s)
	return &v
}

// toCString copies s into memory allocated with malloc, which free_string
// releases.
func toCString(s string) *C.char {
	return C.CString(s)
}

func main() {}

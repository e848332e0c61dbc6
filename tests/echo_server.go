package tests

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Echo is what the /echo endpoint reports back about the request it got.
type Echo struct {
	Method  string     `json:"method"`
	Host    string     `json:"host"`
	Headers [][]string `json:"headers"`
	Body    string     `json:"body"`
	HasBody bool       `json:"has_body"`
}

// NewEchoServer starts a server with endpoints useful to exercise the shim:
//
//	/echo               reflects method, headers and body as JSON (any method)
//	/status/{code}      replies with the given status code
//	/redirect/{n}       redirects n times before landing on /echo
//	/delay/{ms}         sleeps before replying
//	/raw                replies with invalid UTF-8 bytes
//	/latin1             replies with ISO-8859-1 text and a charset parameter
func NewEchoServer() *httptest.Server {
	r := chi.NewRouter()
	r.HandleFunc("/echo", echo)
	r.Get("/status/{code}", status)
	r.Get("/redirect/{n}", redirect)
	r.Get("/delay/{ms}", delay)
	r.Get("/raw", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{'o', 'k', 0xff, 0xfe, '!'})
	})
	r.Get("/latin1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=ISO-8859-1")
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	})
	return httptest.NewServer(r)
}

func echo(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	e := Echo{
		Method:  r.Method,
		Host:    r.Host,
		Headers: [][]string{},
		Body:    string(body),
		HasBody: r.ContentLength > 0 || len(r.TransferEncoding) > 0,
	}
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, v := range r.Header[name] {
			e.Headers = append(e.Headers, []string{name, v})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(e)
}

func status(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, "status %d", code)
}

func redirect(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	target := "/echo"
	if n > 1 {
		target = fmt.Sprintf("/redirect/%d", n-1)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func delay(w http.ResponseWriter, r *http.Request) {
	ms, err := strconv.Atoi(chi.URLParam(r, "ms"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
	case <-r.Context().Done():
		return
	}
	_, _ = io.WriteString(w, "done")
}

// DecodeEcho parses a body produced by the /echo endpoint.
func DecodeEcho(body string) Echo {
	var e Echo
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		panic(fmt.Sprintf("invalid echo body %q: %v", body, err))
	}
	return e
}

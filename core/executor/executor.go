package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/ababil/ababil/conf"
	"github.com/ababil/ababil/log"
	"github.com/ababil/ababil/model"
)

// Execute performs exactly one HTTP exchange for req. It never fails: any
// error while building, sending or reading becomes a status 0 response.
// DurationMs is left for the caller to fill in.
func Execute(ctx context.Context, req model.Request) model.Response {
	resp, err := execute(ctx, req)
	if err != nil {
		log.Debug(ctx, "HTTP request failed", "method", req.Method, "url", req.URL, err)
		return model.ErrorResponse(err)
	}
	log.Debug(ctx, "HTTP request completed", "method", req.Method, "url", req.URL,
		"status", resp.StatusCode, "bodyLen", len(resp.Body))
	return *resp
}

func execute(ctx context.Context, req model.Request) (*model.Response, error) {
	method, err := model.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	// An empty body is still attached, but net/http only announces it with
	// Content-Length: 0 on methods that usually carry one (POST, PUT, PATCH).
	var body io.Reader
	if req.Body != nil {
		body = strings.NewReader(*req.Body)
	}

	if timeout := conf.Server.HTTPClient.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(method), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	// a present but empty entry stops net/http from adding its own User-Agent
	httpReq.Header["User-Agent"] = nil
	applyHeaders(httpReq, req.Headers)

	client := newClient()
	defer client.CloseIdleConnections()

	log.Trace(ctx, "Sending HTTP request", "method", method, "url", req.URL, "headers", len(req.Headers))
	res, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	text, err := readText(res)
	if err != nil {
		return nil, err
	}

	return &model.Response{
		StatusCode: uint16(res.StatusCode),
		Headers:    responseHeaders(res.Header),
		Body:       text,
	}, nil
}

// newClient builds a client used for a single exchange.
func newClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableCompression = true
	return &http.Client{
		Transport:     transport,
		CheckRedirect: redirectPolicy(conf.Server.HTTPClient.MaxRedirects),
	}
}

func redirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if maxRedirects <= 0 {
			return http.ErrUseLastResponse
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
}

func applyHeaders(httpReq *http.Request, headers model.Headers) {
	for _, h := range headers {
		// net/http sends Request.Host and ignores a Host entry in Header
		if strings.EqualFold(h.Name, "Host") {
			httpReq.Host = h.Value
			continue
		}
		httpReq.Header.Add(h.Name, h.Value)
	}
}

// responseHeaders flattens h into lower-case name/value pairs, sorted by
// name. Values for the same name keep their received order.
func responseHeaders(h http.Header) model.Headers {
	out := make(model.Headers, 0, len(h))
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, v := range h[name] {
			out = append(out, model.Header{Name: lower, Value: visibleASCII(v)})
		}
	}
	return out
}

// visibleASCII returns v unchanged if it only holds visible ASCII or tabs,
// and "" otherwise.
func visibleASCII(v string) string {
	for i := 0; i < len(v); i++ {
		if c := v[i]; c != '\t' && (c < 0x20 || c > 0x7e) {
			return ""
		}
	}
	return v
}

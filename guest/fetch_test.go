package guest

import (
	"context"
	"net/http/httptest"

	"github.com/ababil/ababil/model"
	"github.com/ababil/ababil/tests"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Fetcher", func() {
	var ctx context.Context
	var echo *httptest.Server
	var f Fetcher

	BeforeEach(func() {
		ctx = context.Background()
		echo = tests.NewEchoServer()
		DeferCleanup(echo.Close)
		f = NewFetcher()
	})

	It("performs the request and decodes the response", func() {
		body := "hello"
		resp, err := f.Fetch(ctx, model.Request{
			Method:  "DELETE",
			URL:     echo.URL + "/echo",
			Headers: model.Headers{{Name: "X-One", Value: "1"}},
			Body:    &body,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(uint16(200)))
		Expect(resp.Headers.Get("content-type")).To(Equal("application/json"))

		e := tests.DecodeEcho(resp.Body)
		Expect(e.Method).To(Equal("DELETE"))
		Expect(e.Body).To(Equal("hello"))
		Expect(e.Headers).To(ContainElement([]string{"X-One", "1"}))
	})

	It("returns soft failures as responses", func() {
		resp, err := f.Fetch(ctx, model.Request{Method: "CONNECT", URL: echo.URL})
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Failed()).To(BeTrue())
		Expect(resp.Body).To(HavePrefix(model.ErrorTag))
	})

	It("reports hard failures with ErrHardFailure", func() {
		_, err := f.Fetch(ctx, model.Request{Method: "G\xffT", URL: echo.URL})
		Expect(err).To(MatchError(ErrHardFailure))
	})
})

var _ = Describe("newBoundaryArgs", func() {
	It("passes nil headers as absent", func() {
		args, err := newBoundaryArgs(model.Request{Method: "GET", URL: "http://example.com"})
		Expect(err).ToNot(HaveOccurred())
		Expect(args.headers).To(BeNil())
		Expect(args.body).To(BeNil())
	})

	It("encodes headers as JSON pairs", func() {
		args, err := newBoundaryArgs(model.Request{
			Method:  "GET",
			URL:     "http://example.com",
			Headers: model.Headers{{Name: "A", Value: "1"}, {Name: "A", Value: "2"}},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(args.headers).To(HaveValue(Equal(`[["A","1"],["A","2"]]`)))
	})

	It("encodes empty headers as an empty array", func() {
		args, err := newBoundaryArgs(model.Request{Method: "GET", URL: "u", Headers: model.Headers{}})
		Expect(err).ToNot(HaveOccurred())
		Expect(args.headers).To(HaveValue(Equal("[]")))
	})
})

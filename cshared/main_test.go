package main

import (
	"net/http/httptest"

	"github.com/ababil/ababil/model"
	"github.com/ababil/ababil/tests"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("C ABI", func() {
	var echo *httptest.Server

	BeforeEach(func() {
		echo = tests.NewEchoServer()
		DeferCleanup(echo.Close)
	})

	Describe("free_string", func() {
		It("ignores NULL", func() {
			Expect(func() { free_string(nil) }).ToNot(Panic())
		})

		It("releases a returned handle", func() {
			h := toCString("payload")
			Expect(goString(h)).To(HaveValue(Equal("payload")))
			free_string(h)
		})
	})

	Describe("goString", func() {
		It("maps NULL to nil", func() {
			Expect(goString(nil)).To(BeNil())
		})

		It("keeps an empty string present", func() {
			h := toCString("")
			defer free_string(h)
			Expect(goString(h)).To(HaveValue(BeEmpty()))
		})
	})

	Describe("make_http_request", func() {
		It("returns NULL for a NULL method or url", func() {
			url := toCString(echo.URL + "/echo")
			defer free_string(url)
			method := toCString("GET")
			defer free_string(method)

			Expect(make_http_request(nil, url, nil, nil)).To(BeNil())
			Expect(make_http_request(method, nil, nil, nil)).To(BeNil())
		})

		It("returns an owned JSON payload", func() {
			method := toCString("PUT")
			defer free_string(method)
			url := toCString(echo.URL + "/echo")
			defer free_string(url)
			headers := toCString(`[["X-Test","1"]]`)
			defer free_string(headers)
			body := toCString("data")
			defer free_string(body)

			h := make_http_request(method, url, headers, body)
			Expect(h).ToNot(BeNil())
			payload := goString(h)
			free_string(h)

			resp, err := model.DecodeResponse([]byte(*payload))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(uint16(200)))
			e := tests.DecodeEcho(resp.Body)
			Expect(e.Method).To(Equal("PUT"))
			Expect(e.Body).To(Equal("data"))
			Expect(e.Headers).To(ContainElement([]string{"X-Test", "1"}))
		})

		It("returns a soft failure payload for malformed input", func() {
			method := toCString("TRACE")
			defer free_string(method)
			url := toCString(echo.URL + "/echo")
			defer free_string(url)
			headers := toCString("not json")
			defer free_string(headers)

			h := make_http_request(method, url, headers, nil)
			Expect(h).ToNot(BeNil())
			defer free_string(h)
			Expect(*goString(h)).To(ContainSubstring(`"status_code":0`))
		})
	})
})

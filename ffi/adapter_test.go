package ffi

import (
	"context"
	"errors"

	"github.com/ababil/ababil/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ptr(s string) *string { return &s }

var _ = Describe("DecodeRequest", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("decodes all arguments", func() {
		req, err := DecodeRequest(ctx, ptr("post"), ptr("http://example.com"), ptr(`[["A","1"],["B","2"]]`), ptr("payload"))
		Expect(err).ToNot(HaveOccurred())
		Expect(req.Method).To(Equal("post"))
		Expect(req.URL).To(Equal("http://example.com"))
		Expect(req.Headers).To(Equal(model.Headers{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}))
		Expect(req.Body).To(HaveValue(Equal("payload")))
	})

	It("does not validate the method", func() {
		req, err := DecodeRequest(ctx, ptr("TRACE"), ptr("http://example.com"), nil, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(req.Method).To(Equal("TRACE"))
	})

	DescribeTable("rejects missing or invalid mandatory arguments",
		func(method, url *string, expected error) {
			_, err := DecodeRequest(ctx, method, url, nil, nil)
			Expect(errors.Is(err, expected)).To(BeTrue())
		},
		Entry("null method", nil, ptr("http://example.com"), ErrNullArgument),
		Entry("null url", ptr("GET"), nil, ErrNullArgument),
		Entry("invalid method text", ptr("G\xffT"), ptr("http://example.com"), ErrInvalidText),
		Entry("invalid url text", ptr("GET"), ptr("http://\xfe"), ErrInvalidText),
	)

	It("names the offending argument", func() {
		_, err := DecodeRequest(ctx, ptr("GET"), nil, nil, nil)
		Expect(err).To(MatchError("url: null argument"))
	})

	DescribeTable("treats missing or malformed headers as empty",
		func(headers *string) {
			req, err := DecodeRequest(ctx, ptr("GET"), ptr("http://example.com"), headers, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(req.Headers).ToNot(BeNil())
			Expect(req.Headers).To(BeEmpty())
		},
		Entry("null", nil),
		Entry("not json", ptr("not json")),
		Entry("object", ptr(`{"A":"1"}`)),
		Entry("wrong pair size", ptr(`[["A"]]`)),
		Entry("invalid UTF-8", ptr("[[\"A\",\"\xff\"]]")),
	)

	It("drops a body that is not valid UTF-8", func() {
		req, err := DecodeRequest(ctx, ptr("POST"), ptr("http://example.com"), nil, ptr("\xff\xfe"))
		Expect(err).ToNot(HaveOccurred())
		Expect(req.Body).To(BeNil())
	})

	It("keeps an empty body as present", func() {
		req, err := DecodeRequest(ctx, ptr("POST"), ptr("http://example.com"), nil, ptr(""))
		Expect(err).ToNot(HaveOccurred())
		Expect(req.Body).To(HaveValue(BeEmpty()))
	})
})

var _ = Describe("Optional arguments", func() {
	DescribeTable("decodeHeaders",
		func(input *string, expected Presence) {
			o := decodeHeaders(input)
			Expect(o.Presence).To(Equal(expected))
			if expected == Malformed {
				Expect(o.Err).To(HaveOccurred())
			} else {
				Expect(o.Err).ToNot(HaveOccurred())
			}
		},
		Entry("absent", nil, Absent),
		Entry("malformed json", ptr("not json"), Malformed),
		Entry("malformed text", ptr("\xff"), Malformed),
		Entry("present", ptr(`[["A","1"]]`), Present),
		Entry("present and empty", ptr(`[]`), Present),
	)

	DescribeTable("decodeBody",
		func(input *string, expected Presence) {
			Expect(decodeBody(input).Presence).To(Equal(expected))
		},
		Entry("absent", nil, Absent),
		Entry("malformed", ptr("\xc3"), Malformed),
		Entry("present", ptr("hello"), Present),
	)

	It("only yields a value when present", func() {
		_, ok := Optional[string]{Value: "x", Presence: Malformed}.Get()
		Expect(ok).To(BeFalse())
		v, ok := Optional[string]{Value: "x", Presence: Present}.Get()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("x"))
	})

	It("describes presence values", func() {
		Expect(Absent.String()).To(Equal("absent"))
		Expect(Malformed.String()).To(Equal("malformed"))
		Expect(Present.String()).To(Equal("present"))
		Expect(Presence(9).String()).To(Equal("Presence(9)"))
	})
})

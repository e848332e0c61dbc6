package wasmhost

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Run", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns the guest exit code", func() {
		code, err := Run(ctx, exitModule, RunOptions{Args: []string{"guest"}})
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(Equal(uint32(3)))
	})

	It("runs guests importing http_request", func() {
		var stdout bytes.Buffer
		code, err := Run(ctx, importingModule, RunOptions{Stdout: &stdout})
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(BeZero())
		Expect(stdout.String()).To(BeEmpty())
	})

	It("rejects invalid modules", func() {
		_, err := Run(ctx, []byte("not wasm"), RunOptions{})
		Expect(err).To(MatchError(ContainSubstring("compile wasm module")))
	})
})

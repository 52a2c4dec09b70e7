package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/castlight-audio/podcastgen/common/llm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLLM(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "llm suite")
}

var _ = Describe("IsRetryable", func() {
	It("is not retryable for context cancellation", func() {
		Expect(llm.IsRetryable(context.Background(), context.Canceled)).To(BeFalse())
	})

	It("is not retryable for context deadline exceeded", func() {
		Expect(llm.IsRetryable(context.Background(), context.DeadlineExceeded)).To(BeFalse())
	})

	It("is not retryable when wrapped in ErrNonRetryable", func() {
		err := &llm.ErrNonRetryable{Err: errors.New("bad request")}
		Expect(llm.IsRetryable(context.Background(), err)).To(BeFalse())
	})

	It("is retryable for a plain network-shaped error", func() {
		Expect(llm.IsRetryable(context.Background(), errors.New("connection reset"))).To(BeTrue())
	})

	It("is not retryable for a nil error", func() {
		Expect(llm.IsRetryable(context.Background(), nil)).To(BeFalse())
	})
})

var _ = Describe("WithRetry", func() {
	It("returns immediately on success", func() {
		calls := 0
		err := llm.WithRetry(context.Background(), 3, "test", func(attempt int) error {
			calls++
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("stops retrying on a non-retryable error", func() {
		calls := 0
		err := llm.WithRetry(context.Background(), 3, "test", func(attempt int) error {
			calls++
			return &llm.ErrNonRetryable{Err: errors.New("forbidden")}
		})
		Expect(err).To(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("exhausts all attempts on a persistently retryable error", func() {
		calls := 0
		err := llm.WithRetry(context.Background(), 3, "test", func(attempt int) error {
			calls++
			return errors.New("transient")
		})
		Expect(err).To(HaveOccurred())
		Expect(calls).To(Equal(3))
	})

	It("respects context cancellation between attempts", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := llm.WithRetry(ctx, 3, "test", func(attempt int) error {
			calls++
			return errors.New("transient")
		})
		Expect(err).To(HaveOccurred())
		Expect(calls).To(Equal(1))
	})
})

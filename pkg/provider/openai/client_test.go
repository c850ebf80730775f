package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/llm"
	"github.com/papercomputeco/atelier/pkg/provider/openai"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		upstream *httptest.Server
		handler  http.HandlerFunc
		lastReq  *http.Request
		lastBody []byte
	)

	BeforeEach(func() {
		ctx = context.Background()
		handler = nil
		lastReq = nil
		lastBody = nil
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			lastBody, _ = io.ReadAll(r.Body)
			handler(w, r)
		}))
	})

	AfterEach(func() {
		upstream.Close()
	})

	request := func() *llm.ChatRequest {
		return &llm.ChatRequest{
			Model:    "test-model",
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "What colors suit autumn?"}},
			Stream:   true,
		}
	}

	It("posts to /chat/completions with a bearer credential", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":"Try burgundy and mustard."}}]}`)
		}

		client := openai.New(upstream.URL+"/", "secret", zap.NewNop())
		resp, err := client.Complete(ctx, request())
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Text()).To(Equal("Try burgundy and mustard."))

		Expect(lastReq.Method).To(Equal(http.MethodPost))
		Expect(lastReq.URL.Path).To(Equal("/chat/completions"))
		Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer secret"))
		Expect(lastReq.Header.Get("Content-Type")).To(Equal("application/json"))

		var sent map[string]any
		Expect(json.Unmarshal(lastBody, &sent)).To(Succeed())
		Expect(sent["stream"]).To(BeFalse())
		Expect(sent["model"]).To(Equal("test-model"))
	})

	It("reports a missing credential without calling the provider", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {}

		client := openai.New(upstream.URL, "", zap.NewNop())
		_, err := client.Complete(ctx, request())
		Expect(err).To(MatchError(openai.ErrNotConfigured))
		Expect(lastReq).To(BeNil())
	})

	It("returns an APIError for non-2xx responses", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"No auth credentials found","code":401}}`)
		}

		client := openai.New(upstream.URL, "bad", zap.NewNop())
		_, err := client.Complete(ctx, request())

		var apiErr *openai.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Status).To(Equal(http.StatusUnauthorized))
		Expect(apiErr.Message).To(Equal("No auth credentials found"))
		Expect(err.Error()).To(ContainSubstring("401"))
	})

	It("keeps the raw body when the error envelope is not JSON", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream down")
		}

		client := openai.New(upstream.URL, "key", zap.NewNop())
		_, err := client.Complete(ctx, request())

		var apiErr *openai.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Body).To(Equal("upstream down"))
		Expect(err.Error()).To(ContainSubstring("upstream down"))
	})

	It("fails on a malformed payload", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{not json`)
		}

		client := openai.New(upstream.URL, "key", zap.NewNop())
		_, err := client.Complete(ctx, request())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unmarshal response"))
	})

	It("fails when there are no choices", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"model":"test-model","choices":[]}`)
		}

		client := openai.New(upstream.URL, "key", zap.NewNop())
		_, err := client.Complete(ctx, request())
		Expect(err).To(MatchError(openai.ErrNoChoices))
	})

	It("fails on network errors", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {}
		url := upstream.URL
		upstream.Close()

		client := openai.New(url, "key", zap.NewNop())
		_, err := client.Complete(ctx, request())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("do request"))
	})
})

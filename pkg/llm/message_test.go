package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/atelier/pkg/llm"
)

var _ = Describe("Message", func() {
	Describe("MarshalJSON", func() {
		It("encodes text-only content as a string", func() {
			data, err := json.Marshal(llm.Message{Role: llm.RoleUser, Content: "Suggest shoes"})
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"role":"user","content":"Suggest shoes"}`))
		})

		It("encodes parts as an ordered content array", func() {
			msg := llm.Message{
				Role: llm.RoleUser,
				Parts: []llm.ContentPart{
					llm.TextPart("What is this?"),
					llm.ImagePart("data:image/png;base64,AAAA"),
				},
			}

			data, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{
				"role": "user",
				"content": [
					{"type": "text", "text": "What is this?"},
					{"type": "image_url", "image_url": "data:image/png;base64,AAAA"}
				]
			}`))
		})

		It("encodes an empty string when there is no content", func() {
			data, err := json.Marshal(llm.Message{Role: llm.RoleAssistant})
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"role":"assistant","content":""}`))
		})
	})

	Describe("UnmarshalJSON", func() {
		It("decodes string content", func() {
			var msg llm.Message
			Expect(json.Unmarshal([]byte(`{"role":"assistant","content":"Try burgundy."}`), &msg)).To(Succeed())
			Expect(msg.Role).To(Equal(llm.RoleAssistant))
			Expect(msg.Content).To(Equal("Try burgundy."))
			Expect(msg.Parts).To(BeEmpty())
		})

		It("decodes array content", func() {
			var msg llm.Message
			Expect(json.Unmarshal([]byte(`{"role":"assistant","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`), &msg)).To(Succeed())
			Expect(msg.Parts).To(HaveLen(2))
			Expect(msg.Text()).To(Equal("ab"))
		})

		It("decodes null content", func() {
			var msg llm.Message
			Expect(json.Unmarshal([]byte(`{"role":"assistant","content":null}`), &msg)).To(Succeed())
			Expect(msg.Text()).To(BeEmpty())
		})

		It("rejects unsupported content", func() {
			var msg llm.Message
			Expect(json.Unmarshal([]byte(`{"role":"assistant","content":42}`), &msg)).NotTo(Succeed())
		})
	})
})

var _ = Describe("ChatResponse", func() {
	It("returns the first choice text", func() {
		var resp llm.ChatResponse
		Expect(json.Unmarshal([]byte(`{
			"model": "m",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "first"}},
				{"index": 1, "message": {"role": "assistant", "content": "second"}}
			]
		}`), &resp)).To(Succeed())
		Expect(resp.Text()).To(Equal("first"))
	})

	It("returns empty text when there are no choices", func() {
		var resp *llm.ChatResponse
		Expect(resp.Text()).To(BeEmpty())
		Expect((&llm.ChatResponse{}).Text()).To(BeEmpty())
	})
})

package session_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/session"
	"github.com/papercomputeco/atelier/pkg/transcript"
)

var _ = Describe("Session", func() {
	var (
		ctx  context.Context
		fake *fakeResponder
		s    *session.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeResponder{result: textResult("Try burgundy and mustard.")}
		s = session.New("test", fake, "", zap.NewNop())
	})

	Describe("Submit", func() {
		It("appends the user turn and the assistant reply in order", func() {
			added, err := s.Submit(ctx, "What colors suit autumn?", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(HaveLen(2))

			all := s.Transcript().All()
			Expect(all).To(HaveLen(2))
			Expect(all[0].Role).To(Equal(transcript.RoleUser))
			Expect(all[0].Kind).To(Equal(transcript.KindText))
			Expect(all[0].Content).To(Equal("What colors suit autumn?"))
			Expect(all[1].Role).To(Equal(transcript.RoleAssistant))
			Expect(all[1].Content).To(Equal("Try burgundy and mustard."))
			Expect(added).To(Equal(all))
		})

		It("passes prior context to the gateway", func() {
			_, err := s.Submit(ctx, "Suggest shoes", "Previous: discussed a navy suit")
			Expect(err).NotTo(HaveOccurred())

			Expect(fake.calls).To(HaveLen(1))
			Expect(fake.calls[0].prompt).To(Equal("Suggest shoes"))
			Expect(fake.calls[0].priorContext).To(Equal("Previous: discussed a navy suit"))
		})

		It("keeps N submissions in strict chronological order", func() {
			for i := 0; i < 5; i++ {
				fake.result = textResult(fmt.Sprintf("reply %d", i))
				_, err := s.Submit(ctx, fmt.Sprintf("question %d", i), "")
				Expect(err).NotTo(HaveOccurred())
			}

			all := s.Transcript().All()
			Expect(all).To(HaveLen(10))
			for i := 0; i < 5; i++ {
				Expect(all[2*i].Role).To(Equal(transcript.RoleUser))
				Expect(all[2*i].Content).To(Equal(fmt.Sprintf("question %d", i)))
				Expect(all[2*i+1].Role).To(Equal(transcript.RoleAssistant))
				Expect(all[2*i+1].Content).To(Equal(fmt.Sprintf("reply %d", i)))
			}
		})

		It("leaves only the user turn when the gateway fails", func() {
			fake.err = errors.New("provider unavailable")

			added, err := s.Submit(ctx, "Suggest shoes", "")
			Expect(err).To(MatchError("provider unavailable"))
			Expect(added).To(HaveLen(1))

			all := s.Transcript().All()
			Expect(all).To(HaveLen(1))
			Expect(all[0].Role).To(Equal(transcript.RoleUser))
		})

		It("skips the assistant turn when the reply is empty", func() {
			fake.result = textResult("")

			_, err := s.Submit(ctx, "hello", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Transcript().Len()).To(Equal(1))
		})

		It("appends an assistant image turn when the result carries one", func() {
			ref := "/generated/look.png"
			fake.result = gateway.Result{Image: &ref}

			_, err := s.Submit(ctx, "draw me a look", "")
			Expect(err).NotTo(HaveOccurred())

			all := s.Transcript().All()
			Expect(all).To(HaveLen(2))
			Expect(all[1].Role).To(Equal(transcript.RoleAssistant))
			Expect(all[1].Kind).To(Equal(transcript.KindImage))
			Expect(all[1].Content).To(Equal(ref))
		})

		It("rejects an empty prompt without touching the transcript", func() {
			_, err := s.Submit(ctx, "", "")
			Expect(err).To(MatchError(gateway.ErrEmptyPrompt))
			Expect(s.Transcript().Len()).To(Equal(0))
			Expect(fake.calls).To(BeEmpty())
		})

		It("refuses a second call while one is outstanding", func() {
			fake.entered = make(chan struct{})
			fake.block = make(chan struct{})

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := s.Submit(ctx, "first", "")
				done <- err
			}()
			Eventually(fake.entered).Should(Receive())

			_, err := s.Submit(ctx, "second", "")
			Expect(err).To(MatchError(session.ErrBusy))

			close(fake.block)
			Eventually(done).Should(Receive(BeNil()))

			all := s.Transcript().All()
			Expect(all).To(HaveLen(2))
			Expect(all[0].Content).To(Equal("first"))
		})

		It("refuses calls after Close", func() {
			Expect(s.Close()).To(Succeed())

			_, err := s.Submit(ctx, "hello", "")
			Expect(err).To(MatchError(session.ErrClosed))
		})

		It("updates LastActive", func() {
			before := s.LastActive()
			_, err := s.Submit(ctx, "hello", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.LastActive()).To(BeTemporally(">=", before))
		})
	})

	Describe("SubmitImage", func() {
		It("appends the image reference, the prompt, and the reply", func() {
			added, err := s.SubmitImage(ctx, "/tmp/coat.png", "/uploads/coat.png", "Describe this coat")
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(HaveLen(3))

			Expect(added[0].Kind).To(Equal(transcript.KindImage))
			Expect(added[0].Role).To(Equal(transcript.RoleUser))
			Expect(added[0].Content).To(Equal("/uploads/coat.png"))
			Expect(added[1].Kind).To(Equal(transcript.KindText))
			Expect(added[1].Content).To(Equal("Describe this coat"))
			Expect(added[2].Role).To(Equal(transcript.RoleAssistant))

			Expect(fake.calls[0].imagePath).To(Equal("/tmp/coat.png"))
			Expect(fake.calls[0].prompt).To(Equal("Describe this coat"))
		})

		It("omits the prompt turn when the prompt is empty", func() {
			added, err := s.SubmitImage(ctx, "/tmp/coat.png", "/uploads/coat.png", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(HaveLen(2))
		})

		It("keeps the user turns when the gateway fails", func() {
			fake.err = os.ErrNotExist

			added, err := s.SubmitImage(ctx, "/tmp/missing.png", "/uploads/missing.png", "hi")
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
			Expect(added).To(HaveLen(2))
			for _, t := range s.Transcript().All() {
				Expect(t.Role).To(Equal(transcript.RoleUser))
			}
		})
	})

	Describe("Close", func() {
		It("removes the upload directory and is idempotent", func() {
			dir := GinkgoT().TempDir() + "/uploads"
			Expect(os.Mkdir(dir, 0o700)).To(Succeed())
			s = session.New("with-dir", fake, dir, zap.NewNop())

			Expect(s.Close()).To(Succeed())
			_, err := os.Stat(dir)
			Expect(os.IsNotExist(err)).To(BeTrue())

			Expect(s.Close()).To(Succeed())
		})
	})
})

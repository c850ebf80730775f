package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/session"
	"github.com/papercomputeco/atelier/pkg/transcript"
)

// sessionCookie carries the browser's session ID.
const sessionCookie = "atelier_session"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>atelier</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 2rem auto; color: #3d2b1f; background: #f8f4e6; }
.turn { border-radius: 8px; padding: .75rem 1rem; margin: 1rem 0; }
.turn.user { background: #e8dfca; border-left: 4px solid #800020; }
.turn.assistant { background: #fff; border-left: 4px solid #d4af37; }
.turn .role { font-size: .75rem; text-transform: uppercase; opacity: .6; }
.turn-image { max-width: 100%; }
.error { background: #800020; color: #fff; padding: .5rem 1rem; border-radius: 8px; }
form { display: flex; gap: .5rem; margin-top: 1rem; }
form input[type=text] { flex: 1; padding: .5rem; }
</style>
</head>
<body>
<h1>Fashion Designer AI Chatbot</h1>
<p>Your personal AI-powered fashion assistant.</p>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<div id="transcript">
{{range .Turns}}<div class="turn {{.Role}}"><div class="role">{{.Role}}</div>{{.HTML}}</div>
{{end}}</div>
<form method="post" action="/chat">
<input type="text" name="prompt" placeholder="Consult the fashion archives..." autofocus required>
<button type="submit">Send</button>
</form>
<form method="post" action="/chat/image" enctype="multipart/form-data">
<input type="file" name="image" accept="image/*" required>
<input type="text" name="prompt" placeholder="What would you like to know about this look?">
<button type="submit">Analyze</button>
</form>
<script>window.scrollTo(0, document.body.scrollHeight);</script>
</body>
</html>
`))

type pageTurn struct {
	Role transcript.Role
	HTML template.HTML
}

type pageData struct {
	Error string
	Turns []pageTurn
}

// browserSession returns the session named by the cookie, starting a new one
// when the cookie is missing or stale.
func (s *Server) browserSession(c *fiber.Ctx) (*session.Session, error) {
	if id := c.Cookies(sessionCookie); id != "" {
		sess, err := s.manager.Get(id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	sess, err := s.manager.Create()
	if err != nil {
		return nil, err
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return sess, nil
}

// handlePage replays the browser session's transcript in order.
func (s *Server) handlePage(c *fiber.Ctx) error {
	sess, err := s.browserSession(c)
	if err != nil {
		s.logger.Error("failed to start session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	turns := sess.Transcript().All()
	data := pageData{
		Error: c.Query("error"),
		Turns: make([]pageTurn, 0, len(turns)),
	}
	for _, t := range turns {
		data.Turns = append(data.Turns, pageTurn{Role: t.Role, HTML: s.renderer.Turn(t)})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	c.Type("html")
	return c.Send(buf.Bytes())
}

// handlePageChat submits the form prompt and redirects back to the page. A
// failed call shows an error banner; no assistant turn is added for it.
func (s *Server) handlePageChat(c *fiber.Ctx) error {
	sess, err := s.browserSession(c)
	if err != nil {
		return s.redirectWithError(c, err)
	}

	if _, err := sess.Submit(c.UserContext(), c.FormValue("prompt"), c.FormValue("context")); err != nil {
		return s.redirectWithError(c, err)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// handlePageImage stores the uploaded image, submits it, and redirects back.
func (s *Server) handlePageImage(c *fiber.Ctx) error {
	sess, err := s.browserSession(c)
	if err != nil {
		return s.redirectWithError(c, err)
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		return c.Redirect("/?error="+url.QueryEscape("image file is required"), fiber.StatusSeeOther)
	}

	path, ref, err := saveUpload(c, sess, fh)
	if err != nil {
		return s.redirectWithError(c, err)
	}

	prompt := c.FormValue("prompt")
	if prompt == "" {
		prompt = gateway.DefaultImagePrompt
	}

	if _, err := sess.SubmitImage(c.UserContext(), path, ref, prompt); err != nil {
		return s.redirectWithError(c, err)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) redirectWithError(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	s.logger.Error("page request failed",
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Error(err),
	)
	return c.Redirect("/?error="+url.QueryEscape(msg), fiber.StatusSeeOther)
}

package server

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/atelier/pkg/session"
)

// imageField is the multipart field carrying the uploaded image.
const imageField = "image"

// saveUpload stores the uploaded file in the session's upload directory under a
// random name that keeps the original extension, and returns the file path and
// the URL reference used in the transcript.
func saveUpload(c *fiber.Ctx, sess *session.Session, fh *multipart.FileHeader) (path, ref string, err error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	path = filepath.Join(sess.UploadDir(), name)

	if err := c.SaveFile(fh, path); err != nil {
		return "", "", fmt.Errorf("save upload: %w", err)
	}

	return path, uploadRef(sess.ID, name), nil
}

func uploadRef(sessionID, name string) string {
	return "/api/sessions/" + sessionID + "/uploads/" + name
}

// validUploadName rejects anything that is not a bare file name.
func validUploadName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}

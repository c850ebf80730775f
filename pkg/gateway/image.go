package gateway

import (
	"encoding/base64"
	"mime"
	"path/filepath"
)

// DefaultImageMIMEType is used when the file name does not determine a type.
const DefaultImageMIMEType = "image/jpeg"

// DetectMIMEType determines a MIME type from the file name's extension, falling
// back to DefaultImageMIMEType. Parameters such as charset are dropped.
func DetectMIMEType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return DefaultImageMIMEType
	}

	t := mime.TypeByExtension(ext)
	if t == "" {
		return DefaultImageMIMEType
	}

	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil || mediaType == "" {
		return DefaultImageMIMEType
	}
	return mediaType
}

// DataURI encodes data as a base64 data URI with the given MIME type.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

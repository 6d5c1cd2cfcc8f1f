package generation

import (
	"encoding/base64"
	"strings"
)

// sourceImage is a decoded data URI.
type sourceImage struct {
	ContentType string
	Data        []byte
}

// Extension returns a file extension for the content type.
func (i *sourceImage) Extension() string {
	switch i.ContentType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// decodeDataURI parses data:image/<type>;base64,<payload>.
func decodeDataURI(uri string) (*sourceImage, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidImage
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients drop padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, ErrInvalidImage
		}
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}

	return &sourceImage{ContentType: strings.ToLower(contentType), Data: data}, nil
}

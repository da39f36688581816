package coursedoc

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// IsDataURL checks if s looks like a data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURL decodes a data URL of the form data:<mime>[;base64],<data>.
// It returns the payload and the MIME type.
func DecodeDataURL(s string) ([]byte, string, error) {
	if !IsDataURL(s) {
		return nil, "", NewValidationError("not a data URL")
	}

	parts := strings.SplitN(strings.TrimPrefix(s, "data:"), ",", 2)
	if len(parts) != 2 {
		return nil, "", NewValidationError("invalid data URL: missing payload")
	}

	header := parts[0]
	mime := strings.TrimSuffix(header, ";base64")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}

	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return nil, "", Wrap(err, "invalid base64 payload in data URL")
		}
		return data, mime, nil
	}

	text, err := url.PathUnescape(parts[1])
	if err != nil {
		return nil, "", Wrap(err, "invalid data URL payload")
	}
	return []byte(text), mime, nil
}

// EncodeDataURL creates a base64 data URL for the given payload.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

package transport

import (
	"encoding/json"
	"net/http"
	"strings"
)

// decodeBody interprets a successful (2xx) response body.
//
// Empty or whitespace-only bodies decode to Empty no matter what content
// type the response declares; several vendor endpoints return no body on
// success. text/plain bodies pass through verbatim; file content endpoints
// return raw text, not JSON. Anything else is JSON when it parses and text
// otherwise; the text fallback is deliberate leniency toward success
// responses that are plain text without a matching content-type header,
// and callers depend on it.
func decodeBody(headers http.Header, body []byte) *DecodedBody {
	text := string(body)
	if strings.TrimSpace(text) == "" {
		return &DecodedBody{kind: BodyEmpty}
	}

	if strings.Contains(headers.Get("Content-Type"), "text/plain") {
		return &DecodedBody{kind: BodyText, text: text}
	}

	if json.Valid(body) {
		return &DecodedBody{kind: BodyJSON, raw: json.RawMessage(body)}
	}
	return &DecodedBody{kind: BodyText, text: text}
}

package transport

import (
	"encoding/json"
	"time"
)

// Request describes one outbound API request.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// Path is the API path relative to the base endpoint. A missing leading
	// slash is added.
	Path string
	// Headers are request-specific headers. A caller-supplied Content-Type
	// overrides the application/json default and controls body encoding.
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body is the request body. A string or []byte passes through unchanged
	// (pre-encoded payloads such as form data or multipart); any other
	// non-nil value is JSON-encoded when the effective Content-Type is
	// application/json.
	Body any
	// Timeout overrides the configured default timeout for this request.
	Timeout time.Duration
}

// BodyKind tags how a successful response body was decoded.
type BodyKind int

const (
	// BodyEmpty means the body was empty or whitespace-only.
	BodyEmpty BodyKind = iota
	// BodyJSON means the body parsed as JSON.
	BodyJSON
	// BodyText means the body is plain text (declared text/plain, or a
	// non-JSON body kept verbatim).
	BodyText
)

// String returns the kind name.
func (k BodyKind) String() string {
	switch k {
	case BodyEmpty:
		return "empty"
	case BodyJSON:
		return "json"
	case BodyText:
		return "text"
	default:
		return "unknown"
	}
}

// DecodedBody is the decoded result of a successful response: JSON, plain
// text, or empty.
type DecodedBody struct {
	kind BodyKind
	raw  json.RawMessage
	text string
}

// Kind returns how the body was decoded.
func (b *DecodedBody) Kind() BodyKind { return b.kind }

// IsEmpty reports whether the response had no body.
func (b *DecodedBody) IsEmpty() bool { return b.kind == BodyEmpty }

// JSON returns the raw JSON of the body. An empty body yields an empty
// object; a text body yields nil.
func (b *DecodedBody) JSON() json.RawMessage {
	switch b.kind {
	case BodyJSON:
		return b.raw
	case BodyEmpty:
		return json.RawMessage(`{}`)
	default:
		return nil
	}
}

// Text returns the body as text. JSON bodies return their raw text form.
func (b *DecodedBody) Text() string {
	switch b.kind {
	case BodyText:
		return b.text
	case BodyJSON:
		return string(b.raw)
	default:
		return ""
	}
}

// Decode unmarshals a JSON body into v. An empty body leaves v unchanged;
// vendor endpoints that return no body on success decode into the zero
// value. A text body cannot be decoded and is reported as unexpected.
func (b *DecodedBody) Decode(v any) error {
	switch b.kind {
	case BodyEmpty:
		return nil
	case BodyJSON:
		if err := json.Unmarshal(b.raw, v); err != nil {
			return newUnexpectedError("decoding response body", err)
		}
		return nil
	default:
		return newUnexpectedError("response body is not JSON", nil)
	}
}

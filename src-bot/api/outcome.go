package api

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Shape tells the client how to read a successful body.
type Shape int

const (
	// JSON when it parses, plain text otherwise
	ShapeAny Shape = iota
	// must parse as JSON
	ShapeJSON
	// opaque bytes, whatever the content type says
	ShapeBytes
)

type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyJSON
	BodyText
	BodyBytes
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyText:
		return "text"
	case BodyBytes:
		return "bytes"
	default:
		return "empty"
	}
}

// Body is a response payload tagged with how it was read.
type Body struct {
	Kind        BodyKind
	ContentType string
	Raw         []byte
}

// JSON parses the body with gjson. Non-JSON bodies yield an empty result.
func (b Body) JSON() gjson.Result {
	if b.Kind != BodyJSON {
		return gjson.Result{}
	}
	return gjson.ParseBytes(b.Raw)
}

func (b Body) String() string {
	return string(b.Raw)
}

// Response is the successful outcome of a call.
type Response struct {
	Endpoint EndpointName
	Status   int
	Reason   string
	Body     Body
}

type FailureKind int

const (
	FailureTimeout FailureKind = iota + 1
	FailureTransport
	FailureNonOKStatus
	FailureBadMimeType
)

func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureTransport:
		return "transport"
	case FailureNonOKStatus:
		return "non_ok_status"
	case FailureBadMimeType:
		return "bad_mime_type"
	default:
		return "unknown"
	}
}

// Failure is the classified unsuccessful outcome of a call.
type Failure struct {
	Kind     FailureKind
	Endpoint EndpointName
	Status   int
	Reason   string
	Detail   string
	Body     Body
	Err      error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureNonOKStatus:
		return fmt.Sprintf("%s: status %d (%s)", f.Endpoint, f.Status, f.Reason)
	case FailureTimeout:
		return fmt.Sprintf("%s: %s", f.Endpoint, http.StatusText(http.StatusGatewayTimeout))
	default:
		return fmt.Sprintf("%s: %s: %s", f.Endpoint, f.Kind, f.Detail)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// OKStatusSet is the allow-list of statuses treated as success. Anything
// else is a failure, 2xx or not.
type OKStatusSet map[int]struct{}

func NewOKStatusSet(codes ...int) OKStatusSet {
	s := make(OKStatusSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// DefaultOKStatusSet is {200, 201, 204}.
func DefaultOKStatusSet() OKStatusSet {
	return NewOKStatusSet(http.StatusOK, http.StatusCreated, http.StatusNoContent)
}

func (s OKStatusSet) Contains(status int) bool {
	_, ok := s[status]
	return ok
}

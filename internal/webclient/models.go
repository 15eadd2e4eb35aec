package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int

	// ContentLength is the server-declared length, or -1 when unknown.
	// For HEAD responses this is the only size signal available.
	ContentLength int64

	FetchedAt time.Time
}

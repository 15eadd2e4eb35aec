package webclient

import "context"

// WebClient is the minimal HTTP surface the measurement engine depends on.
// It exists so tests and alternative transports can swap the implementation.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests.
	Get(ctx context.Context, url string) (*Response, error)

	// Head issues a metadata-only request; the response carries headers and
	// the declared content length but no body.
	Head(ctx context.Context, url string) (*Response, error)

	Close() error
}

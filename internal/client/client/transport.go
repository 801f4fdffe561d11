package client

import (
	"net/http"

	"github.com/dmitrijs2005/gymkeeper/internal/common"
	"github.com/google/uuid"
)

// requestIDTransport stamps outgoing requests with a correlation id unless
// the caller already set one.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(common.RequestIDHeaderName) != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrip must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	return t.next.RoundTrip(r)
}

func withBearer(req *http.Request, token string) {
	req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
}

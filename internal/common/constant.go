package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token value in AuthorizationHeaderName.
	BearerScheme = "Bearer"

	// RequestIDHeaderName correlates client log lines with backend requests.
	RequestIDHeaderName = "X-Request-ID"
)

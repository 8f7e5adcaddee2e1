package constants

const (
	// SESSION_HEADER identifies the client slot whose wallet/chain selection a request belongs to
	SESSION_HEADER = "X-Sweeper-Session"

	MAX_SESSION_ID_LENGTH = 128

	// REQUEST_ID_HEADER carries the request id; a client-supplied value is reused
	REQUEST_ID_HEADER     = "X-Request-ID"
	MAX_REQUEST_ID_LENGTH = 64

	CACHE_SCOPE_BALANCES = "balances"
	CACHE_SCOPE_VERIFIED = "verified"
	CACHE_SCOPE_ALL      = "all"
)

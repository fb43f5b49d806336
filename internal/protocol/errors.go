package protocol

import "fmt"

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Edits.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrNoPermission = "E_NO_PERMISSION"
	ErrRateLimit    = "E_RATE_LIMIT"
	ErrStale        = "E_STALE"
	ErrInternal     = "E_INTERNAL"
)

// knownCodes maps each code to whether it ends the session.
var knownCodes = map[string]bool{
	ErrProtoBadRequest: true,
	ErrProtoVersion:    true,
	ErrNoPermission:    true,
	ErrBadRequest:      false,
	ErrRateLimit:       false,
	ErrStale:           false,
	ErrInternal:        false,
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// Fatal reports whether the server closes the session after sending code. Unknown
// codes are treated as fatal; a rejected edit is not.
func Fatal(code string) bool {
	fatal, ok := knownCodes[code]
	return fatal || !ok
}

func (e ErrorMsg) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

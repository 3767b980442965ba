// Package httputil holds helpers shared by the outbound HTTP clients.
package httputil

// MaxErrorBody caps how much of a failed response body ends up in an error.
const MaxErrorBody = 200

// Snippet renders an error response body for an error message, cut to
// MaxErrorBody bytes with a trailing "..." when longer.
func Snippet(b []byte) string {
	if len(b) <= MaxErrorBody {
		return string(b)
	}
	return string(b[:MaxErrorBody]) + "..."
}

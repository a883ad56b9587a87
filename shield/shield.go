// Package shield is the HTTP middleware stack in front of the panel API
// and the bridge endpoint: response headers, request body limits and HEAD
// handling.
//
//	r := chi.NewRouter()
//	for _, mw := range shield.Stack(shield.DefaultMaxBody) {
//	    r.Use(mw)
//	}
package shield

import "net/http"

// DefaultMaxBody bounds request bodies. Highlight requests carry the full
// difference list, so this is generous.
const DefaultMaxBody int64 = 8 << 20

// Stack returns the middleware in application order:
// HeadToGet → SecurityHeaders → MaxBody.
func Stack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(APIHeaders()),
		MaxBody(maxBody),
	}
}

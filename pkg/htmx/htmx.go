package htmx

import "net/http"

// IsHxRequest reports whether the request was issued by htmx rather than a
// full-page navigation.
func IsHxRequest(r *http.Request) bool {
	return r.Header.Get("Hx-Request") == "true"
}

// IsBoosted reports whether the request came from an hx-boost'ed anchor.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get("Hx-Boosted") == "true"
}

// Redirect instructs the htmx client to perform a client-side redirect.
func Redirect(w http.ResponseWriter, path string) {
	w.Header().Set("Hx-Redirect", path)
}

// Retarget redirects the response into a different swap target.
func Retarget(w http.ResponseWriter, target, swap string) {
	w.Header().Set("Hx-Retarget", target)
	w.Header().Set("Hx-Reswap", swap)
}

package crawler

// Page is one fetched page. Unavailable marks a soft fetch failure
// (transport error, timeout, non-200 status) so callers can tell a failed
// fetch apart from a genuinely empty page.
type Page struct {
	URL         string
	HTML        string
	Unavailable bool
}

// unavailable builds the failure sentinel for a URL.
func unavailable(url string) Page {
	return Page{URL: url, Unavailable: true}
}

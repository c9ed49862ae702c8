package semantic

// Payload attribute names declared for every site collection.
const (
	FieldContent     = "content"
	FieldURL         = "url"
	FieldHTMLSnippet = "html_snippet"
	FieldPageTitle   = "page_title"
)

// VectorRecord is a single embedded chunk to store.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any // content, url, html_snippet, page_title
}

// Hit is a single nearest-neighbor result. Distance is a cosine distance:
// 0 means identical, larger means less similar.
type Hit struct {
	ID          string
	Distance    float32
	Content     string
	URL         string
	HTMLSnippet string
	PageTitle   string
}

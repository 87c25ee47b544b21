package domain

// Article is a static HTML page published on the site.
type Article struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet,omitempty"`
}

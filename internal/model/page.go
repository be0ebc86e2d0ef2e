package model

type PageType string

const (
	PageTypeHomepage = PageType("homepage")
	PageTypeDocs     = PageType("docs")
	PageTypeBlog     = PageType("blog")
	PageTypeOther    = PageType("other")
)

// PageInfo describes what the reader is currently looking at.
type PageInfo struct {
	Type        PageType
	Path        string
	DocPath     string
	BlogPath    string
	Description string
}

// ContextPath is the value forwarded to the backend as pagePath.
func (p PageInfo) ContextPath() string {
	if p.Type == PageTypeDocs && p.DocPath != "" {
		return p.DocPath
	}
	return p.Path
}

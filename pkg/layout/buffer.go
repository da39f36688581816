package layout

// PageBuffer collects pages during layout.
//
// Pages are only created on demand so that a document never contains
// an empty page.
type PageBuffer struct {
	pages []*Page
}

// NewPage appends a new page and makes it current.
func (b *PageBuffer) NewPage(kind PageKind) *Page {
	p := &Page{
		Number: len(b.pages) + 1,
		Kind:   kind,
	}
	b.pages = append(b.pages, p)
	return p
}

// Current returns the last page or nil if there is none.
func (b *PageBuffer) Current() *Page {
	if len(b.pages) == 0 {
		return nil
	}
	return b.pages[len(b.pages)-1]
}

// Len returns the number of pages.
func (b *PageBuffer) Len() int {
	return len(b.pages)
}

// Pages returns all pages.
func (b *PageBuffer) Pages() []*Page {
	return b.pages
}

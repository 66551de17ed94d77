package blog

// Page describes one page of a listing.
type Page struct {
	Index       int  `json:"page_index"`
	ItemCount   int  `json:"item_count"`
	Size        int  `json:"page_size"`
	Count       int  `json:"page_count"`
	Offset      int  `json:"offset"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPage computes page index of itemCount items, size per page. Out of
// range indexes land on the first page.
func NewPage(itemCount, index, size int) Page {
	if size <= 0 {
		size = 10
	}
	p := Page{ItemCount: itemCount, Size: size, Limit: size}
	p.Count = (itemCount + size - 1) / size
	if index < 1 || index > p.Count {
		index = 1
	}
	p.Index = index
	p.Offset = size * (index - 1)
	p.HasNext = index < p.Count
	p.HasPrevious = index > 1
	return p
}

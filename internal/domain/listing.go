package domain

// DefaultPageLimit is the page size used by every list endpoint.
const DefaultPageLimit = 100

// Page is an offset-pagination cursor. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps number to at least 1 and falls back to DefaultPageLimit.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// NextPage returns the following page number while count exceeds the
// items covered so far, nil otherwise.
func (p Page) NextPage(count int) *int {
	if count > p.Offset()+p.Limit {
		next := p.Number + 1
		return &next
	}
	return nil
}

// Listing is the uniform result of every list adapter.
type Listing[T any] struct {
	Items    []T  `json:"items"`
	Count    int  `json:"count"`
	NextPage *int `json:"nextPage"`
}

func EmptyListing[T any]() Listing[T] {
	return Listing[T]{Items: []T{}}
}

func (l Listing[T]) Empty() bool {
	return len(l.Items) == 0
}

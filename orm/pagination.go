package orm

import (
	"github.com/juju/errors"
	"gorm.io/gorm"
)

const defaultPageSize = 20

// Pagination is one page of a query plus what is needed to render page
// links.
type Pagination[T any] struct {
	query *gorm.DB

	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// Paginate runs q for one page and counts all of its rows. page below 1
// becomes 1, a non-positive size becomes 20, and maxSize caps size when
// positive.
func Paginate[T any](q *gorm.DB, page, size, maxSize int) (*Pagination[T], error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}

	var items []T
	if err := q.Session(&gorm.Session{}).Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
		return nil, errors.Annotate(err, "page items")
	}
	var total int64
	// gorm drops ORDER BY from counts that are not grouped.
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, errors.Annotate(err, "count")
	}
	return &Pagination[T]{
		query: q,
		Items: items,
		Page:  page,
		Size:  size,
		Total: total,
	}, nil
}

// Pages is the total number of pages.
func (p *Pagination[T]) Pages() int {
	if p.Size == 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p *Pagination[T]) HasPrev() bool { return p.Page > 1 }

func (p *Pagination[T]) HasNext() bool { return p.Page < p.Pages() }

// PrevNum is the previous page number, 0 when there is none.
func (p *Pagination[T]) PrevNum() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

// NextNum is the next page number, 0 when there is none.
func (p *Pagination[T]) NextNum() int {
	if !p.HasNext() {
		return 0
	}
	return p.Page + 1
}

// Prev runs the query again for the previous page.
func (p *Pagination[T]) Prev() (*Pagination[T], error) {
	return Paginate[T](p.query, p.Page-1, p.Size, 0)
}

// Next runs the query again for the next page.
func (p *Pagination[T]) Next() (*Pagination[T], error) {
	return Paginate[T](p.query, p.Page+1, p.Size, 0)
}

// IterPages lists the page numbers to show as links: leftEdge pages at the
// start, rightEdge at the end, and a window around the current page from
// leftCurrent before it to rightCurrent-1 after it. A 0 marks each gap.
func (p *Pagination[T]) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	var out []int
	last := 0
	pages := p.Pages()
	for num := 1; num <= pages; num++ {
		if num <= leftEdge ||
			(num > p.Page-leftCurrent-1 && num < p.Page+rightCurrent) ||
			num > pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}

// DefaultIterPages is IterPages(2, 2, 5, 2).
func (p *Pagination[T]) DefaultIterPages() []int {
	return p.IterPages(2, 2, 5, 2)
}

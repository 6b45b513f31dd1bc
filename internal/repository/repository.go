package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// DefaultPageSize is used when a caller asks for a page without a size.
const DefaultPageSize = 10

// Page describes a 1-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	return p
}

func (p Page) offset() int {
	p = p.normalize()
	return (p.Number - 1) * p.Size
}

// TotalPages returns how many pages of this size hold total rows.
func (p Page) TotalPages(total int64) int {
	p = p.normalize()
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// likePattern builds a lower-cased LIKE pattern for case-insensitive search.
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

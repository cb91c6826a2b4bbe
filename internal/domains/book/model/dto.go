package model

import (
	"strings"
)

// CreateBookRequest - POST /books/single, phần tử của POST /books/bulk
type CreateBookRequest struct {
	Title           string  `json:"title"`
	PublicationYear int     `json:"publicationYear"`
	AuthorName      *string `json:"authorName"`
}

// ToBook map request sang entity (chưa validate)
func (r CreateBookRequest) ToBook() Book {
	return Book{
		Title:           strings.TrimSpace(r.Title),
		PublicationYear: r.PublicationYear,
		AuthorName:      trimPtr(r.AuthorName),
	}
}

// UpdateBookRequest - PUT /books/:id; field nil giữ nguyên giá trị cũ
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publicationYear"`
	AuthorName      *string `json:"authorName"`
}

// NewTitle trả về title mới nếu request đổi title
func (r UpdateBookRequest) NewTitle(current string) (string, bool) {
	if r.Title == nil {
		return "", false
	}
	title := strings.TrimSpace(*r.Title)
	return title, title != current
}

// ApplyTo chỉ ghi các field được gửi lên
func (r UpdateBookRequest) ApplyTo(b *Book) {
	if r.Title != nil {
		b.Title = strings.TrimSpace(*r.Title)
	}
	if r.PublicationYear != nil {
		b.PublicationYear = *r.PublicationYear
	}
	if r.AuthorName != nil {
		b.AuthorName = trimPtr(r.AuthorName)
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

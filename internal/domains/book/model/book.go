package model

import (
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const (
	TitleMaxLength      = 50
	AuthorNameMaxLength = 50
	MinPublicationYear  = 1000
)

var (
	viewWeight = decimal.NewFromFloat(0.5)
	ageWeight  = decimal.NewFromInt(2)
)

// Book represents the catalog entity (bảng books)
type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	PublicationYear int       `json:"publicationYear" db:"publication_year"`
	AuthorName      *string   `json:"authorName" db:"author_name"`
	ViewCount       int       `json:"viewCount" db:"view_count"`
	IsDeleted       bool      `json:"-" db:"is_deleted"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate kiểm tra field constraints; năm xuất bản so với năm hiện tại của now
func (b Book) Validate(now time.Time) error {
	currentYear := now.Year()

	return validation.ValidateStruct(&b,
		validation.Field(&b.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, TitleMaxLength).Error("title must be at most 50 characters"),
		),
		validation.Field(&b.PublicationYear,
			validation.Required.Error(publicationYearMessage(currentYear)),
			validation.Min(MinPublicationYear).Error(publicationYearMessage(currentYear)),
			validation.Max(currentYear).Error(publicationYearMessage(currentYear)),
		),
		validation.Field(&b.AuthorName,
			validation.RuneLength(0, AuthorNameMaxLength).Error("author name must be at most 50 characters"),
		),
	)
}

func publicationYearMessage(currentYear int) string {
	return "publication year must be between 1000 and " + strconv.Itoa(currentYear)
}

// BookAgeInYears = năm hiện tại - năm xuất bản
func (b Book) BookAgeInYears(now time.Time) int {
	return now.Year() - b.PublicationYear
}

// PopularityScore = viewCount*0.5 + bookAgeInYears*2
//
// Ranking (GET /books/ranking) sắp xếp theo viewCount + age*2, không dùng score này.
func (b Book) PopularityScore(now time.Time) decimal.Decimal {
	views := decimal.NewFromInt(int64(b.ViewCount)).Mul(viewWeight)
	age := decimal.NewFromInt(int64(b.BookAgeInYears(now))).Mul(ageWeight)
	return views.Add(age)
}

// BookResponse là book kèm các field tính toán
type BookResponse struct {
	Book
	BookAgeInYears  int     `json:"bookAgeInYears"`
	PopularityScore float64 `json:"popularityScore"`
}

func ToBookResponse(b Book, now time.Time) BookResponse {
	return BookResponse{
		Book:            b,
		BookAgeInYears:  b.BookAgeInYears(now),
		PopularityScore: b.PopularityScore(now).InexactFloat64(),
	}
}

func ToBookResponses(books []Book, now time.Time) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = ToBookResponse(b, now)
	}
	return out
}

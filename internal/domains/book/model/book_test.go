package model

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestBook_Validate(t *testing.T) {
	tests := []struct {
		name    string
		book    Book
		invalid []string
	}{
		{"valid", Book{Title: "Dune", PublicationYear: 1965}, nil},
		{"current year passes", Book{Title: "New", PublicationYear: now.Year()}, nil},
		{"year 1000 passes", Book{Title: "Old", PublicationYear: 1000}, nil},
		{"year 999", Book{Title: "Old", PublicationYear: 999}, []string{"publicationYear"}},
		{"next year", Book{Title: "Future", PublicationYear: now.Year() + 1}, []string{"publicationYear"}},
		{"missing year", Book{Title: "NoYear"}, []string{"publicationYear"}},
		{"missing title", Book{PublicationYear: 2000}, []string{"title"}},
		{"title too long", Book{Title: strings.Repeat("x", 51), PublicationYear: 2000}, []string{"title"}},
		{"title 50 runes", Book{Title: strings.Repeat("ă", 50), PublicationYear: 2000}, nil},
		{"author too long", Book{Title: "A", PublicationYear: 2000, AuthorName: strPtr(strings.Repeat("y", 51))}, []string{"authorName"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.book.Validate(now)
			if tt.invalid == nil {
				assert.NoError(t, err)
				return
			}

			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs), "expected validation.Errors, got %v", err)
			for _, field := range tt.invalid {
				assert.Contains(t, verrs, field)
			}
			assert.Len(t, verrs, len(tt.invalid))
		})
	}
}

func TestBook_DerivedFields(t *testing.T) {
	b := Book{Title: "Dune", PublicationYear: 1965, ViewCount: 3}

	assert.Equal(t, 60, b.BookAgeInYears(now))
	assert.Equal(t, "121.5", b.PopularityScore(now).String())

	resp := ToBookResponse(b, now)
	assert.Equal(t, 60, resp.BookAgeInYears)
	assert.Equal(t, 121.5, resp.PopularityScore)
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		number, size    int
		wantNum, wantSz int
		wantOffset      int
	}{
		{1, 10, 1, 10, 0},
		{3, 25, 3, 25, 50},
		{0, 0, 1, 10, 0},
		{-4, -1, 1, 10, 0},
		{2, 0, 2, 10, 10},
	}

	for _, tt := range tests {
		p := NewPageRequest(tt.number, tt.size)
		assert.Equal(t, tt.wantNum, p.PageNumber)
		assert.Equal(t, tt.wantSz, p.PageSize)
		assert.Equal(t, tt.wantOffset, p.Offset())
	}
}

func TestPageRequest_OffsetSaturates(t *testing.T) {
	tests := []struct {
		number, size int
		want         int
	}{
		{3, math.MaxInt, math.MaxInt},
		{math.MaxInt, 2, math.MaxInt},
		{math.MaxInt, math.MaxInt, math.MaxInt},
		{1, math.MaxInt, 0},
		{2, math.MaxInt, math.MaxInt},
	}

	for _, tt := range tests {
		got := NewPageRequest(tt.number, tt.size).Offset()
		assert.GreaterOrEqual(t, got, 0)
		assert.Equal(t, tt.want, got)
	}
}

func TestUpdateBookRequest_ApplyTo(t *testing.T) {
	b := Book{Title: "Dune", PublicationYear: 1965, AuthorName: strPtr("Frank Herbert")}

	year := 1966
	UpdateBookRequest{PublicationYear: &year}.ApplyTo(&b)

	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, 1966, b.PublicationYear)
	assert.Equal(t, "Frank Herbert", *b.AuthorName)

	title, changed := UpdateBookRequest{Title: strPtr(" Dune ")}.NewTitle(b.Title)
	assert.False(t, changed)
	assert.Equal(t, "Dune", title)

	_, changed = UpdateBookRequest{Title: strPtr("Dune Messiah")}.NewTitle(b.Title)
	assert.True(t, changed)
}

func TestDuplicateTitlesError(t *testing.T) {
	err := &DuplicateTitlesError{Titles: []string{"Dune", "Emma"}}

	assert.ErrorIs(t, err, ErrTitleAlreadyExists)
	assert.Equal(t, "the following title(s) already exist: Dune, Emma", err.Error())
}

func TestHandleBookError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", ErrBookNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("update"), ErrBookNotFound), http.StatusNotFound},
		{"conflict", ErrTitleAlreadyExists, http.StatusConflict},
		{"bulk conflict", &DuplicateTitlesError{Titles: []string{"Dune"}}, http.StatusConflict},
		{"bulk item", &BulkItemError{Index: 1, Errors: validation.Errors{"title": errors.New("title is required")}}, http.StatusBadRequest},
		{"validation", validation.Errors{"title": errors.New("title is required")}, http.StatusBadRequest},
		{"nothing matched", ErrNoBooksMatched, http.StatusNotFound},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleBookError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

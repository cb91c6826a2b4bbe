package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"book-catalog-api/internal/domains/book/model"
)

const exportSheetName = "Books"

// ExportBooksToExcel - toàn bộ book chưa xóa kèm age và popularity score
func (s *BookService) ExportBooksToExcel(ctx context.Context) (*excelize.File, int, error) {
	books, err := s.repo.ListAllBooks(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}

	f, err := s.buildBooksExcelFile(model.ToBookResponses(books, s.now()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, len(books), nil
}

func (s *BookService) buildBooksExcelFile(books []model.BookResponse) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	// Row 1: Header
	headers := []string{
		"ID",
		"Title",
		"Publication Year",
		"Author",
		"View Count",
		"Book Age (Years)",
		"Popularity Score",
		"Created At",
	}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle)
	}

	// Data rows, bắt đầu từ row 2
	for i, b := range books {
		author := ""
		if b.AuthorName != nil {
			author = *b.AuthorName
		}

		values := []interface{}{
			b.ID,
			b.Title,
			b.PublicationYear,
			author,
			b.ViewCount,
			b.BookAgeInYears,
			b.PopularityScore,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	return f, nil
}

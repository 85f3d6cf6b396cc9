// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/pointer"
)

// # Service Layer

// Service applies the catalogue rules for books.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new book [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Queries

/*
ListBooks searches the catalogue.

Parameters:
  - context: context.Context
  - filter: Filter (title/author query, category, author, availability)
  - limit, offset: int

Returns:
  - []*Book: Matching books ordered by title
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.ListBooks(context, filter, limit, offset)
}

// GetBook returns one book with its author and category names.
func (service *Service) GetBook(context context.Context, id int) (*Book, error) {
	return service.repo.GetBook(context, id)
}

// # Commands

/*
CreateBook validates and stores a new title. All copies start available.

Returns:
  - *Book: The stored book
  - error: ValidationError, DuplicateISBN or persistence failures
*/
func (service *Service) CreateBook(context context.Context, input CreateInput) (*Book, error) {
	book := &Book{
		Title:         strings.TrimSpace(input.Title),
		ISBN:          validate.NormalizeISBN(input.ISBN),
		AuthorID:      input.AuthorID,
		CategoryID:    input.CategoryID,
		Publisher:     strings.TrimSpace(input.Publisher),
		PublishedYear: input.PublishedYear,
		Description:   input.Description,
		CoverImage:    strings.TrimSpace(input.CoverImage),
		TotalCopies:   input.TotalCopies,
	}
	book.AvailableCopies = book.TotalCopies

	if err := validateBook(book, 0); err != nil {
		return nil, err
	}

	if err := service.checkIntegrity(context, book, 0); err != nil {
		return nil, err
	}

	if err := service.repo.CreateBook(context, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_created",
		slog.Int("book_id", book.ID),
		slog.String("isbn", book.ISBN),
		slog.Int("total_copies", book.TotalCopies),
	)
	return book, nil
}

/*
UpdateBook merges the non-nil fields of input onto the stored book.

Changing TotalCopies shifts AvailableCopies by the same delta. A new total
below the number of copies currently on loan is rejected.

Returns:
  - *Book: The updated book
  - error: NotFound, ValidationError, DuplicateISBN or persistence failures
*/
func (service *Service) UpdateBook(context context.Context, id int, input UpdateInput) (*Book, error) {
	book, err := service.repo.GetBook(context, id)
	if err != nil {
		return nil, err
	}

	onLoan := book.OnLoan()

	book.Title = strings.TrimSpace(pointer.Fallback(input.Title, book.Title))
	if input.ISBN != nil {
		book.ISBN = validate.NormalizeISBN(*input.ISBN)
	}
	book.AuthorID = pointer.Fallback(input.AuthorID, book.AuthorID)
	book.CategoryID = pointer.Fallback(input.CategoryID, book.CategoryID)
	book.Publisher = strings.TrimSpace(pointer.Fallback(input.Publisher, book.Publisher))
	if input.PublishedYear != nil {
		book.PublishedYear = input.PublishedYear
	}
	book.Description = pointer.Fallback(input.Description, book.Description)
	book.CoverImage = strings.TrimSpace(pointer.Fallback(input.CoverImage, book.CoverImage))
	book.TotalCopies = pointer.Fallback(input.TotalCopies, book.TotalCopies)

	if err := validateBook(book, onLoan); err != nil {
		return nil, err
	}

	if err := service.checkIntegrity(context, book, book.ID); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateBook(context, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_updated",
		slog.Int("book_id", book.ID),
		slog.Int("total_copies", book.TotalCopies),
		slog.Int("available_copies", book.AvailableCopies),
	)
	return book, nil
}

/*
DeleteBook removes a title that has never been lent.

Ledger entries are kept forever, so a book with any borrowing history
cannot be deleted.

Returns:
  - error: NotFound, or Conflict if ledger entries reference the book
*/
func (service *Service) DeleteBook(context context.Context, id int) error {
	if _, err := service.repo.GetBook(context, id); err != nil {
		return err
	}

	loans, err := service.repo.CountLoans(context, id)
	if err != nil {
		return err
	}
	if loans > 0 {
		return apperr.Conflict(fmt.Sprintf("Book has %d borrowing record(s)", loans))
	}

	if err := service.repo.DeleteBook(context, id); err != nil {
		return err
	}

	service.logger.Warn("book_deleted", slog.Int("book_id", id))
	return nil
}

// # Rules

// checkIntegrity enforces the cross-row rules: ISBN uniqueness (excluding
// the book itself) and existing author/category references.
func (service *Service) checkIntegrity(context context.Context, book *Book, excludeID int) error {
	authorExists, categoryExists, err := service.repo.ReferencesExist(context, book.AuthorID, book.CategoryID)
	if err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.Custom(FieldAuthorID, !authorExists, "Author does not exist").
		Custom(FieldCategoryID, !categoryExists, "Category does not exist")
	if err := validator.Err(); err != nil {
		return err
	}

	taken, err := service.repo.ISBNExists(context, book.ISBN, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.DuplicateISBN()
	}
	return nil
}

func validateBook(book *Book, onLoan int) error {
	validator := &validate.Validator{}

	validator.Required(FieldTitle, book.Title).MaxLen(FieldTitle, book.Title, maxTitleLength)
	validator.Required(FieldISBN, book.ISBN).ISBN(FieldISBN, book.ISBN)
	validator.RequiredID(FieldAuthorID, book.AuthorID)
	validator.RequiredID(FieldCategoryID, book.CategoryID)
	validator.MaxLen(FieldPublisher, book.Publisher, maxPublisherLength)
	validator.MaxLen(FieldDescription, book.Description, maxDescriptionLength)
	validator.MaxLen(FieldCoverImage, book.CoverImage, maxCoverImageLength)
	validator.Range(FieldTotalCopies, book.TotalCopies, 1, maxTotalCopies)

	if book.PublishedYear != nil {
		validator.Range(FieldPublishedYear, *book.PublishedYear, minPublishedYear, time.Now().Year()+1)
	}

	validator.Custom(FieldTotalCopies, book.TotalCopies < onLoan,
		fmt.Sprintf("Cannot be lower than the %d copies currently on loan", onLoan))

	return validator.Err()
}

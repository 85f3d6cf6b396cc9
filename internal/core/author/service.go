// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/pointer"
)

// Service applies the catalogue rules for authors.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new author [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.ListAuthors(context, filter, limit, offset)
}

func (service *Service) GetAuthor(context context.Context, id int) (*Author, error) {
	return service.repo.GetAuthor(context, id)
}

func (service *Service) CreateAuthor(context context.Context, author *Author) error {
	author.Name = strings.TrimSpace(author.Name)
	if err := validateAuthor(author); err != nil {
		return err
	}

	if err := service.repo.CreateAuthor(context, author); err != nil {
		return err
	}

	service.logger.Info("author_created", slog.Int("author_id", author.ID), slog.String("name", author.Name))
	return nil
}

/*
UpdateAuthor merges the non-nil fields of input onto the stored author.

Returns:
  - *Author: The updated author
  - error: NotFound, ValidationError or persistence failures
*/
func (service *Service) UpdateAuthor(context context.Context, id int, input UpdateInput) (*Author, error) {
	author, err := service.repo.GetAuthor(context, id)
	if err != nil {
		return nil, err
	}

	author.Name = strings.TrimSpace(pointer.Fallback(input.Name, author.Name))
	author.Bio = pointer.Fallback(input.Bio, author.Bio)

	if err := validateAuthor(author); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateAuthor(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_updated", slog.Int("author_id", author.ID))
	return author, nil
}

/*
DeleteAuthor removes an author that no book references.

Returns:
  - error: NotFound, or Conflict while at least one book references the author
*/
func (service *Service) DeleteAuthor(context context.Context, id int) error {
	if _, err := service.repo.GetAuthor(context, id); err != nil {
		return err
	}

	books, err := service.repo.CountBooks(context, id)
	if err != nil {
		return err
	}
	if books > 0 {
		return apperr.Conflict(fmt.Sprintf("Author is referenced by %d book(s)", books))
	}

	if err := service.repo.DeleteAuthor(context, id); err != nil {
		return err
	}

	service.logger.Warn("author_deleted", slog.Int("author_id", id))
	return nil
}

func validateAuthor(author *Author) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, author.Name).
		MaxLen(FieldName, author.Name, maxNameLength).
		MaxLen(FieldBio, author.Bio, maxBioLength)
	return validator.Err()
}

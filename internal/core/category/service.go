// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/pointer"
	"github.com/taibuivan/libris/pkg/slug"
)

// Service applies the catalogue rules for categories.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new category [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListCategories(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.ListCategories(context, filter, limit, offset)
}

func (service *Service) GetCategory(context context.Context, id int) (*Category, error) {
	return service.repo.GetCategory(context, id)
}

func (service *Service) CreateCategory(context context.Context, category *Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = slug.From(category.Name)

	if err := validateCategory(category); err != nil {
		return err
	}

	if err := service.repo.CreateCategory(context, category); err != nil {
		return err
	}

	service.logger.Info("category_created", slog.Int("category_id", category.ID), slog.String("slug", category.Slug))
	return nil
}

// UpdateCategory merges the non-nil fields of input and re-derives the slug.
func (service *Service) UpdateCategory(context context.Context, id int, input UpdateInput) (*Category, error) {
	category, err := service.repo.GetCategory(context, id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(pointer.Fallback(input.Name, category.Name))
	category.Description = pointer.Fallback(input.Description, category.Description)
	category.Slug = slug.From(category.Name)

	if err := validateCategory(category); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateCategory(context, category); err != nil {
		return nil, err
	}

	service.logger.Info("category_updated", slog.Int("category_id", category.ID))
	return category, nil
}

// DeleteCategory removes a category that no book is filed under.
func (service *Service) DeleteCategory(context context.Context, id int) error {
	if _, err := service.repo.GetCategory(context, id); err != nil {
		return err
	}

	books, err := service.repo.CountBooks(context, id)
	if err != nil {
		return err
	}
	if books > 0 {
		return apperr.Conflict(fmt.Sprintf("Category is referenced by %d book(s)", books))
	}

	if err := service.repo.DeleteCategory(context, id); err != nil {
		return err
	}

	service.logger.Warn("category_deleted", slog.Int("category_id", id))
	return nil
}

func validateCategory(category *Category) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, category.Name).
		MaxLen(FieldName, category.Name, maxNameLength).
		MaxLen(FieldDescription, category.Description, maxDescriptionLength)

	// A name made only of symbols has no usable slug.
	if !validator.HasErrors() {
		validator.Custom(FieldName, category.Slug == "", "Must contain at least one letter or digit")
	}
	return validator.Err()
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/category"
	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/pkg/pointer"
)

type fakeRepository struct {
	categories map[int]*category.Category
	books      map[int]int
	nextID     int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{categories: map[int]*category.Category{}, books: map[int]int{}}
}

func (f *fakeRepository) ListCategories(_ context.Context, _ category.Filter, _, _ int) ([]*category.Category, int, error) {
	out := []*category.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeRepository) GetCategory(_ context.Context, id int) (*category.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, apperr.NotFound("Category")
	}
	clone := *c
	return &clone, nil
}

func (f *fakeRepository) CreateCategory(_ context.Context, c *category.Category) error {
	for _, existing := range f.categories {
		if existing.Slug == c.Slug {
			return apperr.Conflict("A category with this name already exists")
		}
	}
	f.nextID++
	c.ID = f.nextID
	clone := *c
	f.categories[c.ID] = &clone
	return nil
}

func (f *fakeRepository) UpdateCategory(_ context.Context, c *category.Category) error {
	clone := *c
	f.categories[c.ID] = &clone
	return nil
}

func (f *fakeRepository) CountBooks(_ context.Context, id int) (int, error) {
	return f.books[id], nil
}

func (f *fakeRepository) DeleteCategory(_ context.Context, id int) error {
	delete(f.categories, id)
	return nil
}

func newService(repo category.Repository) *category.Service {
	return category.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestCreateCategory derives the slug and rejects unusable names.
*/
func TestCreateCategory(t *testing.T) {
	service := newService(newFakeRepository())
	ctx := context.Background()

	created := &category.Category{Name: "Science Fiction"}
	require.NoError(t, service.CreateCategory(ctx, created))
	assert.Equal(t, "science-fiction", created.Slug)

	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"empty", "", apperr.CodeValidation},
		{"symbols only", "!!!", apperr.CodeValidation},
		{"same slug", "science fiction", apperr.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.CreateCategory(ctx, &category.Category{Name: tt.input})
			assert.True(t, apperr.HasCode(err, tt.code))
		})
	}
}

/*
TestUpdateCategory re-derives the slug from the new name.
*/
func TestUpdateCategory(t *testing.T) {
	service := newService(newFakeRepository())
	ctx := context.Background()

	created := &category.Category{Name: "Poetry", Description: "Verse"}
	require.NoError(t, service.CreateCategory(ctx, created))

	updated, err := service.UpdateCategory(ctx, created.ID, category.UpdateInput{Name: pointer.To("Poésie")})
	require.NoError(t, err)
	assert.Equal(t, "poesie", updated.Slug)
	assert.Equal(t, "Verse", updated.Description)
}

/*
TestDeleteCategory blocks deletion while books are filed under it.
*/
func TestDeleteCategory(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	ctx := context.Background()

	created := &category.Category{Name: "History"}
	require.NoError(t, service.CreateCategory(ctx, created))

	repo.books[created.ID] = 1
	err := service.DeleteCategory(ctx, created.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Contains(t, repo.categories, created.ID)

	repo.books[created.ID] = 0
	require.NoError(t, service.DeleteCategory(ctx, created.ID))
	assert.NotContains(t, repo.categories, created.ID)
}

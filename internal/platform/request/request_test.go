// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/libris/internal/platform/request"
	"github.com/taibuivan/libris/internal/platform/sec"
)

func withParam(request *http.Request, name, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeCtx))
}

/*
TestID accepts positive integers only.
*/
func TestID(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		valid bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			request := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.raw)
			id, err := requestutil.ID(request, "id")
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.want, id)
			} else {
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
			}
		})
	}
}

/*
TestDecodeJSON rejects malformed bodies.
*/
func TestDecodeJSON(t *testing.T) {
	var target struct {
		Title string `json:"title"`
	}

	ok := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Dune"}`))
	require.NoError(t, requestutil.DecodeJSON(ok, &target))
	assert.Equal(t, "Dune", target.Title)

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	assert.True(t, apperr.HasCode(requestutil.DecodeJSON(bad, &target), apperr.CodeValidation))
}

/*
TestRequiredActor reads the caller from the authenticated context.
*/
func TestRequiredActor(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := requestutil.RequiredActor(request)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u1", Role: "member"})
	actor, err := requestutil.RequiredActor(request.WithContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, sec.Actor{UserID: "u1", Role: sec.RoleMember}, actor)
}

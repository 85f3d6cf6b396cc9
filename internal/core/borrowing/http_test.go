// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrowing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/borrowing"
	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	"github.com/taibuivan/libris/internal/platform/sec"
)

// newRouter mounts the lending routes the way the API server does, with the
// caller injected in place of token verification.
func newRouter(handler *borrowing.Handler, actor *sec.Actor) http.Handler {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if actor != nil {
				claims := &sec.AuthClaims{UserID: actor.UserID, Role: string(actor.Role)}
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
			}
			next.ServeHTTP(writer, request)
		})
	})

	router.Route("/books", handler.RegisterBookRoutes)
	router.Route("/borrowings", handler.RegisterRoutes)
	router.Get("/dashboard", handler.Dashboard)
	return router
}

func decodeCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	return body.Code
}

/*
TestHandler_BorrowAndReturn drives one loan through the HTTP surface.
*/
func TestHandler_BorrowAndReturn(t *testing.T) {
	f := newFixture(t)
	f.store.AddBook(1, "Xenogenesis", 1)
	alice := f.member("alice")
	router := newRouter(borrowing.NewHandler(f.service), &alice)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/books/1/borrow", nil))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		Data borrowing.Record `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&created))
	assert.Equal(t, borrowing.StatusBorrowed, created.Data.Status)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/books/1/borrow", nil))
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, apperr.CodeAlreadyBorrowed, decodeCode(t, recorder))

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/borrowings/", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	target := "/borrowings/" + strconv.Itoa(created.Data.ID) + "/return"
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, target, nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, target, nil))
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, apperr.CodeAlreadyReturned, decodeCode(t, recorder))
}

/*
TestHandler_Guards checks authentication, the admin-only sweep and input
validation.
*/
func TestHandler_Guards(t *testing.T) {
	f := newFixture(t)
	alice := f.member("alice")
	librarian := f.admin()

	tests := []struct {
		name   string
		actor  *sec.Actor
		method string
		target string
		status int
	}{
		{"anonymous borrow", nil, http.MethodPost, "/books/1/borrow", http.StatusUnauthorized},
		{"anonymous dashboard", nil, http.MethodGet, "/dashboard", http.StatusUnauthorized},
		{"member sweep", &alice, http.MethodPost, "/borrowings/sweep", http.StatusForbidden},
		{"admin sweep", &librarian, http.MethodPost, "/borrowings/sweep", http.StatusOK},
		{"admin sweep as_of", &librarian, http.MethodPost, "/borrowings/sweep?as_of=2026-04-01T00:00:00Z", http.StatusOK},
		{"malformed as_of", &librarian, http.MethodPost, "/borrowings/sweep?as_of=yesterday", http.StatusBadRequest},
		{"malformed id", &alice, http.MethodPost, "/books/abc/borrow", http.StatusBadRequest},
		{"unknown book", &alice, http.MethodPost, "/books/9/borrow", http.StatusNotFound},
		{"no active loan", &alice, http.MethodGet, "/books/9/loan", http.StatusNotFound},
		{"member dashboard", &alice, http.MethodGet, "/dashboard", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(borrowing.NewHandler(f.service), tt.actor)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

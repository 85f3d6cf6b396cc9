// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	"github.com/taibuivan/libris/internal/platform/sec"
	"github.com/taibuivan/libris/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID parses a named numeric URL parameter.

Returns:
  - int: The positive identifier
  - error: apperr.ValidationError when the parameter is not a positive integer
*/
func ID(request *http.Request, name string) (int, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

/*
QueryInt parses an optional integer query parameter. Missing or malformed
values yield 0.
*/
func QueryInt(request *http.Request, name string) int {
	value, err := strconv.Atoi(strings.TrimSpace(request.URL.Query().Get(name)))
	if err != nil {
		return 0
	}
	return value
}

/*
RequiredActor ensures the request is authenticated and returns the caller.

Returns:
  - sec.Actor: The authenticated caller
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredActor(request *http.Request) (sec.Actor, error) {
	actor, ok := ctxutil.GetActor(request.Context())
	if !ok {
		return sec.Actor{}, apperr.Unauthorized("Authentication required")
	}
	return actor, nil
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrowing

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/libris/internal/platform/middleware"
	requestutil "github.com/taibuivan/libris/internal/platform/request"
	"github.com/taibuivan/libris/internal/platform/respond"
	"github.com/taibuivan/libris/internal/platform/sec"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterBookRoutes mounts the lending actions under /books.
func (handler *Handler) RegisterBookRoutes(router chi.Router) {
	router.Group(func(authRoute chi.Router) {
		authRoute.Use(middleware.RequireAuth)

		authRoute.Post("/{id}/borrow", handler.borrowBook)
		authRoute.Get("/{id}/loan", handler.getActiveLoan)
	})
}

// RegisterRoutes mounts the ledger endpoints under /borrowings.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listRecords)
	router.Get("/{id}", handler.getRecord)
	router.Post("/{id}/return", handler.returnBook)

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))

		adminRoute.Post("/sweep", handler.sweepOverdue)
	})
}

// Dashboard serves the catalogue and lending counters.
func (handler *Handler) Dashboard(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.service.Stats(request.Context(), actor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) borrowBook(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Borrow(request.Context(), actor, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, record)
}

func (handler *Handler) getActiveLoan(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.ActiveLoan(request.Context(), actor, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) listRecords(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		UserID:     query.Get("user_id"),
		BookID:     requestutil.QueryInt(request, "book_id"),
		Status:     Status(query.Get("status")),
		ActiveOnly: query.Get("active") == "true",
	}

	records, total, err := handler.service.ListRecords(request.Context(), actor, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getRecord(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	recordID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.GetRecord(request.Context(), actor, recordID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) returnBook(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	recordID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Return(request.Context(), actor, recordID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// sweepOverdue accepts an optional as_of query parameter (RFC 3339) for
// back-dated runs.
func (handler *Handler) sweepOverdue(writer http.ResponseWriter, request *http.Request) {
	raw := strings.TrimSpace(request.URL.Query().Get("as_of"))
	if raw == "" {
		result, err := handler.service.Sweep(request.Context())
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, result)
		return
	}

	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("as_of", "Must be an RFC 3339 timestamp"))
		return
	}

	updated, err := handler.service.SweepOverdue(request.Context(), asOf)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, &SweepResult{AsOf: asOf, Updated: updated})
}

package book

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register mounts the book routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("GET /books/{id}", h.Get)
	mux.HandleFunc("PUT /books/{id}", h.Update)
	mux.HandleFunc("PATCH /books/{id}", h.Update)
	mux.HandleFunc("DELETE /books/{id}", h.Delete)
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, page, details := parseListQuery(r)
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "invalid query parameters", details)
		return
	}

	result, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONOK(w, result)
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in AddBook
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, created)
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONOK(w, b)
}

// Update handles PUT and PATCH /books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch UpdateBook
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	b, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONOK(w, b)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]httpx.ErrorDetail, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, httpx.ErrorDetail{Field: f.Field, Message: f.Message})
		}
		httpx.JSONError(w, r, http.StatusBadRequest, verr.Error(), details)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, err.Error(), nil)
	default:
		log.Printf("book handler error: method=%s path=%s request_id=%s error=%v",
			r.Method, r.URL.Path, httpx.RequestIDFrom(r), err)
		httpx.InternalError(w, r)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "invalid book id: "+strconv.Quote(raw), nil)
		return 0, false
	}
	return id, true
}

// parseListQuery reads available, author, year, page and limit. Values that
// do not parse are reported as details; page and limit are clamped later.
func parseListQuery(r *http.Request) (Filter, PageRequest, []httpx.ErrorDetail) {
	query := r.URL.Query()
	var (
		f       Filter
		p       PageRequest
		details []httpx.ErrorDetail
	)

	if v := query.Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "available", Message: "available must be true or false"})
		} else {
			f.Available = &b
		}
	}
	if v := query.Get("author"); v != "" {
		f.Author = &v
	}
	if v := query.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "year", Message: "year must be an integer"})
		} else {
			f.Year = &y
		}
	}
	if v := query.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "page", Message: "page must be an integer"})
		}
		p.Page = n
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "limit", Message: "limit must be an integer"})
		}
		p.Limit = n
	}
	return f, p, details
}

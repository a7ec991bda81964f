package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/diary/internal/account"
	"github.com/starford/diary/internal/apperr"
	"github.com/starford/diary/internal/calendar"
	"github.com/starford/diary/internal/checksum"
	"github.com/starford/diary/internal/journal"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"

	maxBodyBytes = 10 << 20
)

// Handler holds API route handlers.
type Handler struct {
	svc  *journal.Service
	sess *account.Session
}

// NewHandler creates a new Handler.
func NewHandler(svc *journal.Service, sess *account.Session) *Handler {
	return &Handler{svc: svc, sess: sess}
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("entry already exists"))
	case errors.Is(err, apperr.ErrAccountExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrAccountMissing):
		writeJSON(w, http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrPasswordMismatch):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func entryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid entry id"))
		return uuid.Nil, false
	}
	return id, true
}

func decodeEntryRequest(w http.ResponseWriter, r *http.Request) (journal.EntryInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return journal.EntryInput{}, false
	}
	in, err := req.input()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return journal.EntryInput{}, false
	}
	return in, true
}

func writeEntry(w http.ResponseWriter, status int, d *journal.Detail) {
	w.Header().Set("ETag", checksum.ETag(d.Checksum))
	writeJSON(w, status, entryResponse(d))
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List entries, newest first by default
//	@Tags			entries
//	@Produce		json
//	@Param			sort	query		string	false	"Sort order"	Enums(latest, oldest)
//	@Param			q		query		string	false	"Match title or long date, case-insensitive"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	EntryListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.List(r.Context(), journal.ListOptions{
		Sort:   q.Get("sort"),
		Query:  q.Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeServiceError(w, "list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: items, Total: total})
}

// CreateEntry handles POST /api/entries.
//
//	@Summary		Create a new entry
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EntryRequest	true	"Entry to create"
//	@Success		201		{object}	EntryResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeEntryRequest(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, "create entry", err)
		return
	}
	writeEntry(w, http.StatusCreated, d)
}

// GetEntry handles GET /api/entries/{id}.
//
//	@Summary		Get a single entry
//	@Tags			entries
//	@Produce		json
//	@Param			id				path		string	true	"Entry UUID"
//	@Param			If-None-Match	header		string	false	"Checksum from a previous ETag"
//	@Success		200				{object}	EntryResponse
//	@Success		304				"Not modified"
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get entry", err)
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && checksum.Match(inm, d.Checksum) {
		w.Header().Set("ETag", checksum.ETag(d.Checksum))
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeEntry(w, http.StatusOK, d)
}

// UpdateEntry handles PUT /api/entries/{id}.
//
//	@Summary		Update an entry with optimistic concurrency
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"Entry UUID"
//	@Param			If-Match	header		string			false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		EntryRequest	true	"Updated entry"
//	@Success		200			{object}	EntryResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [put]
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	in, ok := decodeEntryRequest(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Update(r.Context(), id, in, r.Header.Get("If-Match"))
	if err != nil {
		writeServiceError(w, "update entry", err)
		return
	}
	writeEntry(w, http.StatusOK, d)
}

// DeleteEntry handles DELETE /api/entries/{id}.
//
//	@Summary		Delete an entry
//	@Tags			entries
//	@Param			id	path	string	true	"Entry UUID"
//	@Success		204	"Entry deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [delete]
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseMonth reads a YYYY-MM month in the calendar's location. An empty
// value means the current month.
func (h *Handler) parseMonth(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return h.svc.Today(), true
	}
	t, err := time.ParseInLocation(monthLayout, raw, h.svc.Calendar().Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("month must be YYYY-MM"))
		return time.Time{}, false
	}
	return t, true
}

// Calendar handles GET /api/calendar.
//
//	@Summary		Month grid with entry markers and layout hints
//	@Tags			calendar
//	@Produce		json
//	@Param			month	query		string	false	"Month as YYYY-MM, defaults to the current month"
//	@Param			layout	query		string	false	"Size class"	Enums(compact, regular-wide, regular-tall)
//	@Success		200		{object}	CalendarResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref, ok := h.parseMonth(w, q.Get("month"))
	if !ok {
		return
	}
	sc, err := calendar.ParseSizeClass(q.Get("layout"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	view, err := h.svc.Month(r.Context(), ref)
	if err != nil {
		writeServiceError(w, "calendar month", err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Month: view, Layout: calendar.SelectLayout(sc)})
}

// Navigate handles GET /api/calendar/navigate.
//
//	@Summary		Step the calendar by whole months
//	@Tags			calendar
//	@Produce		json
//	@Param			month	query		string	false	"Starting month as YYYY-MM"
//	@Param			delta	query		int		true	"Months to move, negative for the past"
//	@Success		200		{object}	NavigateResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/navigate [get]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref, ok := h.parseMonth(w, q.Get("month"))
	if !ok {
		return
	}
	delta, err := strconv.Atoi(q.Get("delta"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("delta must be an integer"))
		return
	}
	start := h.svc.Navigate(ref, delta)
	writeJSON(w, http.StatusOK, NavigateResponse{Month: start.Format(monthLayout), Start: start})
}

// Day handles GET /api/calendar/days/{date}.
//
//	@Summary		Entries dated on one day
//	@Tags			calendar
//	@Produce		json
//	@Param			date	path		string	true	"Day as YYYY-MM-DD"
//	@Success		200		{object}	DayResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/days/{date} [get]
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")
	day, err := time.ParseInLocation(dayLayout, raw, h.svc.Calendar().Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("date must be YYYY-MM-DD"))
		return
	}
	entries, err := h.svc.Day(r.Context(), day)
	if err != nil {
		writeServiceError(w, "calendar day", err)
		return
	}
	writeJSON(w, http.StatusOK, DayResponse{Date: day.Format(dayLayout), Entries: entries})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across entries
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	map[string][]index.SearchResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// GetAccount handles GET /api/account.
//
//	@Summary		Account status
//	@Tags			account
//	@Produce		json
//	@Success		200	{object}	AccountResponse
//	@Router			/account [get]
func (h *Handler) GetAccount(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, AccountResponse{
		Username:    h.sess.Username(),
		FirstLaunch: h.sess.FirstLaunch(),
	})
}

// SetupAccount handles POST /api/account. It only succeeds once.
//
//	@Summary		Create the diary account on first launch
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AccountRequest	true	"Credentials"
//	@Success		201		{object}	AccountResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/account [post]
func (h *Handler) SetupAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAccountRequest(w, r)
	if !ok {
		return
	}
	if err := h.sess.Setup(req.Username, req.Password, req.Confirm); err != nil {
		writeServiceError(w, "account setup", err)
		return
	}
	writeJSON(w, http.StatusCreated, AccountResponse{Username: h.sess.Username()})
}

// UpdateAccount handles PUT /api/account.
//
//	@Summary		Change the username or password
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AccountRequest	true	"New credentials"
//	@Success		200		{object}	AccountUpdateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/account [put]
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAccountRequest(w, r)
	if !ok {
		return
	}
	changed, err := h.sess.Update(req.Username, req.Password, req.Confirm)
	if err != nil {
		writeServiceError(w, "account update", err)
		return
	}
	writeJSON(w, http.StatusOK, AccountUpdateResponse{Changed: changed})
}

func decodeAccountRequest(w http.ResponseWriter, r *http.Request) (AccountRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	return req, true
}

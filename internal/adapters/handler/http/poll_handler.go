package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

const pageSize = 10

type PollHandler struct {
	polls  ports.PollRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewPollHandler(polls ports.PollRepository, logger *zap.Logger) *PollHandler {
	return &PollHandler{
		polls:  polls,
		logger: logger,
		now:    time.Now,
	}
}

type pollPage struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []domain.Poll `json:"results"`
}

// ListPolls answers with a bare array, or with a page envelope when the
// page parameter is present.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := domain.ListQuery{
		Search:   params.Get("search"),
		Ordering: domain.SortKey(params.Get("ordering")),
		ShowAll:  strings.EqualFold(params.Get("show_all"), "true"),
	}

	polls, err := h.polls.List(r.Context(), query)
	if err != nil {
		h.internalError(w, "failed to list polls", err)
		return
	}

	if !params.Has("page") {
		writeJSON(w, http.StatusOK, polls)
		return
	}

	page, err := strconv.Atoi(params.Get("page"))
	if err != nil || page < 1 || (page-1)*pageSize >= max(len(polls), 1) {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(polls))
	body := pollPage{Count: len(polls), Results: polls[start:end]}
	if end < len(polls) {
		body.Next = pageLink(r, page+1)
	}
	if page > 1 {
		body.Previous = pageLink(r, page-1)
	}
	writeJSON(w, http.StatusOK, body)
}

func pageLink(r *http.Request, page int) *string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	poll, err := h.polls.GetByID(r.Context(), id, viewerID(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			writeDetail(w, http.StatusNotFound, detailNotFound)
			return
		}
		h.internalError(w, "failed to get poll", err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var req domain.CreatePollInput
	if !decodeBody(w, r, &req) {
		return
	}
	input, errs := domain.NormalizeCreatePoll(req, h.now())
	if errs != nil {
		writeValidation(w, errs)
		return
	}

	poll, err := h.polls.Save(r.Context(), user.ID, input)
	if err != nil {
		h.internalError(w, "failed to create poll", err)
		return
	}

	h.logger.Info("poll created", zap.Int64("poll_id", poll.ID), zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusCreated, poll)
}

// DeletePoll removes a poll created by the requesting user.
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id, ok := pollID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	err := h.polls.Delete(r.Context(), id, user.ID)
	switch {
	case errors.Is(err, domain.ErrPollNotFound):
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	case errors.Is(err, domain.ErrNotPollCreator):
		writeDetail(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		h.internalError(w, "failed to delete poll", err)
		return
	}

	h.logger.Info("poll deleted", zap.Int64("poll_id", id), zap.Int64("user_id", user.ID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	results, err := h.polls.Results(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			writeDetail(w, http.StatusNotFound, detailNotFound)
			return
		}
		h.internalError(w, "failed to get results", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *PollHandler) MyPolls(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	polls, err := h.polls.ListCreatedBy(r.Context(), user.ID)
	if err != nil {
		h.internalError(w, "failed to list own polls", err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	polls, err := h.polls.ListVotedBy(r.Context(), user.ID)
	if err != nil {
		h.internalError(w, "failed to list voted polls", err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	writeDetail(w, http.StatusInternalServerError, domain.GenericErrorMessage)
}

func pollID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

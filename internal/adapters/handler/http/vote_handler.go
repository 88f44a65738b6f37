package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type VoteHandler struct {
	polls  ports.PollRepository
	logger *zap.Logger
}

func NewVoteHandler(polls ports.PollRepository, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		polls:  polls,
		logger: logger,
	}
}

type voteRequest struct {
	OptionID *int64 `json:"option_id"`
}

func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	user, _ := userFrom(r.Context())

	var req voteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OptionID == nil {
		writeValidation(w, domain.ValidationErrors{"option_id": {domain.FieldRequiredMessage}})
		return
	}

	vote, err := h.polls.Vote(r.Context(), user.ID, id, *req.OptionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPollNotFound):
			writeDetail(w, http.StatusNotFound, detailNotFound)
		case errors.Is(err, domain.ErrOptionNotFound),
			errors.Is(err, domain.ErrPollInactive),
			errors.Is(err, domain.ErrPollExpired):
			writeValidation(w, fieldError("option_id", err))
		case errors.Is(err, domain.ErrAlreadyVoted),
			errors.Is(err, domain.ErrOptionAlreadyVoted):
			writeValidation(w, fieldError(domain.NonFieldErrorsKey, err))
		case errors.Is(err, domain.ErrForeignOption):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to record vote", zap.Error(err))
			writeDetail(w, http.StatusInternalServerError, domain.GenericErrorMessage)
		}
		return
	}

	h.logger.Info("vote recorded",
		zap.Int64("poll_id", id),
		zap.Int64("option_id", *req.OptionID),
		zap.Int64("user_id", user.ID),
	)
	writeJSON(w, http.StatusCreated, vote)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type voteRequest struct {
	OptionID int64 `json:"option_id"`
}

func (c *Client) ListPolls(ctx context.Context, query domain.ListQuery) (domain.PollPage, error) {
	return c.listPolls(ctx, "/polls/", query)
}

func (c *Client) MyPolls(ctx context.Context) (domain.PollPage, error) {
	return c.listPolls(ctx, "/polls/my_polls/", domain.ListQuery{})
}

func (c *Client) MyVotes(ctx context.Context) (domain.PollPage, error) {
	return c.listPolls(ctx, "/polls/my_votes/", domain.ListQuery{})
}

func (c *Client) listPolls(ctx context.Context, path string, query domain.ListQuery) (domain.PollPage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, path: path, query: query.Values()}, &raw); err != nil {
		return domain.PollPage{}, err
	}
	return decodePollPage(raw)
}

func (c *Client) GetPoll(ctx context.Context, id int64) (*domain.Poll, error) {
	var poll domain.Poll
	if err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/polls/%d/", id)}, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (c *Client) CreatePoll(ctx context.Context, input domain.CreatePollInput) (*domain.Poll, error) {
	var poll domain.Poll
	if err := c.do(ctx, call{method: http.MethodPost, path: "/polls/", body: input}, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// DeletePoll removes a poll. Only its creator may delete it.
func (c *Client) DeletePoll(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/polls/%d/", id)}, nil)
}

func (c *Client) Vote(ctx context.Context, pollID, optionID int64) (*domain.Vote, error) {
	var vote domain.Vote
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/polls/%d/vote/", pollID),
		body:   voteRequest{OptionID: optionID},
	}, &vote)
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (c *Client) Results(ctx context.Context, pollID int64) (*domain.PollResults, error) {
	var results domain.PollResults
	if err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/polls/%d/results/", pollID)}, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

type pollEnvelope struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []domain.Poll `json:"results"`
}

// decodePollPage accepts either a bare array of polls or a paginated
// envelope. An empty or null body is an empty page.
func decodePollPage(raw []byte) (domain.PollPage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.PollPage{Items: []domain.Poll{}}, nil
	}

	if raw[0] == '[' {
		var items []domain.Poll
		if err := json.Unmarshal(raw, &items); err != nil {
			return domain.PollPage{}, fmt.Errorf("failed to decode poll list: %w", err)
		}
		return domain.PollPage{Items: items, Count: len(items)}, nil
	}

	var env pollEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.PollPage{}, fmt.Errorf("failed to decode poll page: %w", err)
	}
	page := domain.PollPage{Items: env.Results, Count: env.Count}
	if page.Items == nil {
		page.Items = []domain.Poll{}
	}
	if env.Next != nil {
		page.Next = *env.Next
	}
	if env.Previous != nil {
		page.Previous = *env.Previous
	}
	return page, nil
}

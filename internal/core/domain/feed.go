package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FeedMode selects which poll collection the feed shows.
type FeedMode int

const (
	FeedAll FeedMode = iota
	FeedMine
	FeedVoted
)

var feedModeNames = map[FeedMode]string{
	FeedAll:   "all",
	FeedMine:  "mine",
	FeedVoted: "voted",
}

func (m FeedMode) String() string {
	if name, ok := feedModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("FeedMode(%d)", int(m))
}

func ParseFeedMode(s string) (FeedMode, error) {
	for mode, name := range feedModeNames {
		if name == s {
			return mode, nil
		}
	}
	return FeedAll, fmt.Errorf("unknown feed mode %q (want all, mine or voted)", s)
}

type StatusFilter string

const (
	StatusActive  StatusFilter = "active"
	StatusAll     StatusFilter = "all"
	StatusExpired StatusFilter = "expired"
)

var statusCycle = []StatusFilter{StatusActive, StatusAll, StatusExpired}

func (s StatusFilter) Valid() bool {
	for _, v := range statusCycle {
		if s == v {
			return true
		}
	}
	return false
}

// Next returns the following status in display order, wrapping around.
func (s StatusFilter) Next() StatusFilter {
	for i, v := range statusCycle {
		if s == v {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusActive
}

type SortKey string

const (
	SortNewest SortKey = "-created_at"
	SortOldest SortKey = "created_at"
	SortTitle  SortKey = "title"
)

var sortCycle = []SortKey{SortNewest, SortOldest, SortTitle}

var sortLabels = map[SortKey]string{
	SortNewest: "Newest First",
	SortOldest: "Oldest First",
	SortTitle:  "Alphabetical",
}

func (k SortKey) Valid() bool {
	_, ok := sortLabels[k]
	return ok
}

func (k SortKey) Label() string {
	if label, ok := sortLabels[k]; ok {
		return label
	}
	return string(k)
}

func (k SortKey) Next() SortKey {
	for i, v := range sortCycle {
		if k == v {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return SortNewest
}

// OrderField splits an ordering into its field and direction. The server
// orders by created_at, expires_at or title; anything else falls back to
// newest first.
func (k SortKey) OrderField() (field string, desc bool) {
	raw := strings.TrimSpace(string(k))
	field, desc = strings.TrimPrefix(raw, "-"), strings.HasPrefix(raw, "-")
	switch field {
	case "created_at", "expires_at", "title":
		return field, desc
	default:
		return "created_at", true
	}
}

type FeedFilter struct {
	Search string
	Status StatusFilter
	Sort   SortKey
}

func DefaultFeedFilter() FeedFilter {
	return FeedFilter{Status: StatusActive, Sort: SortNewest}
}

func (f FeedFilter) Validate() error {
	if !f.Status.Valid() {
		return fmt.Errorf("unknown status filter %q (want active, all or expired)", f.Status)
	}
	if !f.Sort.Valid() {
		return fmt.Errorf("unknown sort key %q (want -created_at, created_at or title)", f.Sort)
	}
	return nil
}

// ListQuery is the query of GET /polls/.
type ListQuery struct {
	Search   string
	Ordering SortKey
	ShowAll  bool
	Page     int
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Ordering != "" {
		v.Set("ordering", string(q.Ordering))
	}
	if q.ShowAll {
		v.Set("show_all", "true")
	}
	if q.Page > 0 {
		v.Set("page", fmt.Sprint(q.Page))
	}
	return v
}

// Query builds the list query for the all-polls feed. The server hides
// inactive and expired polls unless show_all is set, so every status except
// active needs it.
func (f FeedFilter) Query() ListQuery {
	return ListQuery{
		Search:   f.Search,
		Ordering: f.Sort,
		ShowAll:  f.Status != StatusActive,
	}
}

// Feed is the committed display state of the feed controller.
type Feed struct {
	Mode       FeedMode
	Filter     FeedFilter
	Polls      []Poll
	Generation uint64
	FetchedAt  time.Time
}

func (f Feed) Empty() bool {
	return len(f.Polls) == 0
}

package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

const (
	EmptyFeedMessage = "No polls found"
	minBarWidth      = 10
	maxBarWidth      = 40
)

type Renderer struct {
	theme Theme
	now   func() time.Time
}

func New(theme Theme) *Renderer {
	return &Renderer{theme: theme, now: time.Now}
}

func (r *Renderer) Badge(status domain.PollStatus) string {
	label := "[" + string(status) + "]"
	switch status {
	case domain.PollStatusExpired:
		return r.theme.BadgeExpired.Render(label)
	case domain.PollStatusInactive:
		return r.theme.BadgeInactive.Render(label)
	default:
		return r.theme.BadgeActive.Render(label)
	}
}

// Meta is the byline of a poll: author, age, votes and expiry.
func (r *Renderer) Meta(p domain.Poll) string {
	parts := []string{
		"by " + p.CreatedBy.DisplayName(),
		humanize.RelTime(p.CreatedAt, r.now(), "ago", "from now"),
		humanize.Comma(int64(p.TotalVotes)) + " " + plural(p.TotalVotes, "vote", "votes"),
	}
	if p.OptionCount > 0 {
		parts = append(parts, fmt.Sprintf("%d options", p.OptionCount))
	}
	if p.ExpiresAt != nil {
		verb := "expires"
		if p.IsExpired {
			verb = "expired"
		}
		parts = append(parts, verb+" "+humanize.RelTime(*p.ExpiresAt, r.now(), "ago", "from now"))
	}
	return r.theme.Muted.Render(strings.Join(parts, " · "))
}

// PollCard draws one poll with its options either as numbered choices or as
// result bars.
func (r *Renderer) PollCard(v domain.PollView, width int) string {
	var b strings.Builder

	p := v.Poll
	b.WriteString(r.theme.Title.Render(p.Title) + " " + r.Badge(p.Status()) + "\n")
	if p.Description != "" {
		b.WriteString(p.Description + "\n")
	}
	b.WriteString(r.Meta(p) + "\n")
	if p.AllowMultipleVotes {
		b.WriteString(r.theme.Muted.Render("multiple choices allowed") + "\n")
	}
	b.WriteString("\n")

	for i, opt := range v.Options {
		if v.ShowResults {
			b.WriteString(r.resultLine(opt.Option.Text, opt.Option.VoteCount, opt.Option.VotePercentage, opt.Selected, width))
		} else {
			b.WriteString(r.choiceLine(i+1, opt))
		}
		b.WriteString("\n")
	}

	if v.Voting {
		b.WriteString(r.theme.Notice.Render("Voting...") + "\n")
	}
	for _, notice := range v.Notices {
		b.WriteString(r.theme.Notice.Render(notice) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) choiceLine(n int, opt domain.OptionView) string {
	line := fmt.Sprintf("%2d. %s", n, opt.Option.Text)
	if !opt.Enabled {
		return r.theme.Muted.Render(line)
	}
	return line
}

func (r *Renderer) resultLine(text string, count int, pct float64, selected bool, width int) string {
	marker := "  "
	label := text
	if selected {
		marker = r.theme.Selected.Render("✓ ")
		label = r.theme.Selected.Render(text)
	}
	stats := fmt.Sprintf("%6.2f%% (%s)", pct, humanize.Comma(int64(count)))
	return marker + label + "\n  " + r.bar(pct, barWidth(width)) + " " + r.theme.Muted.Render(stats)
}

// bar draws a horizontal bar of width cells filled in proportion to pct.
func (r *Renderer) bar(pct float64, width int) string {
	pct = math.Max(0, math.Min(100, pct))
	filled := int(math.Round(pct / 100 * float64(width)))
	return r.theme.Bar.Render(strings.Repeat("█", filled)) +
		r.theme.BarEmpty.Render(strings.Repeat("░", width-filled))
}

func barWidth(width int) int {
	w := width - 20
	if w < minBarWidth {
		return minBarWidth
	}
	if w > maxBarWidth {
		return maxBarWidth
	}
	return w
}

// Results draws the results endpoint's table.
func (r *Renderer) Results(res domain.PollResults, width int) string {
	var b strings.Builder

	status := domain.Poll{IsActive: res.IsActive, IsExpired: res.IsExpired}.Status()
	b.WriteString(r.theme.Title.Render(res.PollTitle) + " " + r.Badge(status) + "\n")
	b.WriteString(r.theme.Muted.Render(humanize.Comma(int64(res.TotalVotes))+" "+plural(res.TotalVotes, "vote", "votes")) + "\n\n")

	for _, opt := range res.Results {
		b.WriteString(r.resultLine(opt.Text, opt.VoteCount, opt.Percentage, false, width) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// PollLine is the one-line summary of a poll used in feed lists.
func (r *Renderer) PollLine(p domain.Poll, cursor bool) string {
	pointer := "  "
	title := p.Title
	if cursor {
		pointer = r.theme.Cursor.Render("> ")
		title = r.theme.Cursor.Render(title)
	}
	votes := humanize.Comma(int64(p.TotalVotes)) + " " + plural(p.TotalVotes, "vote", "votes")
	return fmt.Sprintf("%s%s %s %s", pointer, title, r.Badge(p.Status()), r.theme.Muted.Render("· "+votes))
}

// Feed draws the feed list with the cursor row highlighted. cursor -1
// highlights nothing.
func (r *Renderer) Feed(polls []domain.Poll, cursor int) string {
	if len(polls) == 0 {
		return r.theme.Muted.Render(EmptyFeedMessage)
	}
	lines := make([]string, 0, len(polls))
	for i, p := range polls {
		lines = append(lines, r.PollLine(p, i == cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) Error(err error) string {
	return r.theme.Error.Render("Error: " + err.Error())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

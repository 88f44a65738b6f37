package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle = tabStyle.Reverse(true).Bold(true)
	bannerStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

var tabLabels = []struct {
	mode  domain.FeedMode
	label string
}{
	{domain.FeedAll, "1 All Polls"},
	{domain.FeedMine, "2 My Polls"},
	{domain.FeedVoted, "3 My Votes"},
}

func (model Model) View() string {
	sections := []string{model.headerView()}

	if model.err != nil {
		sections = append(sections, bannerStyle.Render("Error: "+model.err.Error()+"  (esc to dismiss)"))
	}
	if model.notice != "" {
		sections = append(sections, noticeStyle.Render(model.notice))
	}

	switch model.focus {
	case FocusForm:
		sections = append(sections, model.formView())
	case FocusOptions:
		sections = append(sections, model.detailView())
	default:
		sections = append(sections, model.filterView(), model.listView())
	}

	sections = append(sections, model.helpView())
	return strings.Join(sections, "\n\n")
}

func (model Model) headerView() string {
	session := model.services.Session.Current()

	tabs := []string{headerStyle.Render("Polls")}
	for _, tab := range tabLabels {
		if tab.mode != domain.FeedAll && !session.Authenticated() {
			continue
		}
		style := tabStyle
		if tab.mode == model.services.Feed.Mode() {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(tab.label))
	}

	who := dimStyle.Render("not logged in")
	if session.Authenticated() {
		who = dimStyle.Render("Welcome, " + session.User.DisplayName())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "  " + who
}

func (model Model) filterView() string {
	if model.focus == FocusSearch {
		return model.search.View()
	}
	if model.services.Feed.Mode() != domain.FeedAll {
		return ""
	}

	filter := model.services.Feed.Filter()
	parts := []string{}
	if filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", filter.Search))
	}
	parts = append(parts, "status "+string(filter.Status), "sort "+filter.Sort.Label())
	return dimStyle.Render(strings.Join(parts, " · "))
}

func (model Model) listView() string {
	if model.loading && model.feed.Empty() {
		return dimStyle.Render("Loading polls...")
	}
	return model.renderer.Feed(model.feed.Polls, model.cursor)
}

func (model Model) detailView() string {
	if model.detail == nil {
		return dimStyle.Render("Loading poll...")
	}

	view := model.services.Votes.View(*model.detail, model.resultsMode)
	card := model.renderer.PollCard(view, model.width)
	if view.ShowResults || !view.CanVote {
		return card
	}

	// Mark the option under the cursor.
	lines := strings.Split(card, "\n")
	target := fmt.Sprintf("%2d. ", model.optionCursor+1)
	for i, line := range lines {
		if strings.HasPrefix(line, target) {
			lines[i] = cursorStyle.Render("> ") + line
			break
		}
	}
	return strings.Join(lines, "\n")
}

func (model Model) formView() string {
	form := model.form
	lines := []string{headerStyle.Render("Create a poll")}
	for _, input := range form.inputs {
		lines = append(lines, input.View())
	}

	multi := "[ ] allow multiple votes"
	if form.draft.AllowMultipleVotes {
		multi = "[x] allow multiple votes"
	}
	lines = append(lines, multi)

	if form.submitting {
		lines = append(lines, dimStyle.Render("Creating..."))
	}
	if form.err != nil {
		lines = append(lines, bannerStyle.Render(form.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (model Model) helpView() string {
	switch model.focus {
	case FocusForm:
		return model.help.View(formKeys(model.keys))
	case FocusOptions:
		return model.help.View(detailKeys(model.keys))
	default:
		return model.help.View(listKeys(model.keys))
	}
}

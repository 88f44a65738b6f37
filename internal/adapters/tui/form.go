package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

// Fixed inputs come first; option inputs follow.
const (
	fieldTitle = iota
	fieldDescription
	fieldExpires
	firstOptionField
)

// pollForm edits a PollDraft. The inputs hold the text while editing and are
// copied into the draft before every draft operation.
type pollForm struct {
	draft      *domain.PollDraft
	inputs     []textinput.Model
	focus      int
	err        error
	submitting bool
}

func newPollForm() *pollForm {
	form := &pollForm{draft: domain.NewPollDraft()}
	form.inputs = []textinput.Model{
		newInput("Title", "What should we ask?"),
		newInput("Description", "optional"),
		newInput("Expires", "YYYY-MM-DD HH:MM, optional"),
	}
	for range form.draft.Options {
		form.inputs = append(form.inputs, form.optionInput())
	}
	return form
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt + ": "
	input.Placeholder = placeholder
	return input
}

func (f *pollForm) optionInput() textinput.Model {
	return newInput("Option", "")
}

func (f *pollForm) focusField(index int) tea.Cmd {
	if index < 0 || index >= len(f.inputs) {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = index
	return f.inputs[index].Focus()
}

// sync copies the inputs into the draft.
func (f *pollForm) sync() {
	f.draft.Title = f.inputs[fieldTitle].Value()
	f.draft.Description = f.inputs[fieldDescription].Value()
	f.draft.ExpiresAt = f.inputs[fieldExpires].Value()
	for i := range f.draft.Options {
		_ = f.draft.SetOption(i, f.inputs[firstOptionField+i].Value())
	}
}

func (f *pollForm) addOption() tea.Cmd {
	f.sync()
	if err := f.draft.AddOption(); err != nil {
		f.err = err
		return nil
	}
	f.inputs = append(f.inputs, f.optionInput())
	return f.focusField(len(f.inputs) - 1)
}

// removeOption drops the focused option, or the last one when focus is on a
// fixed field.
func (f *pollForm) removeOption() tea.Cmd {
	f.sync()
	index := f.focus - firstOptionField
	if index < 0 {
		index = len(f.draft.Options) - 1
	}
	if err := f.draft.RemoveOption(index); err != nil {
		f.err = err
		return nil
	}
	f.inputs = append(f.inputs[:firstOptionField+index], f.inputs[firstOptionField+index+1:]...)
	f.focus = min(f.focus, len(f.inputs)-1)
	return f.inputs[f.focus].Focus()
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := model.form
	if form.submitting {
		return model, nil
	}

	switch {
	case key.Matches(message, model.keys.Back):
		model.form = nil
		model.focus = FocusList
		return model, nil

	case key.Matches(message, model.keys.NextField):
		return model, form.focusField((form.focus + 1) % len(form.inputs))

	case key.Matches(message, model.keys.PrevField):
		return model, form.focusField((form.focus - 1 + len(form.inputs)) % len(form.inputs))

	case key.Matches(message, model.keys.AddOption):
		form.err = nil
		return model, form.addOption()

	case key.Matches(message, model.keys.RemoveOption):
		form.err = nil
		return model, form.removeOption()

	case key.Matches(message, model.keys.ToggleMulti):
		form.draft.AllowMultipleVotes = !form.draft.AllowMultipleVotes
		return model, nil

	case key.Matches(message, model.keys.Submit):
		form.sync()
		if _, err := form.draft.Validate(); err != nil {
			form.err = err
			return model, nil
		}
		form.err = nil
		form.submitting = true
		return model, model.submitPoll(form.draft)
	}

	var cmd tea.Cmd
	form.inputs[form.focus], cmd = form.inputs[form.focus].Update(message)
	return model, cmd
}

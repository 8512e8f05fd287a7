package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " cannot be empty")
		}
		return nil
	}
}

// NewTitleForm asks for a task title
func NewTitleForm(title string, fm *FormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&fm.Text).
				Validate(notBlank("title")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewReflectionForm asks how a task went before it is marked done
func NewReflectionForm(task string, fm *FormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("How did it go?").
				Description(task).
				Value(&fm.Text).
				Validate(notBlank("reflection")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRatingForm asks whether the day was good enough
func NewRatingForm(fm *FormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bool]().
				Title("How was today?").
				Options(
					huh.NewOption("Good enough", true),
					huh.NewOption("Not great", false),
				).
				Value(&fm.Good),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewJournalForm edits a journal entry. A blank entry is allowed when
// optional is set.
func NewJournalForm(title string, optional bool, fm *FormModel) *huh.Form {
	text := huh.NewText().
		Title(title).
		Value(&fm.Text).
		Lines(8)
	if !optional {
		text = text.Validate(notBlank("journal entry"))
	}
	return huh.NewForm(huh.NewGroup(text)).WithTheme(huh.ThemeDracula())
}

// Package components renders the admin UI as templ components. All
// components are runtime-constructed; the markup is written through
// templ.ComponentFunc so view models from pkg/crud map one to one onto
// HTML.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/moimran/netdata/pkg/crud"
)

func esc(s string) string { return templ.EscapeString(s) }

// FormField renders one resolved control with its label and error line.
func FormField(theme Theme, ctrl *crud.Control) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="%s">`, esc(theme.FieldWrap)); err != nil {
			return err
		}
		if ctrl.Kind != crud.ControlCheckbox {
			if err := writeLabel(w, theme, ctrl); err != nil {
				return err
			}
		}
		if err := writeControl(w, theme, ctrl); err != nil {
			return err
		}
		if ctrl.Error != "" {
			if _, err := fmt.Fprintf(w, `<p class="%s">%s</p>`, esc(theme.ErrorText), esc(ctrl.Error)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func writeLabel(w io.Writer, theme Theme, ctrl *crud.Control) error {
	required := ""
	if ctrl.Required {
		required = ` <span aria-hidden="true">*</span>`
	}
	_, err := fmt.Fprintf(w, `<label class="%s" for="%s">%s%s</label>`,
		esc(theme.Label), esc(ctrl.Name), esc(ctrl.Label), required)
	return err
}

func writeControl(w io.Writer, theme Theme, ctrl *crud.Control) error {
	switch ctrl.Kind {
	case crud.ControlCheckbox:
		return writeCheckbox(w, theme, ctrl)
	case crud.ControlSelect, crud.ControlPicker:
		return writeSelect(w, theme, ctrl)
	case crud.ControlTextarea:
		return writeTextarea(w, theme, ctrl)
	case crud.ControlNumber:
		return writeInput(w, theme, ctrl, "number")
	default:
		return writeInput(w, theme, ctrl, "text")
	}
}

func inputClass(theme Theme, ctrl *crud.Control) string {
	if ctrl.Error != "" {
		return theme.InputError
	}
	return theme.Input
}

func writeInput(w io.Writer, theme Theme, ctrl *crud.Control, typ string) error {
	_, err := fmt.Fprintf(w, `<input class="%s" type="%s" id="%s" name="%s" value="%s"%s%s%s>`,
		esc(inputClass(theme, ctrl)), typ, esc(ctrl.Name), esc(ctrl.Name), esc(ctrl.Value),
		boolAttr(ctrl.Required, " required"),
		boolAttr(ctrl.Disabled, " disabled"),
		placeholderAttr(ctrl))
	return err
}

func writeTextarea(w io.Writer, theme Theme, ctrl *crud.Control) error {
	_, err := fmt.Fprintf(w, `<textarea class="%s" id="%s" name="%s"%s%s>%s</textarea>`,
		esc(theme.Textarea), esc(ctrl.Name), esc(ctrl.Name),
		boolAttr(ctrl.Required, " required"),
		boolAttr(ctrl.Disabled, " disabled"),
		esc(ctrl.Value))
	return err
}

func writeCheckbox(w io.Writer, theme Theme, ctrl *crud.Control) error {
	if _, err := fmt.Fprintf(w, `<label class="%s"><input class="%s" type="checkbox" id="%s" name="%s"%s%s> %s</label>`,
		esc(theme.Label), esc(theme.Checkbox), esc(ctrl.Name), esc(ctrl.Name),
		boolAttr(ctrl.Checked, " checked"),
		boolAttr(ctrl.Disabled, " disabled"),
		esc(ctrl.Label)); err != nil {
		return err
	}
	return nil
}

func writeSelect(w io.Writer, theme Theme, ctrl *crud.Control) error {
	if _, err := fmt.Fprintf(w, `<select class="%s" id="%s" name="%s"%s%s%s>`,
		esc(theme.Select), esc(ctrl.Name), esc(ctrl.Name),
		boolAttr(ctrl.Required, " required"),
		boolAttr(ctrl.Disabled, " disabled"),
		boolAttr(ctrl.Multiple, " multiple")); err != nil {
		return err
	}
	if ctrl.Placeholder != "" && !ctrl.Multiple {
		selected := ""
		if ctrl.Value == "" {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value=""%s>%s</option>`, selected, esc(ctrl.Placeholder)); err != nil {
			return err
		}
	}
	for _, opt := range ctrl.Options {
		selected := ""
		if opt.Value != "" && opt.Value == ctrl.Value {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
			esc(opt.Value), selected, esc(opt.Label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select>`)
	return err
}

func boolAttr(on bool, attr string) string {
	if on {
		return attr
	}
	return ""
}

func placeholderAttr(ctrl *crud.Control) string {
	if ctrl.Placeholder == "" {
		return ""
	}
	return ` placeholder="` + esc(ctrl.Placeholder) + `"`
}

// EntityForm renders the full form: general error banner, resolved
// controls in schema order, submit and cancel actions. Posts go back to
// the action URL as an htmx request targeting the form itself.
func EntityForm(theme Theme, title, action, cancelHref string, controls []*crud.Control, generalErr string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<form class="%s" method="post" action="%s" hx-post="%s" hx-target="this" hx-swap="outerHTML">`,
			esc(theme.Form), esc(action), esc(action)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<h1 class="text-xl font-semibold">%s</h1>`, esc(title)); err != nil {
			return err
		}
		if generalErr != "" {
			if _, err := fmt.Fprintf(w, `<div class="%s" role="alert">%s</div>`, esc(theme.GeneralErr), esc(generalErr)); err != nil {
				return err
			}
		}
		for _, ctrl := range controls {
			if err := FormField(theme, ctrl).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<div class="flex gap-2"><button class="%s" type="submit">Save</button><a class="%s" href="%s">Cancel</a></div>`,
			esc(theme.ButtonMain), esc(theme.ButtonPlain), esc(cancelHref)); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</form>`)
		return err
	})
}

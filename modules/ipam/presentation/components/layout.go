package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/moimran/netdata/pkg/crud"
)

// NavItem is one sidebar entry.
type NavItem struct {
	Label string
	Href  string
}

// NavItems derives the sidebar from the registered entity types, in
// registration order.
func NavItems(registry *crud.Registry, basePath string) []NavItem {
	types := registry.Types()
	items := make([]NavItem, 0, len(types))
	for _, t := range types {
		items = append(items, NavItem{
			Label: crud.Humanize(string(t)),
			Href:  basePath + "/" + string(t),
		})
	}
	return items
}

// Page wraps content in the document shell with the sidebar. Full-page
// renders only; htmx partial swaps render the content component alone.
func Page(theme Theme, title string, nav []NavItem, active string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title>`+
				`<meta name="viewport" content="width=device-width, initial-scale=1">`+
				`<link rel="stylesheet" href="/assets/app.css">`+
				`<script src="/assets/htmx.min.js" defer></script>`+
				`</head><body><div class="flex gap-6 %s">`,
			esc(title), esc(theme.Page)); err != nil {
			return err
		}
		if err := writeNav(w, theme, nav, active); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main class="grow">`); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></div></body></html>`)
		return err
	})
}

func writeNav(w io.Writer, theme Theme, nav []NavItem, active string) error {
	if _, err := fmt.Fprintf(w, `<nav class="%s">`, esc(theme.Nav)); err != nil {
		return err
	}
	for _, item := range nav {
		cls := theme.NavLink
		if item.Href == active {
			cls = theme.NavActive
		}
		if _, err := fmt.Fprintf(w, `<a class="%s" href="%s">%s</a>`, esc(cls), esc(item.Href), esc(item.Label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</nav>`)
	return err
}

// ErrorBanner renders a standalone recoverable error message.
func ErrorBanner(theme Theme, msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="%s" role="alert">%s</div>`, esc(theme.GeneralErr), esc(msg))
		return err
	})
}

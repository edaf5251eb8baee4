package components

// Theme carries the CSS class sets the components render with. Styling is
// configuration, not something baked into each control.
type Theme struct {
	Page        string
	Nav         string
	NavLink     string
	NavActive   string
	Form        string
	FieldWrap   string
	Label       string
	Input       string
	InputError  string
	Select      string
	Textarea    string
	Checkbox    string
	ErrorText   string
	GeneralErr  string
	Table       string
	TableHead   string
	TableRow    string
	TableCell   string
	Badge       string
	BadgeTones  map[string]string
	ButtonMain  string
	ButtonPlain string
	ButtonDrop  string
	Pagination  string
	SearchBox   string
}

func DefaultTheme() Theme {
	return Theme{
		Page:       "mx-auto max-w-6xl p-6",
		Nav:        "flex flex-col gap-1 w-56 shrink-0",
		NavLink:    "rounded px-3 py-1.5 text-sm hover:bg-surface-200",
		NavActive:  "rounded px-3 py-1.5 text-sm bg-surface-300 font-medium",
		Form:       "flex flex-col gap-4 max-w-xl",
		FieldWrap:  "flex flex-col gap-1",
		Label:      "text-sm font-medium",
		Input:      "form-control rounded border px-3 py-2",
		InputError: "form-control rounded border border-red-500 px-3 py-2",
		Select:     "form-control rounded border px-3 py-2",
		Textarea:   "form-control rounded border px-3 py-2 min-h-24",
		Checkbox:   "h-4 w-4",
		ErrorText:  "text-sm text-red-600",
		GeneralErr: "rounded border border-red-300 bg-red-50 px-4 py-2 text-sm text-red-700",
		Table:      "w-full border-collapse text-sm",
		TableHead:  "border-b text-left font-medium px-3 py-2",
		TableRow:   "border-b hover:bg-surface-100",
		TableCell:  "px-3 py-2",
		Badge:      "inline-block rounded-full px-2 py-0.5 text-xs font-medium",
		BadgeTones: map[string]string{
			"green":  "bg-green-100 text-green-800",
			"amber":  "bg-amber-100 text-amber-800",
			"red":    "bg-red-100 text-red-800",
			"sky":    "bg-sky-100 text-sky-800",
			"blue":   "bg-blue-100 text-blue-800",
			"violet": "bg-violet-100 text-violet-800",
			"zinc":   "bg-zinc-100 text-zinc-800",
		},
		ButtonMain:  "btn btn-primary rounded px-4 py-2",
		ButtonPlain: "btn rounded px-4 py-2",
		ButtonDrop:  "btn btn-danger rounded px-2 py-1 text-xs",
		Pagination:  "flex items-center gap-2 pt-4 text-sm",
		SearchBox:   "form-control rounded border px-3 py-1.5 text-sm",
	}
}

// BadgeClass resolves a tone name to its class set, falling back to zinc.
func (t Theme) BadgeClass(tone string) string {
	if cls, ok := t.BadgeTones[tone]; ok {
		return t.Badge + " " + cls
	}
	return t.Badge + " " + t.BadgeTones["zinc"]
}

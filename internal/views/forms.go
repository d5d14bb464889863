package views

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// FormState carries per-field errors and previously typed values across a
// POST and the redirect that follows it
type FormState struct {
	Errors map[string]string `json:"errors,omitempty"`
	Values map[string]string `json:"values,omitempty"`
}

// Value returns the typed value of field
func (f FormState) Value(field string) string {
	return f.Values[field]
}

// Error returns the message for field, or ""
func (f FormState) Error(field string) string {
	return f.Errors[field]
}

func form(action string, children ...g.Node) g.Node {
	return g.El("form",
		h.Method("post"),
		h.Action(action),
		g.Attr("novalidate"),
		g.Group(children),
	)
}

func field(f FormState, name, label, kind string, extra ...g.Node) g.Node {
	msg := f.Error(name)
	input := h.Input(
		h.ID(name),
		h.Name(name),
		h.Type(kind),
		g.If(kind != "password", h.Value(f.Value(name))),
		g.If(msg != "", h.Aria("invalid", "true")),
		g.Group(extra),
	)

	return h.Div(
		h.Class("field"),
		h.Label(h.For(name), g.Text(label)),
		input,
		fieldError(msg),
	)
}

func fieldError(msg string) g.Node {
	if msg == "" {
		return nil
	}
	return h.P(h.Class("field-error"), g.Text(msg))
}

func submit(label string) g.Node {
	return h.Button(h.Type("submit"), h.Class("primary"), g.Text(label))
}

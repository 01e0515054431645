package render

// LinkColor is the RGB hex color of hyperlink text.
const LinkColor = "0000FF"

// Formatting is the character formatting inherited down the tree.
// It is a value: the With methods return a modified copy and never touch
// the receiver, so a parent's formatting cannot leak into a sibling.
type Formatting struct {
	Bold      bool
	Italic    bool
	Underline bool
	Highlight bool
	Monospace bool
	// Color is an RRGGBB hex string, empty for the default color.
	Color string
}

// WithBold returns f with bold set.
func (f Formatting) WithBold() Formatting {
	f.Bold = true
	return f
}

// WithItalic returns f with italic set.
func (f Formatting) WithItalic() Formatting {
	f.Italic = true
	return f
}

// WithUnderline returns f with underline set.
func (f Formatting) WithUnderline() Formatting {
	f.Underline = true
	return f
}

// WithHighlight returns f with highlight set.
func (f Formatting) WithHighlight() Formatting {
	f.Highlight = true
	return f
}

// WithMonospace returns f with monospace set.
func (f Formatting) WithMonospace() Formatting {
	f.Monospace = true
	return f
}

// WithColor returns f with the given color.
func (f Formatting) WithColor(hex string) Formatting {
	f.Color = hex
	return f
}

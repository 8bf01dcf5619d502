package css

// UserAgent applies the default user-agent styling for the named tag to
// v. The style collaborator starts from these defaults whenever a
// document is opened or reset and layers author styles on top.
func UserAgent(tag string, v *ComputedValues) {
	switch tag {
	case "p", "div", "blockquote", "address", "fieldset", "form",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "dl", "dd", "dt", "li", "hr", "table":
		v.Display = DisplayBlock
	case "pre":
		v.Display = DisplayBlock
		v.WhiteSpace = WhiteSpacePre
	case "center":
		v.Display = DisplayBlock
		v.TextAlign = TextAlignCenter
	case "td", "th":
		v.Display = DisplayTableCell
	case "u", "ins":
		v.TextDecoration |= DecorationUnderline
	case "s", "strike", "del":
		v.TextDecoration |= DecorationLineThrough
	case "sub":
		v.VerticalAlign = VerticalAlign{Kind: VerticalAlignSub}
	case "sup":
		v.VerticalAlign = VerticalAlign{Kind: VerticalAlignSuper}
	case "head", "script", "style", "title", "meta", "link":
		v.Display = DisplayNone
	}
}

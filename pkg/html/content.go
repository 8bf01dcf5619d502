package html

// ContentResult is the verdict of a content-model rule for an incoming
// tag probed against an open ancestor.
type ContentResult int

const (
	TagOK     ContentResult = iota // legal content; stop probing
	TagClose                       // incoming tag implicitly closes the ancestor
	TagParent                      // no opinion; ask the ancestor's parent
)

// tagIDs caches the catalogue ids the content-model rules compare against.
type tagIDs struct {
	a, body, dd, dt, form, frameset TagID
	li, p, table, td, th, tr        TagID
}

func resolveTagIDs(cat *Catalogue) tagIDs {
	id := func(name string) TagID {
		if info := cat.Lookup(name); info != nil {
			return info.ID
		}
		return TagUnknown
	}
	return tagIDs{
		a: id("a"), body: id("body"), dd: id("dd"), dt: id("dt"),
		form: id("form"), frameset: id("frameset"), li: id("li"),
		p: id("p"), table: id("table"), td: id("td"), th: id("th"),
		tr: id("tr"),
	}
}

func isTextual(tag TagID) bool { return tag == TagText || tag == TagSpace }

// contentTest applies the content-model rule bound to the open element
// node to the incoming tag. This is how implicit close tags are detected:
// TagClose means the incoming tag closes node, TagOK means it does not,
// and TagParent repeats the test one level up.
func (tb *TreeBuilder) contentTest(node *Node, tag TagID) ContentResult {
	info := tb.cat.Info(node.Tag)
	if info == nil {
		return TagOK
	}
	flags := tb.cat.Flags(tag)

	switch info.Content {
	case ContentFormLike:
		// Nodes generated by empty tags hold nothing themselves; a
		// stray table part closes the enclosing form instead.
		if tag == tb.ids.tr || tag == tb.ids.td || tag == tb.ids.th {
			return TagClose
		}
		return TagParent

	case ContentPcdata:
		if isTextual(tag) {
			return TagParent
		}
		return TagClose

	case ContentDl:
		if tag == tb.ids.dd || tag == tb.ids.dt || isTextual(tag) {
			return TagOK
		}
		return TagParent

	case ContentUl:
		if tag == tb.ids.li || isTextual(tag) {
			return TagOK
		}
		return TagParent

	case ContentHead:
		if tag == tb.ids.body || tag == tb.ids.frameset {
			return TagClose
		}
		return TagParent

	case ContentInline:
		if isTextual(tag) {
			return TagOK
		}
		// Quirks mode exception: <p> tags can contain <table>.
		if tb.mode == ModeQuirks && node.Tag == tb.ids.p && tag == tb.ids.table {
			return TagOK
		}
		if flags&FlagInline == 0 {
			return TagClose
		}
		return TagParent

	case ContentAnchor:
		if isTextual(tag) {
			return TagOK
		}
		// The DTD restricts anchor content to "(%inline;)* -(A)", but
		// in practice only the second restriction applies.
		if tag == tb.ids.a {
			return TagClose
		}
		return TagParent

	case ContentTable:
		// Only another <table> implicitly closes a <table>; anything
		// else is legal content, so a stray <tr> or <td> inside it
		// must not match a like tag above it.
		if tag == tb.ids.table {
			return TagClose
		}
		return TagOK

	case ContentTableRow:
		if tag == tb.ids.tr {
			return TagClose
		}
		if tag == tb.ids.form || tag == tb.ids.td || tag == tb.ids.th || tag == TagSpace {
			return TagOK
		}
		if flags&FlagEnd != 0 {
			return TagParent
		}
		return TagOK

	case ContentTableCell:
		if tag == tb.ids.th || tag == tb.ids.td || tag == tb.ids.tr {
			return TagClose
		}
		if flags&FlagEnd == 0 {
			return TagOK
		}
		return TagParent

	case ContentLi:
		if tag == tb.ids.li || tag == tb.ids.dd || tag == tb.ids.dt {
			return TagClose
		}
		if isTextual(tag) {
			return TagOK
		}
		return TagParent
	}

	return TagOK
}

package html

import "strings"

// TagID identifies an element type. IDs are dense integers assigned from the
// static manifest below. By convention the closing tag of T has id T+1, so
// EndTagOf(T) == T+1 holds for every start tag in the catalogue.
type TagID int

const (
	// TagUnknown is emitted in XML mode for element names that do not
	// appear in the catalogue. In HTML mode unknown tags are discarded.
	TagUnknown TagID = 0

	// TagText and TagSpace are pseudo-tags used when probing content
	// models with incoming text. They never appear in the tree.
	TagText  TagID = 1
	TagSpace TagID = 2

	tagFirst TagID = 3
)

// TagFlags are the flag bits carried by each catalogue entry.
type TagFlags uint8

const (
	FlagInline TagFlags = 1 << iota // inline-level element
	FlagBlock                       // block-level element
	FlagEmpty                       // no content, no end tag
	FlagPcdata                      // body is opaque to the tokenizer
	FlagEnd                         // this id is an end tag
)

// ContentModel selects the implicit-close rule bound to a tag. The rules
// themselves live in content.go. Encoding them as an enum instead of
// function pointers keeps catalogue entries inspectable.
type ContentModel int

const (
	ContentAny ContentModel = iota // arbitrary nesting permitted
	ContentFormLike
	ContentPcdata
	ContentDl
	ContentUl
	ContentHead
	ContentInline
	ContentAnchor
	ContentTable
	ContentTableRow
	ContentTableCell
	ContentLi
)

// TagInfo is one catalogue entry.
type TagInfo struct {
	ID      TagID
	Name    string
	Flags   TagFlags
	Content ContentModel
}

// Catalogue maps lowercase tag names to their TagInfo. Each engine owns an
// immutable catalogue built at construction; there is no process-wide table.
type Catalogue struct {
	byName map[string]*TagInfo
	byID   []*TagInfo // indexed by (id - tagFirst) / 2
}

type tagSpec struct {
	name    string
	flags   TagFlags
	content ContentModel
}

// The static manifest. Order is significant: ids are assigned densely in
// manifest order, two per entry (start tag, then its end tag).
var tagManifest = []tagSpec{
	{"a", FlagInline, ContentAnchor},
	{"abbr", FlagInline, ContentAny},
	{"acronym", FlagInline, ContentAny},
	{"address", FlagBlock, ContentAny},
	{"applet", FlagInline, ContentAny},
	{"area", FlagEmpty, ContentFormLike},
	{"b", FlagInline, ContentAny},
	{"base", FlagEmpty, ContentFormLike},
	{"basefont", FlagInline | FlagEmpty, ContentFormLike},
	{"bdo", FlagInline, ContentAny},
	{"big", FlagInline, ContentAny},
	{"blockquote", FlagBlock, ContentAny},
	{"body", 0, ContentAny},
	{"br", FlagInline | FlagEmpty, ContentFormLike},
	{"button", FlagInline, ContentAny},
	{"caption", 0, ContentAny},
	{"center", FlagBlock, ContentAny},
	{"cite", FlagInline, ContentAny},
	{"code", FlagInline, ContentAny},
	{"col", FlagEmpty, ContentFormLike},
	{"colgroup", 0, ContentAny},
	{"dd", FlagBlock, ContentLi},
	{"del", FlagInline, ContentAny},
	{"dfn", FlagInline, ContentAny},
	{"dir", FlagBlock, ContentUl},
	{"div", FlagBlock, ContentAny},
	{"dl", FlagBlock, ContentDl},
	{"dt", FlagBlock, ContentLi},
	{"em", FlagInline, ContentAny},
	{"embed", FlagInline | FlagEmpty, ContentFormLike},
	{"fieldset", FlagBlock, ContentAny},
	{"font", FlagInline, ContentAny},
	{"form", FlagBlock, ContentFormLike},
	{"frame", FlagEmpty, ContentFormLike},
	{"frameset", 0, ContentAny},
	{"h1", FlagBlock, ContentInline},
	{"h2", FlagBlock, ContentInline},
	{"h3", FlagBlock, ContentInline},
	{"h4", FlagBlock, ContentInline},
	{"h5", FlagBlock, ContentInline},
	{"h6", FlagBlock, ContentInline},
	{"head", 0, ContentHead},
	{"hr", FlagBlock | FlagEmpty, ContentFormLike},
	{"html", 0, ContentAny},
	{"i", FlagInline, ContentAny},
	{"iframe", FlagInline, ContentAny},
	{"img", FlagInline | FlagEmpty, ContentFormLike},
	{"input", FlagInline | FlagEmpty, ContentFormLike},
	{"ins", FlagInline, ContentAny},
	{"isindex", FlagBlock | FlagEmpty, ContentFormLike},
	{"kbd", FlagInline, ContentAny},
	{"label", FlagInline, ContentAny},
	{"legend", 0, ContentAny},
	{"li", FlagBlock, ContentLi},
	{"link", FlagEmpty, ContentFormLike},
	{"map", FlagInline, ContentAny},
	{"menu", FlagBlock, ContentUl},
	{"meta", FlagEmpty, ContentFormLike},
	{"noframes", FlagBlock, ContentAny},
	{"noscript", FlagBlock, ContentAny},
	{"object", FlagInline, ContentAny},
	{"ol", FlagBlock, ContentUl},
	{"optgroup", 0, ContentAny},
	{"option", 0, ContentPcdata},
	{"p", FlagBlock, ContentInline},
	{"param", FlagEmpty, ContentFormLike},
	{"pre", FlagBlock, ContentAny},
	{"q", FlagInline, ContentAny},
	{"s", FlagInline, ContentAny},
	{"samp", FlagInline, ContentAny},
	{"script", FlagInline | FlagPcdata, ContentAny},
	{"select", FlagInline, ContentAny},
	{"small", FlagInline, ContentAny},
	{"span", FlagInline, ContentAny},
	{"strike", FlagInline, ContentAny},
	{"strong", FlagInline, ContentAny},
	{"style", FlagPcdata, ContentAny},
	{"sub", FlagInline, ContentAny},
	{"sup", FlagInline, ContentAny},
	{"table", FlagBlock, ContentTable},
	{"tbody", 0, ContentAny},
	{"td", 0, ContentTableCell},
	{"textarea", FlagInline | FlagPcdata, ContentAny},
	{"tfoot", 0, ContentAny},
	{"th", 0, ContentTableCell},
	{"thead", 0, ContentAny},
	{"title", 0, ContentPcdata},
	{"tr", 0, ContentTableRow},
	{"tt", FlagInline, ContentAny},
	{"u", FlagInline, ContentAny},
	{"ul", FlagBlock, ContentUl},
	{"var", FlagInline, ContentAny},
}

// NewCatalogue builds the tag catalogue from the static manifest.
func NewCatalogue() *Catalogue {
	c := &Catalogue{
		byName: make(map[string]*TagInfo, len(tagManifest)),
		byID:   make([]*TagInfo, len(tagManifest)),
	}
	id := tagFirst
	for i, entry := range tagManifest {
		info := &TagInfo{
			ID:      id,
			Name:    entry.name,
			Flags:   entry.flags,
			Content: entry.content,
		}
		c.byName[entry.name] = info
		c.byID[i] = info
		id += 2
	}
	return c
}

// Lookup returns the catalogue entry for name, which is matched case
// insensitively, or nil if the name is unknown.
func (c *Catalogue) Lookup(name string) *TagInfo {
	if info, ok := c.byName[name]; ok {
		return info
	}
	return c.byName[strings.ToLower(name)]
}

// Info returns the entry for a start-tag id, or nil. End-tag ids resolve to
// the entry of their start tag.
func (c *Catalogue) Info(id TagID) *TagInfo {
	id = StartTagOf(id)
	if id < tagFirst {
		return nil
	}
	i := int(id-tagFirst) / 2
	if i >= len(c.byID) {
		return nil
	}
	return c.byID[i]
}

// Flags returns the flag bits for id. End-tag ids report FlagEnd in
// addition to the flags of their start tag.
func (c *Catalogue) Flags(id TagID) TagFlags {
	info := c.Info(id)
	if info == nil {
		return 0
	}
	if IsEndTag(id) {
		return info.Flags | FlagEnd
	}
	return info.Flags
}

// Name returns the tag name for id, or "" for pseudo and unknown tags.
func (c *Catalogue) Name(id TagID) string {
	switch id {
	case TagText:
		return "#text"
	case TagSpace:
		return "#space"
	}
	info := c.Info(id)
	if info == nil {
		return ""
	}
	if IsEndTag(id) {
		return "/" + info.Name
	}
	return info.Name
}

// EndTagOf returns the end-tag id for a start tag.
func EndTagOf(id TagID) TagID { return id + 1 }

// StartTagOf maps an end-tag id back to its start tag. Start tags map to
// themselves.
func StartTagOf(id TagID) TagID {
	if IsEndTag(id) {
		return id - 1
	}
	return id
}

// IsEndTag reports whether id denotes a closing tag. Start tags are
// assigned odd ids (tagFirst is odd), end tags the following even id.
func IsEndTag(id TagID) bool {
	return id > tagFirst && (id-tagFirst)%2 == 1
}

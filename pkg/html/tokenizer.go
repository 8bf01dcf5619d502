package html

import (
	"bytes"
	"strings"

	"go.uber.org/zap"
)

// ScriptHandler is a callback registered for a tag id. When the tokenizer
// recognises a start tag with a registered handler, the element body (up to
// the matching end tag) is passed to the handler instead of the tree. The
// handler runs synchronously and may call WriteText, WriteWait or Reset.
type ScriptHandler func(attr Attributes, body []byte) error

// writeState tracks the reentrant-write protocol of the tokenizer.
type writeState int

const (
	writeNone writeState = iota
	writeInHandler     // a script handler is on the stack
	writeInHandlerWait // handler called WriteWait; applied when it returns
	writeWait          // tokenization is paused until WriteContinue
)

const maxTagAttributes = 200

// Tokenizer is a restartable lexer over a growable document buffer. Input
// is pushed in with Feed; events come out through the three sinks. The
// tokenizer stops at the first incomplete token and resumes from the same
// spot when more bytes arrive.
type Tokenizer struct {
	cat *Catalogue
	xml bool
	log *zap.Logger

	buf     []byte // the document buffer
	nParsed int    // bytes consumed so far
	final   bool   // Feed has been called with isFinal

	state       writeState
	writeInsert int // splice point for WriteText
	gen         int // bumped by reset; detects reset during a handler

	fragment bool // script handlers are never fired for fragments
	scripts  map[TagID]ScriptHandler

	OnText  func(TextToken)
	OnStart func(StartToken)
	OnEnd   func(EndToken)

	preTag             TagID
	pendingTrimLeading bool
}

// NewTokenizer returns a tokenizer over an empty document buffer.
func NewTokenizer(cat *Catalogue, xml bool, log *zap.Logger) *Tokenizer {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tokenizer{
		cat:     cat,
		xml:     xml,
		log:     log,
		scripts: make(map[TagID]ScriptHandler),
	}
	if pre := cat.Lookup("pre"); pre != nil {
		t.preTag = pre.ID
	}
	return t
}

// RegisterScript registers a script handler for a start-tag id.
func (t *Tokenizer) RegisterScript(tag TagID, fn ScriptHandler) {
	t.scripts[tag] = fn
}

// Feed appends bytes to the document buffer and drives the state machine
// as far as possible. When the tokenizer is paused (a handler called
// WriteWait) the bytes are buffered and consumed on WriteContinue.
func (t *Tokenizer) Feed(b []byte, isFinal bool) {
	if len(b) > 0 {
		t.buf = append(t.buf, b...)
	}
	if isFinal {
		t.final = true
	}
	if t.state == writeNone {
		t.run()
	}
}

// WriteText splices bytes into the document at the tokenizer's current
// insertion point. Only valid while a handler is on the stack or the
// tokenizer is paused.
func (t *Tokenizer) WriteText(b []byte) error {
	if t.state == writeNone {
		return ErrInvalidState
	}
	nb := make([]byte, 0, len(t.buf)+len(b))
	nb = append(nb, t.buf[:t.writeInsert]...)
	nb = append(nb, b...)
	nb = append(nb, t.buf[t.writeInsert:]...)
	t.buf = nb
	t.writeInsert += len(b)
	return nil
}

// WriteWait pauses tokenization once the calling handler returns. Only
// valid from inside a script handler.
func (t *Tokenizer) WriteWait() error {
	if t.state != writeInHandler {
		return ErrInvalidState
	}
	t.state = writeInHandlerWait
	return nil
}

// WriteContinue resumes a paused tokenizer. The return value reports
// whether tokenization actually ran (as opposed to merely cancelling a
// WriteWait issued by a handler that has not returned yet).
func (t *Tokenizer) WriteContinue() (bool, error) {
	switch t.state {
	case writeWait:
		t.state = writeNone
		t.run()
		return true, nil
	case writeInHandlerWait:
		t.state = writeInHandler
		return false, nil
	}
	return false, ErrInvalidState
}

// Waiting reports whether tokenization is paused or a handler is running.
func (t *Tokenizer) Waiting() bool { return t.state != writeNone }

// Final reports whether Feed has seen isFinal.
func (t *Tokenizer) Final() bool { return t.final }

// Parsed returns the number of consumed document bytes.
func (t *Tokenizer) Parsed() int { return t.nParsed }

// Buffer returns the document buffer. The returned slice is owned by the
// tokenizer and must not be modified.
func (t *Tokenizer) Buffer() []byte { return t.buf }

// reset discards the buffer and all paused state. A reset issued from
// inside a handler abandons the remainder of the current Feed.
func (t *Tokenizer) reset() {
	t.buf = nil
	t.nParsed = 0
	t.final = false
	t.state = writeNone
	t.writeInsert = 0
	t.pendingTrimLeading = false
	t.gen++
}

var (
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	cdataOpen    = []byte("<![CDATA[")
	cdataClose   = []byte("]]>")
)

// run drives the scanner until the buffer is exhausted or an incomplete
// token is found. The buffer and offsets are re-read every iteration
// because a script handler may have spliced text or reset the engine.
func (t *Tokenizer) run() {
	for {
		z := t.buf
		n := t.nParsed
		if n >= len(z) {
			return
		}

		c := z[n]

		// A text (or whitespace) run, ending at the next '<'.
		if c != '<' {
			i := n
			for i < len(z) && z[i] != '<' {
				i++
			}
			trimEnd := false
			if i < len(z) {
				te, ok := t.trailingTrim(z, i)
				if !ok && !t.final {
					return
				}
				trimEnd = te
			} else if !t.final {
				return
			}
			tok := TextToken{
				Text:         translateEscapes(z[n:i]),
				Offset:       n,
				TrimLeading:  t.pendingTrimLeading,
				TrimTrailing: trimEnd,
			}
			t.pendingTrimLeading = false
			t.nParsed = i
			if t.OnText != nil {
				t.OnText(tok)
			}
			continue
		}

		// An HTML comment. Consumed, no event.
		if hasOpenPrefix(z[n:], commentOpen) {
			if len(z)-n < len(commentOpen) {
				t.holdOrDiscard()
				return
			}
			end := bytes.Index(z[n+len(commentOpen):], commentClose)
			if end < 0 {
				t.holdOrDiscard()
				return
			}
			t.nParsed = n + len(commentOpen) + end + len(commentClose)
			t.pendingTrimLeading = false
			continue
		}

		// A CDATA section: a single undecoded text event. XML only.
		if t.xml && hasOpenPrefix(z[n:], cdataOpen) {
			if len(z)-n < len(cdataOpen) {
				t.holdOrDiscard()
				return
			}
			end := bytes.Index(z[n+len(cdataOpen):], cdataClose)
			if end < 0 {
				t.holdOrDiscard()
				return
			}
			body := z[n+len(cdataOpen) : n+len(cdataOpen)+end]
			t.nParsed = n + len(cdataOpen) + end + len(cdataClose)
			t.pendingTrimLeading = false
			if t.OnText != nil {
				t.OnText(TextToken{Text: body, Offset: n + len(cdataOpen)})
			}
			continue
		}

		gen := t.gen
		if !t.readTag(z, n) {
			t.holdOrDiscard()
			return
		}
		if t.gen != gen || t.state != writeNone {
			// The tag's script handler reset the engine or paused
			// tokenization; this feed is over.
			return
		}
	}
}

// holdOrDiscard handles an incomplete construct: hold the machine until
// more bytes arrive, or discard the remainder when the input is final.
func (t *Tokenizer) holdOrDiscard() {
	if t.final {
		t.nParsed = len(t.buf)
	}
}

// hasOpenPrefix reports whether z begins with open, treating a short z
// that is a prefix of open as a (potential) match.
func hasOpenPrefix(z, open []byte) bool {
	if len(z) >= len(open) {
		return bytes.HasPrefix(z, open)
	}
	return bytes.HasPrefix(open, z)
}

// trailingTrim decides the trim-trailing-newline flag for a text run that
// ends at z[i] == '<'. The flag is set when the following construct is the
// end tag of a pre or pcdata element. ok is false when the buffer does not
// yet hold enough bytes to decide.
func (t *Tokenizer) trailingTrim(z []byte, i int) (trim bool, ok bool) {
	if i+1 >= len(z) {
		return false, false
	}
	if z[i+1] != '/' {
		return false, true
	}
	j := i + 2
	for j < len(z) && !isSpace(z[j]) && z[j] != '>' && z[j] != '/' {
		j++
	}
	if j >= len(z) {
		return false, false
	}
	info := t.cat.Lookup(string(z[i+2 : j]))
	if info == nil {
		return false, true
	}
	return info.Flags&FlagPcdata != 0 || info.ID == t.preTag, true
}

// readTag parses the markup tag opening at z[n] and dispatches it. It
// returns false if the tag is incomplete, leaving nParsed untouched so the
// scan resumes from the '<' when more input arrives.
func (t *Tokenizer) readTag(z []byte, n int) bool {
	tagStart := n
	i := n + 1
	closing := false
	if i < len(z) && z[i] == '/' {
		closing = true
		i++
	}

	nameStart := i
	for i < len(z) && !isSpace(z[i]) && z[i] != '>' && (i == nameStart || z[i] != '/') {
		i++
	}
	if i >= len(z) {
		return false
	}
	name := string(z[nameStart:i])

	var attrs Attributes
	selfClosing := false

	for {
		for i < len(z) && isSpace(z[i]) {
			i++
		}
		if i >= len(z) {
			return false
		}
		if z[i] == '>' {
			i++
			break
		}

		// Attribute name, up to '=', '>', '/', or whitespace.
		j := i
		for j < len(z) && !isSpace(z[j]) && z[j] != '>' && z[j] != '=' && z[j] != '/' {
			j++
		}
		if j >= len(z) {
			return false
		}
		aname := strings.ToLower(string(z[i:j]))
		i = j

		if aname == "" && z[i] == '/' {
			// "/>" self-closing syntax; a lone '/' elsewhere is junk.
			i++
			if i < len(z) && z[i] == '>' {
				selfClosing = true
			}
			continue
		}

		for i < len(z) && isSpace(z[i]) {
			i++
		}
		if i >= len(z) {
			return false
		}

		value := ""
		if z[i] == '=' {
			i++
			for i < len(z) && isSpace(z[i]) {
				i++
			}
			if i >= len(z) {
				return false
			}
			if q := z[i]; q == '"' || q == '\'' {
				i++
				vs := i
				for i < len(z) && z[i] != q {
					i++
				}
				if i >= len(z) {
					return false
				}
				value = string(translateEscapes(z[vs:i]))
				i++
			} else {
				vs := i
				for i < len(z) && !isSpace(z[i]) && z[i] != '>' {
					i++
				}
				if i >= len(z) {
					return false
				}
				value = string(translateEscapes(z[vs:i]))
			}
		}

		if aname != "" && len(attrs) < maxTagAttributes {
			attrs = append(attrs, Attribute{Name: aname, Value: value})
		}
	}

	// The whole tag is now in the buffer; consume it.
	n = i
	t.nParsed = n

	info := t.cat.Lookup(name)
	if info == nil {
		// Unknown tag. In HTML mode the tag is silently discarded;
		// in XML mode the name is interned and emitted with tag-id 0.
		if !t.xml {
			return true
		}
		if closing {
			if t.OnEnd != nil {
				t.OnEnd(EndToken{Tag: TagUnknown, Name: name, Offset: tagStart})
			}
		} else if t.OnStart != nil {
			t.OnStart(StartToken{
				Tag: TagUnknown, Name: name, Attr: attrs,
				Offset: tagStart, SelfClosing: selfClosing,
			})
		}
		t.pendingTrimLeading = false
		return true
	}

	if closing {
		t.pendingTrimLeading = false
		if t.OnEnd != nil {
			t.OnEnd(EndToken{Tag: EndTagOf(info.ID), Name: info.Name, Offset: tagStart})
		}
		return true
	}

	var script ScriptHandler
	if !t.fragment {
		script = t.scripts[info.ID]
	}

	var body []byte
	haveBody := false
	if (script != nil || info.Flags&FlagPcdata != 0) && !selfClosing {
		var endN int
		body, endN, haveBody = t.findEndOfScript(info, z, n)
		if !haveBody {
			// Rewind to the start of the tag and wait for more
			// input; a final partial script block is discarded.
			t.nParsed = tagStart
			return false
		}
		n = endN
		t.nParsed = n
	}

	if script == nil {
		if t.OnStart != nil {
			t.OnStart(StartToken{
				Tag: info.ID, Name: info.Name, Attr: attrs,
				Offset: tagStart, SelfClosing: selfClosing,
			})
		}
		if haveBody {
			if t.OnText != nil {
				t.OnText(TextToken{
					Text: body, Offset: tagStart,
					TrimLeading: true, TrimTrailing: true,
				})
			}
			if t.OnEnd != nil {
				t.OnEnd(EndToken{Tag: EndTagOf(info.ID), Name: info.Name, Offset: n})
			}
			t.pendingTrimLeading = false
		} else {
			t.pendingTrimLeading = info.ID == t.preTag
		}
		return true
	}

	// A script handler claims the element: the body goes to the callback
	// and nothing enters the token stream. The handler may splice
	// replacement text at the insertion point, pause tokenization, or
	// reset the engine.
	t.state = writeInHandler
	t.writeInsert = n
	gen := t.gen
	if err := script(attrs, body); err != nil {
		t.log.Warn("script handler failed",
			zap.String("tag", info.Name), zap.Error(err))
	}
	if t.gen != gen {
		// The handler reset the engine; abandon this feed.
		return true
	}
	t.pendingTrimLeading = false
	switch t.state {
	case writeInHandler:
		t.state = writeNone
	case writeInHandlerWait:
		t.state = writeWait
	}
	return true
}

// findEndOfScript searches for the end of an opaque element body starting
// at z[from]. The body ends at "</NAME", case-insensitive, followed by
// optional whitespace and '>'. Quoting inside the body is ignored, and a
// close carrying anything besides whitespace does not terminate the body.
func (t *Tokenizer) findEndOfScript(info *TagInfo, z []byte, from int) (body []byte, endN int, ok bool) {
	zEnd := "</" + info.Name
	for ii := from; ii+len(zEnd) <= len(z); ii++ {
		if !asciiEqualFold(z[ii:ii+len(zEnd)], zEnd) {
			continue
		}
		k := ii + len(zEnd)
		for k < len(z) && isSpace(z[k]) {
			k++
		}
		if k >= len(z) {
			// The close might still complete; wait for more input.
			return nil, 0, false
		}
		if z[k] == '>' {
			return z[from:ii], k + 1, true
		}
	}
	return nil, 0, false
}

// asciiEqualFold reports whether z matches s ignoring ASCII case.
func asciiEqualFold(z []byte, s string) bool {
	if len(z) != len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		a, b := z[i], s[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

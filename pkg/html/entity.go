package html

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// entityNames is the closed table of named character references understood
// by the tokenizer: the ASCII markup escapes plus the Latin-1 supplement. References
// not listed here pass through verbatim.
var entityNames = map[string]rune{
	"quot":   '"',
	"amp":    '&',
	"lt":     '<',
	"gt":     '>',
	"apos":   '\'',
	"nbsp":   '\u00a0',
	"iexcl":  '¡',
	"cent":   '¢',
	"pound":  '£',
	"curren": '¤',
	"yen":    '¥',
	"brvbar": '¦',
	"sect":   '§',
	"uml":    '¨',
	"copy":   '©',
	"ordf":   'ª',
	"laquo":  '«',
	"not":    '¬',
	"shy":    '­',
	"reg":    '®',
	"macr":   '¯',
	"deg":    '°',
	"plusmn": '±',
	"sup2":   '²',
	"sup3":   '³',
	"acute":  '´',
	"micro":  'µ',
	"para":   '¶',
	"middot": '·',
	"cedil":  '¸',
	"sup1":   '¹',
	"ordm":   'º',
	"raquo":  '»',
	"frac14": '¼',
	"frac12": '½',
	"frac34": '¾',
	"iquest": '¿',
	"Agrave": 'À',
	"Aacute": 'Á',
	"Acirc":  'Â',
	"Atilde": 'Ã',
	"Auml":   'Ä',
	"Aring":  'Å',
	"AElig":  'Æ',
	"Ccedil": 'Ç',
	"Egrave": 'È',
	"Eacute": 'É',
	"Ecirc":  'Ê',
	"Euml":   'Ë',
	"Igrave": 'Ì',
	"Iacute": 'Í',
	"Icirc":  'Î',
	"Iuml":   'Ï',
	"ETH":    'Ð',
	"Ntilde": 'Ñ',
	"Ograve": 'Ò',
	"Oacute": 'Ó',
	"Ocirc":  'Ô',
	"Otilde": 'Õ',
	"Ouml":   'Ö',
	"times":  '×',
	"Oslash": 'Ø',
	"Ugrave": 'Ù',
	"Uacute": 'Ú',
	"Ucirc":  'Û',
	"Uuml":   'Ü',
	"Yacute": 'Ý',
	"THORN":  'Þ',
	"szlig":  'ß',
	"agrave": 'à',
	"aacute": 'á',
	"acirc":  'â',
	"atilde": 'ã',
	"auml":   'ä',
	"aring":  'å',
	"aelig":  'æ',
	"ccedil": 'ç',
	"egrave": 'è',
	"eacute": 'é',
	"ecirc":  'ê',
	"euml":   'ë',
	"igrave": 'ì',
	"iacute": 'í',
	"icirc":  'î',
	"iuml":   'ï',
	"eth":    'ð',
	"ntilde": 'ñ',
	"ograve": 'ò',
	"oacute": 'ó',
	"ocirc":  'ô',
	"otilde": 'õ',
	"ouml":   'ö',
	"divide": '÷',
	"oslash": 'ø',
	"ugrave": 'ù',
	"uacute": 'ú',
	"ucirc":  'û',
	"uuml":   'ü',
	"yacute": 'ý',
	"thorn":  'þ',
	"yuml":   'ÿ',
}

// decodeNumericRef maps a decimal character-reference value to a rune.
// Values in [0x80, 0xA0) are authoring mistakes: the byte was meant as
// Windows-1252 punctuation, so map it through that charmap to recover the
// intended glyph.
func decodeNumericRef(v int) rune {
	if v >= 0x80 && v < 0xa0 {
		return charmap.Windows1252.DecodeByte(byte(v))
	}
	if v <= 0 || v > utf8.MaxRune {
		return utf8.RuneError
	}
	return rune(v)
}

// translateEscapes resolves HTML character references in z and returns the
// decoded UTF-8 text. References are `&name;` for names in entityNames and
// `&#DDDD;` decimal. Anything else, including a bare '&', passes through
// unchanged. The common case of no '&' at all returns z without copying.
func translateEscapes(z []byte) []byte {
	i := 0
	for i < len(z) && z[i] != '&' {
		i++
	}
	if i == len(z) {
		return z
	}

	out := make([]byte, 0, len(z))
	out = append(out, z[:i]...)
	for i < len(z) {
		c := z[i]
		if c != '&' {
			out = append(out, c)
			i++
			continue
		}

		// Find the ';' terminating the reference. Entity names are
		// short; give up quickly so stray ampersands stay cheap.
		j := i + 1
		numeric := j < len(z) && z[j] == '#'
		if numeric {
			j++
		}
		start := j
		for j < len(z) && j-start < 10 && z[j] != ';' && z[j] != '&' && !isSpace(z[j]) {
			j++
		}
		if j >= len(z) || z[j] != ';' || j == start {
			out = append(out, '&')
			i++
			continue
		}

		if numeric {
			v := 0
			ok := true
			for _, d := range z[start:j] {
				if d < '0' || d > '9' {
					ok = false
					break
				}
				v = v*10 + int(d-'0')
			}
			if !ok {
				out = append(out, '&')
				i++
				continue
			}
			out = utf8.AppendRune(out, decodeNumericRef(v))
			i = j + 1
			continue
		}

		r, ok := entityNames[string(z[start:j])]
		if !ok {
			out = append(out, '&')
			i++
			continue
		}
		out = utf8.AppendRune(out, r)
		i = j + 1
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

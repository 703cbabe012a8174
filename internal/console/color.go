package console

import (
	"strings"
	"unicode/utf8"
)

// Minecraft formats text with a section sign followed by a code character.
const sectionSign = "§"

var ansiCodes = map[byte]string{
	'0': "\033[0;30m",   // black
	'1': "\033[0;34m",   // dark blue
	'2': "\033[0;32m",   // dark green
	'3': "\033[0;36m",   // dark aqua
	'4': "\033[0;31m",   // dark red
	'5': "\033[0;35m",   // dark purple
	'6': "\033[0;33m",   // gold
	'7': "\033[0;37m",   // gray
	'8': "\033[0;1;30m", // dark gray
	'9': "\033[0;1;34m", // blue
	'a': "\033[0;1;32m", // green
	'b': "\033[0;1;36m", // aqua
	'c': "\033[0;1;31m", // red
	'd': "\033[0;1;35m", // light purple
	'e': "\033[0;1;33m", // yellow
	'f': "\033[0;1;37m", // white
	'l': "\033[1m",      // bold
	'n': "\033[4m",      // underline
	'o': "\033[3m",      // italic
	'r': "\033[0m",      // reset
}

const ansiReset = "\033[0m"

// Render formats a response body for a terminal. Raw output is passed through
// untouched, otherwise colour codes are stripped or turned into ANSI escapes.
// The result always ends with a newline unless it is empty.
func Render(body string, raw, color bool) string {
	if raw || body == "" {
		return body
	}

	var out string
	if color {
		out = toANSI(body)
	} else {
		out = stripCodes(body)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

func stripCodes(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for {
		before, _, rest, ok := cutCode(text)
		if !ok {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(before)
		text = rest
	}
}

func toANSI(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)
	for {
		before, code, rest, ok := cutCode(text)
		if !ok {
			writeLines(&b, text)
			break
		}
		writeLines(&b, before)
		if code < utf8.RuneSelf {
			if esc, known := ansiCodes[lower(byte(code))]; known {
				b.WriteString(esc)
			}
		}
		text = rest
	}
	b.WriteString(ansiReset)
	return b.String()
}

// cutCode splits text around its first formatting code. The code character is
// a whole rune; ok is false when no complete code is present.
func cutCode(text string) (before string, code rune, rest string, ok bool) {
	i := strings.Index(text, sectionSign)
	if i < 0 || i+len(sectionSign) >= len(text) {
		return "", 0, "", false
	}
	code, size := utf8.DecodeRuneInString(text[i+len(sectionSign):])
	return text[:i], code, text[i+len(sectionSign)+size:], true
}

// writeLines copies s, resetting colour at every line break.
func writeLines(b *strings.Builder, s string) {
	b.WriteString(strings.ReplaceAll(s, "\n", ansiReset+"\n"))
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

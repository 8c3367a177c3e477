// Package markdown formats text for Telegram's MarkdownV2 parse mode.
package markdown

import "strings"

// MaxMessageLength is the Telegram limit for one message.
const MaxMessageLength = 4096

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const specialChars = `_*[]()~` + "`" + `>#+-=|{}.!\`

var specialLookup = func() [256]bool {
	var m [256]bool
	for _, c := range []byte(specialChars) {
		m[c] = true
	}
	return m
}()

func EscapeV2(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for i := range len(input) {
		c := input[i]
		if specialLookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func Bold(input string) string {
	return "*" + EscapeV2(input) + "*"
}

// Split packs blocks into messages no longer than limit bytes. Every message
// starts with header, except that messages after the first start with
// continued when it is set. A single block longer than the space left
// after the header is cut at rune boundaries.
func Split(header, continued string, blocks []string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if continued == "" {
		continued = header
	}

	var (
		messages []string
		current  strings.Builder
	)

	current.WriteString(header)
	currentHeader := header

	flush := func() {
		if current.Len() > len(currentHeader) {
			messages = append(messages, current.String())
		}
		current.Reset()
		current.WriteString(continued)
		currentHeader = continued
	}

	for _, block := range blocks {
		if current.Len()+len(block) > limit {
			flush()
		}

		for current.Len()+len(block) > limit {
			room := limit - current.Len()
			if room <= 0 {
				break
			}

			cut := cutAtRune(block, room)
			if cut == 0 {
				break
			}

			current.WriteString(block[:cut])
			block = block[cut:]
			flush()
		}

		current.WriteString(block)
	}

	if current.Len() > len(currentHeader) {
		messages = append(messages, current.String())
	}

	return messages
}

// cutAtRune returns the largest prefix length <= n that ends on a rune
// boundary and does not split an escape sequence.
func cutAtRune(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}

	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	if n > 0 && s[n-1] == '\\' {
		n--
	}

	return n
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

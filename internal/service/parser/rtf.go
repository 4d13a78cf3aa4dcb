package parser

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"inkwell/internal/domain/models"
)

// rtfConverter strips RTF control words in a single linear scan.
// Destination groups that carry no body text (font tables, stylesheets,
// embedded images) are skipped whole; \par marks paragraph breaks.
type rtfConverter struct{}

// NewRTFConverter creates a new RTF converter.
func NewRTFConverter() Converter {
	return &rtfConverter{}
}

func (c *rtfConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return TextToHTML(StripRTF(input)), nil
}

func (c *rtfConverter) SupportedExtensions() []string {
	return []string{".rtf"}
}

func (c *rtfConverter) Format() string {
	return models.FormatRTF
}

// rtfSkipDestinations are destination control words whose group content
// is metadata, not document text.
var rtfSkipDestinations = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"object":     true,
	"header":     true,
	"footer":     true,
	"generator":  true,
}

type rtfGroup struct {
	skip bool
	uc   int // chars to drop after a \uN escape
}

// StripRTF extracts the plain text of an RTF document. Never fails: a
// malformed document degrades to whatever text the scan recovers.
func StripRTF(input []byte) string {
	var out strings.Builder
	stack := []rtfGroup{{uc: 1}}
	cur := func() *rtfGroup { return &stack[len(stack)-1] }

	// pendingSkip counts fallback characters to drop after \uN
	pendingSkip := 0

	i := 0
	for i < len(input) {
		ch := input[i]
		switch ch {
		case '{':
			stack = append(stack, *cur())
			i++
		case '}':
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			i++
		case '\\':
			word, param, hasParam, next := scanRTFControl(input, i+1)
			i = next
			switch {
			case word == "":
				// Escaped literal such as \{ \} \\ or the
				// nonbreaking-space escape \~
				if i > 0 && i-1 < len(input) {
					switch input[i-1] {
					case '*':
						// Ignorable destination: drop the group
						cur().skip = true
					case '{', '}', '\\':
						if !cur().skip {
							out.WriteByte(input[i-1])
						}
					case '~':
						if !cur().skip {
							out.WriteByte(' ')
						}
					case '\n', '\r':
						if !cur().skip {
							out.WriteByte('\n')
						}
					}
				}
			case word == "'":
				// Hex-escaped byte in the document codepage
				if i+2 <= len(input) {
					if b, err := strconv.ParseUint(string(input[i:i+2]), 16, 8); err == nil {
						i += 2
						if pendingSkip > 0 {
							pendingSkip--
						} else if !cur().skip {
							out.WriteRune(charmap.Windows1252.DecodeByte(byte(b)))
						}
					}
				}
			case word == "u" && hasParam:
				code := param
				if code < 0 {
					code += 65536
				}
				if !cur().skip {
					out.WriteRune(rune(code))
				}
				pendingSkip = cur().uc
			case word == "uc" && hasParam:
				cur().uc = param
			case word == "par" || word == "line" || word == "sect" || word == "page":
				if !cur().skip {
					out.WriteString("\n")
				}
			case word == "tab":
				if !cur().skip {
					out.WriteByte(' ')
				}
			case rtfSkipDestinations[word]:
				cur().skip = true
			}
		case '\r', '\n':
			i++
		default:
			if pendingSkip > 0 {
				pendingSkip--
			} else if !cur().skip {
				out.WriteByte(ch)
			}
			i++
		}
	}

	return out.String()
}

// scanRTFControl reads the control word starting at pos (just past the
// backslash). It returns the word, its numeric parameter if present,
// and the index of the first byte after the control. An empty word
// means the backslash escaped a single symbol, which the caller reads
// from input[next-1].
func scanRTFControl(input []byte, pos int) (word string, param int, hasParam bool, next int) {
	i := pos
	for i < len(input) && isRTFLetter(input[i]) {
		i++
	}
	if i == pos {
		// Symbol escape: consume exactly one byte
		if i < len(input) {
			if input[i] == '\'' {
				return "'", 0, false, i + 1
			}
			return "", 0, false, i + 1
		}
		return "", 0, false, i
	}
	word = string(input[pos:i])

	start := i
	if i < len(input) && (input[i] == '-' || input[i] >= '0' && input[i] <= '9') {
		i++
		for i < len(input) && input[i] >= '0' && input[i] <= '9' {
			i++
		}
		if n, err := strconv.Atoi(string(input[start:i])); err == nil {
			param = n
			hasParam = true
		}
	}

	// A single space terminates the control word and is not text
	if i < len(input) && input[i] == ' ' {
		i++
	}
	return word, param, hasParam, i
}

func isRTFLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

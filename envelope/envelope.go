package envelope

import "strings"

const (
	prefix = `{"status":"error","error":"`
	suffix = `"}`
)

const hexDigits = "0123456789abcdef"

// EncodeError wraps msg in the error envelope used on the invocation path:
//
//	{"status":"error","error":"<escaped msg>"}
//
// The result is always valid JSON, so a caller can run every returned
// payload through the same decoder it uses for success payloads.
func EncodeError(msg string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(msg) + len(suffix) + 16)
	b.WriteString(prefix)
	escape(&b, msg)
	b.WriteString(suffix)
	return b.String()
}

// escape writes msg with JSON string escaping. Quote, backslash and the
// common whitespace controls get their short forms; every other byte below
// 0x20 gets a \u00XX escape so that runtime messages containing stray
// control characters cannot produce an unparseable envelope.
func escape(b *strings.Builder, msg string) {
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
	}
}

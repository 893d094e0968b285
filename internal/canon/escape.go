package canon

import "strings"

const upperHex = "0123456789ABCDEF"

// normalizeEscapes rewrites s so every byte has exactly one spelling. Escapes of
// literal bytes are decoded, everything else is escaped with uppercase hex, and
// letters are lowercased. Bytes listed in structural stay escaped when they
// arrive escaped, so "%2F" in a path never turns into a separator.
func normalizeEscapes(s string, literalFn func(byte) bool, structural string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' {
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				decoded := unhex(s[i+1])<<4 | unhex(s[i+2])
				if literalFn(decoded) && strings.IndexByte(structural, decoded) < 0 {
					b.WriteByte(toLower(decoded))
				} else {
					writeEscaped(&b, decoded)
				}
				i += 2
				continue
			}
			writeEscaped(&b, c)
			continue
		}

		if literalFn(c) {
			b.WriteByte(toLower(c))
		} else {
			writeEscaped(&b, c)
		}
	}
	return b.String()
}

func writeEscaped(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperHex[c>>4])
	b.WriteByte(upperHex[c&0x0f])
}

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || isDigit(c) ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func isHostLiteral(c byte) bool {
	return isUnreserved(c)
}

func isIPLiteral(c byte) bool {
	return isHex(c) || c == ':' || c == '.' || c == '[' || c == ']'
}

func isPathLiteral(c byte) bool {
	return isUnreserved(c) || strings.IndexByte("!$&'()*+,;=:@/", c) >= 0
}

func isQueryLiteral(c byte) bool {
	return isUnreserved(c) || strings.IndexByte("!$'()*,;:@/?=+", c) >= 0
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

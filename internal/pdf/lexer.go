// Package pdf implements the byte-level PDF grammar (header, numbers,
// names, strings, arrays, dictionaries, streams, indirect objects, the
// classical xref table, and the trailer) on top of internal/tape, and the
// xref engine and resolver that sit on that grammar.
//
// The lexer uses a single-byte-lookahead peek-then-consume discipline (one
// byte of lookahead decides which production to enter) and reads through
// a tape.Tape instead of a bufio.Reader, so the same cursor also serves
// the xref engine's backward tail scan and the resolver's seeks.
package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corewing/pdfnursery/internal/logging"
	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdferr"
	"github.com/corewing/pdfnursery/internal/tape"
)

// Lexer drives one tape.Tape through the PDF object grammar.
type Lexer struct {
	t *tape.Tape
}

// NewLexer wraps t.
func NewLexer(t *tape.Tape) *Lexer { return &Lexer{t: t} }

func isWhitespace(b byte) bool {
	return b == 0x00 || b == 0x09 || b == 0x0A || b == 0x0C || b == 0x0D || b == 0x20
}

func isDelimiter(b byte) bool {
	return strings.IndexByte("()<>[]{}/%", b) != -1
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (l *Lexer) peekByte() (byte, bool, error) {
	b, err := l.t.Peek(1)
	if err != nil {
		return 0, false, err
	}
	if len(b) == 0 {
		return 0, false, nil
	}
	return b[0], true, nil
}

func (l *Lexer) readByte() (byte, bool, error) {
	b, err := l.t.Get(1)
	if err != nil {
		return 0, false, err
	}
	if len(b) == 0 {
		return 0, false, nil
	}
	return b[0], true, nil
}

func (l *Lexer) skipWhitespace() error {
	for {
		b, ok, err := l.peekByte()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if isWhitespace(b) {
			if _, _, err := l.readByte(); err != nil {
				return err
			}
			continue
		}
		if b == '%' {
			for {
				c, ok, err := l.readByte()
				if err != nil {
					return err
				}
				if !ok || c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		return nil
	}
}

func parseErr(where, reason string) error {
	return pdferr.New(pdferr.KindParseError, where, reason)
}

// ReadObject parses the next object at the tape's current position.
func (l *Lexer) ReadObject() (object.Object, error) {
	if err := l.skipWhitespace(); err != nil {
		return nil, err
	}
	b, ok, err := l.peekByte()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, parseErr("object", "unexpected end of input")
	}

	switch b {
	case '/':
		return l.readName()
	case '(':
		return l.readLiteralString()
	case '<':
		peek, err := l.t.Peek(2)
		if err != nil {
			return nil, err
		}
		if len(peek) == 2 && peek[1] == '<' {
			return l.readDictionaryOrStream()
		}
		return l.readHexString()
	case '[':
		return l.readArray()
	default:
		if isDigit(b) || b == '+' || b == '-' || b == '.' {
			return l.readNumberOrReference()
		}
		if isAlpha(b) {
			return l.readKeywordLiteral()
		}
		return nil, parseErr("object", fmt.Sprintf("unexpected byte %q", b))
	}
}

func (l *Lexer) readTokenString() (string, error) {
	var sb strings.Builder
	for {
		b, ok, err := l.peekByte()
		if err != nil {
			return "", err
		}
		if !ok || isDelimiter(b) || isWhitespace(b) {
			break
		}
		if _, _, err := l.readByte(); err != nil {
			return "", err
		}
		sb.WriteByte(b)
	}
	return sb.String(), nil
}

func (l *Lexer) readName() (object.Name, error) {
	if _, _, err := l.readByte(); err != nil { // consume '/'
		return "", err
	}
	var sb strings.Builder
	for {
		b, ok, err := l.peekByte()
		if err != nil {
			return "", err
		}
		if !ok || isDelimiter(b) || isWhitespace(b) {
			break
		}
		if _, _, err := l.readByte(); err != nil {
			return "", err
		}
		if b == '#' {
			hex, err := l.t.Get(2)
			if err != nil {
				return "", err
			}
			val, convErr := strconv.ParseInt(string(hex), 16, 32)
			if convErr != nil {
				return "", parseErr("name", "invalid #hh escape")
			}
			sb.WriteByte(byte(val))
		} else {
			sb.WriteByte(b)
		}
	}
	return object.Name(sb.String()), nil
}

func (l *Lexer) readLiteralString() (object.Bytes, error) {
	if _, _, err := l.readByte(); err != nil { // consume '('
		return nil, err
	}
	var out []byte
	depth := 1
	for {
		b, ok, err := l.readByte()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, parseErr("string", "unterminated literal string")
		}
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return object.Bytes(out), nil
			}
			out = append(out, b)
		case '\\':
			esc, ok, err := l.readByte()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, parseErr("string", "unterminated escape")
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, esc)
			case '\r':
				// backslash-EOL is a line continuation: swallow it, and
				// a following \n if this was \r\n.
				if nb, ok, _ := l.peekByte(); ok && nb == '\n' {
					_, _, _ = l.readByte()
				}
			case '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				octal := string(esc)
				for i := 0; i < 2; i++ {
					nb, ok, err := l.peekByte()
					if err != nil {
						return nil, err
					}
					if !ok || nb < '0' || nb > '7' {
						break
					}
					l.readByte()
					octal += string(nb)
				}
				val, _ := strconv.ParseInt(octal, 8, 32)
				out = append(out, byte(val))
			default:
				out = append(out, esc)
			}
		default:
			out = append(out, b)
		}
	}
}

func (l *Lexer) readHexString() (object.Bytes, error) {
	if _, _, err := l.readByte(); err != nil { // consume '<'
		return nil, err
	}
	var digits []byte
	for {
		b, ok, err := l.readByte()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, parseErr("hexstring", "unterminated hex string")
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		digits = append(digits, b)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := 0; i < len(out); i++ {
		v, err := strconv.ParseUint(string(digits[i*2:i*2+2]), 16, 8)
		if err != nil {
			return nil, parseErr("hexstring", "invalid hex digit")
		}
		out[i] = byte(v)
	}
	return object.Bytes(out), nil
}

func (l *Lexer) readArray() (object.Array, error) {
	if _, _, err := l.readByte(); err != nil { // consume '['
		return nil, err
	}
	var arr object.Array
	for {
		if err := l.skipWhitespace(); err != nil {
			return nil, err
		}
		b, ok, err := l.peekByte()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, parseErr("array", "unterminated array")
		}
		if b == ']' {
			l.readByte()
			return arr, nil
		}
		obj, err := l.ReadObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// readDictionaryOrStream reads a "<< ... >>" dictionary. If it is
// immediately followed by the "stream" keyword, it converts the result
// into a Stream recording the content offset.
func (l *Lexer) readDictionaryOrStream() (object.Object, error) {
	dict, err := l.readDictionary()
	if err != nil {
		return nil, err
	}
	if err := l.skipWhitespace(); err != nil {
		return nil, err
	}
	peek, err := l.t.Peek(6)
	if err != nil {
		return nil, err
	}
	if string(peek) != "stream" {
		return dict, nil
	}
	if _, err := l.t.Get(6); err != nil { // consume "stream"
		return nil, err
	}
	if err := l.consumeStreamEOL(); err != nil {
		return nil, err
	}
	pos := l.t.GetSeek()
	return object.Stream{Dict: dict, StreamPos: pos, Filter: filterName(dict)}, nil
}

// consumeStreamEOL consumes the single CRLF or LF mandated immediately
// after the "stream" keyword: exactly "\r\n" or "\n".
func (l *Lexer) consumeStreamEOL() error {
	b, ok, err := l.readByte()
	if err != nil {
		return err
	}
	if !ok {
		return parseErr("stream", "missing EOL after stream keyword")
	}
	switch b {
	case '\r':
		nb, ok, err := l.peekByte()
		if err != nil {
			return err
		}
		if !ok || nb != '\n' {
			return parseErr("stream", "expected LF after CR following stream keyword")
		}
		l.readByte()
	case '\n':
		// fine
	default:
		return parseErr("stream", "expected EOL after stream keyword")
	}
	return nil
}

// filterName extracts the single cataloged filter name from dict's
// /Filter entry ("FlateDecode", the literal other name, or "" if absent
// or an array of more than one filter). Only the filter name is
// cataloged; the bytes it would decode are never inflated.
func filterName(dict object.Dictionary) string {
	v, ok := object.DictKey(dict, "Filter")
	if !ok {
		return ""
	}
	switch f := v.(type) {
	case object.Name:
		return string(f)
	case object.Array:
		if len(f) == 1 {
			if n, ok := object.AsName(f[0]); ok {
				return string(n)
			}
		}
	}
	return ""
}

func (l *Lexer) readDictionary() (object.Dictionary, error) {
	if _, err := l.t.Get(2); err != nil { // consume "<<"
		return nil, err
	}
	dict := make(object.Dictionary)
	for {
		if err := l.skipWhitespace(); err != nil {
			return nil, err
		}
		peek, err := l.t.Peek(2)
		if err != nil {
			return nil, err
		}
		if len(peek) >= 2 && peek[0] == '>' && peek[1] == '>' {
			l.t.Get(2)
			return dict, nil
		}
		keyObj, err := l.ReadObject()
		if err != nil {
			return nil, err
		}
		key, ok := object.AsName(keyObj)
		if !ok {
			return nil, parseErr("dictionary", fmt.Sprintf("key must be a name, got %T", keyObj))
		}
		val, err := l.ReadObject()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = val // duplicate keys take the last occurrence
	}
}

// readNumberOrReference disambiguates "N", "N.N", and "N G R" by peeking
// ahead for a generation number followed by the keyword R, since a PDF
// tokenizer cannot otherwise tell a bare integer from the first half of
// an indirect reference.
func (l *Lexer) readNumberOrReference() (object.Object, error) {
	first, err := l.readTokenString()
	if err != nil {
		return nil, err
	}

	if err := l.skipWhitespace(); err != nil {
		return nil, err
	}
	peek, err := l.t.Peek(24)
	if err != nil {
		return nil, err
	}

	idx := 0
	genStr := ""
	for idx < len(peek) && isDigit(peek[idx]) {
		genStr += string(peek[idx])
		idx++
	}
	if genStr == "" {
		return makeNumber(first), nil
	}
	if idx >= len(peek) || !isWhitespace(peek[idx]) {
		return makeNumber(first), nil
	}
	for idx < len(peek) && isWhitespace(peek[idx]) {
		idx++
	}
	if idx >= len(peek) || peek[idx] != 'R' {
		return makeNumber(first), nil
	}
	nextIdx := idx + 1
	if nextIdx < len(peek) {
		nc := peek[nextIdx]
		if !isWhitespace(nc) && !isDelimiter(nc) {
			return makeNumber(first), nil
		}
	}

	l.readTokenString() // consume generation
	l.skipWhitespace()
	l.readTokenString() // consume 'R'

	objNum, _ := strconv.ParseUint(first, 10, 32)
	gen, _ := strconv.ParseUint(genStr, 10, 32)
	return object.Reference{Index: uint32(objNum), Generation: uint32(gen)}, nil
}

func makeNumber(s string) object.Number {
	if strings.ContainsAny(s, ".") {
		f, _ := strconv.ParseFloat(s, 64)
		return object.Real(f)
	}
	i, _ := strconv.ParseInt(s, 10, 64)
	return object.Int(i)
}

func (l *Lexer) readKeywordLiteral() (object.Object, error) {
	tok, err := l.readTokenString()
	if err != nil {
		return nil, err
	}
	switch tok {
	case "true":
		return object.Boolean(true), nil
	case "false":
		return object.Boolean(false), nil
	case "null":
		return object.Null{}, nil
	}
	logging.L().Debugw("unexpected keyword while parsing an object", "keyword", tok)
	return nil, parseErr("object", fmt.Sprintf("unexpected keyword %q", tok))
}

// expectKeyword consumes whitespace, then the literal keyword kw, failing
// if the next token does not match. Used for "obj" and "xref".
func (l *Lexer) expectKeyword(kw string) error {
	if err := l.skipWhitespace(); err != nil {
		return err
	}
	tok, err := l.readTokenString()
	if err != nil {
		return err
	}
	if tok != kw {
		return parseErr(kw, fmt.Sprintf("expected keyword %q, got %q", kw, tok))
	}
	return nil
}

// readUnsignedInt reads a bare unsigned integer token (used for xref
// subsection headers and indirect-object numbers and generations).
func (l *Lexer) readUnsignedInt() (int64, error) {
	if err := l.skipWhitespace(); err != nil {
		return 0, err
	}
	tok, err := l.readTokenString()
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.ParseInt(tok, 10, 64)
	if convErr != nil || v < 0 {
		return 0, parseErr("integer", fmt.Sprintf("invalid integer %q", tok))
	}
	return v, nil
}

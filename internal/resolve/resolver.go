// Package resolve implements placeholder and conditional-block resolution for
// methodology templates. Rendering is a pure function over a template string
// and a data context: no I/O, no cross-call state.
package resolve

import (
	"fmt"
	"strings"
)

// Warning records an unresolved or suspicious placeholder left in the output.
// Offsets and lines refer to the rendered output, not the source template.
type Warning struct {
	Path    string
	Offset  int
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Result is a successful render: the output text plus any advisory warnings.
type Result struct {
	Output   string
	Warnings []Warning
}

// StructuralError reports unbalanced or unknown block tag syntax. It is fatal
// to the render call; no partial output is produced.
type StructuralError struct {
	Tag    string // offending tag as written in the template
	Offset int    // byte offset in the template
	Line   int    // 1-based line in the template
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s at line %d (offset %d)", e.Reason, e.Tag, e.Line, e.Offset)
}

type options struct {
	fallback    string
	hasFallback bool
}

// Option adjusts call-site rendering policy.
type Option func(*options)

// WithFallback substitutes the given text for unresolved variable placeholders
// instead of leaving the literal token in the output.
func WithFallback(text string) Option {
	return func(o *options) {
		o.fallback = text
		o.hasFallback = true
	}
}

// Render resolves conditional blocks and variable placeholders in template
// against ctx and returns the rendered output.
//
// Blocks ({{#if path}}…{{else}}…{{/if}}, {{#unless path}}…{{/unless}}) are
// resolved strictly innermost-first, then remaining {{path}} placeholders are
// substituted. Unbalanced or unknown block tags fail the render with a
// *StructuralError. Unresolved placeholders are preserved literally (or
// replaced by a WithFallback value) and reported as warnings.
func Render(template string, ctx Value, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := tokenize(template)
	if err != nil {
		return nil, err
	}

	tokens, err = resolveBlocks(tokens, ctx, template)
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	warnings := make([]Warning, 0)
	preserved := make(map[int]bool)

	for _, tok := range tokens {
		switch tok.kind {
		case tokenText:
			out.WriteString(tok.text)
		case tokenVar:
			value, ok := ctx.Lookup(tok.path)
			if !ok || value.Kind() == KindNull {
				if o.hasFallback {
					out.WriteString(o.fallback)
					continue
				}
				preserved[out.Len()] = true
				warnings = append(warnings, Warning{
					Path:    tok.path,
					Offset:  out.Len(),
					Message: fmt.Sprintf("unresolved placeholder %s", tok.text),
				})
				out.WriteString(tok.text)
				continue
			}
			text, textErr := value.Text()
			if textErr != nil {
				return nil, fmt.Errorf("placeholder %s: %w", tok.text, textErr)
			}
			out.WriteString(text)
		}
	}

	output := out.String()
	fences := fenceRanges(output)
	kept := warnings[:0]
	for _, w := range warnings {
		if insideFence(fences, w.Offset) {
			continue
		}
		w.Line = lineAt(output, w.Offset)
		kept = append(kept, w)
	}
	warnings = append(kept, scanResidual(output, preserved)...)

	return &Result{Output: output, Warnings: warnings}, nil
}

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenVar
	tokenIf
	tokenUnless
	tokenElse
	tokenEndIf
	tokenEndUnless
)

type token struct {
	kind   tokenKind
	text   string // literal text, or the tag exactly as written
	path   string // dotted condition or placeholder path
	offset int    // byte offset in the source template
}

func tokenize(src string) ([]token, error) {
	tokens := make([]token, 0)
	pos := 0
	textStart := 0

	flushText := func(end int) {
		if end > textStart {
			tokens = append(tokens, token{kind: tokenText, text: src[textStart:end], offset: textStart})
		}
	}

	for pos < len(src) {
		open := strings.Index(src[pos:], "{{")
		if open == -1 {
			break
		}
		open += pos

		end := strings.Index(src[open+2:], "}}")
		if end == -1 {
			// Unterminated marker: stays literal text.
			break
		}
		end += open + 2

		tagSrc := src[open : end+2]
		inner := strings.TrimSpace(src[open+2 : end])

		tok, isTag, err := classifyTag(inner, tagSrc, open, lineAt(src, open))
		if err != nil {
			return nil, err
		}
		if !isTag {
			// Brace pair that is not template syntax: keep as literal text.
			pos = end + 2
			continue
		}

		flushText(open)
		tokens = append(tokens, tok)
		pos = end + 2
		textStart = pos
	}

	flushText(len(src))
	return tokens, nil
}

func classifyTag(inner, tagSrc string, offset, line int) (token, bool, error) {
	base := token{text: tagSrc, offset: offset}

	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return token{}, false, nil
	}

	switch fields[0] {
	case "else":
		if len(fields) != 1 {
			return token{}, false, nil
		}
		base.kind = tokenElse
		return base, true, nil
	case "/if":
		if len(fields) != 1 {
			return token{}, false, nil
		}
		base.kind = tokenEndIf
		return base, true, nil
	case "/unless":
		if len(fields) != 1 {
			return token{}, false, nil
		}
		base.kind = tokenEndUnless
		return base, true, nil
	case "#if", "#unless":
		if len(fields) != 2 || !validPath(fields[1]) {
			return token{}, false, &StructuralError{Tag: tagSrc, Offset: offset, Line: line, Reason: "invalid condition"}
		}
		if fields[0] == "#if" {
			base.kind = tokenIf
		} else {
			base.kind = tokenUnless
		}
		base.path = fields[1]
		return base, true, nil
	}

	if strings.HasPrefix(inner, "#") || strings.HasPrefix(inner, "/") {
		return token{}, false, &StructuralError{Tag: tagSrc, Offset: offset, Line: line, Reason: "unknown block tag"}
	}
	if len(fields) == 1 && validPath(inner) {
		base.kind = tokenVar
		base.path = inner
		return base, true, nil
	}
	return token{}, false, nil
}

func validPath(path string) bool {
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return false
		}
		for _, r := range segment {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9':
			case r == '_' || r == '-':
			default:
				return false
			}
		}
	}
	return true
}

// resolveBlocks repeatedly resolves the innermost block construct until no
// block tokens remain. Each pass strictly reduces the marker count, so the
// loop terminates whenever the tags are balanced.
func resolveBlocks(tokens []token, ctx Value, src string) ([]token, error) {
	for {
		openIdx := -1
		closeIdx := -1

		for i, tok := range tokens {
			switch tok.kind {
			case tokenIf, tokenUnless:
				openIdx = i
			case tokenEndIf, tokenEndUnless:
				closeIdx = i
			}
			if closeIdx != -1 {
				break
			}
		}

		if closeIdx == -1 {
			// No closing tags left: any surviving open or else tag is orphaned.
			for _, tok := range tokens {
				switch tok.kind {
				case tokenIf, tokenUnless:
					return nil, structural(tok, src, "unclosed block tag")
				case tokenElse:
					return nil, structural(tok, src, "unexpected tag")
				}
			}
			return tokens, nil
		}
		if openIdx == -1 {
			return nil, structural(tokens[closeIdx], src, "unmatched closing tag")
		}

		open := tokens[openIdx]
		if open.kind == tokenIf && tokens[closeIdx].kind != tokenEndIf {
			return nil, structural(tokens[closeIdx], src, "mismatched closing tag")
		}
		if open.kind == tokenUnless && tokens[closeIdx].kind != tokenEndUnless {
			return nil, structural(tokens[closeIdx], src, "mismatched closing tag")
		}

		elseIdx := -1
		for i := openIdx + 1; i < closeIdx; i++ {
			if tokens[i].kind != tokenElse {
				continue
			}
			if open.kind == tokenUnless {
				return nil, structural(tokens[i], src, "unexpected tag")
			}
			if elseIdx != -1 {
				return nil, structural(tokens[i], src, "duplicate tag")
			}
			elseIdx = i
		}

		value, found := ctx.Lookup(open.path)
		truthy := found && value.Truthy()

		var kept []token
		switch {
		case open.kind == tokenIf && truthy:
			if elseIdx != -1 {
				kept = tokens[openIdx+1 : elseIdx]
			} else {
				kept = tokens[openIdx+1 : closeIdx]
			}
		case open.kind == tokenIf && elseIdx != -1:
			kept = tokens[elseIdx+1 : closeIdx]
		case open.kind == tokenUnless && !truthy:
			kept = tokens[openIdx+1 : closeIdx]
		}

		tokens = spliceBlock(tokens, openIdx, closeIdx, kept)
	}
}

func structural(tok token, src, reason string) error {
	return &StructuralError{Tag: tok.text, Offset: tok.offset, Line: lineAt(src, tok.offset), Reason: reason}
}

// spliceBlock replaces tokens[open..close] with the kept body, dropping lines
// that held nothing but a removed tag so discarded blocks leave no blank line
// behind. Blank lines present in the literal template content are untouched.
func spliceBlock(tokens []token, open, close int, kept []token) []token {
	kept = append([]token(nil), kept...)

	// Text tokens emptied by earlier trims are transparent for line detection.
	var prev, next *token
	for i := open - 1; i >= 0; i-- {
		if tokens[i].kind == tokenText && tokens[i].text == "" {
			continue
		}
		prev = &tokens[i]
		break
	}
	for i := close + 1; i < len(tokens); i++ {
		if tokens[i].kind == tokenText && tokens[i].text == "" {
			continue
		}
		next = &tokens[i]
		break
	}

	first := firstNonEmpty(kept)
	last := lastNonEmpty(kept)
	if first == nil {
		trimTagLine(prev, next, prev == nil, next == nil)
	} else {
		trimTagLine(prev, first, prev == nil, false)
		trimTagLine(last, next, false, next == nil)
	}

	result := make([]token, 0, len(tokens)-(close-open+1)+len(kept))
	result = append(result, tokens[:open]...)
	result = append(result, kept...)
	result = append(result, tokens[close+1:]...)
	return result
}

func firstNonEmpty(tokens []token) *token {
	for i := range tokens {
		if tokens[i].kind != tokenText || tokens[i].text != "" {
			return &tokens[i]
		}
	}
	return nil
}

func lastNonEmpty(tokens []token) *token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].kind != tokenText || tokens[i].text != "" {
			return &tokens[i]
		}
	}
	return nil
}

// trimTagLine collapses the line a removed tag occupied when the tag was the
// only content on it: whitespace before the tag and the trailing newline are
// removed from the surrounding text tokens.
func trimTagLine(before, after *token, atStart, atEnd bool) {
	if !lineOpenBefore(before, atStart) || !lineClosedAfter(after, atEnd) {
		return
	}

	if before != nil {
		idx := strings.LastIndexByte(before.text, '\n')
		before.text = before.text[:idx+1]
	}
	if after != nil {
		text := after.text
		i := 0
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		if i < len(text) && text[i] == '\n' {
			i++
		}
		after.text = text[i:]
	}
}

func lineOpenBefore(tok *token, atStart bool) bool {
	if tok == nil {
		return atStart
	}
	if tok.kind != tokenText {
		return false
	}
	idx := strings.LastIndexByte(tok.text, '\n')
	if idx == -1 && tok.offset != 0 {
		return false
	}
	return strings.Trim(tok.text[idx+1:], " \t") == ""
}

func lineClosedAfter(tok *token, atEnd bool) bool {
	if tok == nil {
		return atEnd
	}
	if tok.kind != tokenText {
		return false
	}
	text := tok.text
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i == len(text) || text[i] == '\n'
}

// scanResidual flags leftover {{…}} pairs in the rendered output, skipping
// fenced code blocks (which may legitimately display template syntax) and
// offsets already reported during substitution.
func scanResidual(output string, skip map[int]bool) []Warning {
	warnings := make([]Warning, 0)
	inFence := false
	offset := 0

	for _, line := range strings.SplitAfter(output, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			offset += len(line)
			continue
		}
		if inFence {
			offset += len(line)
			continue
		}

		pos := 0
		for {
			open := strings.Index(line[pos:], "{{")
			if open == -1 {
				break
			}
			open += pos
			end := strings.Index(line[open+2:], "}}")
			if end == -1 {
				break
			}
			end += open + 2

			if !skip[offset+open] {
				inner := strings.TrimSpace(line[open+2 : end])
				warnings = append(warnings, Warning{
					Path:    inner,
					Offset:  offset + open,
					Line:    lineAt(output, offset+open),
					Message: fmt.Sprintf("residual placeholder-like token %s", line[open:end+2]),
				})
			}
			pos = end + 2
		}
		offset += len(line)
	}

	return warnings
}

// fenceRanges returns the byte ranges of fenced code blocks (``` or ~~~).
// An unterminated fence runs to the end of the text.
func fenceRanges(s string) [][2]int {
	ranges := make([][2]int, 0)
	offset := 0
	start := -1

	for _, line := range strings.SplitAfter(s, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			if start == -1 {
				start = offset
			} else {
				ranges = append(ranges, [2]int{start, offset + len(line)})
				start = -1
			}
		}
		offset += len(line)
	}
	if start != -1 {
		ranges = append(ranges, [2]int{start, len(s)})
	}
	return ranges
}

func insideFence(ranges [][2]int, offset int) bool {
	for _, r := range ranges {
		if offset >= r[0] && offset < r[1] {
			return true
		}
	}
	return false
}

func lineAt(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	return 1 + strings.Count(s[:offset], "\n")
}

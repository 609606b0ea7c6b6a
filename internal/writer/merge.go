package writer

import (
	"fmt"
	"regexp"
	"strings"
)

var markerPattern = regexp.MustCompile(`<!--\s*([A-Za-z0-9_-]+)_(START|END)\s*-->`)

type region struct {
	name string
	// body is the text strictly between the start and end markers.
	body string
}

// MergeRegions merges user-edited managed regions from existing into rendered.
// For every region name present in both documents, the existing body wins;
// everything outside managed regions comes from rendered. Unbalanced markers
// in either document are an error.
func MergeRegions(existing, rendered string) (string, error) {
	existingRegions, err := parseRegions(existing)
	if err != nil {
		return "", err
	}
	if len(existingRegions) == 0 {
		return rendered, nil
	}

	renderedRegions, err := parseRegions(rendered)
	if err != nil {
		return "", err
	}
	if len(renderedRegions) == 0 {
		return rendered, nil
	}

	bodies := make(map[string]string, len(existingRegions))
	for _, r := range existingRegions {
		bodies[r.name] = r.body
	}

	var out strings.Builder
	pos := 0
	for _, match := range markerPattern.FindAllStringSubmatchIndex(rendered, -1) {
		name := rendered[match[2]:match[3]]
		kind := rendered[match[4]:match[5]]
		if kind != "START" {
			continue
		}
		body, ok := bodies[name]
		if !ok {
			continue
		}

		endStart, endEnd, found := findEndMarker(rendered, name, match[1])
		if !found {
			// cannot happen once parseRegions accepted the document
			continue
		}

		out.WriteString(rendered[pos:match[1]])
		out.WriteString(body)
		out.WriteString(rendered[endStart:endEnd])
		pos = endEnd
	}
	out.WriteString(rendered[pos:])
	return out.String(), nil
}

func parseRegions(doc string) ([]region, error) {
	matches := markerPattern.FindAllStringSubmatchIndex(doc, -1)
	regions := make([]region, 0)
	var openName string
	openEnd := -1

	for _, match := range matches {
		name := doc[match[2]:match[3]]
		kind := doc[match[4]:match[5]]

		switch kind {
		case "START":
			if openEnd != -1 {
				return nil, fmt.Errorf("%w: %s_START before %s_END", ErrUnbalancedMarkers, name, openName)
			}
			openName = name
			openEnd = match[1]
		case "END":
			if openEnd == -1 || name != openName {
				return nil, fmt.Errorf("%w: unexpected %s_END", ErrUnbalancedMarkers, name)
			}
			regions = append(regions, region{name: name, body: doc[openEnd:match[0]]})
			openEnd = -1
		}
	}

	if openEnd != -1 {
		return nil, fmt.Errorf("%w: %s_START never closed", ErrUnbalancedMarkers, openName)
	}
	return regions, nil
}

// findEndMarker locates the end marker for name at or after offset, returning
// the start and end offsets of the full marker comment.
func findEndMarker(doc, name string, offset int) (int, int, bool) {
	for _, match := range markerPattern.FindAllStringSubmatchIndex(doc[offset:], -1) {
		if doc[offset+match[2]:offset+match[3]] == name && doc[offset+match[4]:offset+match[5]] == "END" {
			return offset + match[0], offset + match[1], true
		}
	}
	return 0, 0, false
}

package metadata

import (
	"bufio"
	"io"
	"strings"
)

// annotation markers an extension module uses to splice into a base
// module. &Вместо ("instead of") replaces a base procedure entirely;
// &ИзменениеИКонтроль ("change and control") wraps around it. Both
// carry the name of the base procedure they target as their argument.
const (
	markerInstead     = "&Вместо"
	markerChangeGuard = "&ИзменениеИКонтроль"
)

// Annotation is one &Вместо/&ИзменениеИКонтроль directive found in an
// extending module, with the line it appears on (1-based) and the
// base-module procedure name it targets.
type Annotation struct {
	Line     int
	Kind     string
	BaseName string
}

// scanAnnotations reads an extending .bsl module and returns every
// override annotation, in source order.
func scanAnnotations(r io.Reader) ([]Annotation, error) {
	var out []Annotation
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		kind := ""
		switch {
		case strings.HasPrefix(text, markerInstead):
			kind = markerInstead
		case strings.HasPrefix(text, markerChangeGuard):
			kind = markerChangeGuard
		default:
			continue
		}

		name := extractAnnotationArg(text)
		if name == "" {
			continue
		}
		out = append(out, Annotation{Line: line, Kind: kind, BaseName: name})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// extractAnnotationArg pulls the parenthesized base-procedure name
// out of an annotation line, e.g. "&Вместо(\"ПриЗаписи\")" -> "ПриЗаписи".
func extractAnnotationArg(line string) string {
	open := strings.IndexByte(line, '(')
	close := strings.LastIndexByte(line, ')')
	if open < 0 || close <= open {
		return ""
	}
	arg := strings.TrimSpace(line[open+1 : close])
	arg = strings.Trim(arg, `"`)
	return arg
}

// Package format re-indents response bodies for display.
package format

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Kind is the detected format of a body.
type Kind string

const (
	KindJSON Kind = "json"
	KindXML  Kind = "xml"
	KindHTML Kind = "html"
	KindText Kind = "text"
)

var htmlPrefixes = []string{
	"<!doctype html", "<html", "<head", "<body", "<div", "<span", "<p>", "<script", "<style", "<meta", "<title",
}

// Detect guesses the format of body from its leading characters. Records
// keep no response headers, so the content is all there is to go on.
func Detect(body string) Kind {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return KindText
	}

	switch trimmed[0] {
	case '{', '[':
		return KindJSON
	case '<':
		lower := strings.ToLower(trimmed)
		for _, p := range htmlPrefixes {
			if strings.HasPrefix(lower, p) {
				return KindHTML
			}
		}
		if strings.HasPrefix(trimmed, "<?xml") && strings.Contains(lower, "<html") {
			return KindHTML
		}
		return KindXML
	}
	return KindText
}

// Pretty re-indents JSON and XML bodies with two spaces. HTML, plain text
// and anything that fails to parse come back unchanged.
func Pretty(body string) string {
	switch Detect(body) {
	case KindJSON:
		var out bytes.Buffer
		if err := json.Indent(&out, []byte(strings.TrimSpace(body)), "", "  "); err != nil {
			return body
		}
		return out.String()
	case KindXML:
		out, err := indentXML(body)
		if err != nil {
			return body
		}
		return out
	default:
		return body
	}
}

func indentXML(body string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(body))
	var sb strings.Builder
	depth := 0

	line := func(s string) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			var tag strings.Builder
			tag.WriteString("<" + t.Name.Local)
			for _, attr := range t.Attr {
				tag.WriteString(" " + attr.Name.Local + `="` + attr.Value + `"`)
			}
			line(tag.String() + ">")
			depth++
		case xml.EndElement:
			depth--
			line("</" + t.Name.Local + ">")
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				line(text)
			}
		case xml.Comment:
			line("<!--" + string(t) + "-->")
		case xml.ProcInst:
			inst := "<?" + t.Target
			if len(t.Inst) > 0 {
				inst += " " + string(t.Inst)
			}
			line(inst + "?>")
		case xml.Directive:
			line("<!" + string(t) + ">")
		}
	}

	return strings.TrimSuffix(sb.String(), "\n"), nil
}

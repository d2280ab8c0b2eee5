package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/artpar/almagro/internal/core"
)

var whitespace = regexp.MustCompile(`\s+`)

// Curl is the result of parsing a curl command line. Records carry no
// headers, so header options are collected separately for the caller to
// report.
type Curl struct {
	Record  *core.Record
	Ignored []string
}

// ParseCurl parses a curl command into a record named after the last path
// segment of its URL. The method is validated against core.Methods.
func ParseCurl(cmd string) (*Curl, error) {
	cmd = strings.TrimSpace(cmd)
	cmd = strings.ReplaceAll(cmd, "\\\r\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = whitespace.ReplaceAllString(cmd, " ")

	tokens, err := tokenize(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}
	if len(tokens) == 0 || tokens[0] != "curl" {
		return nil, ErrNotCurl
	}

	method := ""
	implied := "GET"
	var url, body string
	var ignored []string

	// value returns the argument of the option at i.
	value := func(i int) (string, bool) {
		if i+1 < len(tokens) {
			return tokens[i+1], true
		}
		return "", false
	}

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			if v, ok := value(i); ok {
				method = v
				i++
			}

		case "-d", "--data", "--data-raw", "--data-binary", "--json":
			if v, ok := value(i); ok {
				body = v
				implied = "POST"
				i++
			}

		case "--data-urlencode":
			if v, ok := value(i); ok {
				if body != "" {
					body += "&"
				}
				body += v
				implied = "POST"
				i++
			}

		case "-H", "--header", "-u", "--user", "-A", "--user-agent", "-e", "--referer", "-b", "--cookie":
			if _, ok := value(i); ok {
				ignored = append(ignored, token+" "+tokens[i+1])
				i++
			}

		case "-I", "--head":
			method = "HEAD"

		case "-G", "--get":
			method = "GET"

		case "-o", "--output":
			i++

		case "-L", "--location", "-k", "--insecure", "--compressed",
			"-s", "--silent", "-S", "--show-error", "-v", "--verbose", "-O", "--remote-name":

		default:
			if strings.HasPrefix(token, "-") {
				// Unknown option; assume it takes a value unless the next
				// token is another option or a URL.
				if next, ok := value(i); ok && !strings.HasPrefix(next, "-") && !strings.Contains(next, "://") {
					i++
				}
				continue
			}
			if url == "" {
				url = token
			}
		}
	}

	if url == "" {
		return nil, ErrMissingURL
	}

	if method == "" {
		method = implied
	}
	canonical, err := core.ParseMethod(method)
	if err != nil {
		return nil, err
	}

	r := core.NewRecord(NameFromURL(url))
	r.Method = canonical
	r.URL = url
	r.Body = body

	return &Curl{Record: r, Ignored: ignored}, nil
}

// tokenize splits the command respecting single and double quotes and
// backslash escapes.
func tokenize(cmd string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	var inQuote rune
	var escaped, started bool

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		if r == '\\' && inQuote != '\'' {
			escaped = true
			started = true
			continue
		}

		if inQuote != 0 {
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
			continue
		}

		switch r {
		case '"', '\'':
			inQuote = r
			started = true
		case ' ', '\t':
			if started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", inQuote)
	}
	if started {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

// NameFromURL returns the last path segment of url, or its host when the
// path is empty.
func NameFromURL(url string) string {
	name := url
	if idx := strings.Index(name, "://"); idx >= 0 {
		name = name[idx+3:]
	}
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}

	host, path, _ := strings.Cut(name, "/")
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}

	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return host
}

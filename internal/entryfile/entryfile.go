// Package entryfile encodes journal entries as Markdown files with YAML
// frontmatter and decodes them back.
package entryfile

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/starford/diary/internal/models"
)

const (
	delim = "---"

	// Dir is the vault directory holding entry files.
	Dir = "entries"
	// Ext is the entry file extension.
	Ext = ".md"

	encodingBase64 = "base64"
)

// ErrNoFrontmatter is returned when a file does not start with a frontmatter block.
var ErrNoFrontmatter = errors.New("entryfile: missing frontmatter")

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

type frontmatter struct {
	ID       string   `yaml:"id"`
	Date     string   `yaml:"date"`
	Title    string   `yaml:"title"`
	Encoding string   `yaml:"encoding,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

// Document is a decoded entry file.
type Document struct {
	Entry models.Entry
	Tags  []string
	// Text is the body as searchable text; empty for binary bodies.
	Text string
}

// Encode renders e as an entry file. Bodies that are not valid UTF-8 are
// stored base64-encoded.
func Encode(e models.Entry) ([]byte, error) {
	fm := frontmatter{
		ID:    e.ID.String(),
		Date:  e.Date.Format(time.RFC3339Nano),
		Title: e.Title,
	}
	body := e.Body
	if !utf8.Valid(body) {
		fm.Encoding = encodingBase64
		body = []byte(base64.StdEncoding.EncodeToString(body))
	}

	head, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("entryfile: marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(head) + len(body) + 2*len(delim) + 2)
	buf.WriteString(delim + "\n")
	buf.Write(head)
	buf.WriteString(delim + "\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// Decode parses an entry file.
func Decode(data []byte) (*Document, error) {
	head, body, err := split(data)
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return nil, fmt.Errorf("entryfile: parse frontmatter: %w", err)
	}
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("entryfile: invalid id %q: %w", fm.ID, err)
	}
	date, err := time.Parse(time.RFC3339Nano, fm.Date)
	if err != nil {
		return nil, fmt.Errorf("entryfile: invalid date %q: %w", fm.Date, err)
	}

	doc := &Document{Entry: models.Entry{ID: id, Date: date, Title: fm.Title}}
	switch fm.Encoding {
	case "":
		doc.Entry.Body = body
		doc.Text = string(body)
	case encodingBase64:
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
		if err != nil {
			return nil, fmt.Errorf("entryfile: decode body: %w", err)
		}
		doc.Entry.Body = raw
	default:
		return nil, fmt.Errorf("entryfile: unknown encoding %q", fm.Encoding)
	}

	if doc.Entry.Title == "" {
		doc.Entry.Title = headingTitle(doc.Text)
	}
	doc.Tags = extractTags(doc.Text, fm.Tags)
	return doc, nil
}

// Path returns the vault-relative file path for an entry dated in loc.
func Path(id uuid.UUID, date time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	d := date.In(loc)
	return path.Join(Dir, fmt.Sprintf("%04d", d.Year()), fmt.Sprintf("%02d", int(d.Month())), id.String()+Ext)
}

// split separates the frontmatter block from the body. The body is returned
// byte-for-byte as written after the closing delimiter line.
func split(data []byte) ([]byte, []byte, error) {
	open := []byte(delim + "\n")
	if !bytes.HasPrefix(data, open) {
		return nil, nil, ErrNoFrontmatter
	}
	// Search from the newline that ends the opening delimiter so an empty
	// frontmatter block is found too.
	rest := data[len(open)-1:]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, nil, fmt.Errorf("entryfile: unterminated frontmatter")
	}
	head := rest[1 : idx+1]
	after := rest[idx+1+len(delim):]
	switch {
	case len(after) == 0:
		return head, []byte{}, nil
	case after[0] == '\n':
		return head, after[1:], nil
	default:
		return nil, nil, fmt.Errorf("entryfile: malformed frontmatter delimiter")
	}
}

// extractTags merges frontmatter tags with inline #tags, keeping first-seen order.
func extractTags(text string, declared []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range declared {
		add(t)
	}
	for _, m := range tagRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	return out
}

// headingTitle returns the first H1 heading of text, or "".
func headingTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

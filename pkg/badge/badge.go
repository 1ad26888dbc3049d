// Package badge renders shields.io badges for the record's version and status
// and keeps the copies embedded in markdown documents current.
package badge

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"

	"github.com/fulmenhq/appversion/pkg/logger"
	"github.com/fulmenhq/appversion/pkg/record"
	"github.com/fulmenhq/appversion/pkg/safeio"
)

// Kind selects which badge to render.
type Kind string

const (
	KindVersion Kind = "version"
	KindStatus  Kind = "status"
)

// ErrUnknownKind is returned for a badge kind other than version or status.
var ErrUnknownKind = errors.New("unknown badge kind")

// DefaultURLTemplate builds the badge image URL. Triple braces keep raymond
// from HTML-escaping the URL.
const DefaultURLTemplate = "https://img.shields.io/badge/{{{label}}}-{{{text}}}-brightgreen.svg?style=flat"

// DefaultMarkupTemplate is the markdown snippet embedded in documents.
const DefaultMarkupTemplate = "[![AppVersion-{{{kind}}}]({{{url}}})](https://github.com/delvedor/appversion?#{{{kind}}})"

// ParseKind validates s as a badge kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindVersion, KindStatus:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q (expected version or status)", ErrUnknownKind, s)
	}
}

// VersionText renders "major.minor.patch".
func VersionText(r *record.Record) string {
	return r.VersionString()
}

// StatusText renders the stage alone when the number is 0, otherwise
// "stage number" percent-encoded for use in a URL path (beta%202).
func StatusText(r *record.Record) string {
	if r.Status.Number == 0 {
		return r.Status.Stage
	}
	return url.PathEscape(r.Status.Stage + " " + strconv.Itoa(r.Status.Number))
}

func label(kind Kind) string {
	if kind == KindStatus {
		return "Status"
	}
	return "AppVersion"
}

// Text returns the badge text for kind.
func Text(r *record.Record, kind Kind) (string, error) {
	switch kind {
	case KindVersion:
		return VersionText(r), nil
	case KindStatus:
		return StatusText(r), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
}

// Renderer turns a record into badge markup using handlebars templates.
type Renderer struct {
	markup *raymond.Template
	url    *raymond.Template
}

// NewRenderer parses the markup and URL templates. Empty strings select the
// defaults. Templates see kind, label and text; the markup template also
// sees url.
func NewRenderer(markupTemplate, urlTemplate string) (*Renderer, error) {
	if strings.TrimSpace(markupTemplate) == "" {
		markupTemplate = DefaultMarkupTemplate
	}
	if strings.TrimSpace(urlTemplate) == "" {
		urlTemplate = DefaultURLTemplate
	}

	markup, err := raymond.Parse(markupTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse badge template: %w", err)
	}
	u, err := raymond.Parse(urlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse badge url template: %w", err)
	}
	return &Renderer{markup: markup, url: u}, nil
}

// Render returns the markdown badge for kind.
func (rn *Renderer) Render(r *record.Record, kind Kind) (string, error) {
	text, err := Text(r, kind)
	if err != nil {
		return "", err
	}
	data := map[string]interface{}{
		"kind":  string(kind),
		"label": label(kind),
		"text":  text,
	}

	u, err := rn.url.Exec(data)
	if err != nil {
		return "", fmt.Errorf("render badge url: %w", err)
	}
	data["url"] = u

	out, err := rn.markup.Exec(data)
	if err != nil {
		return "", fmt.Errorf("render badge: %w", err)
	}
	return out, nil
}

// PatchDocument replaces the first occurrence of oldMarkup with newMarkup in
// the file at path. A document without oldMarkup is left untouched and
// reported as unchanged.
func PatchDocument(path, newMarkup, oldMarkup string) (bool, error) {
	if oldMarkup == "" || oldMarkup == newMarkup {
		return false, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- callers resolve path against the project root
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)

	i := strings.Index(content, oldMarkup)
	if i < 0 {
		return false, nil
	}
	patched := content[:i] + newMarkup + content[i+len(oldMarkup):]

	if err := safeio.WriteFileAtomic(path, []byte(patched)); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// Patcher applies PatchDocument to the markdown files listed in the record.
type Patcher struct {
	Root   string
	DryRun bool
}

// Update patches every document and returns how many changed. Failures are
// logged per document and never stop the loop.
func (p *Patcher) Update(docs []string, newMarkup, oldMarkup string) int {
	changed := 0
	for _, doc := range docs {
		path, err := safeio.ContainedPath(p.Root, doc)
		if err != nil {
			logger.Warn("Skipping document outside project root", logger.String("file", doc), logger.Err(err))
			continue
		}

		if p.DryRun {
			data, err := os.ReadFile(path) // #nosec G304 -- contained in root
			if err == nil && oldMarkup != "" && oldMarkup != newMarkup && strings.Contains(string(data), oldMarkup) {
				logger.Info("Would update badge", logger.String("file", doc))
				changed++
			}
			continue
		}

		ok, err := PatchDocument(path, newMarkup, oldMarkup)
		if err != nil {
			logger.Warn("Failed to update badge", logger.String("file", doc), logger.Err(err))
			continue
		}
		if ok {
			logger.Info("Updated badge", logger.String("file", doc))
			changed++
		} else {
			logger.Debug("Badge marker not found", logger.String("file", doc))
		}
	}
	return changed
}

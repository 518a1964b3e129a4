// Package loader reads bilingual markdown documents from a directory
// tree and turns them into index file records. A document is a markdown
// file with a leading JSON front-matter block, an English body, and an
// optional Arabic body after the bilingual separator.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/qanooni-ai/qanooni/internal/domain"
)

const (
	// LanguageSeparator splits the English and Arabic sections of a body.
	LanguageSeparator = "---AR---"

	summaryMarkerEN = "## Summary"
	summaryMarkerAR = "## ملخص"
	headingPrefix   = "## "

	// SummaryMaxChars caps the extracted summary length.
	SummaryMaxChars = 500
)

// Loader walks a document root and produces file records.
type Loader struct {
	root string
}

func New(root string) *Loader {
	return &Loader{root: root}
}

// Load reads every markdown document under the root. A file that cannot
// be parsed is logged and skipped; it never fails the whole run.
func (l *Loader) Load(ctx context.Context) ([]domain.FileRecord, error) {
	var records []domain.FileRecord

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		record, err := l.loadFile(path, rel)
		if err != nil {
			log.Printf("loader: skipping %s: %v", rel, err)
			return nil
		}

		records = append(records, *record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs root %s: %w", l.root, err)
	}

	return records, nil
}

func (l *Loader) loadFile(path, rel string) (*domain.FileRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	meta, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateMetadata(meta); err != nil {
		return nil, err
	}

	en, ar := splitLanguages(body)

	return &domain.FileRecord{
		ID:         domain.FileIDFromPath(rel),
		SourcePath: rel,
		Metadata:   meta,
		Summary: domain.Bilingual{
			EN: extractSummary(en, summaryMarkerEN),
			AR: extractSummary(ar, summaryMarkerAR),
		},
		Body: domain.Bilingual{EN: en, AR: ar},
	}, nil
}

// splitFrontMatter parses the leading brace-delimited JSON block. The
// content must start with '{'; the end of the block is found by tracking
// nested brace depth, ignoring braces inside JSON strings.
func splitFrontMatter(content string) (domain.DocumentMetadata, string, error) {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(trimmed, "{") {
		return domain.DocumentMetadata{}, "", fmt.Errorf("document does not start with a metadata block")
	}

	end := jsonBlockEnd(trimmed)
	if end < 0 {
		return domain.DocumentMetadata{}, "", fmt.Errorf("unterminated metadata block")
	}

	block := trimmed[:end]
	body := strings.TrimSpace(trimmed[end:])

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return domain.DocumentMetadata{}, "", fmt.Errorf("invalid metadata block: %w", err)
	}

	meta, err := decodeMetadata(fields)
	if err != nil {
		return domain.DocumentMetadata{}, "", err
	}

	return meta, body, nil
}

// jsonBlockEnd returns the byte offset just past the closing brace of the
// leading JSON object, or -1 if the object never closes.
func jsonBlockEnd(s string) int {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

func decodeMetadata(fields map[string]json.RawMessage) (domain.DocumentMetadata, error) {
	var meta domain.DocumentMetadata

	take := func(key string, dst any) error {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("invalid metadata field %q: %w", key, err)
		}
		delete(fields, key)
		return nil
	}

	if err := take("title", &meta.Title); err != nil {
		return meta, err
	}
	if err := take("jurisdiction", &meta.Jurisdiction); err != nil {
		return meta, err
	}
	if err := take("version", &meta.Version); err != nil {
		return meta, err
	}
	if err := take("as_of", &meta.AsOf); err != nil {
		return meta, err
	}
	if err := take("tags", &meta.Tags); err != nil {
		return meta, err
	}

	if len(fields) > 0 {
		meta.Extra = make(map[string]any, len(fields))
		for key, raw := range fields {
			var value any
			if err := json.Unmarshal(raw, &value); err != nil {
				continue
			}
			meta.Extra[key] = value
		}
	}

	return meta, nil
}

// splitLanguages splits a body on the bilingual separator. Without the
// separator the entire body is English and Arabic stays empty.
func splitLanguages(body string) (en, ar string) {
	before, after, found := strings.Cut(body, LanguageSeparator)
	if !found {
		return strings.TrimSpace(body), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// extractSummary takes the text between the summary marker heading and
// the next top-level heading, trimmed and capped at SummaryMaxChars.
func extractSummary(body, marker string) string {
	idx := strings.Index(body, marker)
	if idx < 0 {
		return ""
	}

	rest := body[idx+len(marker):]
	if next := strings.Index(rest, "\n"+headingPrefix); next >= 0 {
		rest = rest[:next]
	}

	summary := strings.TrimSpace(rest)
	runes := []rune(summary)
	if len(runes) > SummaryMaxChars {
		summary = string(runes[:SummaryMaxChars])
	}
	return summary
}

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spec-kit/market-desk/internal/domain"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

const (
	maxSearchResults = 10
	snippetRadius    = 100
	fallbackSnippet  = 200
)

// ArticleService lists and searches the static HTML articles in a directory.
type ArticleService struct {
	dir string
}

// NewArticleService reads articles from dir.
func NewArticleService(dir string) *ArticleService {
	return &ArticleService{dir: dir}
}

// List returns every published article, ordered by filename.
func (s *ArticleService) List(ctx context.Context) ([]domain.Article, error) {
	files, err := s.articleFiles()
	if err != nil {
		return nil, err
	}
	articles := make([]domain.Article, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		articles = append(articles, s.article(name))
	}
	return articles, nil
}

// Search matches the sanitized, lower-cased query against titles and page
// content. At most ten results are returned.
func (s *ArticleService) Search(ctx context.Context, query string) (string, []domain.Article, error) {
	q := lowerRunes(Sanitize(query))
	if q == "" {
		return "", nil, apperrors.NewValidationError("Search query is required", nil)
	}

	files, err := s.articleFiles()
	if err != nil {
		return q, nil, err
	}

	results := []domain.Article{}
	for _, name := range files {
		if len(results) == maxSearchResults {
			break
		}
		if err := ctx.Err(); err != nil {
			return q, nil, err
		}

		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return q, nil, apperrors.NewInternalError(fmt.Errorf("read article %s: %w", name, err))
		}
		content := string(raw)
		art := s.article(name)

		idx := strings.Index(lowerRunes(content), q)
		if idx < 0 && !strings.Contains(lowerRunes(art.Title), q) {
			continue
		}
		art.Snippet = snippet(content, idx)
		results = append(results, art)
	}
	return q, results, nil
}

func (s *ArticleService) articleFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("read articles dir: %w", err))
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".html") || strings.Contains(name, "template") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// article derives the display title from the filename; a Caser is stateful, so
// each call builds its own.
func (s *ArticleService) article(filename string) domain.Article {
	base := strings.ReplaceAll(strings.TrimSuffix(filename, ".html"), "-", " ")
	return domain.Article{
		Title:    cases.Title(language.English, cases.NoLower).String(base),
		Filename: filename,
		URL:      "/" + filename,
	}
}

// lowerRunes lower-cases rune by rune so byte offsets in the result map onto
// rune offsets in the input.
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// snippet cuts 100 characters either side of the match at byteIdx in the
// lower-cased content, or the first 200 characters when only the title matched.
func snippet(content string, byteIdx int) string {
	runes := []rune(content)
	if byteIdx < 0 {
		end := min(len(runes), fallbackSnippet)
		return string(runes[:end]) + "..."
	}
	pos := utf8.RuneCountInString(lowerRunes(content)[:byteIdx])
	start := max(0, pos-snippetRadius)
	end := min(len(runes), pos+snippetRadius)
	return string(runes[start:end]) + "..."
}

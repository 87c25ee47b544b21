package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

func writeArticles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets.html"), 0o750))
	return dir
}

func TestArticleList(t *testing.T) {
	dir := writeArticles(t, map[string]string{
		"risk-management-basics.html": "<h1>Risk</h1>",
		"article-template.html":       "ignored",
		"notes.txt":                   "ignored",
		"fx-101.html":                 "<p>intro</p>",
	})
	svc := NewArticleService(dir)

	articles, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Fx 101", articles[0].Title)
	assert.Equal(t, "/fx-101.html", articles[0].URL)
	assert.Equal(t, "Risk Management Basics", articles[1].Title)
	assert.Equal(t, "risk-management-basics.html", articles[1].Filename)
	assert.Empty(t, articles[1].Snippet)
}

func TestArticleSearchSnippets(t *testing.T) {
	body := strings.Repeat("a", 150) + "Carry Trade" + strings.Repeat("b", 150)
	dir := writeArticles(t, map[string]string{
		"carry.html":           body,
		"moving-averages.html": "nothing relevant here",
		"trade-journal.html":   strings.Repeat("z", 250),
	})
	svc := NewArticleService(dir)

	query, results, err := svc.Search(context.Background(), "  <TRADE> ")
	require.NoError(t, err)
	assert.Equal(t, "trade", query)
	require.Len(t, results, 2)

	assert.Equal(t, "carry.html", results[0].Filename)
	match := strings.Index(body, "Trade")
	assert.Equal(t, body[match-100:match+100]+"...", results[0].Snippet)

	assert.Equal(t, "trade-journal.html", results[1].Filename, "title-only match")
	assert.Equal(t, strings.Repeat("z", 200)+"...", results[1].Snippet)
}

func TestArticleSearchCapsResults(t *testing.T) {
	files := map[string]string{}
	for _, c := range "abcdefghijkl" {
		files[string(c)+"-pips.html"] = "pips"
	}
	svc := NewArticleService(writeArticles(t, files))

	_, results, err := svc.Search(context.Background(), "pips")
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestArticleSearchRequiresQuery(t *testing.T) {
	svc := NewArticleService(t.TempDir())
	_, _, err := svc.Search(context.Background(), " <> ")
	require.Error(t, err)
	assert.Equal(t, "Search query is required", apperrors.ToDomainError(err).Message)
}

func TestArticleListMissingDir(t *testing.T) {
	svc := NewArticleService(filepath.Join(t.TempDir(), "missing"))
	_, err := svc.List(context.Background())
	assert.True(t, apperrors.IsCode(err, "INTERNAL_ERROR"))
}

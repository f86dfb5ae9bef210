package tools

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// SearchFailed replaces the text of a language whose lookup failed.
const SearchFailed = "Search failed."

const serviceWikipedia = "Wikipedia API"

// Wikipedia looks a title up in several language editions at once.
type Wikipedia struct {
	client    *Client
	baseURL   string
	userAgent string
	languages []string
	logger    *slog.Logger
}

// NewWikipedia creates a lookup. baseURL holds one %s for the language
// code, e.g. "https://%s.wikipedia.org". Empty languages means ko and en.
func NewWikipedia(c *Client, baseURL, userAgent string, languages []string, logger *slog.Logger) *Wikipedia {
	if len(languages) == 0 {
		languages = []string{"ko", "en"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Wikipedia{
		client:    c,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		languages: languages,
		logger:    logger,
	}
}

// SearchGlobal fetches the plain-text article for query in every
// configured language concurrently. A language that fails maps to
// SearchFailed and never fails the others; a missing article maps to "".
func (w *Wikipedia) SearchGlobal(ctx context.Context, query string) (map[string]string, error) {
	texts := make([]string, len(w.languages))

	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range w.languages {
		g.Go(func() error {
			text, err := w.fetch(gctx, lang, query)
			if err != nil {
				w.logger.WarnContext(ctx, "wikipedia lookup failed",
					slog.String("lang", lang),
					slog.String("query", query),
					slog.String("error", err.Error()),
				)
				text = SearchFailed
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(w.languages))
	for i, lang := range w.languages {
		out[lang] = texts[i]
	}
	return out, nil
}

func (w *Wikipedia) fetch(ctx context.Context, lang, query string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("titles", query)
	q.Set("prop", "extracts")
	q.Set("explaintext", "True")

	endpoint := fmt.Sprintf(w.baseURL, lang) + "/w/api.php"
	body, err := w.client.Get(ctx, serviceWikipedia, endpoint, q, map[string]string{"User-Agent": w.userAgent})
	if err != nil {
		return "", err
	}

	var extract string
	gjson.GetBytes(body, "query.pages").ForEach(func(_, page gjson.Result) bool {
		if page.Get("missing").Exists() {
			return true
		}
		extract = page.Get("extract").String()
		return extract == ""
	})
	return extract, nil
}

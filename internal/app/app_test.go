package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hunterhghs/HHeuristics-News/internal/config"
	"github.com/Hunterhghs/HHeuristics-News/internal/fetch"
	"github.com/Hunterhghs/HHeuristics-News/internal/summarize"
)

type fakeGen struct {
	response string
	calls    int
}

func (f *fakeGen) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, nil
}

func rssDoc(entries ...[2]string) string {
	doc := "<rss><channel>"
	for _, e := range entries {
		doc += "<item><title>" + e[0] + "</title><link>" + e[1] + "</link><description>desc</description></item>"
	}
	doc += "</channel></rss>"
	return doc
}

func feedServer(t *testing.T, doc string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(sources []config.Source) *config.Config {
	return &config.Config{
		Sources:              sources,
		MaxArticlesPerSource: 6,
		FinalArticleCount:    15,
	}
}

func TestGenerate_MergesAcrossSources(t *testing.T) {
	a := feedServer(t, rssDoc(
		[2]string{"Shared headline", "https://a.com/1"},
		[2]string{"A only", "https://a.com/2"},
	))
	b := feedServer(t, rssDoc(
		[2]string{"SHARED HEADLINE", "https://b.com/1"},
		[2]string{"B only", "https://b.com/2"},
	))

	cfg := testConfig([]config.Source{
		{Name: "A", URL: a.URL},
		{Name: "B", URL: b.URL},
	})
	gen := &fakeGen{response: `{"items":[{"title":"","summary":"One sentence. Two sentences."}]}`}
	p := NewPipeline(cfg, fetch.New(2*time.Second, 1, time.Millisecond), summarize.New(gen, nil), nil)

	batch, err := p.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(batch.Articles) != 3 {
		t.Fatalf("expected 3 articles after dedup, got %d", len(batch.Articles))
	}
	if batch.Articles[0].Source != "A" || batch.Articles[1].Source != "B" {
		t.Errorf("expected source interleaving, got %+v", batch.Articles)
	}
	if gen.calls != 1 {
		t.Errorf("expected one summarization call, got %d", gen.calls)
	}
	if batch.Articles[0].Summary != "One sentence. Two sentences." {
		t.Errorf("summary not applied: %q", batch.Articles[0].Summary)
	}
	// Empty title in the model output keeps the original.
	if batch.Articles[0].Title != "Shared headline" {
		t.Errorf("title should be unchanged, got %q", batch.Articles[0].Title)
	}
}

func TestGenerate_SurvivesPartialSourceFailure(t *testing.T) {
	healthy := feedServer(t, rssDoc([2]string{"Only story", "https://a.com/1"}))
	broken := feedServer(t, "")
	brokenURL := broken.URL
	broken.Close()

	cfg := testConfig([]config.Source{
		{Name: "A", URL: healthy.URL},
		{Name: "B", URL: brokenURL},
	})
	p := NewPipeline(cfg, fetch.New(2*time.Second, 1, time.Millisecond), summarize.New(nil, nil), nil)

	batch, err := p.Generate(context.Background())
	if err != nil {
		t.Fatalf("one healthy source should be enough: %v", err)
	}
	if len(batch.Articles) != 1 {
		t.Errorf("expected 1 article, got %d", len(batch.Articles))
	}
}

func TestGenerate_FailsWhenAllSourcesFail(t *testing.T) {
	dead := feedServer(t, "")
	deadURL := dead.URL
	dead.Close()

	cfg := testConfig([]config.Source{{Name: "A", URL: deadURL}})
	p := NewPipeline(cfg, fetch.New(time.Second, 1, time.Millisecond), summarize.New(nil, nil), nil)

	if _, err := p.Generate(context.Background()); err == nil {
		t.Errorf("expected error when no source can be fetched")
	}
}

func TestGenerate_TruncatesToFinalCount(t *testing.T) {
	var entries [][2]string
	for _, title := range []string{"t1", "t2", "t3", "t4", "t5", "t6"} {
		entries = append(entries, [2]string{title, "https://a.com/" + title})
	}
	srv := feedServer(t, rssDoc(entries...))

	cfg := testConfig([]config.Source{{Name: "A", URL: srv.URL}})
	cfg.FinalArticleCount = 4
	p := NewPipeline(cfg, fetch.New(2*time.Second, 1, time.Millisecond), summarize.New(nil, nil), nil)

	batch, err := p.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(batch.Articles) != 4 {
		t.Errorf("expected 4 articles, got %d", len(batch.Articles))
	}
}

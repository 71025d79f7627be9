package retrieval

import (
	"context"
	"path/filepath"
	"testing"

	"fin-assist/internal/domain"
)

func TestCorpus_ReplaceAllPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")

	corpus, err := NewCorpus(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if corpus.Len() != 0 {
		t.Fatalf("expected empty corpus, got %d", corpus.Len())
	}

	docs := []domain.Document{
		{Text: "доллар растет", Link: "https://t.me/fin/1", Date: "2024-05-01T10:00:00Z"},
		{Text: "нефть падает", Link: "https://t.me/fin/2", Date: "2024-05-02T10:00:00Z"},
	}
	if err := corpus.ReplaceAll(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Un corpus nuevo sobre el mismo archivo ve el contenido persistido.
	reloaded, err := NewCorpus(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 persisted documents, got %d", reloaded.Len())
	}

	// El reemplazo es total, no incremental.
	if err := reloaded.ReplaceAll(docs[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("expected full replacement, got %d", reloaded.Len())
	}
}

func TestCorpus_ByDay(t *testing.T) {
	corpus, err := NewCorpus(filepath.Join(t.TempDir(), "corpus.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := []domain.Document{
		{Text: "a", Link: "l1", Date: "2024-05-01T09:00:00Z"},
		{Text: "b", Link: "l2", Date: "2024-05-02T09:00:00Z"},
		{Text: "c", Link: "l3", Date: "2024-05-01T23:59:59Z"},
	}
	if err := corpus.ReplaceAll(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	day := corpus.ByDay("2024-05-01")
	if len(day) != 2 || day[0].Text != "a" || day[1].Text != "c" {
		t.Fatalf("unexpected day filter result: %+v", day)
	}
	if empty := corpus.ByDay("2024-06-01"); len(empty) != 0 {
		t.Fatalf("expected no documents, got %+v", empty)
	}
}

func TestKeywordRetriever(t *testing.T) {
	corpus, err := NewCorpus(filepath.Join(t.TempDir(), "corpus.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs := []domain.Document{
		{Text: "курс доллара вырос до 95 рублей", Link: "l1"},
		{Text: "нефть марки brent подешевела", Link: "l2"},
		{Text: "курс евро и курс доллара снижаются", Link: "l3"},
	}
	if err := corpus.ReplaceAll(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	retriever := NewKeywordRetriever(corpus, 2)

	got, err := retriever.RelevantDocuments(context.Background(), "Что с курсом доллара?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected at least one relevant document")
	}
	for _, doc := range got {
		if doc.Link == "l2" {
			t.Fatalf("unrelated document retrieved: %+v", doc)
		}
	}

	// Query sin terminos utiles: sin resultados, sin error.
	got, err = retriever.RelevantDocuments(context.Background(), "??")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", got, err)
	}
}

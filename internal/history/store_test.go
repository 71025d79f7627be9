package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"fin-assist/internal/domain"
)

func sampleHistory() []domain.Message {
	return []domain.Message{
		{Role: domain.RoleUser, Content: "Курс доллара", Timestamp: "10:00"},
		{
			Role:      domain.RoleAssistant,
			Content:   "55-60 руб",
			Timestamp: "10:01",
			Sources:   []domain.Document{{Text: "news1", Link: "http://x"}},
		},
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)
	messages := sampleHistory()

	path, err := store.Save(messages, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected session file at %s: %v", path, err)
	}

	loaded, err := store.Load("t1.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, messages) {
		t.Fatalf("load is not the inverse of save:\n got %+v\nwant %+v", loaded, messages)
	}

	// El identificador sin sufijo .json tambien funciona.
	loaded, err = store.Load("t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
}

func TestFileStore_SaveWithoutNameSynthesizesOne(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)

	path, err := store.Save(sampleHistory(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "chat_") || !strings.HasSuffix(base, ".json") {
		t.Fatalf("expected chat_<timestamp>.json, got %s", base)
	}
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)

	if _, err := store.Save(sampleHistory(), "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Save(sampleHistory()[:1], "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load("t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected overwrite to leave 1 message, got %d", len(loaded))
	}
}

func TestFileStore_LoadLegacyShape(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, nil)

	data, _ := json.Marshal(sampleHistory())
	if err := os.WriteFile(filepath.Join(dir, "old.json"), data, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load("old.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, sampleHistory()) {
		t.Fatalf("legacy shape not decoded, got %+v", loaded)
	}
}

func TestFileStore_LoadErrors(t *testing.T) {
	t.Run("sesion inexistente", func(t *testing.T) {
		store := NewFileStore(t.TempDir(), nil)
		if _, err := store.Load("nope"); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("forma invalida", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileStore(dir, nil)

		cases := map[string]string{
			"number.json":  `42`,
			"string.json":  `"hola"`,
			"nokey.json":   `{"metadata": {"session_name": "x"}}`,
			"garbage.json": `{not json`,
		}
		for name, content := range cases {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := store.Load(name); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("%s: expected ErrInvalidFormat, got %v", name, err)
			}
		}
	})
}

func TestFileStore_ListOrdersByCreatedAtDesc(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, nil)

	if _, err := store.Save(sampleHistory(), "older"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Asegura un created_at estrictamente mayor para la segunda sesion.
	time.Sleep(1100 * time.Millisecond)
	if _, err := store.Save(sampleHistory(), "newer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}
	if summaries[0].SessionName != "newer" || summaries[1].SessionName != "older" {
		t.Fatalf("expected newest first, got %s then %s", summaries[0].SessionName, summaries[1].SessionName)
	}
	if summaries[0].MessageCount != 2 {
		t.Fatalf("expected message_count 2, got %v", summaries[0].MessageCount)
	}
}

func TestFileStore_ListSynthesizesLegacyMetadata(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, nil)

	data, _ := json.Marshal(sampleHistory())
	if err := os.WriteFile(filepath.Join(dir, "legacy.json"), data, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// JSON valido pero que no es ni lista ni sobre: se lista con "Unknown".
	if err := os.WriteFile(filepath.Join(dir, "odd.json"), []byte(`{"foo": 1}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}

	byName := map[string]SessionSummary{}
	for _, s := range summaries {
		byName[s.SessionName] = s
	}

	legacy := byName["legacy"]
	if legacy.MessageCount != 2 {
		t.Fatalf("expected synthesized count 2, got %v", legacy.MessageCount)
	}
	if legacy.CreatedAt == "" {
		t.Fatalf("expected created_at synthesized from mtime")
	}
	if odd := byName["odd"]; odd.MessageCount != "Unknown" {
		t.Fatalf("expected Unknown count, got %v", odd.MessageCount)
	}
}

func TestFileStore_ListSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, nil)

	if _, err := store.Save(sampleHistory(), "good"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{{{"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].SessionName != "good" {
		t.Fatalf("expected only the readable session, got %+v", summaries)
	}
}

func TestFileStore_Delete(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)

	if store.Delete("missing") {
		t.Fatalf("expected false for a missing session")
	}

	if _, err := store.Save(sampleHistory(), "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.Delete("t1") {
		t.Fatalf("expected true when deleting an existing session")
	}
	if _, err := store.Load("t1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

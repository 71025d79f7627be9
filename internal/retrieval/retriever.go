package retrieval

import (
	"context"
	"sort"
	"strings"

	"fin-assist/internal/domain"
)

// Retriever es el puerto hacia el motor de recuperacion: dado un query
// devuelve los documentos relevantes. El nucleo no impone contrato
// sobre ranking ni cantidad.
type Retriever interface {
	RelevantDocuments(ctx context.Context, query string) ([]domain.Document, error)
}

// KeywordRetriever es la implementacion local por defecto: puntua los
// documentos del corpus por solapamiento de terminos con el query y
// devuelve los topK. Sirve para correr los binarios sin el motor de
// indexacion externo.
type KeywordRetriever struct {
	corpus *Corpus
	topK   int
}

func NewKeywordRetriever(corpus *Corpus, topK int) *KeywordRetriever {
	if topK <= 0 {
		topK = 5
	}
	return &KeywordRetriever{corpus: corpus, topK: topK}
}

func (r *KeywordRetriever) RelevantDocuments(ctx context.Context, query string) ([]domain.Document, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		doc   domain.Document
		score int
	}

	documents := r.corpus.Documents()
	candidates := make([]scored, 0, len(documents))
	for _, doc := range documents {
		docTerms := tokenize(doc.Text)
		score := 0
		for term := range terms {
			if docTerms[term] {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}

	out := make([]domain.Document, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.doc)
	}
	return out, nil
}

func tokenize(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		term := strings.Trim(field, ".,!?:;()[]«»\"'")
		if len([]rune(term)) >= 3 {
			terms[term] = true
		}
	}
	return terms
}

var _ Retriever = (*KeywordRetriever)(nil)

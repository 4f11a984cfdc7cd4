package answer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/promoforge/promoforge/internal/promo"
)

type fakeLLM struct {
	response string
	err      error
	user     string
}

func (f *fakeLLM) Complete(_ context.Context, _, user string) (string, error) {
	f.user = user
	return f.response, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1}
	}
	return out, nil
}

type fakeRetriever struct {
	records []promo.Record
	err     error

	gotExact bool
}

func (f *fakeRetriever) Query(_ context.Context, _ []float32, exact bool) ([]promo.Record, error) {
	f.gotExact = exact
	return f.records, f.err
}

func newService(t *testing.T, llm *fakeLLM, emb *fakeEmbedder, ret *fakeRetriever) *Service {
	t.Helper()
	svc, err := NewService(&Config{
		LLM:      llm,
		Embedder: emb,
		Search:   ret,
		Logger:   slog.Default(),
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestAsk(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{response: "Minimum bet is $75."}
	ret := &fakeRetriever{records: []promo.Record{
		{PromoText: "Players in California who bet $75 get a 30% boost."},
		{Fields: promo.Fields{"headline": "NY Promo", "description": "Free bet in New York"}},
	}}
	svc := newService(t, llm, &fakeEmbedder{}, ret)

	rsp, err := svc.Ask(context.Background(), "What is the minimum bet?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if rsp.Answer != "Minimum bet is $75." {
		t.Errorf("answer: got %q", rsp.Answer)
	}
	if len(rsp.Sources) != 2 {
		t.Errorf("sources: got %d, want 2", len(rsp.Sources))
	}

	if !strings.Contains(llm.user, "Players in California") {
		t.Error("prompt missing raw promo text")
	}
	if !strings.Contains(llm.user, "Free bet in New York") {
		t.Error("prompt missing composite field text")
	}
	if !strings.Contains(llm.user, "What is the minimum bet?") {
		t.Error("prompt missing the question")
	}
}

func TestAsk_ExactSearch(t *testing.T) {
	t.Parallel()

	ret := &fakeRetriever{}
	svc, err := NewService(&Config{
		LLM:      &fakeLLM{response: "ok"},
		Embedder: &fakeEmbedder{},
		Search:   ret,
		Exact:    true,
		Logger:   slog.Default(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Ask(context.Background(), "question"); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if !ret.gotExact {
		t.Error("exact flag not passed to retrieval")
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeLLM{}, &fakeEmbedder{}, &fakeRetriever{})
	if _, err := svc.Ask(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestAsk_RetrievalFailureIsFatal(t *testing.T) {
	t.Parallel()

	svc := newService(t, &fakeLLM{}, &fakeEmbedder{}, &fakeRetriever{err: errors.New("index missing")})
	if _, err := svc.Ask(context.Background(), "question"); err == nil {
		t.Fatal("expected error when retrieval fails")
	}
}

func TestAsk_TrimsOversizedContext(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("promotional wording ", 2000) // ~10k tokens estimated
	ret := &fakeRetriever{records: []promo.Record{
		{PromoText: "short relevant promo"},
		{PromoText: big},
	}}
	llm := &fakeLLM{response: "ok"}

	svc, err := NewService(&Config{
		LLM:              llm,
		Embedder:         &fakeEmbedder{},
		Search:           ret,
		MaxContextTokens: 500,
		Logger:           slog.Default(),
	})
	if err != nil {
		t.Fatal(err)
	}

	rsp, err := svc.Ask(context.Background(), "question")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if len(rsp.Sources) != 1 {
		t.Errorf("sources after trim: got %d, want 1", len(rsp.Sources))
	}
	if strings.Contains(llm.user, big) {
		t.Error("oversized document should have been dropped from the prompt")
	}
}

func TestEstimate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{strings.Repeat("x", 40), 10},
	}
	for _, tt := range tests {
		if got := Estimate(tt.in); got != tt.want {
			t.Errorf("Estimate(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTrimContext(t *testing.T) {
	t.Parallel()

	docs := []string{
		strings.Repeat("a", 400), // 100 tokens
		strings.Repeat("b", 400),
		strings.Repeat("c", 400),
	}

	kept := TrimContext(docs, 50, 260)
	if len(kept) != 2 {
		t.Fatalf("kept %d docs, want 2", len(kept))
	}
	if kept[0][0] != 'a' || kept[1][0] != 'b' {
		t.Error("trim must drop from the end")
	}

	if got := TrimContext(docs, 1000, 500); len(got) != 0 {
		t.Errorf("expected all docs dropped, got %d", len(got))
	}
}

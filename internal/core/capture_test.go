package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldCapture(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		want     bool
	}{
		{
			name:     "substantial exchange",
			question: "What does Alice do for a living professionally?",
			answer:   "Alice works as a software engineer building backend systems.",
			want:     true,
		},
		{
			name:     "question too short",
			question: "Go?",
			answer:   "A programming language designed at Google.",
			want:     false,
		},
		{
			name:     "answer too short",
			question: "What does Alice do for a living?",
			answer:   "Engineering.",
			want:     false,
		},
		{
			name:     "greeting in question",
			question: "hello, who are you exactly?",
			answer:   "I represent Alice on her personal website.",
			want:     false,
		},
		{
			name:     "closing in question",
			question: "thank you for all the details",
			answer:   "You're welcome, feel free to reach out any time.",
			want:     false,
		},
		{
			name:     "greeting matched as substring",
			question: "What does this position pay?",
			answer:   "Compensation depends on the scope of the engagement.",
			want:     false, // "this" contains "hi"
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldCapture(tt.question, tt.answer))
		})
	}
}

func TestRecordExchangePersistsAndRetrieves(t *testing.T) {
	db := newCoreTestStore(t)
	emb := &fakeEmbedder{}
	profileText := "Rainy weather ruined the picnic yesterday evening."
	rag := newTestRAG(t, db, emb, profileText, 60, 10)
	cs := newTestChat(t, db, rag, nil)

	ctx := context.Background()
	cs.RecordExchange(ctx,
		"What does Alice do for a living professionally?",
		"Alice works as a software engineer building backend systems.")

	pairs, err := db.AllQAPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "What does Alice do for a living professionally?", pairs[0].Question)

	got := rag.GetContext(ctx, "What is Alice's job?", 4)
	require.NotEmpty(t, got)
	assert.Contains(t, got, "software engineer")

	// The chunk derived from the stored answer outranks the unrelated one.
	var answerScore, unrelatedScore float32
	var sawAnswer, sawUnrelated bool
	for _, sc := range rag.SimilaritySearch(ctx, "What is Alice's job?", 10) {
		if strings.Contains(sc.Chunk, "software engineer") {
			answerScore = sc.Score
			sawAnswer = true
		}
		if strings.Contains(sc.Chunk, "Rainy weather") {
			unrelatedScore = sc.Score
			sawUnrelated = true
		}
	}
	require.True(t, sawAnswer)
	require.True(t, sawUnrelated)
	assert.Greater(t, answerScore, unrelatedScore)
}

func TestRecordExchangeRejectsGreeting(t *testing.T) {
	db := newCoreTestStore(t)
	rag := newTestRAG(t, db, &fakeEmbedder{}, "Alice is an engineer.", 800, 100)
	cs := newTestChat(t, db, rag, nil)

	cs.RecordExchange(context.Background(), "hi", "hello there!")

	pairs, err := db.AllQAPairs()
	require.NoError(t, err)
	assert.Empty(t, pairs, "greetings must not reach the store")
}

func TestRecordExchangeSkipsLikelyDuplicates(t *testing.T) {
	db := newCoreTestStore(t)
	rag := newTestRAG(t, db, &fakeEmbedder{}, "Alice is an engineer.", 800, 100)
	cs := newTestChat(t, db, rag, nil)

	original, err := db.UpsertQA(
		"What does Alice do for a living professionally these days?",
		"Alice works as a software engineer building backend systems.")
	require.NoError(t, err)

	// The probe (first 50 bytes of the new question) is a substring of the
	// stored question, so capture treats it as a duplicate and backs off.
	cs.RecordExchange(context.Background(),
		"What does Alice do for a living professionally these days, specifically?",
		"A long and different answer that would otherwise qualify for capture.")

	pairs, err := db.AllQAPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, original, pairs[0].UpdatedAt, "duplicate must not refresh the stored pair")
}

func TestRecordExchangeSwallowsStorageErrors(t *testing.T) {
	db := newCoreTestStore(t)
	rag := newTestRAG(t, db, &fakeEmbedder{}, "Alice is an engineer.", 800, 100)
	cs := newTestChat(t, db, rag, nil)

	require.NoError(t, db.Close())

	// Must not panic or propagate: capture is best-effort.
	cs.RecordExchange(context.Background(),
		"What does Alice do for a living professionally?",
		"Alice works as a software engineer building backend systems.")
}

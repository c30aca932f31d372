package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/prsharma/careerchat/internal/store"
	"github.com/prsharma/careerchat/internal/utils"
)

// corpusSnapshot is the searchable state at a point in time: the chunk list,
// one embedding per chunk, and the freshness marker the corpus was built
// from. Snapshots are replaced wholesale, never mutated, so a search that
// grabbed one keeps a consistent view while a rebuild runs.
type corpusSnapshot struct {
	chunks      []string
	embeddings  [][]float32
	lastUpdated float64
}

type ScoredChunk struct {
	Chunk string
	Score float32
}

// RAGService owns the derived corpus: static profile text plus every stored
// Q&A pair, chunked and embedded. Any change to the qa table invalidates
// the whole snapshot; the next query rebuilds it in full.
type RAGService struct {
	dbStore     *store.SQLiteStore
	embedder    Embedder
	profileText string
	maxChars    int
	overlap     int
	logger      *zap.Logger

	rebuildMu sync.Mutex // serializes rebuilds; late arrivals reuse the result
	snapshot  atomic.Pointer[corpusSnapshot]
}

func NewRAGService(ctx context.Context, db *store.SQLiteStore, embedder Embedder, profileText string, maxChars, overlap int, logger *zap.Logger) (*RAGService, error) {
	s := &RAGService{
		dbStore:     db,
		embedder:    embedder,
		profileText: profileText,
		maxChars:    maxChars,
		overlap:     overlap,
		logger:      logger,
	}
	if err := s.rebuild(ctx); err != nil {
		return nil, fmt.Errorf("failed to build initial corpus: %w", err)
	}
	snap := s.snapshot.Load()
	logger.Info("rag service initialized", zap.Int("chunks", len(snap.chunks)))
	return s, nil
}

// refresh rebuilds the snapshot if the store has changed since it was
// built. Two concurrent stale checks may both reach the mutex; the second
// re-checks after acquiring it and finds the fresh snapshot, so at most one
// rebuild hits the embedding provider.
func (s *RAGService) refresh(ctx context.Context) error {
	maxUpdated, err := s.dbStore.MaxUpdatedAt()
	if err != nil {
		return err
	}
	snap := s.snapshot.Load()
	if snap != nil && maxUpdated <= snap.lastUpdated {
		return nil
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	snap = s.snapshot.Load()
	if snap != nil && maxUpdated <= snap.lastUpdated {
		return nil
	}
	return s.rebuild(ctx)
}

// rebuild reads all pairs, rebuilds the combined corpus text, re-chunks and
// re-embeds it, then installs the new snapshot. On embedding failure the
// previous snapshot stays in place untouched.
func (s *RAGService) rebuild(ctx context.Context) error {
	pairs, err := s.dbStore.AllQAPairs()
	if err != nil {
		return fmt.Errorf("failed to load qa pairs: %w", err)
	}

	lastUpdated := 0.0
	items := []string{s.profileText}
	for _, p := range pairs {
		items = append(items, fmt.Sprintf("Q: %s\nA: %s", p.Question, p.Answer))
		if p.UpdatedAt > lastUpdated {
			lastUpdated = p.UpdatedAt
		}
	}

	chunks := ChunkText(strings.Join(items, "\n\n\n"), s.maxChars, s.overlap)
	embeddings, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}

	s.snapshot.Store(&corpusSnapshot{
		chunks:      chunks,
		embeddings:  embeddings,
		lastUpdated: lastUpdated,
	})
	s.logger.Debug("corpus rebuilt",
		zap.Int("qa_pairs", len(pairs)),
		zap.Int("chunks", len(chunks)))
	return nil
}

// SimilaritySearch ranks every chunk in the current snapshot against the
// query, highest cosine score first, ties kept in corpus order. Retrieval
// failures degrade to an empty result so a chat turn can proceed without
// context.
func (s *RAGService) SimilaritySearch(ctx context.Context, query string, k int) []ScoredChunk {
	if err := s.refresh(ctx); err != nil {
		s.logger.Warn("corpus refresh failed, searching previous snapshot", zap.Error(err))
	}

	snap := s.snapshot.Load()
	if snap == nil || len(snap.chunks) == 0 || k <= 0 {
		return nil
	}

	queryEmbeddings, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		s.logger.Warn("failed to embed query", zap.Error(err))
		return nil
	}
	if len(queryEmbeddings) == 0 {
		return nil
	}
	queryEmbedding := queryEmbeddings[0]

	scored := make([]ScoredChunk, len(snap.chunks))
	for i, chunk := range snap.chunks {
		scored[i] = ScoredChunk{
			Chunk: chunk,
			Score: utils.CosineSimilarity(queryEmbedding, snap.embeddings[i]),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// GetContext returns the top-k snippets for query as one block ready to
// splice into a prompt, or an empty string when nothing was retrieved.
func (s *RAGService) GetContext(ctx context.Context, query string, k int) string {
	top := s.SimilaritySearch(ctx, query, k)
	if len(top) == 0 {
		return ""
	}

	parts := make([]string, len(top))
	for i, sc := range top {
		parts[i] = fmt.Sprintf("[score=%.3f]\n%s", sc.Score, sc.Chunk)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

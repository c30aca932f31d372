package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertQARejectsEmptyQuestion(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertQA("   ", "an answer")
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	pairs, err := s.AllQAPairs()
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestUpsertQATrimsFields(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertQA("  What is Go?  ", "  A programming language.  ")
	require.NoError(t, err)

	pairs, err := s.AllQAPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "What is Go?", pairs[0].Question)
	assert.Equal(t, "A programming language.", pairs[0].Answer)
}

func TestUpsertQAIdempotentOnQuestion(t *testing.T) {
	s := newTestStore(t)

	first, err := s.UpsertQA("What is Go?", "A language.")
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	second, err := s.UpsertQA("What is Go?", "A compiled language from Google.")
	require.NoError(t, err)
	assert.Greater(t, second, first, "updated_at should advance on overwrite")

	pairs, err := s.AllQAPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 1, "upsert on the same question must not add a row")
	assert.Equal(t, "A compiled language from Google.", pairs[0].Answer)
	assert.Equal(t, second, pairs[0].UpdatedAt)
}

func TestSearchQA(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertQA("What is your strongest skill?", "Distributed systems design.")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.UpsertQA("Where are you based?", "Bangalore, with remote SKILL work.")
	require.NoError(t, err)

	// Case-insensitive match over question OR answer, newest first.
	results, err := s.SearchQA("skill", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Where are you based?", results[0].Question)
	assert.Equal(t, "What is your strongest skill?", results[1].Question)

	// top_k bounds the result set.
	results, err = s.SearchQA("skill", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Where are you based?", results[0].Question)

	results, err = s.SearchQA("no such phrase anywhere", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAllQAPairsOrderedNewestFirst(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertQA("first question", "first answer")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.UpsertQA("second question", "second answer")
	require.NoError(t, err)

	pairs, err := s.AllQAPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "second question", pairs[0].Question)
	assert.Equal(t, "first question", pairs[1].Question)
}

func TestMaxUpdatedAt(t *testing.T) {
	s := newTestStore(t)

	max, err := s.MaxUpdatedAt()
	require.NoError(t, err)
	assert.Zero(t, max, "empty store reports 0")

	ts, err := s.UpsertQA("a question here", "an answer here")
	require.NoError(t, err)

	max, err = s.MaxUpdatedAt()
	require.NoError(t, err)
	assert.Equal(t, ts, max)
}

func TestConversationsAndMessages(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.CreateConversation()
	require.NoError(t, err)
	require.NotEmpty(t, conv.ID)

	got, err := s.GetConversation(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conv.ID, got.ID)

	missing, err := s.GetConversation("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for i, content := range []string{"one", "two", "three"} {
		sender := "user"
		if i%2 == 1 {
			sender = "model"
		}
		msg := Message{ConversationID: conv.ID, Sender: sender, Content: content}
		require.NoError(t, s.CreateMessage(&msg))
		require.NotEmpty(t, msg.ID)
		time.Sleep(2 * time.Millisecond)
	}

	messages, err := s.GetMessages(conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "three", messages[2].Content)

	last, err := s.GetLastNMessages(conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "two", last[0].Content, "last-N keeps chronological order")
	assert.Equal(t, "three", last[1].Content)
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrEmptyQuestion is returned by UpsertQA when the question is empty after
// trimming. It is the only validation failure the store reports; everything
// else is a storage error.
var ErrEmptyQuestion = errors.New("question must not be empty")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS qa (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        question TEXT UNIQUE NOT NULL,
        answer TEXT NOT NULL,
        updated_at REAL NOT NULL
    );

    CREATE TABLE IF NOT EXISTS conversations (
        id TEXT PRIMARY KEY, -- UUID
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY, -- UUID
        conversation_id TEXT NOT NULL,
        sender TEXT NOT NULL CHECK (sender IN ('user', 'model')),
        content TEXT NOT NULL,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (conversation_id) REFERENCES conversations (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// nowUnix returns the current time as fractional unix seconds, the
// resolution updated_at is stored at.
func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// UpsertQA inserts a question/answer pair or, when the question already
// exists, overwrites its answer and refreshes updated_at. The insert-or-
// update is a single statement, so concurrent upserts to the same question
// serialize with last-writer-wins.
func (s *SQLiteStore) UpsertQA(question, answer string) (float64, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return 0, ErrEmptyQuestion
	}

	now := nowUnix()
	_, err := s.db.Exec(
		`INSERT INTO qa (question, answer, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(question) DO UPDATE SET answer=excluded.answer, updated_at=excluded.updated_at`,
		question, answer, now)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert qa pair: %w", err)
	}
	return now, nil
}

// SearchQA is a coarse keyword match over question or answer text, newest
// first. SQLite LIKE is case-insensitive for ASCII, which is all the dedup
// probe needs.
func (s *SQLiteStore) SearchQA(query string, topK int) ([]QAPair, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	rows, err := s.db.Query(
		`SELECT question, answer, updated_at FROM qa
         WHERE question LIKE ? OR answer LIKE ?
         ORDER BY updated_at DESC LIMIT ?`,
		like, like, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search qa pairs: %w", err)
	}
	defer rows.Close()
	return scanQAPairs(rows)
}

// AllQAPairs returns every stored pair, newest first.
func (s *SQLiteStore) AllQAPairs() ([]QAPair, error) {
	rows, err := s.db.Query("SELECT question, answer, updated_at FROM qa ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query qa pairs: %w", err)
	}
	defer rows.Close()
	return scanQAPairs(rows)
}

// MaxUpdatedAt is the freshness marker: the latest updated_at across all
// pairs, 0 when the table is empty.
func (s *SQLiteStore) MaxUpdatedAt() (float64, error) {
	var max float64
	err := s.db.QueryRow("SELECT COALESCE(MAX(updated_at), 0) FROM qa").Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query max updated_at: %w", err)
	}
	return max, nil
}

func scanQAPairs(rows *sql.Rows) ([]QAPair, error) {
	var pairs []QAPair
	for rows.Next() {
		var p QAPair
		if err := rows.Scan(&p.Question, &p.Answer, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan qa row: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate qa rows: %w", err)
	}
	return pairs, nil
}

// Conversation methods

func (s *SQLiteStore) CreateConversation() (*Conversation, error) {
	conv := &Conversation{ID: uuid.NewString(), CreatedAt: time.Now()}
	_, err := s.db.Exec("INSERT INTO conversations (id, created_at) VALUES (?, ?)", conv.ID, conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversation: %w", err)
	}
	return conv, nil
}

func (s *SQLiteStore) GetConversation(conversationID string) (*Conversation, error) {
	var conv Conversation
	err := s.db.QueryRow("SELECT id, created_at FROM conversations WHERE id = ?", conversationID).
		Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (s *SQLiteStore) CreateMessage(msg *Message) error {
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now()

	_, err := s.db.Exec(
		"INSERT INTO messages (id, conversation_id, sender, content, timestamp) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.ConversationID, msg.Sender, msg.Content, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMessages(conversationID string) ([]Message, error) {
	rows, err := s.db.Query(
		"SELECT id, conversation_id, sender, content, timestamp FROM messages WHERE conversation_id = ? ORDER BY timestamp ASC",
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetLastNMessages returns the newest n messages, oldest first, so the
// result can be appended to a prompt as-is.
func (s *SQLiteStore) GetLastNMessages(conversationID string, n int) ([]Message, error) {
	rows, err := s.db.Query(`
        SELECT id, conversation_id, sender, content, timestamp
        FROM messages
        WHERE conversation_id = ?
        ORDER BY timestamp DESC
        LIMIT ?`,
		conversationID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}

// Package storage persists conversation history in a local SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"iask/model"
)

// ConversationStore persists turns and their attachments. It implements
// engine.Persister.
type ConversationStore struct {
	db *sql.DB
}

// NewConversationStore opens (and if necessary creates) the conversation
// database under dataDir.
func NewConversationStore(dataDir string) (*ConversationStore, error) {
	dbPath := filepath.Join(dataDir, "conversations.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &ConversationStore{db: db}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (cs *ConversationStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		tool_name TEXT NOT NULL DEFAULT '',
		tool_args TEXT NOT NULL DEFAULT '',
		tool_log TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_chat_seq ON turns(chat_id, seq);

	CREATE TABLE IF NOT EXISTS attachments (
		turn_id TEXT NOT NULL,
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (turn_id, path)
	);
	`

	_, err := cs.db.Exec(schema)
	return err
}

// Save writes a turn, replacing any previous row with the same ID. A
// re-saved turn keeps its original position in the conversation; a new turn
// is appended after the chat's last stored turn.
func (cs *ConversationStore) Save(t model.Turn) error {
	tx, err := cs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRow(`SELECT seq FROM turns WHERE id = ?`, t.ID).Scan(&seq)
	switch err {
	case sql.ErrNoRows:
		err = tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE chat_id = ?`, t.ChatID).Scan(&seq)
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}
	case nil:
	default:
		return fmt.Errorf("failed to look up turn: %w", err)
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO turns (id, chat_id, seq, role, content, tool_name, tool_args, tool_log, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.ChatID,
		seq,
		string(t.Role),
		t.Content,
		t.ToolName,
		t.ToolArgsRaw,
		t.ToolLog,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM attachments WHERE turn_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear attachments: %w", err)
	}
	for _, a := range t.Attachments {
		_, err := tx.Exec(`INSERT OR REPLACE INTO attachments (turn_id, path, kind) VALUES (?, ?, ?)`,
			t.ID, a.Path, string(a.Kind))
		if err != nil {
			return fmt.Errorf("failed to save attachment: %w", err)
		}
	}

	return tx.Commit()
}

// LoadHistory returns a chat's turns in conversation order.
func (cs *ConversationStore) LoadHistory(chatID string) ([]model.Turn, error) {
	rows, err := cs.db.Query(`
		SELECT id, chat_id, role, content, tool_name, tool_args, tool_log, created_at
		FROM turns
		WHERE chat_id = ?
		ORDER BY seq`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var role string
		var createdAt time.Time
		if err := rows.Scan(&t.ID, &t.ChatID, &role, &t.Content, &t.ToolName, &t.ToolArgsRaw, &t.ToolLog, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = model.Role(role)
		t.CreatedAt = createdAt
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range turns {
		attachments, err := cs.loadAttachments(turns[i].ID)
		if err != nil {
			return nil, err
		}
		turns[i].Attachments = attachments
	}

	return turns, nil
}

func (cs *ConversationStore) loadAttachments(turnID string) ([]model.Attachment, error) {
	rows, err := cs.db.Query(`SELECT path, kind FROM attachments WHERE turn_id = ? ORDER BY path`, turnID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		var a model.Attachment
		var kind string
		if err := rows.Scan(&a.Path, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		a.Kind = model.AttachmentKind(kind)
		attachments = append(attachments, a)
	}

	return attachments, rows.Err()
}

// ListChats returns the distinct chat IDs present in the store, most
// recently updated first.
func (cs *ConversationStore) ListChats() ([]string, error) {
	rows, err := cs.db.Query(`
		SELECT chat_id
		FROM turns
		GROUP BY chat_id
		ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		chats = append(chats, id)
	}

	return chats, rows.Err()
}

// DeleteChat removes a chat's turns and attachments.
func (cs *ConversationStore) DeleteChat(chatID string) error {
	tx, err := cs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM attachments WHERE turn_id IN (SELECT id FROM turns WHERE chat_id = ?)`, chatID); err != nil {
		return fmt.Errorf("failed to delete attachments: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM turns WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete turns: %w", err)
	}

	return tx.Commit()
}

func (cs *ConversationStore) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

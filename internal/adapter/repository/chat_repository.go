package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/atendente-pedidos/internal/infrastructure/database"
	"github.com/hugohenrick/atendente-pedidos/pkg/chat"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository grava o histórico das conversas e as transições no PostgreSQL
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository cria um novo repositório de histórico
func NewChatRepository(db *pgxpool.Pool) chat.Repository {
	return &ChatRepository{
		db: db,
	}
}

func (r *ChatRepository) SaveMessage(ctx context.Context, message *chat.Message) error {
	if message.CustomerKey == "" {
		return fmt.Errorf("mensagem sem customer_key")
	}

	// Se o ID da mensagem estiver vazio, gerar um novo
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_history (id, customer_key, role, kind, content, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		message.ID,
		message.CustomerKey,
		message.Role,
		message.Kind,
		message.Content,
		message.State,
		message.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("erro ao salvar mensagem: %w", err)
	}

	return nil
}

func (r *ChatRepository) GetHistory(ctx context.Context, customerKey string, limit, offset int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, role, kind, content, state, created_at
		FROM chat_history
		WHERE customer_key = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, customerKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var msg chat.Message
		err := rows.Scan(
			&msg.ID,
			&msg.Role,
			&msg.Kind,
			&msg.Content,
			&msg.State,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler mensagem: %w", err)
		}
		msg.CustomerKey = customerKey
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return messages, nil
}

// DeleteHistory apaga mensagens e transições do cliente na mesma transação
func (r *ChatRepository) DeleteHistory(ctx context.Context, customerKey string) error {
	return database.Transaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chat_history WHERE customer_key = $1`, customerKey); err != nil {
			return fmt.Errorf("erro ao deletar histórico: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM conversation_transitions WHERE customer_key = $1`, customerKey); err != nil {
			return fmt.Errorf("erro ao deletar transições: %w", err)
		}
		return nil
	})
}

func (r *ChatRepository) SaveTransition(ctx context.Context, t *chat.Transition) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO conversation_transitions (id, customer_key, event, from_state, to_state, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.ID,
		t.CustomerKey,
		t.Event,
		t.FromState,
		t.ToState,
		t.LastError,
		t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("erro ao salvar transição: %w", err)
	}
	return nil
}

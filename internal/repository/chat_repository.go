package repository

import (
	"context"

	"finsight/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ChatRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChatRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ChatRepository) Save(ctx context.Context, msg models.ChatMessage) error {
	query := squirrel.Insert("chat_messages").
		Columns("id", "user_id", "question", "answer", "grounded", "source", "created_at").
		Values(msg.ID, msg.UserID, msg.Question, msg.Answer, msg.Grounded, msg.Source, msg.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ChatRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := squirrel.Select("id", "user_id", "question", "answer", "grounded", "source", "created_at").
		From("chat_messages").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(
			&msg.ID, &msg.UserID, &msg.Question, &msg.Answer, &msg.Grounded, &msg.Source, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

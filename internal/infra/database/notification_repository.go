package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"github.com/xavierca1/leaddesk/internal/entity"
)

const notificationColumns = `id, type, direction, recipients, payload, lead_id, status, error, created_at`

// NotificationRepository é o ledger append-only. Linhas nunca são alteradas.
type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Append(ctx context.Context, n *entity.Notification) error {
	return insertNotification(ctx, r.DB, n)
}

// AppendForLead grava a linha e atualiza o lead na mesma transação. O merge
// do status é monotônico dentro do próprio UPDATE: se o canal já consta como
// enviado, uma falha posterior não sobrescreve.
func (r *NotificationRepository) AppendForLead(ctx context.Context, n *entity.Notification, mergeStatus bool, event entity.LeadEvent) (entity.ChannelStatus, error) {
	var status entity.ChannelStatus

	rawEvent, err := json.Marshal(event)
	if err != nil {
		return status, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return status, err
	}
	defer tx.Rollback()

	key := n.Type.StatusKey()
	var rawStatus []byte

	if mergeStatus {
		sent := n.Status == entity.NotificationSuccess
		next := entity.ChannelStatus{Sent: sent, At: &n.CreatedAt}
		if !sent {
			next.Error = n.Error
		}
		rawNext, err := json.Marshal(next)
		if err != nil {
			return status, err
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE leads SET
				notifications = jsonb_set(
					notifications,
					ARRAY[$2::text],
					CASE
						WHEN NOT $3::boolean AND COALESCE((notifications -> $2::text ->> 'sent')::boolean, false)
						THEN notifications -> $2::text
						ELSE $4::jsonb
					END,
					true
				),
				events = events || jsonb_build_array($5::jsonb),
				updated_at = NOW()
			WHERE id = $1
			RETURNING notifications -> $2::text
		`, n.LeadID, key, sent, string(rawNext), string(rawEvent)).Scan(&rawStatus)
		if err != nil {
			return status, leadUpdateError(err)
		}
	} else {
		err = tx.QueryRowContext(ctx, `
			UPDATE leads SET
				events = events || jsonb_build_array($2::jsonb),
				updated_at = NOW()
			WHERE id = $1
			RETURNING notifications -> $3::text
		`, n.LeadID, string(rawEvent), key).Scan(&rawStatus)
		if err != nil {
			return status, leadUpdateError(err)
		}
	}

	if err := insertNotification(ctx, tx, n); err != nil {
		return status, err
	}

	if err := tx.Commit(); err != nil {
		return status, err
	}

	if err := unmarshalIfPresent(rawStatus, &status); err != nil {
		return status, err
	}
	return status, nil
}

func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

func (r *NotificationRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.Notification, error) {
	if !validID(leadID) {
		return []*entity.Notification{}, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE lead_id = $1 ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertNotification(ctx context.Context, db execer, n *entity.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7, $8, $9)
	`,
		n.ID,
		n.Type,
		n.Direction,
		pq.Array(n.Recipients),
		string(payload),
		n.LeadID,
		n.Status,
		n.Error,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao gravar notificação: %w", err)
	}
	return nil
}

func scanNotifications(rows *sql.Rows) ([]*entity.Notification, error) {
	defer rows.Close()

	out := []*entity.Notification{}
	for rows.Next() {
		var (
			n          entity.Notification
			recipients pq.StringArray
			payload    []byte
			leadID     sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.Type, &n.Direction, &recipients, &payload, &leadID, &n.Status, &n.Error, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Recipients = []string(recipients)
		n.LeadID = leadID.String
		if err := unmarshalIfPresent(payload, &n.Payload); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func leadUpdateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	return fmt.Errorf("falha ao atualizar lead: %w", err)
}

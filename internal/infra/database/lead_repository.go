package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xavierca1/leaddesk/internal/entity"
)

const leadColumns = `id, created_at, updated_at, name, email, phone, whatsapp, company,
	business_type, budget, project_type, message, visitor, source, channel, tags,
	priority, status, owner_id, notifications, events`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	visitor, err := json.Marshal(lead.Visitor)
	if err != nil {
		return err
	}
	notifications, err := json.Marshal(lead.Notifications)
	if err != nil {
		return err
	}
	events, err := json.Marshal(lead.Events)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.CreatedAt,
		lead.UpdatedAt,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.WhatsApp,
		lead.Company,
		lead.BusinessType,
		lead.Budget,
		lead.ProjectType,
		lead.Message,
		string(visitor),
		lead.Source,
		lead.Channel,
		pq.Array(lead.Tags),
		lead.Priority,
		lead.Status,
		lead.OwnerID,
		string(notifications),
		string(events),
	)
	if err != nil {
		return fmt.Errorf("falha ao criar lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if !validID(id) {
		return nil, entity.ErrLeadNotFound
	}
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// ApplyUpdate faz patch + eventos num único UPDATE, sem read-modify-write.
// Dentro do SET as colunas ainda têm o valor anterior, o que dá o "from".
func (r *LeadRepository) ApplyUpdate(ctx context.Context, id string, u entity.LeadUpdate) (*entity.Lead, error) {
	if !validID(id) {
		return nil, entity.ErrLeadNotFound
	}

	var status *string
	if u.Status != nil {
		s := string(*u.Status)
		status = &s
	}
	at := time.Now().UTC().Format(time.RFC3339Nano)

	query := `
		UPDATE leads SET
			status = COALESCE($2::text, status),
			owner_id = COALESCE($3::text, owner_id),
			events = events
				|| CASE WHEN $2::text IS NOT NULL AND $2::text <> status THEN jsonb_build_array(jsonb_build_object(
					'type', 'status-changed', 'actor', $5::text, 'at', $6::text,
					'payload', jsonb_build_object('from', status, 'to', $2::text))) ELSE '[]'::jsonb END
				|| CASE WHEN $3::text IS NOT NULL AND $3::text <> owner_id THEN jsonb_build_array(jsonb_build_object(
					'type', 'owner-changed', 'actor', $5::text, 'at', $6::text,
					'payload', jsonb_build_object('from', owner_id, 'to', $3::text))) ELSE '[]'::jsonb END
				|| CASE WHEN $4::text IS NOT NULL THEN jsonb_build_array(jsonb_build_object(
					'type', 'note', 'actor', $5::text, 'at', $6::text,
					'payload', jsonb_build_object('text', $4::text))) ELSE '[]'::jsonb END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leadColumns

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, status, u.OwnerID, u.Note, u.Actor, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao atualizar lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) AppendEvent(ctx context.Context, id string, event entity.LeadEvent) error {
	if !validID(id) {
		return entity.ErrLeadNotFound
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET events = events || jsonb_build_array($2::jsonb), updated_at = NOW() WHERE id = $1`,
		id, string(raw),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l                              entity.Lead
		visitor, notifications, events []byte
		tags                           pq.StringArray
	)

	err := row.Scan(
		&l.ID,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.Name,
		&l.Email,
		&l.Phone,
		&l.WhatsApp,
		&l.Company,
		&l.BusinessType,
		&l.Budget,
		&l.ProjectType,
		&l.Message,
		&visitor,
		&l.Source,
		&l.Channel,
		&tags,
		&l.Priority,
		&l.Status,
		&l.OwnerID,
		&notifications,
		&events,
	)
	if err != nil {
		return nil, err
	}

	l.Tags = []string(tags)
	if l.Tags == nil {
		l.Tags = []string{}
	}
	if err := unmarshalIfPresent(visitor, &l.Visitor); err != nil {
		return nil, fmt.Errorf("visitor inválido: %w", err)
	}
	if err := unmarshalIfPresent(notifications, &l.Notifications); err != nil {
		return nil, fmt.Errorf("notifications inválido: %w", err)
	}
	if err := unmarshalIfPresent(events, &l.Events); err != nil {
		return nil, fmt.Errorf("events inválido: %w", err)
	}
	return &l, nil
}

func unmarshalIfPresent(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// IDs que não são UUID nunca existem; evita erro de cast no Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

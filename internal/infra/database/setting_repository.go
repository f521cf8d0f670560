package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/xavierca1/leaddesk/internal/entity"
)

// SettingRepository guarda o registro singleton como JSONB na tabela settings.
type SettingRepository struct {
	DB *sql.DB
}

func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

func (r *SettingRepository) Get(ctx context.Context) (*entity.Setting, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, entity.SettingKeyGlobal).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSettingNotFound
	}
	if err != nil {
		return nil, err
	}

	var s entity.Setting
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("configuração corrompida: %w", err)
	}
	return &s, nil
}

func (r *SettingRepository) Save(ctx context.Context, s *entity.Setting) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, entity.SettingKeyGlobal, string(raw))
	if err != nil {
		return fmt.Errorf("falha ao salvar configuração: %w", err)
	}
	return nil
}

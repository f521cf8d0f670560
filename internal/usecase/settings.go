package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/entity"
)

type WhatsAppConfig struct {
	Provider      entity.WhatsAppProvider
	AccessToken   string
	PhoneNumberID string
}

// CloudReady: provider cloud-api com credenciais completas.
func (c WhatsAppConfig) CloudReady() bool {
	return c.Provider == entity.ProviderCloudAPI && c.AccessToken != "" && c.PhoneNumberID != ""
}

// ResolvedSettings é o resultado do merge registro salvo + defaults do ambiente.
type ResolvedSettings struct {
	NotifyEmails          []string
	NotifyWhatsAppNumbers []string
	WhatsApp              WhatsAppConfig
	CalendarLink          string
	BookingLink           string
	RateLimitPerHour      int
	AdminBaseURL          string
}

type SettingsDefaults struct {
	NotifyEmails          []string
	NotifyWhatsAppNumbers []string
	WhatsApp              WhatsAppConfig
	RateLimitPerHour      int
	AdminBaseURL          string
}

type SettingsResolver struct {
	Repo     entity.SettingRepositoryInterface
	Defaults SettingsDefaults
}

func NewSettingsResolver(repo entity.SettingRepositoryInterface, defaults SettingsDefaults) *SettingsResolver {
	return &SettingsResolver{Repo: repo, Defaults: defaults}
}

// Resolve nunca falha: sem registro ou com erro de banco, valem os defaults.
func (r *SettingsResolver) Resolve(ctx context.Context) ResolvedSettings {
	var stored *entity.Setting
	if r.Repo != nil {
		s, err := r.Repo.Get(ctx)
		switch {
		case err == nil:
			stored = s
		case errors.Is(err, entity.ErrSettingNotFound):
		default:
			log.Warn().Err(err).Msg("⚠️ Falha ao ler configurações, usando defaults do ambiente")
		}
	}
	return r.merge(stored)
}

func (r *SettingsResolver) merge(s *entity.Setting) ResolvedSettings {
	d := r.Defaults
	out := ResolvedSettings{
		NotifyEmails:          cleanList(d.NotifyEmails),
		NotifyWhatsAppNumbers: cleanList(d.NotifyWhatsAppNumbers),
		WhatsApp:              d.WhatsApp,
		RateLimitPerHour:      d.RateLimitPerHour,
		AdminBaseURL:          strings.TrimRight(d.AdminBaseURL, "/"),
	}
	if !out.WhatsApp.Provider.Valid() {
		out.WhatsApp.Provider = entity.ProviderManual
	}
	if s == nil {
		return out
	}

	if emails := cleanList(s.NotifyEmails); len(emails) > 0 {
		out.NotifyEmails = emails
	}
	if numbers := cleanList(s.NotifyWhatsAppNumbers); len(numbers) > 0 {
		out.NotifyWhatsAppNumbers = numbers
	}
	if s.WhatsAppProvider.Valid() {
		out.WhatsApp.Provider = s.WhatsAppProvider
	}
	if s.WhatsAppAccessToken != "" {
		out.WhatsApp.AccessToken = s.WhatsAppAccessToken
	}
	if s.WhatsAppPhoneNumberID != "" {
		out.WhatsApp.PhoneNumberID = s.WhatsAppPhoneNumberID
	}
	out.CalendarLink = s.CalendarLink
	out.BookingLink = s.BookingLink
	if s.RateLimitPerHour > 0 {
		out.RateLimitPerHour = s.RateLimitPerHour
	}
	return out
}

// SettingsUseCase atende GET/PUT /settings do painel.
type SettingsUseCase struct {
	Repo     entity.SettingRepositoryInterface
	Resolver *SettingsResolver
}

func NewSettingsUseCase(repo entity.SettingRepositoryInterface, resolver *SettingsResolver) *SettingsUseCase {
	return &SettingsUseCase{Repo: repo, Resolver: resolver}
}

// Get devolve a configuração efetiva, com o token mascarado.
func (uc *SettingsUseCase) Get(ctx context.Context) (*SettingsView, error) {
	stored, err := uc.Repo.Get(ctx)
	if err != nil && !errors.Is(err, entity.ErrSettingNotFound) {
		return nil, databaseError("erro ao ler configurações", err)
	}

	view := toSettingsView(uc.Resolver.merge(stored))
	if stored != nil {
		view.UpdatedAt = stored.UpdatedAt
		view.UpdatedBy = stored.UpdatedBy
	}
	return view, nil
}

func (uc *SettingsUseCase) Update(ctx context.Context, input UpdateSettingsInput) (*SettingsView, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	current, err := uc.Repo.Get(ctx)
	if err != nil && !errors.Is(err, entity.ErrSettingNotFound) {
		return nil, databaseError("erro ao ler configurações", err)
	}

	s := &entity.Setting{
		NotifyEmails:          cleanList(input.NotifyEmails),
		NotifyWhatsAppNumbers: cleanList(input.NotifyWhatsAppNumbers),
		WhatsAppProvider:      entity.WhatsAppProvider(input.WhatsAppProvider),
		WhatsAppAccessToken:   strings.TrimSpace(input.WhatsAppAccessToken),
		WhatsAppPhoneNumberID: strings.TrimSpace(input.WhatsAppPhoneNumberID),
		CalendarLink:          strings.TrimSpace(input.CalendarLink),
		BookingLink:           strings.TrimSpace(input.BookingLink),
		RateLimitPerHour:      input.RateLimitPerHour,
		UpdatedAt:             time.Now().UTC(),
		UpdatedBy:             input.Actor,
	}

	// Token vazio ou o próprio valor mascarado: mantém o que está salvo
	if current != nil && (s.WhatsAppAccessToken == "" || s.WhatsAppAccessToken == MaskSecret(current.WhatsAppAccessToken)) {
		s.WhatsAppAccessToken = current.WhatsAppAccessToken
	}

	if err := uc.Repo.Save(ctx, s); err != nil {
		return nil, databaseError("erro ao salvar configurações", err)
	}

	log.Info().Str("by", input.Actor).Msg("⚙️ Configurações de notificação atualizadas")

	view := toSettingsView(uc.Resolver.merge(s))
	view.UpdatedAt = s.UpdatedAt
	view.UpdatedBy = s.UpdatedBy
	return view, nil
}

func toSettingsView(r ResolvedSettings) *SettingsView {
	return &SettingsView{
		NotifyEmails:          r.NotifyEmails,
		NotifyWhatsAppNumbers: r.NotifyWhatsAppNumbers,
		WhatsAppProvider:      string(r.WhatsApp.Provider),
		WhatsAppAccessToken:   MaskSecret(r.WhatsApp.AccessToken),
		WhatsAppPhoneNumberID: r.WhatsApp.PhoneNumberID,
		CalendarLink:          r.CalendarLink,
		BookingLink:           r.BookingLink,
		RateLimitPerHour:      r.RateLimitPerHour,
	}
}

// MaskSecret: "EAAG...1234" -> "****1234"
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

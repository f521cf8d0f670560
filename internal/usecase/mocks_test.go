package usecase

import (
	"context"
	"strconv"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/leaddesk/internal/entity"
)

// MockLeadMailer
type MockLeadMailer struct {
	mock.Mock
}

func (m *MockLeadMailer) SendLeadAlert(ctx context.Context, to []string, alert LeadAlert) error {
	args := m.Called(ctx, to, alert)
	return args.Error(0)
}

func (m *MockLeadMailer) SendHTML(ctx context.Context, to []string, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

// MockCloudAPI
type MockCloudAPI struct {
	mock.Mock
}

func (m *MockCloudAPI) SendText(ctx context.Context, accessToken, phoneNumberID, to, body string) error {
	args := m.Called(ctx, accessToken, phoneNumberID, to, body)
	return args.Error(0)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ApplyUpdate(ctx context.Context, id string, update entity.LeadUpdate) (*entity.Lead, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) AppendEvent(ctx context.Context, id string, event entity.LeadEvent) error {
	args := m.Called(ctx, id, event)
	return args.Error(0)
}

type apiError struct{ status int }

func (e *apiError) Error() string   { return "whatsapp api status " + strconv.Itoa(e.status) }
func (e *apiError) HTTPStatus() int { return e.status }

// memStore implementa leads + ledger em memória com a mesma semântica
// transacional do Postgres.
type memStore struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
	rows  []*entity.Notification
}

func newMemStore(leads ...*entity.Lead) *memStore {
	s := &memStore{leads: map[string]*entity.Lead{}}
	for _, l := range leads {
		s.leads[l.ID] = l
	}
	return s
}

func (s *memStore) Create(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = lead
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	cp := *l
	cp.Events = append([]entity.LeadEvent(nil), l.Events...)
	return &cp, nil
}

func (s *memStore) ApplyUpdate(_ context.Context, id string, u entity.LeadUpdate) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	if u.Status != nil && *u.Status != l.Status {
		l.Events = append(l.Events, entity.NewLeadEvent(entity.EventStatusChanged, u.Actor, map[string]any{"from": string(l.Status), "to": string(*u.Status)}))
		l.Status = *u.Status
	}
	if u.OwnerID != nil && *u.OwnerID != l.OwnerID {
		l.Events = append(l.Events, entity.NewLeadEvent(entity.EventOwnerChanged, u.Actor, map[string]any{"from": l.OwnerID, "to": *u.OwnerID}))
		l.OwnerID = *u.OwnerID
	}
	if u.Note != nil {
		l.Events = append(l.Events, entity.NewLeadEvent(entity.EventNote, u.Actor, map[string]any{"text": *u.Note}))
	}
	return l, nil
}

func (s *memStore) AppendEvent(_ context.Context, id string, e entity.LeadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	l.Events = append(l.Events, e)
	return nil
}

func (s *memStore) Append(_ context.Context, n *entity.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, n)
	return nil
}

func (s *memStore) AppendForLead(_ context.Context, n *entity.Notification, mergeStatus bool, e entity.LeadEvent) (entity.ChannelStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[n.LeadID]
	if !ok {
		return entity.ChannelStatus{}, entity.ErrLeadNotFound
	}
	s.rows = append(s.rows, n)
	l.Events = append(l.Events, e)

	current := l.Notifications.For(n.Type)
	if !mergeStatus {
		return current, nil
	}
	d := entity.Delivery{Kind: entity.DeliveryFailed, Error: n.Error}
	if n.Status == entity.NotificationSuccess {
		d.Kind = entity.DeliverySent
	}
	merged := current.Merge(d, n.CreatedAt)
	l.Notifications.Set(n.Type, merged)
	return merged, nil
}

func (s *memStore) ListRecent(_ context.Context, limit int) ([]*entity.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.Notification(nil), s.rows...), nil
}

func (s *memStore) ListByLead(_ context.Context, leadID string) ([]*entity.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Notification
	for _, r := range s.rows {
		if r.LeadID == leadID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) lead(id string) *entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[id]
}

func (s *memStore) rowsFor(ch entity.Channel) []*entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Notification
	for _, r := range s.rows {
		if r.Type == ch {
			out = append(out, r)
		}
	}
	return out
}

// fakeSettingRepo guarda o singleton em memória.
type fakeSettingRepo struct {
	mu      sync.Mutex
	setting *entity.Setting
	err     error
}

func (r *fakeSettingRepo) Get(context.Context) (*entity.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.setting == nil {
		return nil, entity.ErrSettingNotFound
	}
	cp := *r.setting
	return &cp, nil
}

func (r *fakeSettingRepo) Save(_ context.Context, s *entity.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.setting = &cp
	return nil
}

type staticSettings ResolvedSettings

func (s staticSettings) Resolve(context.Context) ResolvedSettings { return ResolvedSettings(s) }

// funcAdapter deixa o teste controlar o resultado de um canal.
type funcAdapter struct {
	ch entity.Channel
	fn func(ctx context.Context, req DispatchRequest) entity.Delivery
}

func (a funcAdapter) Channel() entity.Channel { return a.ch }
func (a funcAdapter) Send(ctx context.Context, req DispatchRequest) entity.Delivery {
	return a.fn(ctx, req)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) Broadcast(eventType string, _ any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func newTestLead(t interface{ Fatalf(string, ...any) }) *entity.Lead {
	l, err := entity.NewLead("Jane Doe", "website")
	if err != nil {
		t.Fatalf("lead inválido: %v", err)
	}
	l.Email = "jane@x.com"
	l.Phone = "+55 11 99999-0000"
	l.Message = "Need a website"
	return l
}

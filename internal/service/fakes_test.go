package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/pkg/jobs"
	"github.com/noah-isme/civic-desk-api/pkg/mailer"
)

var errStoreDown = errors.New("store down")

func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func strPtr(v string) *string { return &v }

func citizen(id string) models.Principal {
	return models.Principal{UserID: id, Role: models.RoleCitizen}
}

func staff(id string) models.Principal {
	return models.Principal{UserID: id, Role: models.RoleStaff}
}

// memUsers is an in-memory user profile table.
type memUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	order     []string
	createErr error
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{byID: make(map[string]*models.User)}
	for i := range users {
		u := users[i]
		m.byID[u.ID] = &u
		m.order = append(m.order, u.ID)
	}
	return m
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	m.byID[user.ID] = &copied
	m.order = append(m.order, user.ID)
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) FindByAuthID(ctx context.Context, authID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.AuthID == authID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]models.User, 0)
	for _, id := range m.order {
		u := m.byID[id]
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		items = append(items, *u)
	}
	return items, len(items), nil
}

func (m *memUsers) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Phone != nil {
		u.Phone = update.Phone
	}
	if update.AvatarURL != nil {
		u.AvatarURL = update.AvatarURL
	}
	if update.Region != nil {
		u.Region = update.Region
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Role = role
	return nil
}

// memRequests is an in-memory requests table with its history log.
type memRequests struct {
	mu      sync.Mutex
	items   map[string]*models.Request
	order   []string
	history []models.RequestHistory
	calls   int
	err     error
}

func newMemRequests() *memRequests {
	return &memRequests{items: make(map[string]*models.Request)}
}

func (m *memRequests) touch() error {
	m.calls++
	return m.err
}

func (m *memRequests) FindByID(ctx context.Context, id string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	if r, ok := m.items[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memRequests) FindByCode(ctx context.Context, code string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	for _, r := range m.items {
		if r.RequestCode == code {
			copied := *r
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memRequests) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, 0, err
	}
	matched := make([]models.Request, 0)
	for _, id := range m.order {
		r, ok := m.items[id]
		if !ok {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && r.Priority != filter.Priority {
			continue
		}
		if filter.CategoryID != "" && r.CategoryID != filter.CategoryID {
			continue
		}
		matched = append(matched, *r)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memRequests) CreateWithHistory(ctx context.Context, req *models.Request, entry *models.RequestHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	copied := *req
	m.items[req.ID] = &copied
	m.order = append(m.order, req.ID)
	m.appendHistory(req.ID, entry)
	return nil
}

func (m *memRequests) UpdateWithHistory(ctx context.Context, req *models.Request, entry *models.RequestHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	if _, ok := m.items[req.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *req
	m.items[req.ID] = &copied
	if entry != nil {
		m.appendHistory(req.ID, entry)
	}
	return nil
}

func (m *memRequests) appendHistory(requestID string, entry *models.RequestHistory) {
	entry.ID = uuid.NewString()
	entry.RequestID = requestID
	m.history = append(m.history, *entry)
}

func (m *memRequests) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *memRequests) Statistics(ctx context.Context) (*models.RequestStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	stats := &models.RequestStatistics{ByStatus: map[models.RequestStatus]int{}, ByPriority: map[models.Priority]int{}}
	for _, r := range m.items {
		stats.Total++
		stats.ByStatus[r.Status]++
		stats.ByPriority[r.Priority]++
	}
	return stats, nil
}

// ListByRequest returns entries newest first.
func (m *memRequests) ListByRequest(ctx context.Context, requestID string) ([]models.RequestHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	out := make([]models.RequestHistory, 0)
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].RequestID == requestID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *memRequests) put(req models.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[req.ID] = &req
	m.order = append(m.order, req.ID)
}

// memCategories is an in-memory category table.
type memCategories struct {
	mu        sync.Mutex
	items     map[string]*models.Category
	listCalls int
}

func newMemCategories(ids ...string) *memCategories {
	m := &memCategories{items: make(map[string]*models.Category)}
	for i, id := range ids {
		m.items[id] = &models.Category{ID: id, Name: "category-" + string(rune('a'+i))}
	}
	return m
}

func (m *memCategories) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	return ok, nil
}

func (m *memCategories) List(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	out := make([]models.Category, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCategories) FindByID(ctx context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.items[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memCategories) Create(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *category
	m.items[category.ID] = &copied
	return nil
}

func (m *memCategories) Update(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *category
	m.items[category.ID] = &copied
	return nil
}

// recordingQueue captures enqueued jobs instead of running them.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) TryEnqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) recorded() []jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]jobs.Job(nil), q.jobs...)
}

// memNotifications is an in-memory notifications table.
type memNotifications struct {
	mu        sync.Mutex
	items     []models.Notification
	createErr error
}

func (m *memNotifications) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	m.items = append(m.items, *n)
	return nil
}

func (m *memNotifications) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range m.items {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (m *memNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memNotifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *memNotifications) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// recordingMailer keeps sent messages and can be told to fail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// countingMetrics records dispatcher outcomes.
type countingMetrics struct {
	mu           sync.Mutex
	delivered    int
	failed       int
	emailsFailed int
}

func (c *countingMetrics) NotificationDispatched(jobType string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.delivered++
	} else {
		c.failed++
	}
}

func (c *countingMetrics) NotificationEmailFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emailsFailed++
}

// memIdentities is an in-memory identity and refresh token store.
type memIdentities struct {
	mu         sync.Mutex
	identities map[string]*models.AuthIdentity
	tokens     map[string]*models.RefreshToken
	deleted    []string
}

func newMemIdentities() *memIdentities {
	return &memIdentities{identities: make(map[string]*models.AuthIdentity), tokens: make(map[string]*models.RefreshToken)}
}

func (m *memIdentities) Create(ctx context.Context, identity *models.AuthIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *identity
	m.identities[identity.ID] = &copied
	return nil
}

func (m *memIdentities) FindByEmail(ctx context.Context, email string) (*models.AuthIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if identity.Email == email {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memIdentities) FindByID(ctx context.Context, id string) (*models.AuthIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if identity, ok := m.identities[id]; ok {
		copied := *identity
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memIdentities) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.identities, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memIdentities) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *token
	m.tokens[token.Token] = &copied
	return nil
}

func (m *memIdentities) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.tokens[token]; ok {
		copied := *stored
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memIdentities) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.tokens {
		if stored.ID == id {
			stored.Revoked = true
			stored.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *memIdentities) RevokeIdentityRefreshTokens(ctx context.Context, identityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.tokens {
		if stored.IdentityID == identityID {
			stored.Revoked = true
		}
	}
	return nil
}

// memDenylist is an in-memory access token denylist.
type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: make(map[string]time.Duration)}
}

func (d *memDenylist) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[tokenID] = ttl
	return nil
}

func (d *memDenylist) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[tokenID]
	return ok, nil
}

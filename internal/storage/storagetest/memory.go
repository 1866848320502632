// Package storagetest provides an in-memory storage.Storage for handler and service tests.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campusreport/backend/internal/config"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"
)

// Memory keeps rows in maps guarded by a mutex. Timestamps advance by one millisecond per
// insert so ordering by creation time is deterministic.
type Memory struct {
	mu         sync.Mutex
	users      map[string]models.User
	complaints map[string]models.Complaint
	contacts   map[string]models.ContactMessage
	clock      time.Time
}

var _ storage.Storage = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[string]models.User),
		complaints: make(map[string]models.Complaint),
		contacts:   make(map[string]models.ContactMessage),
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SetClock moves the timestamp used for the next insert.
func (m *Memory) SetClock(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = t
}

func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrDuplicateEmail
		}
	}
	_ = user.BeforeCreate(nil)
	now := m.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *Memory) UpdateUserRole(_ context.Context, id string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *Memory) CreateComplaint(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = c.BeforeCreate(nil)
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	now := m.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	stored.Evidence = append([]string(nil), c.Evidence...)
	stored.Owner = nil
	m.complaints[c.ID] = stored
	return nil
}

func (m *Memory) GetComplaintByID(_ context.Context, id string) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (m *Memory) ListComplaints(_ context.Context, q storage.ComplaintQuery) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Complaint, 0, len(m.complaints))
	for _, c := range m.complaints {
		if q.UserID != "" && c.UserID != q.UserID {
			continue
		}
		if q.Category != "" && c.Category != q.Category {
			continue
		}
		if q.WithOwner {
			if u, ok := m.users[c.UserID]; ok {
				c.Owner = &models.ComplaintOwner{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}
		out = append(out, c)
	}

	newest := func(a, b models.Complaint) bool { return a.CreatedAt.After(b.CreatedAt) }
	var less func(a, b models.Complaint) bool
	switch q.SortBy {
	case config.SortOldest:
		less = func(a, b models.Complaint) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case config.SortStatus:
		less = func(a, b models.Complaint) bool {
			if a.Status != b.Status {
				return a.Status < b.Status
			}
			return newest(a, b)
		}
	case config.SortTitle:
		less = func(a, b models.Complaint) bool { return a.Title < b.Title }
	default:
		less = newest
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func (m *Memory) UpdateComplaintStatus(_ context.Context, id string, status models.Status) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = m.tick()
	m.complaints[id] = c
	return &c, nil
}

func (m *Memory) CountComplaintsByCategory(_ context.Context) ([]models.GroupCount, error) {
	return m.countBy(func(c models.Complaint) string { return c.Category }, true), nil
}

func (m *Memory) CountComplaintsByStatus(_ context.Context) ([]models.GroupCount, error) {
	return m.countBy(func(c models.Complaint) string { return string(c.Status) }, true), nil
}

func (m *Memory) CountComplaintsByMonth(_ context.Context) ([]models.GroupCount, error) {
	return m.countBy(func(c models.Complaint) string { return c.CreatedAt.UTC().Format("2006-01") }, false), nil
}

func (m *Memory) countBy(key func(models.Complaint) string, byCount bool) []models.GroupCount {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, c := range m.complaints {
		counts[key(c)]++
	}
	out := make([]models.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if byCount && out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Compare(out[i].Key, out[j].Key) < 0
	})
	return out
}

func (m *Memory) CreateContactMessage(_ context.Context, msg *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = msg.BeforeCreate(nil)
	msg.CreatedAt = m.tick()
	m.contacts[msg.ID] = *msg
	return nil
}

func (m *Memory) ListContactMessages(_ context.Context) ([]models.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ContactMessage, 0, len(m.contacts))
	for _, msg := range m.contacts {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteContactMessage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

// ComplaintCount returns the number of stored complaints.
func (m *Memory) ComplaintCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.complaints)
}

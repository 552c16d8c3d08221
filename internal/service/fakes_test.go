package service

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"

	"billwise/internal/models"
	"billwise/internal/repository"

	"github.com/google/uuid"
)

// memoryReports is an in-memory ReportStore with failure injection.
type memoryReports struct {
	mu        sync.Mutex
	reports   []*models.Report
	createErr error
	lookupErr error
	lookups   int
}

func (m *memoryReports) Create(_ context.Context, report *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	copied := *report
	m.reports = append(m.reports, &copied)
	return nil
}

func (m *memoryReports) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id && r.UserID == userID {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryReports) MostRecentByUserID(ctx context.Context, userID uuid.UUID) (*models.Report, error) {
	m.mu.Lock()
	m.lookups++
	lookupErr := m.lookupErr
	m.mu.Unlock()
	if lookupErr != nil {
		return nil, lookupErr
	}

	list, _ := m.ListByUserID(ctx, userID)
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return list[0], nil
}

func (m *memoryReports) ListByUserID(_ context.Context, userID uuid.UUID) ([]*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type indexed struct {
		seq    int
		report *models.Report
	}
	var owned []indexed
	for i, r := range m.reports {
		if r.UserID == userID {
			owned = append(owned, indexed{i, r})
		}
	}
	sort.Slice(owned, func(a, b int) bool {
		if !owned[a].report.CreatedAt.Equal(owned[b].report.CreatedAt) {
			return owned[a].report.CreatedAt.After(owned[b].report.CreatedAt)
		}
		return owned[a].seq > owned[b].seq
	})

	out := make([]*models.Report, 0, len(owned))
	for _, o := range owned {
		out = append(out, o.report)
	}
	return out, nil
}

func (m *memoryReports) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[uuid.UUID]*models.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

// stubGenerator records prompts and returns a canned response.
type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// stubPageParser returns fixed pages and remembers whether the temp file
// existed while it was being parsed.
type stubPageParser struct {
	pages       []string
	err         error
	seenPath    string
	fileExisted bool
	content     []byte
}

func (p *stubPageParser) Pages(path string) ([]string, error) {
	p.seenPath = path
	data, err := os.ReadFile(path)
	p.fileExisted = err == nil
	p.content = data
	if p.err != nil {
		return nil, p.err
	}
	return p.pages, nil
}

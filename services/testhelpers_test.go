package services

import (
	"context"
	"sync"
	"testing"

	"github.com/kento-cell/MyHobbyCoffee/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, database.SeedRoastProfiles(db))
	return db
}

type fakeMenu struct {
	items   []MenuItem
	listErr error
}

func (f *fakeMenu) ListMenu(ctx context.Context, q ListQuery) (*MenuList, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &MenuList{Contents: f.items, TotalCount: len(f.items)}, nil
}

func (f *fakeMenu) GetMenu(ctx context.Context, id string) (*MenuItem, error) {
	for _, it := range f.items {
		if it.ID == id {
			item := it
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

func menuItem(id, name string, price, amount float64, roast string) MenuItem {
	return MenuItem{
		ID:     id,
		Name:   name,
		Price:  Number{Value: price, Valid: true},
		Amount: Number{Value: amount, Valid: true},
		Roast:  StringList{roast},
	}
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []SessionRequest
	event    *WebhookEvent
	parseErr error
	nextID   string
}

func (g *fakeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	id := g.nextID
	if id == "" {
		id = "cs_test_1"
	}
	return &Session{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

type sentMail struct {
	To, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return n.err
}

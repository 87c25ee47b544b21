package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/market-desk/internal/config"
	"github.com/spec-kit/market-desk/internal/events"
	"github.com/spec-kit/market-desk/internal/repository"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handler(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	users    *repository.MemoryUserRepository
	contacts repository.ContactRepository
	recorded *recordedEvents
	auth     *AuthService
	data     *UserDataService
	contact  *ContactService
	admin    *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dispatcher := events.NewInMemoryDispatcher()
	recorded := &recordedEvents{}
	for _, et := range events.AllEventTypes {
		dispatcher.Subscribe(et, recorded.handler)
	}

	users := repository.NewMemoryUserRepository()
	contacts, err := repository.NewFileContactRepository(filepath.Join(t.TempDir(), "contacts.json"), zap.NewNop())
	require.NoError(t, err)

	cfg := config.AuthConfig{JWTSecret: "test-secret", TokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost}
	return &fixture{
		users:    users,
		contacts: contacts,
		recorded: recorded,
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo:   users,
			Dispatcher: dispatcher,
		}),
		data:    NewUserDataService(users, dispatcher, nil),
		contact: NewContactService(contacts, dispatcher, nil),
		admin: NewAdminService(AdminDependencies{
			UserRepo:    users,
			ContactRepo: contacts,
			Dispatcher:  dispatcher,
		}),
	}
}

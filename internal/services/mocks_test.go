package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/models"
	"homznspace/backend/internal/storage"
	"homznspace/backend/internal/store"
)

type mockAdminStore struct{ mock.Mock }

func (m *mockAdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *mockAdminStore) Upsert(ctx context.Context, username, passwordHash string) (*models.Admin, bool, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Admin), args.Bool(1), args.Error(2)
}

type mockAgentStore struct{ mock.Mock }

func (m *mockAgentStore) Create(ctx context.Context, agent *models.Agent) error {
	args := m.Called(ctx, agent)
	if args.Error(0) == nil {
		agent.GenIDIfEmpty()
	}
	return args.Error(0)
}

func (m *mockAgentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *mockAgentStore) FindByEmail(ctx context.Context, email string) (*models.Agent, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *mockAgentStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Agent, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*models.Agent), args.Error(1)
}

func (m *mockAgentStore) ListPending(ctx context.Context) ([]models.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Agent), args.Error(1)
}

func (m *mockAgentStore) Approve(ctx context.Context, id primitive.ObjectID) (*models.Agent, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Agent), args.Bool(1), args.Error(2)
}

func (m *mockAgentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAgentStore) Update(ctx context.Context, id primitive.ObjectID, changes store.AgentChanges) (*models.Agent, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.GenIDIfEmpty()
	}
	return args.Error(0)
}

func (m *mockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*models.User), args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, id primitive.ObjectID, changes store.UserChanges) (*models.User, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockPropertyStore struct{ mock.Mock }

func (m *mockPropertyStore) Create(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.GenIDIfEmpty()
	}
	return args.Error(0)
}

func (m *mockPropertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *mockPropertyStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Property, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*models.Property), args.Error(1)
}

func (m *mockPropertyStore) List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *mockPropertyStore) Replace(ctx context.Context, p *models.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPropertyStore) DistinctAreas(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPropertyStore) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockInquiryStore struct{ mock.Mock }

func (m *mockInquiryStore) Create(ctx context.Context, inquiry *models.Inquiry) error {
	args := m.Called(ctx, inquiry)
	if args.Error(0) == nil {
		inquiry.GenIDIfEmpty()
	}
	return args.Error(0)
}

func (m *mockInquiryStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Inquiry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *mockInquiryStore) ListByAgent(ctx context.Context, agentID *primitive.ObjectID) ([]models.Inquiry, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *mockInquiryStore) DetachProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

type mockContactStore struct{ mock.Mock }

func (m *mockContactStore) Create(ctx context.Context, lead *models.ContactLead) error {
	args := m.Called(ctx, lead)
	if args.Error(0) == nil {
		lead.GenIDIfEmpty()
	}
	return args.Error(0)
}

type mockTemplateStore struct{ mock.Mock }

func (m *mockTemplateStore) Find(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error) {
	args := m.Called(ctx, templateID, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailTemplate), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) AgentRegistered(ctx context.Context, agent *models.Agent) {
	m.Called(ctx, agent)
}

func (m *mockNotifier) AgentApproved(ctx context.Context, agent *models.Agent) {
	m.Called(ctx, agent)
}

func (m *mockNotifier) InquiryReceived(ctx context.Context, notice InquiryNotice) {
	m.Called(ctx, notice)
}

func (m *mockNotifier) ContactLeadReceived(ctx context.Context, lead *models.ContactLead) {
	m.Called(ctx, lead)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, payload models.EmailTaskPayload) error {
	return m.Called(ctx, payload).Error(0)
}

type mockBlobStore struct{ mock.Mock }

func (m *mockBlobStore) Put(ctx context.Context, blob storage.Blob) (string, error) {
	args := m.Called(ctx, blob)
	return args.String(0), args.Error(1)
}

type mockAreaCache struct{ mock.Mock }

func (m *mockAreaCache) Get(ctx context.Context) ([]string, int64, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2)
	}
	return args.Get(0).([]string), args.Get(1).(int64), args.Bool(2)
}

func (m *mockAreaCache) Set(ctx context.Context, areas []string, gen int64) {
	m.Called(ctx, areas, gen)
}

func (m *mockAreaCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

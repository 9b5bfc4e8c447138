package handlers_test

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"homznspace/backend/internal/api/middleware"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/services"
	"homznspace/backend/internal/store"
)

// --- Mocks ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) LoginAdmin(ctx context.Context, username, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) RegisterUser(ctx context.Context, input services.RegisterUserInput) (*services.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) LoginUser(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) RegisterAgent(ctx context.Context, input services.RegisterAgentInput) (*models.Agent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAuthService) LoginAgent(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) GetUserProfile(ctx context.Context, p auth.Principal) (*models.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) UpdateUserProfile(ctx context.Context, p auth.Principal, update services.UserProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, p, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) GetAgentProfile(ctx context.Context, p auth.Principal) (*models.Agent, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAuthService) UpdateAgentProfile(ctx context.Context, p auth.Principal, update services.AgentProfileUpdate) (*models.Agent, error) {
	args := m.Called(ctx, p, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) ListPending(ctx context.Context, p auth.Principal) ([]models.Agent, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Agent), args.Error(1)
}

func (m *MockAgentService) Approve(ctx context.Context, p auth.Principal, agentID string) (*models.Agent, error) {
	args := m.Called(ctx, p, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentService) Reject(ctx context.Context, p auth.Principal, agentID string) error {
	return m.Called(ctx, p, agentID).Error(0)
}

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) ListMine(ctx context.Context, p auth.Principal) ([]models.Property, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) Create(ctx context.Context, p auth.Principal, input models.PropertyUpdate, uploads []services.Upload) (*models.Property, error) {
	args := m.Called(ctx, p, input, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Update(ctx context.Context, p auth.Principal, id string, update models.PropertyUpdate, uploads []services.Upload) (*models.Property, error) {
	args := m.Called(ctx, p, id, update, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *MockPropertyService) Areas(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockInquiryService struct {
	mock.Mock
}

func (m *MockInquiryService) Create(ctx context.Context, p auth.Principal, input services.CreateInquiryInput) (*models.Inquiry, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) ListForBuyer(ctx context.Context, p auth.Principal) ([]models.BuyerInquiryView, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BuyerInquiryView), args.Error(1)
}

func (m *MockInquiryService) ListForSeller(ctx context.Context, p auth.Principal) ([]models.SellerInquiryView, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SellerInquiryView), args.Error(1)
}

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Create(ctx context.Context, lead models.ContactLead) (*models.ContactLead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactLead), args.Error(1)
}

// asPrincipal stands in for AuthMiddleware in handler tests.
func asPrincipal(p auth.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyPrincipal, p)
		c.Next()
	}
}

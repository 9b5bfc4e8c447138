package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

// AuthResult is a freshly issued session. Exactly one of Admin, Agent and User is set.
type AuthResult struct {
	Token     string
	Principal auth.Principal
	Admin     *models.Admin
	Agent     *models.Agent
	User      *models.User
}

type RegisterUserInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
}

type RegisterAgentInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserProfileUpdate is the self-service user patch. Nil fields are left alone.
type UserProfileUpdate struct {
	Username  *string   `json:"username"`
	Phone     *string   `json:"phone"`
	Favorites *[]string `json:"favorites"`
}

// AgentProfileUpdate is the self-service agent patch. Nil fields are left alone.
type AgentProfileUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type IAuthService interface {
	LoginAdmin(ctx context.Context, username, password string) (*AuthResult, error)
	RegisterUser(ctx context.Context, input RegisterUserInput) (*AuthResult, error)
	LoginUser(ctx context.Context, email, password string) (*AuthResult, error)
	// RegisterAgent stores an unapproved agent. No session is issued until an admin approves it.
	RegisterAgent(ctx context.Context, input RegisterAgentInput) (*models.Agent, error)
	LoginAgent(ctx context.Context, email, password string) (*AuthResult, error)
	GetUserProfile(ctx context.Context, p auth.Principal) (*models.User, error)
	UpdateUserProfile(ctx context.Context, p auth.Principal, update UserProfileUpdate) (*models.User, error)
	GetAgentProfile(ctx context.Context, p auth.Principal) (*models.Agent, error)
	UpdateAgentProfile(ctx context.Context, p auth.Principal, update AgentProfileUpdate) (*models.Agent, error)
}

type authService struct {
	admins   store.IAdminStore
	agents   store.IAgentStore
	users    store.IUserStore
	tokens   *auth.TokenIssuer
	notifier INotifier
	validate *validator.Validate
}

func NewAuthService(admins store.IAdminStore, agents store.IAgentStore, users store.IUserStore, tokens *auth.TokenIssuer, notifier INotifier) IAuthService {
	return &authService{
		admins:   admins,
		agents:   agents,
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		validate: newValidator(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials() error {
	return apperr.New(apperr.CodeInvalidCredentials, "invalid credentials")
}

func (s *authService) issue(p auth.Principal) (string, error) {
	token, err := s.tokens.Issue(p)
	if err != nil {
		return "", fmt.Errorf("failed to issue token for %s: %w", p, err)
	}
	return token, nil
}

func (s *authService) LoginAdmin(ctx context.Context, username, password string) (*AuthResult, error) {
	admin, err := s.admins.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		auth.BurnPasswordCheck(password)
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, invalidCredentials()
	}
	p := auth.Principal{Kind: auth.KindAdmin, ID: admin.ID}
	token, err := s.issue(p)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("admin", admin.Username).Msg("admin logged in")
	return &AuthResult{Token: token, Principal: p, Admin: admin}, nil
}

func (s *authService) RegisterUser(ctx context.Context, input RegisterUserInput) (*AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Favorites:    []primitive.ObjectID{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.CodeConflict, "user already exists")
		}
		return nil, err
	}

	p := auth.Principal{Kind: auth.KindUser, ID: user.ID}
	token, err := s.issue(p)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.Hex()).Msg("user registered")
	return &AuthResult{Token: token, Principal: p, User: user}, nil
}

func (s *authService) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		auth.BurnPasswordCheck(password)
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, invalidCredentials()
	}
	p := auth.Principal{Kind: auth.KindUser, ID: user.ID}
	token, err := s.issue(p)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Principal: p, User: user}, nil
}

func (s *authService) RegisterAgent(ctx context.Context, input RegisterAgentInput) (*models.Agent, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	agent := &models.Agent{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		IsApproved:   false,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.CodeConflict, "agent already exists")
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("agent_id", agent.ID.Hex()).Msg("agent registered, awaiting approval")
	s.notifier.AgentRegistered(ctx, agent)
	return agent, nil
}

// LoginAgent verifies the password before looking at the approval flag so that
// PENDING_APPROVAL is only ever reported to a caller who knows the password.
func (s *authService) LoginAgent(ctx context.Context, email, password string) (*AuthResult, error) {
	agent, err := s.agents.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		auth.BurnPasswordCheck(password)
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, agent.PasswordHash) {
		return nil, invalidCredentials()
	}
	if !agent.IsApproved {
		return nil, apperr.New(apperr.CodePendingApproval, "account pending admin approval")
	}
	p := auth.Principal{Kind: auth.KindAgent, ID: agent.ID}
	token, err := s.issue(p)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Principal: p, Agent: agent}, nil
}

func (s *authService) GetUserProfile(ctx context.Context, p auth.Principal) (*models.User, error) {
	if !p.IsUser() {
		return nil, apperr.Forbidden("only users have a user profile")
	}
	user, err := s.users.FindByID(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	return user, err
}

func (s *authService) UpdateUserProfile(ctx context.Context, p auth.Principal, update UserProfileUpdate) (*models.User, error) {
	if !p.IsUser() {
		return nil, apperr.Forbidden("only users have a user profile")
	}
	if update.Username != nil {
		trimmed := strings.TrimSpace(*update.Username)
		if trimmed == "" {
			return nil, apperr.Validation("username cannot be empty", "username")
		}
		update.Username = &trimmed
	}

	changes := store.UserChanges{Username: update.Username, Phone: update.Phone}
	if update.Favorites != nil {
		favorites := make([]primitive.ObjectID, 0, len(*update.Favorites))
		for _, raw := range *update.Favorites {
			id, err := models.ParseID(raw)
			if err != nil {
				return nil, apperr.Validation(fmt.Sprintf("invalid property id %q in favorites", raw), "favorites")
			}
			favorites = append(favorites, id)
		}
		changes.Favorites = &favorites
	}

	user, err := s.users.Update(ctx, p.ID, changes)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.New(apperr.CodeConflict, "username already taken")
	}
	return user, err
}

func (s *authService) GetAgentProfile(ctx context.Context, p auth.Principal) (*models.Agent, error) {
	if !p.IsAgent() {
		return nil, apperr.Forbidden("only agents have an agent profile")
	}
	agent, err := s.agents.FindByID(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agent not found")
	}
	return agent, err
}

func (s *authService) UpdateAgentProfile(ctx context.Context, p auth.Principal, update AgentProfileUpdate) (*models.Agent, error) {
	if !p.IsAgent() {
		return nil, apperr.Forbidden("only agents have an agent profile")
	}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, apperr.Validation("name cannot be empty", "name")
		}
		update.Name = &trimmed
	}
	agent, err := s.agents.Update(ctx, p.ID, store.AgentChanges{Name: update.Name, Phone: update.Phone})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agent not found")
	}
	return agent, err
}

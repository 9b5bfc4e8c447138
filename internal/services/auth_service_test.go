package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

type authFixture struct {
	admins   *mockAdminStore
	agents   *mockAgentStore
	users    *mockUserStore
	notifier *mockNotifier
	tokens   *auth.TokenIssuer
	svc      IAuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		admins:   new(mockAdminStore),
		agents:   new(mockAgentStore),
		users:    new(mockUserStore),
		notifier: new(mockNotifier),
		tokens:   auth.NewTokenIssuer("test-secret", 24*time.Hour),
	}
	f.svc = NewAuthService(f.admins, f.agents, f.users, f.tokens, f.notifier)
	return f
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestLoginAdmin(t *testing.T) {
	f := newAuthFixture()
	admin := &models.Admin{Base: models.Base{ID: primitive.NewObjectID()}, Username: "root", PasswordHash: mustHash(t, "hunter2")}
	f.admins.On("FindByUsername", mock.Anything, "root").Return(admin, nil)

	res, err := f.svc.LoginAdmin(context.Background(), " root ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, auth.KindAdmin, res.Principal.Kind)

	p, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, p.ID)
	assert.True(t, p.IsAdmin())

	_, err = f.svc.LoginAdmin(context.Background(), "root", "wrong")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))
}

func TestLoginAdmin_UnknownUsername(t *testing.T) {
	f := newAuthFixture()
	f.admins.On("FindByUsername", mock.Anything, "ghost").Return(nil, store.ErrNotFound)

	_, err := f.svc.LoginAdmin(context.Background(), "ghost", "whatever")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))
}

func TestRegisterUser(t *testing.T) {
	f := newAuthFixture()
	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "asha@example.com" && u.Username == "asha" && u.PasswordHash != "secret"
	})).Return(nil)

	res, err := f.svc.RegisterUser(context.Background(), RegisterUserInput{
		Username: " asha ", Email: " Asha@Example.com ", Password: "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.True(t, auth.CheckPasswordHash("secret", res.User.PasswordHash))
	assert.Equal(t, auth.KindUser, res.Principal.Kind)
	assert.Equal(t, res.User.ID, res.Principal.ID)
	assert.NotEmpty(t, res.Token)
	f.users.AssertExpectations(t)
}

func TestRegisterUser_Duplicate(t *testing.T) {
	f := newAuthFixture()
	f.users.On("Create", mock.Anything, mock.Anything).Return(errors.Join(errors.New("insert"), store.ErrDuplicate))

	_, err := f.svc.RegisterUser(context.Background(), RegisterUserInput{Username: "a", Email: "a@example.com", Password: "x"})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestRegisterUser_Validation(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.RegisterUser(context.Background(), RegisterUserInput{Email: "not-an-email"})
	require.Error(t, err)
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeValidation, typed.Code())
	fields := typed.Details().(map[string]any)["fields"].([]string)
	assert.ElementsMatch(t, []string{"username", "email", "password"}, fields)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginUser(t *testing.T) {
	f := newAuthFixture()
	user := &models.User{Base: models.Base{ID: primitive.NewObjectID()}, Email: "asha@example.com", PasswordHash: mustHash(t, "pw")}
	f.users.On("FindByEmail", mock.Anything, "asha@example.com").Return(user, nil)
	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, store.ErrNotFound)

	res, err := f.svc.LoginUser(context.Background(), "ASHA@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.Principal.ID)

	_, err = f.svc.LoginUser(context.Background(), "asha@example.com", "nope")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))

	_, err = f.svc.LoginUser(context.Background(), "nobody@example.com", "pw")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))
}

func TestLoginUser_StoreFailureIsNotCredentialsError(t *testing.T) {
	f := newAuthFixture()
	f.users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, errors.New("server selection timeout"))

	_, err := f.svc.LoginUser(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestRegisterAgent_PendingAndNotified(t *testing.T) {
	f := newAuthFixture()
	f.agents.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Agent) bool {
		return !a.IsApproved && a.Email == "ravi@example.com"
	})).Return(nil)
	f.notifier.On("AgentRegistered", mock.Anything, mock.AnythingOfType("*models.Agent")).Return()

	agent, err := f.svc.RegisterAgent(context.Background(), RegisterAgentInput{
		Name: "Ravi", Email: "Ravi@example.com", Phone: "9876543210", Password: "pw",
	})
	require.NoError(t, err)
	assert.False(t, agent.IsApproved)
	f.agents.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestRegisterAgent_DuplicateDoesNotNotify(t *testing.T) {
	f := newAuthFixture()
	f.agents.On("Create", mock.Anything, mock.Anything).Return(store.ErrDuplicate)

	_, err := f.svc.RegisterAgent(context.Background(), RegisterAgentInput{Name: "R", Email: "r@example.com", Phone: "1", Password: "pw"})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
	f.notifier.AssertNotCalled(t, "AgentRegistered", mock.Anything, mock.Anything)
}

func TestLoginAgent_CheckOrder(t *testing.T) {
	f := newAuthFixture()
	pending := &models.Agent{Base: models.Base{ID: primitive.NewObjectID()}, Email: "p@example.com", PasswordHash: mustHash(t, "right"), IsApproved: false}
	approved := &models.Agent{Base: models.Base{ID: primitive.NewObjectID()}, Email: "a@example.com", PasswordHash: mustHash(t, "right"), IsApproved: true}
	f.agents.On("FindByEmail", mock.Anything, "p@example.com").Return(pending, nil)
	f.agents.On("FindByEmail", mock.Anything, "a@example.com").Return(approved, nil)
	f.agents.On("FindByEmail", mock.Anything, "x@example.com").Return(nil, store.ErrNotFound)

	// A wrong password never reveals the approval state.
	_, err := f.svc.LoginAgent(context.Background(), "p@example.com", "wrong")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))

	_, err = f.svc.LoginAgent(context.Background(), "p@example.com", "right")
	assert.Equal(t, apperr.CodePendingApproval, apperr.CodeOf(err))

	_, err = f.svc.LoginAgent(context.Background(), "x@example.com", "right")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.CodeOf(err))

	res, err := f.svc.LoginAgent(context.Background(), "a@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{Kind: auth.KindAgent, ID: approved.ID}, res.Principal)
	assert.Same(t, approved, res.Agent)
}

func TestUserProfile_SelfOnly(t *testing.T) {
	f := newAuthFixture()
	agent := auth.Principal{Kind: auth.KindAgent, ID: primitive.NewObjectID()}

	_, err := f.svc.GetUserProfile(context.Background(), agent)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	_, err = f.svc.UpdateUserProfile(context.Background(), agent, UserProfileUpdate{})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
}

func TestUpdateUserProfile_Favorites(t *testing.T) {
	f := newAuthFixture()
	p := auth.Principal{Kind: auth.KindUser, ID: primitive.NewObjectID()}
	fav := primitive.NewObjectID()
	phone := "12345"
	updated := &models.User{Base: models.Base{ID: p.ID}, Phone: phone, Favorites: []primitive.ObjectID{fav}}

	f.users.On("Update", mock.Anything, p.ID, mock.MatchedBy(func(c store.UserChanges) bool {
		return c.Username == nil && c.Phone != nil && *c.Phone == phone &&
			c.Favorites != nil && len(*c.Favorites) == 1 && (*c.Favorites)[0] == fav
	})).Return(updated, nil)

	favorites := []string{fav.Hex()}
	got, err := f.svc.UpdateUserProfile(context.Background(), p, UserProfileUpdate{Phone: &phone, Favorites: &favorites})
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	f.users.AssertExpectations(t)
}

func TestUpdateUserProfile_BadFavorite(t *testing.T) {
	f := newAuthFixture()
	p := auth.Principal{Kind: auth.KindUser, ID: primitive.NewObjectID()}
	favorites := []string{"not-an-id"}

	_, err := f.svc.UpdateUserProfile(context.Background(), p, UserProfileUpdate{Favorites: &favorites})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAgentProfile(t *testing.T) {
	f := newAuthFixture()
	p := auth.Principal{Kind: auth.KindAgent, ID: primitive.NewObjectID()}
	agent := &models.Agent{Base: models.Base{ID: p.ID}, Name: "Ravi"}
	f.agents.On("FindByID", mock.Anything, p.ID).Return(agent, nil)

	got, err := f.svc.GetAgentProfile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Name)

	blank := "  "
	_, err = f.svc.UpdateAgentProfile(context.Background(), p, AgentProfileUpdate{Name: &blank})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = f.svc.GetAgentProfile(context.Background(), auth.Principal{Kind: auth.KindUser, ID: p.ID})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-desk-be/internal/apperror"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/serverutils"
)

func newAuthFixture(t *testing.T) (IAuthService, *fakeUnitOfWork) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	uow := &fakeUnitOfWork{
		users:         &fakeUserRepo{users: map[uuid.UUID]*entity.User{}},
		conversations: &fakeConversationRepo{conversations: map[uuid.UUID]*entity.Conversation{}},
		messages:      &fakeMessageRepo{},
	}
	return NewAuthService(&fakeFactory{uow: uow}, time.Hour), uow
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Candidate One",
		Email:    "candidate@example.com",
		Password: "secret123",
		Role:     "candidate",
	})
	require.NoError(t, err)
	assert.Equal(t, "candidate", registered.Role)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "candidate@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	// The issued token carries the identity the websocket handshake reads.
	identity, err := serverutils.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.Id, identity.UserId)
	assert.Equal(t, "candidate", identity.Role)
}

func TestRegisterAgentRequiresSupervisor(t *testing.T) {
	svc, uow := newAuthFixture(t)

	supervisor := &entity.User{Id: uuid.New(), Role: entity.UserRoleSupervisor}
	require.NoError(t, uow.users.Create(context.Background(), supervisor))
	candidate := &entity.User{Id: uuid.New(), Role: entity.UserRoleCandidate}
	require.NoError(t, uow.users.Create(context.Background(), candidate))

	t.Run("missing supervisor id", func(t *testing.T) {
		_, err := svc.Register(context.Background(), &dto.RegisterRequest{
			Name: "Agent", Email: "a1@example.com", Password: "secret123", Role: "agent",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("reference is not a supervisor", func(t *testing.T) {
		_, err := svc.Register(context.Background(), &dto.RegisterRequest{
			Name: "Agent", Email: "a2@example.com", Password: "secret123", Role: "agent",
			SupervisorId: &candidate.Id,
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidReference)
	})

	t.Run("valid supervisor", func(t *testing.T) {
		registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
			Name: "Agent", Email: "a3@example.com", Password: "secret123", Role: "agent",
			SupervisorId: &supervisor.Id,
		})
		require.NoError(t, err)

		stored := uow.users.users[registered.Id]
		require.NotNil(t, stored)
		require.NotNil(t, stored.SupervisorId)
		assert.Equal(t, supervisor.Id, *stored.SupervisorId)
	})

	t.Run("supervisor reference dropped for other roles", func(t *testing.T) {
		registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
			Name: "Candidate", Email: "c2@example.com", Password: "secret123", Role: "candidate",
			SupervisorId: &supervisor.Id,
		})
		require.NoError(t, err)
		assert.Nil(t, uow.users.users[registered.Id].SupervisorId)
	})
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	req := &dto.RegisterRequest{
		Name: "One", Email: "dup@example.com", Password: "secret123", Role: "candidate",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	// ErrConflict so the middleware answers 409, not 500.
	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Two", Email: "dup@example.com", Password: "secret123", Role: "candidate",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "One", Email: "root@example.com", Password: "secret123", Role: "root",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "User", Email: "user@example.com", Password: "secret123", Role: "candidate",
	})
	require.NoError(t, err)

	// A wrong password is an AuthError, which the middleware turns into 401.
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "user@example.com", Password: "wrong",
	})
	var authErr *apperror.AuthError
	assert.ErrorAs(t, err, &authErr)

	// An unknown email maps to 404.
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMeUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

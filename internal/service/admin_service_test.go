package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/repository/memory"
)

func TestSupervisorAnalytics(t *testing.T) {
	supervisorA := &entity.User{Id: uuid.New(), Name: "Alice", Role: entity.UserRoleSupervisor}
	supervisorB := &entity.User{Id: uuid.New(), Name: "Bob", Role: entity.UserRoleSupervisor}
	agentA1 := &entity.User{Id: uuid.New(), Role: entity.UserRoleAgent, SupervisorId: &supervisorA.Id}
	agentA2 := &entity.User{Id: uuid.New(), Role: entity.UserRoleAgent, SupervisorId: &supervisorA.Id}

	uow := &fakeUnitOfWork{
		users: &fakeUserRepo{users: map[uuid.UUID]*entity.User{
			supervisorA.Id: supervisorA,
			supervisorB.Id: supervisorB,
			agentA1.Id:     agentA1,
			agentA2.Id:     agentA2,
		}},
		conversations: &fakeConversationRepo{conversations: map[uuid.UUID]*entity.Conversation{}},
		messages:      &fakeMessageRepo{},
	}

	closed := &entity.Conversation{
		Id:           uuid.New(),
		CandidateId:  uuid.New(),
		SupervisorId: supervisorA.Id,
		AgentId:      &agentA1.Id,
		Status:       entity.ConversationStatusClosed,
	}
	open := &entity.Conversation{
		Id:           uuid.New(),
		CandidateId:  uuid.New(),
		SupervisorId: supervisorA.Id,
		AgentId:      &agentA2.Id,
		Status:       entity.ConversationStatusAssigned,
	}
	require.NoError(t, uow.conversations.Create(context.Background(), closed))
	require.NoError(t, uow.conversations.Create(context.Background(), open))

	svc := NewAdminService(&fakeFactory{uow: uow}, memory.NewAnalyticsCache(time.Minute))

	analytics, err := svc.SupervisorAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, analytics, 2)

	byId := map[uuid.UUID]int{}
	for i, row := range analytics {
		byId[row.SupervisorId] = i
	}

	rowA := analytics[byId[supervisorA.Id]]
	assert.Equal(t, 2, rowA.Agents)
	assert.Equal(t, int64(1), rowA.ConversationsHandled)

	rowB := analytics[byId[supervisorB.Id]]
	assert.Equal(t, 0, rowB.Agents)
	assert.Equal(t, int64(0), rowB.ConversationsHandled)
}

func TestSupervisorAnalyticsServedFromCache(t *testing.T) {
	supervisor := &entity.User{Id: uuid.New(), Name: "Alice", Role: entity.UserRoleSupervisor}

	uow := &fakeUnitOfWork{
		users:         &fakeUserRepo{users: map[uuid.UUID]*entity.User{supervisor.Id: supervisor}},
		conversations: &fakeConversationRepo{conversations: map[uuid.UUID]*entity.Conversation{}},
		messages:      &fakeMessageRepo{},
	}

	svc := NewAdminService(&fakeFactory{uow: uow}, memory.NewAnalyticsCache(time.Minute))

	first, err := svc.SupervisorAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A supervisor added after the snapshot is invisible until the cache
	// window passes.
	late := &entity.User{Id: uuid.New(), Name: "Bob", Role: entity.UserRoleSupervisor}
	require.NoError(t, uow.users.Create(context.Background(), late))

	second, err := svc.SupervisorAnalytics(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

package service

import (
	"context"

	"github.com/google/uuid"

	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/repository/memory"
	"support-desk-be/internal/repository/specification"
	"support-desk-be/internal/repository/unitofwork"
)

type IAdminService interface {
	SupervisorAnalytics(ctx context.Context) ([]dto.SupervisorAnalytics, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.AnalyticsCache
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, cache *memory.AnalyticsCache) IAdminService {
	return &adminService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

// SupervisorAnalytics aggregates, per supervisor, the team size and the
// number of closed conversations their agents handled. Cached for the
// dashboard poll interval.
func (s *adminService) SupervisorAnalytics(ctx context.Context) ([]dto.SupervisorAnalytics, error) {
	if cached, found := s.cache.Get(); found {
		return cached, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	supervisors, err := uow.UserRepository().FindAll(ctx,
		specification.ByRole{Role: entity.UserRoleSupervisor},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	analytics := make([]dto.SupervisorAnalytics, 0, len(supervisors))
	for _, supervisor := range supervisors {
		agents, err := uow.UserRepository().FindAll(ctx,
			specification.OwnedBySupervisor{SupervisorID: supervisor.Id},
		)
		if err != nil {
			return nil, err
		}

		var handled int64
		if len(agents) > 0 {
			agentIds := make([]uuid.UUID, len(agents))
			for i, agent := range agents {
				agentIds[i] = agent.Id
			}
			handled, err = uow.ConversationRepository().Count(ctx,
				specification.ByAgentIDs{AgentIDs: agentIds},
				specification.ByStatus{Status: entity.ConversationStatusClosed},
			)
			if err != nil {
				return nil, err
			}
		}

		analytics = append(analytics, dto.SupervisorAnalytics{
			SupervisorId:         supervisor.Id,
			SupervisorName:       supervisor.Name,
			Agents:               len(agents),
			ConversationsHandled: handled,
		})
	}

	s.cache.Set(analytics)
	return analytics, nil
}

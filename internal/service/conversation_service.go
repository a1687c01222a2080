package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"support-desk-be/internal/apperror"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/repository/memory"
	"support-desk-be/internal/repository/specification"
	"support-desk-be/internal/repository/unitofwork"
	"support-desk-be/pkg/events"
	pktNats "support-desk-be/pkg/nats"
)

// RoomNotifier pushes lifecycle events into the realtime layer. Implemented
// by the websocket hub; the lifecycle engine never touches connections
// directly.
type RoomNotifier interface {
	// NotifyClosed broadcasts CONVERSATION_CLOSED to every subscriber of
	// the room except excludeSessionID, then tears the room down.
	NotifyClosed(conversationID uuid.UUID, excludeSessionID uuid.UUID)
}

type IConversationService interface {
	Create(ctx context.Context, candidateId, supervisorId uuid.UUID) (*entity.Conversation, error)
	Assign(ctx context.Context, conversationId, requestingSupervisorId, agentId uuid.UUID) (*entity.Conversation, error)
	// Close is the administrative path: admin, or the supervisor bound to
	// the conversation.
	Close(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole) (*entity.Conversation, error)
	// CloseByAgent is the realtime path: only the bound agent, only while
	// status is assigned. excludeSessionID keeps the closing connection out
	// of the CONVERSATION_CLOSED broadcast.
	CloseByAgent(ctx context.Context, conversationId, agentId, excludeSessionID uuid.UUID) (*entity.Conversation, error)
	Read(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole) (*entity.Conversation, []*entity.Message, error)
	// JoinAndActivate validates a realtime join and, when the caller is the
	// bound agent and the conversation is still open, flips it to assigned.
	// onJoined runs inside the same per-conversation critical section, after
	// validation, so the caller can set up its buffer entry and room
	// subscription without a close interleaving. It may be nil.
	JoinAndActivate(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole, onJoined func(*entity.Conversation)) (*entity.Conversation, error)
}

// conversationLocks hands out one mutex per conversation id so the
// activate and close check-and-set transitions are mutually exclusive.
// Entries are kept for the process lifetime; memory is bounded by the
// number of conversations touched since start.
type conversationLocks struct {
	locks sync.Map
}

func (l *conversationLocks) lock(id uuid.UUID) func() {
	v, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type conversationService struct {
	uowFactory       unitofwork.RepositoryFactory
	buffer           *memory.MessageBuffer
	rooms            RoomNotifier
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
	locks            conversationLocks
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	buffer *memory.MessageBuffer,
	rooms RoomNotifier,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:       uowFactory,
		buffer:           buffer,
		rooms:            rooms,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *conversationService) Create(ctx context.Context, candidateId, supervisorId uuid.UUID) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	active, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByCandidateID{CandidateID: candidateId},
		specification.ByStatuses{Statuses: []entity.ConversationStatus{
			entity.ConversationStatusOpen,
			entity.ConversationStatusAssigned,
		}},
	)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperror.ErrConflict
	}

	supervisor, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: supervisorId})
	if err != nil {
		return nil, err
	}
	if supervisor == nil || supervisor.Role != entity.UserRoleSupervisor {
		return nil, apperror.ErrInvalidReference
	}

	conversation := &entity.Conversation{
		Id:           uuid.New(),
		CandidateId:  candidateId,
		SupervisorId: supervisorId,
		AgentId:      nil,
		Status:       entity.ConversationStatusOpen,
		CreatedAt:    time.Now(),
	}

	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.ConversationCreated{
		ConversationId: conversation.Id,
		CandidateId:    candidateId,
		SupervisorId:   supervisorId,
		OccurredAt:     time.Now(),
	})

	return conversation, nil
}

func (s *conversationService) Assign(ctx context.Context, conversationId, requestingSupervisorId, agentId uuid.UUID) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.ErrNotFound
	}
	if conversation.Status == entity.ConversationStatusClosed {
		return nil, apperror.ErrAlreadyClosed
	}
	if conversation.SupervisorId != requestingSupervisorId {
		return nil, apperror.ErrForbidden
	}

	agent, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: agentId})
	if err != nil {
		return nil, err
	}
	if agent == nil || agent.Role != entity.UserRoleAgent {
		return nil, apperror.ErrInvalidReference
	}
	if agent.SupervisorId == nil || *agent.SupervisorId != requestingSupervisorId {
		// The agent exists but reports to someone else.
		return nil, apperror.ErrForbidden
	}

	// Binding, not activation: status stays open until the agent actually
	// joins the realtime session.
	conversation.AgentId = &agent.Id

	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.AgentAssigned{
		ConversationId: conversation.Id,
		AgentId:        agent.Id,
		SupervisorId:   requestingSupervisorId,
		OccurredAt:     time.Now(),
	})

	return conversation, nil
}

func (s *conversationService) JoinAndActivate(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole, onJoined func(*entity.Conversation)) (*entity.Conversation, error) {
	unlock := s.locks.lock(conversationId)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.ErrNotFound
	}
	if conversation.Status == entity.ConversationStatusClosed {
		return nil, apperror.ErrAlreadyClosed
	}

	switch role {
	case entity.UserRoleCandidate:
		if conversation.CandidateId != userId {
			return nil, apperror.ErrForbidden
		}
	case entity.UserRoleAgent:
		if conversation.AgentId == nil || *conversation.AgentId != userId {
			return nil, apperror.ErrForbidden
		}
		if conversation.Status == entity.ConversationStatusOpen {
			// First join by the bound agent activates the conversation.
			// Idempotent across rejoins: a second join observes assigned
			// and skips the transition.
			conversation.Status = entity.ConversationStatusAssigned
			if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
				return nil, err
			}
			s.publishEvent(ctx, events.ConversationActivated{
				ConversationId: conversation.Id,
				AgentId:        userId,
				OccurredAt:     time.Now(),
			})
		}
	default:
		return nil, apperror.ErrForbidden
	}

	// Still under the keyed lock: a concurrent close either finished before
	// the re-read above (and this join failed with ErrAlreadyClosed) or has
	// to wait until the caller's subscription is in place, where the close
	// teardown will find and remove it.
	if onJoined != nil {
		onJoined(conversation)
	}

	return conversation, nil
}

func (s *conversationService) Close(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole) (*entity.Conversation, error) {
	check := func(conversation *entity.Conversation) error {
		switch role {
		case entity.UserRoleAdmin:
			return nil
		case entity.UserRoleSupervisor:
			if conversation.SupervisorId != userId {
				return apperror.ErrForbidden
			}
			return nil
		default:
			return apperror.ErrForbidden
		}
	}
	return s.close(ctx, conversationId, userId, role, uuid.Nil, check)
}

func (s *conversationService) CloseByAgent(ctx context.Context, conversationId, agentId, excludeSessionID uuid.UUID) (*entity.Conversation, error) {
	check := func(conversation *entity.Conversation) error {
		if conversation.AgentId == nil || *conversation.AgentId != agentId {
			return apperror.ErrForbidden
		}
		if conversation.Status == entity.ConversationStatusOpen {
			return apperror.ErrNotAssigned
		}
		return nil
	}
	return s.close(ctx, conversationId, agentId, entity.UserRoleAgent, excludeSessionID, check)
}

// close performs the terminal transition: status check, buffer drain, bulk
// insert and status flip in one transaction, then room teardown. The keyed
// lock makes concurrent attempts on one conversation resolve to exactly one
// success; the loser observes status closed and gets ErrAlreadyClosed.
func (s *conversationService) close(
	ctx context.Context,
	conversationId, userId uuid.UUID,
	role entity.UserRole,
	excludeSessionID uuid.UUID,
	check func(*entity.Conversation) error,
) (*entity.Conversation, error) {
	unlock := s.locks.lock(conversationId)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.ErrNotFound
	}
	if conversation.Status == entity.ConversationStatusClosed {
		return nil, apperror.ErrAlreadyClosed
	}
	if err := check(conversation); err != nil {
		return nil, err
	}

	// Removing the entry is the linearization point: sends racing this
	// close now fail with ErrNoEntry instead of landing in limbo.
	messages, drained := s.buffer.Drain(conversationId)

	restore := func() {
		if drained {
			s.buffer.Restore(conversationId, messages)
		}
	}

	if err := uow.Begin(ctx); err != nil {
		restore()
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().BulkInsert(ctx, messages); err != nil {
		restore()
		return nil, err
	}

	conversation.Status = entity.ConversationStatusClosed
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		restore()
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		restore()
		return nil, err
	}

	if s.rooms != nil {
		s.rooms.NotifyClosed(conversationId, excludeSessionID)
	}

	s.publishClosed(ctx, conversationId, userId, role, len(messages))

	return conversation, nil
}

func (s *conversationService) Read(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole) (*entity.Conversation, []*entity.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, nil, err
	}
	if conversation == nil {
		return nil, nil, apperror.ErrNotFound
	}

	switch role {
	case entity.UserRoleAdmin:
		// sees everything
	case entity.UserRoleSupervisor:
		if conversation.SupervisorId != userId {
			return nil, nil, apperror.ErrForbidden
		}
	case entity.UserRoleAgent:
		if conversation.AgentId == nil || *conversation.AgentId != userId {
			return nil, nil, apperror.ErrForbidden
		}
	case entity.UserRoleCandidate:
		if conversation.CandidateId != userId {
			return nil, nil, apperror.ErrForbidden
		}
	default:
		return nil, nil, apperror.ErrForbidden
	}

	if conversation.Status == entity.ConversationStatusClosed {
		messages, err := uow.MessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conversationId},
			specification.OrderBy{Field: "created_at"},
		)
		if err != nil {
			return nil, nil, err
		}
		return conversation, messages, nil
	}

	return conversation, s.buffer.Peek(conversationId), nil
}

// publishEvent sends a lifecycle event straight to NATS. Bus trouble is a
// logged warning, never an operation failure.
func (s *conversationService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ConversationService", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

// publishClosed goes through the in-process bus; the consumer service
// relays it to NATS off the hot path.
func (s *conversationService) publishClosed(ctx context.Context, conversationId, closedBy uuid.UUID, role entity.UserRole, messageCount int) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.ConversationClosedMessage{
		ConversationId: conversationId,
		ClosedBy:       closedBy,
		ClosedByRole:   string(role),
		MessageCount:   messageCount,
		OccurredAt:     time.Now(),
	})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("ConversationService", "Failed to publish close message", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
	}
}

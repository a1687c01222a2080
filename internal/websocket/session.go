package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"support-desk-be/internal/apperror"
	"support-desk-be/internal/constant"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/logger"
	"support-desk-be/internal/repository/memory"
	"support-desk-be/internal/service"
)

// Session dispatches the frames of one authenticated connection. All
// handlers run on the connection's read goroutine, so the joined set needs
// no lock.
type Session struct {
	client        *Client
	conversations service.IConversationService
	buffer        *memory.MessageBuffer
	logger        logger.ILogger

	// joined tracks which conversations this session has joined. A send or
	// leave without a prior join is rejected.
	joined map[uuid.UUID]bool
}

func NewSession(
	client *Client,
	conversations service.IConversationService,
	buffer *memory.MessageBuffer,
	log logger.ILogger,
) *Session {
	s := &Session{
		client:        client,
		conversations: conversations,
		buffer:        buffer,
		logger:        log,
		joined:        make(map[uuid.UUID]bool),
	}
	client.onMessage = s.dispatch
	return s
}

func (s *Session) dispatch(raw []byte) {
	var envelope dto.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Event == "" {
		s.sendError(constant.MsgInvalidFormat)
		return
	}

	switch envelope.Event {
	case constant.EventJoinConversation:
		s.handleJoin(envelope.Data)
	case constant.EventSendMessage:
		s.handleSend(envelope.Data)
	case constant.EventLeaveConversation:
		s.handleLeave(envelope.Data)
	case constant.EventCloseConversation:
		s.handleClose(envelope.Data)
	default:
		s.sendError(constant.MsgUnknownEvent)
	}
}

func (s *Session) handleJoin(data json.RawMessage) {
	var payload dto.JoinConversationData
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationId == uuid.Nil {
		s.sendError(constant.MsgInvalidSchema)
		return
	}

	// Buffer entry and room subscription are set up inside the lifecycle
	// engine's critical section. A close racing this join either rejects it
	// with ErrAlreadyClosed or runs after the subscription exists and tears
	// it down; it can never slip in between.
	conversation, err := s.conversations.JoinAndActivate(
		context.Background(),
		payload.ConversationId,
		s.client.UserID,
		entity.UserRole(s.client.Role),
		func(conversation *entity.Conversation) {
			s.buffer.EnsureEntry(conversation.Id)
			s.client.Hub.Subscribe(conversation.Id, s.client)
		},
	)
	if err != nil {
		s.sendError(lifecycleErrorMessage(err))
		return
	}

	s.joined[conversation.Id] = true

	s.logger.Info("Session", "Joined conversation", map[string]interface{}{
		"session_id":      s.client.SessionID,
		"conversation_id": conversation.Id,
		"role":            s.client.Role,
	})

	s.send(constant.EventJoinedConversation, dto.JoinedConversationData{
		ConversationId: conversation.Id,
		Status:         string(conversation.Status),
	})
}

func (s *Session) handleSend(data json.RawMessage) {
	if s.client.Role != constant.RoleCandidate && s.client.Role != constant.RoleAgent {
		s.sendError(constant.MsgForbiddenRole)
		return
	}

	var payload dto.SendMessageData
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationId == uuid.Nil {
		s.sendError(constant.MsgInvalidSchema)
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		s.sendError(constant.MsgInvalidSchema)
		return
	}

	if !s.joined[payload.ConversationId] {
		s.sendError(constant.MsgMustJoinFirst)
		return
	}

	msg := &entity.Message{
		Id:             uuid.New(),
		ConversationId: payload.ConversationId,
		SenderId:       s.client.UserID,
		SenderRole:     entity.UserRole(s.client.Role),
		Content:        payload.Content,
		CreatedAt:      time.Now(),
	}

	// Buffer first, broadcast second. A message is only ever broadcast
	// after it holds a place in the durable-on-close sequence.
	if err := s.buffer.Append(payload.ConversationId, msg); err != nil {
		// The entry is gone: a close won the race.
		s.sendError(constant.MsgAlreadyClosed)
		return
	}

	frame, err := json.Marshal(dto.OutboundEnvelope{
		Event: constant.EventNewMessage,
		Data: dto.NewMessageData{
			ConversationId: msg.ConversationId,
			SenderId:       msg.SenderId,
			SenderRole:     string(msg.SenderRole),
			Content:        msg.Content,
			CreatedAt:      msg.CreatedAt,
		},
	})
	if err != nil {
		return
	}

	s.client.Hub.Broadcast(payload.ConversationId, frame, s.client.SessionID)
}

func (s *Session) handleLeave(data json.RawMessage) {
	if s.client.Role != constant.RoleCandidate && s.client.Role != constant.RoleAgent {
		s.sendError(constant.MsgForbiddenRole)
		return
	}

	var payload dto.LeaveConversationData
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationId == uuid.Nil {
		s.sendError(constant.MsgInvalidSchema)
		return
	}

	if !s.joined[payload.ConversationId] {
		s.sendError(constant.MsgMustJoinFirst)
		return
	}

	s.client.Hub.Unsubscribe(payload.ConversationId, s.client)
	delete(s.joined, payload.ConversationId)

	s.send(constant.EventLeftConversation, dto.LeftConversationData{
		ConversationId: payload.ConversationId,
	})
}

func (s *Session) handleClose(data json.RawMessage) {
	if s.client.Role != constant.RoleAgent {
		s.sendError(constant.MsgForbiddenRole)
		return
	}

	var payload dto.CloseConversationData
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationId == uuid.Nil {
		s.sendError(constant.MsgInvalidSchema)
		return
	}

	// The closer is excluded from the room broadcast and acknowledged
	// directly below.
	conversation, err := s.conversations.CloseByAgent(
		context.Background(),
		payload.ConversationId,
		s.client.UserID,
		s.client.SessionID,
	)
	if err != nil {
		s.sendError(lifecycleErrorMessage(err))
		return
	}

	delete(s.joined, payload.ConversationId)

	s.logger.Info("Session", "Closed conversation", map[string]interface{}{
		"session_id":      s.client.SessionID,
		"conversation_id": conversation.Id,
	})

	s.send(constant.EventConversationClosed, dto.ConversationClosedData{
		ConversationId: conversation.Id,
	})
}

func (s *Session) send(event string, data interface{}) {
	frame, err := json.Marshal(dto.OutboundEnvelope{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case s.client.Send <- frame:
	default:
	}
}

func (s *Session) sendError(message string) {
	s.send(constant.EventError, dto.ErrorData{Message: message})
}

// lifecycleErrorMessage maps service errors onto the stable realtime error
// strings. Not-found and forbidden collapse into one message so a probing
// client cannot distinguish foreign conversations from missing ones.
func lifecycleErrorMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrForbidden):
		return constant.MsgNotAllowed
	case errors.Is(err, apperror.ErrAlreadyClosed):
		return constant.MsgAlreadyClosed
	case errors.Is(err, apperror.ErrNotAssigned):
		return constant.MsgNotAssigned
	default:
		return constant.MsgInternalError
	}
}

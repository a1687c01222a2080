package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"support-desk-be/internal/apperror"
	"support-desk-be/internal/constant"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/repository/memory"
)

// fakeConversationService scripts the lifecycle engine's answers so the
// dispatcher can be exercised alone.
type fakeConversationService struct {
	joinResult  *entity.Conversation
	joinErr     error
	closeResult *entity.Conversation
	closeErr    error

	closeExclude uuid.UUID
}

func (f *fakeConversationService) Create(ctx context.Context, candidateId, supervisorId uuid.UUID) (*entity.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationService) Assign(ctx context.Context, conversationId, requestingSupervisorId, agentId uuid.UUID) (*entity.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationService) Close(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole) (*entity.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationService) CloseByAgent(ctx context.Context, conversationId, agentId, excludeSessionID uuid.UUID) (*entity.Conversation, error) {
	f.closeExclude = excludeSessionID
	return f.closeResult, f.closeErr
}

func (f *fakeConversationService) Read(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole) (*entity.Conversation, []*entity.Message, error) {
	return nil, nil, nil
}

func (f *fakeConversationService) JoinAndActivate(ctx context.Context, conversationId, userId uuid.UUID, role entity.UserRole, onJoined func(*entity.Conversation)) (*entity.Conversation, error) {
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	if onJoined != nil {
		onJoined(f.joinResult)
	}
	return f.joinResult, nil
}

type sessionFixture struct {
	hub     *Hub
	client  *Client
	session *Session
	service *fakeConversationService
	buffer  *memory.MessageBuffer
}

func newSessionFixture(role string) *sessionFixture {
	hub := NewHub(nopLogger{})
	client := newClient(hub, nil, uuid.New(), role)
	service := &fakeConversationService{}
	buffer := memory.NewMessageBuffer()
	session := NewSession(client, service, buffer, nopLogger{})
	return &sessionFixture{
		hub:     hub,
		client:  client,
		session: session,
		service: service,
		buffer:  buffer,
	}
}

func frame(event string, data interface{}) []byte {
	raw, _ := json.Marshal(dto.OutboundEnvelope{Event: event, Data: data})
	return raw
}

func readFrame(t *testing.T, client *Client) dto.Envelope {
	t.Helper()
	select {
	case raw := <-client.Send:
		var envelope dto.Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("bad frame %q: %v", raw, err)
		}
		return envelope
	default:
		t.Fatal("no frame queued")
		return dto.Envelope{}
	}
}

func expectError(t *testing.T, client *Client, want string) {
	t.Helper()
	envelope := readFrame(t, client)
	if envelope.Event != constant.EventError {
		t.Fatalf("event = %q, want %q", envelope.Event, constant.EventError)
	}
	var data dto.ErrorData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("bad error data: %v", err)
	}
	if data.Message != want {
		t.Errorf("message = %q, want %q", data.Message, want)
	}
}

func TestDispatchMalformedFrame(t *testing.T) {
	f := newSessionFixture("candidate")

	f.session.dispatch([]byte("not json"))
	expectError(t, f.client, constant.MsgInvalidFormat)

	f.session.dispatch([]byte(`{"data":{}}`))
	expectError(t, f.client, constant.MsgInvalidFormat)
}

func TestDispatchUnknownEvent(t *testing.T) {
	f := newSessionFixture("candidate")

	f.session.dispatch(frame("DELETE_MESSAGE", nil))
	expectError(t, f.client, constant.MsgUnknownEvent)
}

func TestJoinSuccess(t *testing.T) {
	f := newSessionFixture("agent")
	convID := uuid.New()
	f.service.joinResult = &entity.Conversation{Id: convID, Status: entity.ConversationStatusAssigned}

	f.session.dispatch(frame(constant.EventJoinConversation, dto.JoinConversationData{ConversationId: convID}))

	envelope := readFrame(t, f.client)
	if envelope.Event != constant.EventJoinedConversation {
		t.Fatalf("event = %q, want %q", envelope.Event, constant.EventJoinedConversation)
	}
	var data dto.JoinedConversationData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("bad data: %v", err)
	}
	if data.ConversationId != convID || data.Status != "assigned" {
		t.Errorf("data = %+v, want id %s status assigned", data, convID)
	}

	if f.hub.RoomSize(convID) != 1 {
		t.Error("client not subscribed to room")
	}
	// Buffer entry exists: an append now works.
	if err := f.buffer.Append(convID, &entity.Message{Id: uuid.New()}); err != nil {
		t.Errorf("buffer entry missing after join: %v", err)
	}
}

func TestJoinRoleAndSchemaChecks(t *testing.T) {
	t.Run("supervisor role collapses to not allowed", func(t *testing.T) {
		f := newSessionFixture("supervisor")
		f.service.joinErr = apperror.ErrForbidden
		f.session.dispatch(frame(constant.EventJoinConversation, dto.JoinConversationData{ConversationId: uuid.New()}))
		expectError(t, f.client, constant.MsgNotAllowed)
	})

	t.Run("missing conversation id", func(t *testing.T) {
		f := newSessionFixture("candidate")
		f.session.dispatch(frame(constant.EventJoinConversation, map[string]string{}))
		expectError(t, f.client, constant.MsgInvalidSchema)
	})

	t.Run("service errors map to stable strings", func(t *testing.T) {
		cases := []struct {
			err  error
			want string
		}{
			{apperror.ErrNotFound, constant.MsgNotAllowed},
			{apperror.ErrForbidden, constant.MsgNotAllowed},
			{apperror.ErrAlreadyClosed, constant.MsgAlreadyClosed},
			{fmt.Errorf("db exploded"), constant.MsgInternalError},
		}
		for _, tc := range cases {
			f := newSessionFixture("candidate")
			f.service.joinErr = tc.err
			f.session.dispatch(frame(constant.EventJoinConversation, dto.JoinConversationData{ConversationId: uuid.New()}))
			expectError(t, f.client, tc.want)
		}
	})
}

func TestJoinRejectedLeavesNoTrace(t *testing.T) {
	f := newSessionFixture("agent")
	convID := uuid.New()
	f.service.joinErr = apperror.ErrAlreadyClosed

	f.session.dispatch(frame(constant.EventJoinConversation, dto.JoinConversationData{ConversationId: convID}))
	expectError(t, f.client, constant.MsgAlreadyClosed)

	// No buffer entry or subscription may outlive a rejected join: the
	// closed conversation must not accept appends through a resurrected
	// entry.
	if err := f.buffer.Append(convID, &entity.Message{Id: uuid.New()}); err == nil {
		t.Error("buffer accepted an append for a conversation that was never joined")
	}
	if f.hub.RoomSize(convID) != 0 {
		t.Error("client subscribed despite the rejected join")
	}
}

func joinedFixture(t *testing.T, role string) (*sessionFixture, uuid.UUID) {
	t.Helper()
	f := newSessionFixture(role)
	convID := uuid.New()
	f.service.joinResult = &entity.Conversation{Id: convID, Status: entity.ConversationStatusAssigned}
	f.session.dispatch(frame(constant.EventJoinConversation, dto.JoinConversationData{ConversationId: convID}))
	readFrame(t, f.client) // consume JOINED_CONVERSATION
	return f, convID
}

func TestSendBuffersAndBroadcasts(t *testing.T) {
	f, convID := joinedFixture(t, "candidate")

	// Another participant in the room.
	peer := newClient(f.hub, nil, uuid.New(), "agent")
	f.hub.Subscribe(convID, peer)

	f.session.dispatch(frame(constant.EventSendMessage, dto.SendMessageData{
		ConversationId: convID,
		Content:        "hello there",
	}))

	buffered := f.buffer.Peek(convID)
	if len(buffered) != 1 || buffered[0].Content != "hello there" {
		t.Fatalf("buffer = %+v, want one message %q", buffered, "hello there")
	}
	if buffered[0].SenderId != f.client.UserID || buffered[0].SenderRole != "candidate" {
		t.Error("sender identity not stamped from the session")
	}

	envelope := readFrame(t, peer)
	if envelope.Event != constant.EventNewMessage {
		t.Fatalf("peer event = %q, want %q", envelope.Event, constant.EventNewMessage)
	}
	var data dto.NewMessageData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("bad data: %v", err)
	}
	if data.Content != "hello there" || data.SenderId != f.client.UserID {
		t.Errorf("data = %+v", data)
	}

	// Sender gets no echo.
	select {
	case raw := <-f.client.Send:
		t.Errorf("sender received %q", raw)
	default:
	}
}

func TestSendRejections(t *testing.T) {
	t.Run("supervisor role", func(t *testing.T) {
		f := newSessionFixture("supervisor")
		f.session.dispatch(frame(constant.EventSendMessage, dto.SendMessageData{
			ConversationId: uuid.New(),
			Content:        "hi",
		}))
		expectError(t, f.client, constant.MsgForbiddenRole)
	})

	t.Run("without join", func(t *testing.T) {
		f := newSessionFixture("candidate")
		f.session.dispatch(frame(constant.EventSendMessage, dto.SendMessageData{
			ConversationId: uuid.New(),
			Content:        "hi",
		}))
		expectError(t, f.client, constant.MsgMustJoinFirst)
	})

	t.Run("blank content", func(t *testing.T) {
		f, convID := joinedFixture(t, "candidate")
		f.session.dispatch(frame(constant.EventSendMessage, dto.SendMessageData{
			ConversationId: convID,
			Content:        "   ",
		}))
		expectError(t, f.client, constant.MsgInvalidSchema)
	})

	t.Run("after close won the race", func(t *testing.T) {
		f, convID := joinedFixture(t, "candidate")
		f.buffer.Drain(convID)

		f.session.dispatch(frame(constant.EventSendMessage, dto.SendMessageData{
			ConversationId: convID,
			Content:        "too late",
		}))
		expectError(t, f.client, constant.MsgAlreadyClosed)
	})
}

func TestLeaveConversation(t *testing.T) {
	f, convID := joinedFixture(t, "candidate")

	f.session.dispatch(frame(constant.EventLeaveConversation, dto.LeaveConversationData{ConversationId: convID}))

	envelope := readFrame(t, f.client)
	if envelope.Event != constant.EventLeftConversation {
		t.Fatalf("event = %q, want %q", envelope.Event, constant.EventLeftConversation)
	}
	if f.hub.RoomSize(convID) != 0 {
		t.Error("client still in room after leave")
	}

	// A send after leaving requires a rejoin.
	f.session.dispatch(frame(constant.EventSendMessage, dto.SendMessageData{
		ConversationId: convID,
		Content:        "hi again",
	}))
	expectError(t, f.client, constant.MsgMustJoinFirst)
}

func TestLeaveWithoutJoin(t *testing.T) {
	f := newSessionFixture("candidate")
	f.session.dispatch(frame(constant.EventLeaveConversation, dto.LeaveConversationData{ConversationId: uuid.New()}))
	expectError(t, f.client, constant.MsgMustJoinFirst)
}

func TestCloseByAgent(t *testing.T) {
	t.Run("candidate role rejected", func(t *testing.T) {
		f := newSessionFixture("candidate")
		f.session.dispatch(frame(constant.EventCloseConversation, dto.CloseConversationData{ConversationId: uuid.New()}))
		expectError(t, f.client, constant.MsgForbiddenRole)
	})

	t.Run("success acknowledges the closer directly", func(t *testing.T) {
		f, convID := joinedFixture(t, "agent")
		f.service.closeResult = &entity.Conversation{Id: convID, Status: entity.ConversationStatusClosed}

		f.session.dispatch(frame(constant.EventCloseConversation, dto.CloseConversationData{ConversationId: convID}))

		envelope := readFrame(t, f.client)
		if envelope.Event != constant.EventConversationClosed {
			t.Fatalf("event = %q, want %q", envelope.Event, constant.EventConversationClosed)
		}
		if f.service.closeExclude != f.client.SessionID {
			t.Error("closer session not excluded from the room broadcast")
		}
	})

	t.Run("not yet assigned", func(t *testing.T) {
		f, convID := joinedFixture(t, "agent")
		f.service.closeErr = apperror.ErrNotAssigned

		f.session.dispatch(frame(constant.EventCloseConversation, dto.CloseConversationData{ConversationId: convID}))
		expectError(t, f.client, constant.MsgNotAssigned)
	})

	t.Run("already closed", func(t *testing.T) {
		f, convID := joinedFixture(t, "agent")
		f.service.closeErr = apperror.ErrAlreadyClosed

		f.session.dispatch(frame(constant.EventCloseConversation, dto.CloseConversationData{ConversationId: convID}))
		expectError(t, f.client, constant.MsgAlreadyClosed)
	})
}

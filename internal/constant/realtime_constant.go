package constant

// Client -> server events.
const (
	EventJoinConversation  = "JOIN_CONVERSATION"
	EventSendMessage       = "SEND_MESSAGE"
	EventLeaveConversation = "LEAVE_CONVERSATION"
	EventCloseConversation = "CLOSE_CONVERSATION"
)

// Server -> client events.
const (
	EventJoinedConversation = "JOINED_CONVERSATION"
	EventNewMessage         = "NEW_MESSAGE"
	EventLeftConversation   = "LEFT_CONVERSATION"
	EventConversationClosed = "CONVERSATION_CLOSED"
	EventError              = "ERROR"
)

// Stable ERROR messages emitted over the realtime protocol. Clients match
// on these strings, so they never change between releases.
const (
	MsgUnauthorized  = "Unauthorized or invalid token"
	MsgInvalidFormat = "Invalid message format"
	MsgInvalidSchema = "Invalid request schema"
	MsgNotAllowed    = "Not allowed to access this conversation"
	MsgForbiddenRole = "Forbidden for this role"
	MsgAlreadyClosed = "Conversation already closed"
	MsgNotAssigned   = "Conversation not yet assigned"
	MsgMustJoinFirst = "You must join the conversation first"
	MsgUnknownEvent  = "Unknown event"
	MsgInternalError = "Internal server error"
)

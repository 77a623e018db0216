package models

// Outbound event types emitted by the hub.
const (
	EventRoomUpdated         = "room-updated"
	EventThreadSnapshot      = "thread-snapshot"
	EventMessageCreated      = "message-created"
	EventMessageNotification = "message-notification"
	EventUserOnline          = "user-online"
	EventUserOffline         = "user-offline"
	EventOnlineUsers         = "online-users"
	EventError               = "error"
)

// Inbound command types accepted from clients.
const (
	CommandSendMessage = "send-message"
)

// Event is the envelope for everything the hub pushes to a connection.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ClientCommand is a frame sent by a client over its connection.
type ClientCommand struct {
	Type              string `json:"type"`
	RecipientUsername string `json:"recipientUsername"`
	Content           string `json:"content"`
}

// RoomUpdate is the payload of EventRoomUpdated.
type RoomUpdate struct {
	Name        string       `json:"name"`
	Connections []Connection `json:"connections"`
}

// MessageNotification is the payload of EventMessageNotification. It carries
// only who wrote, never the message body.
type MessageNotification struct {
	Username string `json:"username"`
	KnownAs  string `json:"knownAs"`
}

// PresenceChange is the payload of EventUserOnline and EventUserOffline.
type PresenceChange struct {
	Username string `json:"username"`
}

// ErrorPayload is the payload of EventError.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

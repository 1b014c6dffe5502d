package models

import "time"

// ChatRoom is the room record backing an event's group chat. One room per
// event, refreshed when membership or venue changes.
type ChatRoom struct {
	ChatRoomID  string    `dynamodbav:"chatRoomId" json:"chatRoomId"`
	EventID     string    `dynamodbav:"eventId" json:"eventId"`
	Members     []string  `dynamodbav:"members" json:"members"`
	VenueName   string    `dynamodbav:"venueName,omitempty" json:"venueName,omitempty"`
	CreatedAt   time.Time `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated time.Time `dynamodbav:"lastUpdated" json:"lastUpdated"`
}

// GroupMessage is a single message in an event chat room. The core only posts
// system messages; user message delivery lives elsewhere.
type GroupMessage struct {
	MessageID  string `dynamodbav:"messageId" json:"messageId"`
	ChatRoomID string `dynamodbav:"chatRoomId" json:"chatRoomId"`
	SenderID   string `dynamodbav:"senderId,omitempty" json:"senderId,omitempty"` // empty for system messages
	Content    string `dynamodbav:"content" json:"content"`
	IsSystem   bool   `dynamodbav:"isSystem" json:"isSystem"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

// Table Names for DynamoDB
const ChatRoomsTable = "ChatRooms"
const GroupMessagesTable = "GroupMessages"

// ChatRoomEventIndex is the GSI for finding the room of an event.
const ChatRoomEventIndex = "eventId-index"

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pairup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// GroupChat is the chat collaborator consumed by the event core: one
// idempotent room create/refresh call per venue finalization.
type GroupChat interface {
	CreateOrUpdateEventChatRoom(ctx context.Context, event *models.Event, memberIDs []string, venue *models.VenueOption) (string, error)
}

// GroupChatService manages event chat rooms in DynamoDB.
type GroupChatService struct {
	Dynamo *DynamoService
}

func NewGroupChatService(dynamo *DynamoService) *GroupChatService {
	return &GroupChatService{Dynamo: dynamo}
}

// CreateOrUpdateEventChatRoom creates the room for an event or refreshes its
// membership and venue. Idempotent keyed by event id; returns the room id.
func (s *GroupChatService) CreateOrUpdateEventChatRoom(ctx context.Context, event *models.Event, memberIDs []string, venue *models.VenueOption) (string, error) {
	now := time.Now().UTC()

	room, err := s.findRoomByEvent(ctx, event.EventID)
	if err != nil {
		return "", err
	}
	if room == nil {
		room = &models.ChatRoom{
			ChatRoomID: uuid.NewString(),
			EventID:    event.EventID,
			CreatedAt:  now,
		}
	}
	room.Members = memberIDs
	if venue != nil {
		room.VenueName = venue.Name
	}
	room.LastUpdated = now

	if err := s.Dynamo.PutItem(ctx, models.ChatRoomsTable, room); err != nil {
		return "", fmt.Errorf("failed to store chat room for event %s: %w", event.EventID, err)
	}

	if venue != nil {
		if err := s.postSystemMessage(ctx, room.ChatRoomID, fmt.Sprintf("Venue locked in: %s. See you there!", venue.Name)); err != nil {
			log.Printf("⚠️ Failed to post system message for room %s: %v", room.ChatRoomID, err)
		}
	}

	log.Printf("✅ Chat room %s ready for event %s (%d members)", room.ChatRoomID, event.EventID, len(memberIDs))
	return room.ChatRoomID, nil
}

// findRoomByEvent looks up the existing room for an event, if any.
func (s *GroupChatService) findRoomByEvent(ctx context.Context, eventID string) (*models.ChatRoom, error) {
	keyCondition := "eventId = :eventId"
	expressionValues := map[string]types.AttributeValue{
		":eventId": &types.AttributeValueMemberS{Value: eventID},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ChatRoomsTable, models.ChatRoomEventIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat room for event %s: %w", eventID, err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var room models.ChatRoom
	if err := attributevalue.UnmarshalMap(items[0], &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat room: %w", err)
	}
	return &room, nil
}

func (s *GroupChatService) postSystemMessage(ctx context.Context, chatRoomID, content string) error {
	message := models.GroupMessage{
		MessageID:  uuid.NewString(),
		ChatRoomID: chatRoomID,
		Content:    content,
		IsSystem:   true,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	return s.Dynamo.PutItem(ctx, models.GroupMessagesTable, message)
}

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pairup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// transactionAttempts bounds optimistic retries before surfacing ErrConflict.
const transactionAttempts = 3

// DynamoAPI is the subset of DynamoService the store binds to.
type DynamoAPI interface {
	GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error)
	QueryItemsWithIndex(ctx context.Context, tableName, indexName, keyConditionExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, limit int32) ([]map[string]types.AttributeValue, error)
	QueryItemsWithFilters(ctx context.Context, tableName, indexName, keyCondition string, expressionValues map[string]types.AttributeValue, expressionNames map[string]string, filterExpression string) ([]map[string]types.AttributeValue, error)
	TransactWriteItems(ctx context.Context, items []types.TransactWriteItem) error
}

// DynamoStore implements Store on DynamoDB. Atomicity comes from
// TransactWriteItems with a per-record version condition: every write asserts
// the version observed when the record was read inside the transaction.
type DynamoStore struct {
	Dynamo DynamoAPI
}

func NewDynamoStore(dynamo DynamoAPI) *DynamoStore {
	return &DynamoStore{Dynamo: dynamo}
}

func (s *DynamoStore) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.getByKey(ctx, models.UserProfilesTable, "userId", userID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *DynamoStore) GetPairMatch(ctx context.Context, pairKey string) (*models.PairMatch, error) {
	var pair models.PairMatch
	if err := s.getByKey(ctx, models.PairMatchesTable, "pairKey", pairKey, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (s *DynamoStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := s.getByKey(ctx, models.EventsTable, "eventId", eventID, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *DynamoStore) GetEventParticipant(ctx context.Context, participantID string) (*models.EventParticipant, error) {
	var participant models.EventParticipant
	if err := s.getByKey(ctx, models.EventParticipantsTable, "participantId", participantID, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

func (s *DynamoStore) getByKey(ctx context.Context, tableName, keyAttr, keyValue string, out interface{}) error {
	item, err := s.Dynamo.GetItem(ctx, tableName, map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: keyValue},
	})
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%s '%s': %w", tableName, keyValue, models.ErrNotFound)
	}
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s item: %w", tableName, err)
	}
	return nil
}

// QueryQueuedPairMatches drains the queue GSI for one event type. Pairs
// already tied to an event are filtered out server-side.
func (s *DynamoStore) QueryQueuedPairMatches(ctx context.Context, eventType string) ([]models.PairMatch, error) {
	keyCondition := "queueStatus = :queued AND queueEventType = :eventType"
	expressionValues := map[string]types.AttributeValue{
		":queued":    &types.AttributeValueMemberS{Value: models.QueueStatusQueued},
		":eventType": &types.AttributeValueMemberS{Value: eventType},
	}

	items, err := s.Dynamo.QueryItemsWithFilters(ctx, models.PairMatchesTable, models.PairQueueIndex,
		keyCondition, expressionValues, nil, "attribute_not_exists(pendingEventId)")
	if err != nil {
		return nil, err
	}

	var pairs []models.PairMatch
	if err := attributevalue.UnmarshalListOfMaps(items, &pairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queued pairs: %w", err)
	}
	return pairs, nil
}

// QueryActivePairMatchesForUser queries both per-user GSIs; the sorted member
// order means a user sits on exactly one side of any pair, so the two result
// sets never overlap.
func (s *DynamoStore) QueryActivePairMatchesForUser(ctx context.Context, userID string) ([]models.PairMatch, error) {
	indexes := []struct {
		name    string
		keyAttr string
	}{
		{models.PairUserAIndex, "userIdA"},
		{models.PairUserBIndex, "userIdB"},
	}

	var pairs []models.PairMatch
	for _, index := range indexes {
		keyCondition := fmt.Sprintf("%s = :userId AND #status = :active", index.keyAttr)
		expressionValues := map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
			":active": &types.AttributeValueMemberS{Value: models.PairStatusActive},
		}
		expressionNames := map[string]string{"#status": "status"}

		items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.PairMatchesTable, index.name,
			keyCondition, expressionValues, expressionNames, 0)
		if err != nil {
			return nil, err
		}

		var chunk []models.PairMatch
		if err := attributevalue.UnmarshalListOfMaps(items, &chunk); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pairs for user: %w", err)
		}
		pairs = append(pairs, chunk...)
	}
	return pairs, nil
}

func (s *DynamoStore) QueryReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	keyCondition := "#status = :ready AND #date BETWEEN :from AND :to"
	expressionValues := map[string]types.AttributeValue{
		":ready": &types.AttributeValueMemberS{Value: models.EventStatusReady},
		":from":  &types.AttributeValueMemberS{Value: from.UTC().Format(time.RFC3339)},
		":to":    &types.AttributeValueMemberS{Value: to.UTC().Format(time.RFC3339)},
	}
	expressionValues[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	expressionNames := map[string]string{"#status": "status", "#date": "date"}

	items, err := s.Dynamo.QueryItemsWithFilters(ctx, models.EventsTable, models.EventStatusDateIndex,
		keyCondition, expressionValues, expressionNames, "reminderSent = :false")
	if err != nil {
		return nil, err
	}

	var events []models.Event
	if err := attributevalue.UnmarshalListOfMaps(items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reminder candidates: %w", err)
	}

	// BETWEEN is inclusive on both ends; the sweep window is half-open.
	var inWindow []models.Event
	for _, e := range events {
		if e.Date != nil && e.Date.Before(to) {
			inWindow = append(inWindow, e)
		}
	}
	return inWindow, nil
}

func (s *DynamoStore) QueryEventParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	keyCondition := "eventId = :eventId"
	expressionValues := map[string]types.AttributeValue{
		":eventId": &types.AttributeValueMemberS{Value: eventID},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.EventParticipantsTable, models.ParticipantEventIndex,
		keyCondition, expressionValues, nil, 0)
	if err != nil {
		return nil, err
	}

	var participants []models.EventParticipant
	if err := attributevalue.UnmarshalListOfMaps(items, &participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event participants: %w", err)
	}
	return participants, nil
}

// RunTransaction executes fn with buffered writes, committing them through
// TransactWriteItems. Version mismatches re-run fn from scratch.
func (s *DynamoStore) RunTransaction(ctx context.Context, fn func(tx Txn) error) error {
	var lastErr error
	for attempt := 1; attempt <= transactionAttempts; attempt++ {
		tx := &dynamoTxn{store: s, readVersions: map[string]txnRead{}}
		if err := fn(tx); err != nil {
			return err
		}
		if tx.err != nil {
			// nothing commits once any buffered write failed to marshal
			return tx.err
		}
		if len(tx.writes) == 0 {
			return nil
		}
		err := s.Dynamo.TransactWriteItems(ctx, tx.writes)
		if err == nil {
			return nil
		}
		if !IsTransactionCanceled(err) {
			return err
		}
		log.Printf("🔄 Retrying transaction after conflict (attempt %d/%d)", attempt, transactionAttempts)
		lastErr = err
	}
	return fmt.Errorf("transaction retries exhausted: %w (%v)", models.ErrConflict, lastErr)
}

type txnRead struct {
	version int64
	existed bool
}

// dynamoTxn tracks the version of every record read so the commit can assert
// nothing moved underneath it.
type dynamoTxn struct {
	store        *DynamoStore
	readVersions map[string]txnRead
	writes       []types.TransactWriteItem
	err          error
}

func txnKey(tableName, keyValue string) string {
	return tableName + "/" + keyValue
}

func (t *dynamoTxn) get(ctx context.Context, tableName, keyAttr, keyValue string, out interface{}, version *int64) error {
	item, err := t.store.Dynamo.GetItem(ctx, tableName, map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: keyValue},
	})
	if err != nil {
		return err
	}
	if item == nil {
		t.readVersions[txnKey(tableName, keyValue)] = txnRead{}
		return fmt.Errorf("%s '%s': %w", tableName, keyValue, models.ErrNotFound)
	}
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s item: %w", tableName, err)
	}
	t.readVersions[txnKey(tableName, keyValue)] = txnRead{version: *version, existed: true}
	return nil
}

func (t *dynamoTxn) put(tableName, keyAttr, keyValue string, item interface{}, version int64) {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		t.err = fmt.Errorf("failed to marshal %s item for transaction: %w", tableName, err)
		return
	}

	read, wasRead := t.readVersions[txnKey(tableName, keyValue)]
	put := &types.Put{
		TableName: &tableName,
		Item:      marshaled,
	}
	switch {
	case wasRead && read.existed:
		condition := "version = :expectedVersion"
		put.ConditionExpression = &condition
		put.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expectedVersion": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version-1)},
		}
	case wasRead && !read.existed:
		condition := fmt.Sprintf("attribute_not_exists(%s)", keyAttr)
		put.ConditionExpression = &condition
	}
	t.writes = append(t.writes, types.TransactWriteItem{Put: put})
}

func (t *dynamoTxn) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := t.get(ctx, models.UserProfilesTable, "userId", userID, &profile, &profile.Version); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (t *dynamoTxn) PutUserProfile(profile *models.UserProfile) {
	profile.Version++
	t.put(models.UserProfilesTable, "userId", profile.UserID, profile, profile.Version)
}

func (t *dynamoTxn) GetPairMatch(ctx context.Context, pairKey string) (*models.PairMatch, error) {
	var pair models.PairMatch
	if err := t.get(ctx, models.PairMatchesTable, "pairKey", pairKey, &pair, &pair.Version); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (t *dynamoTxn) PutPairMatch(pair *models.PairMatch) {
	pair.Version++
	t.put(models.PairMatchesTable, "pairKey", pair.PairKey, pair, pair.Version)
}

func (t *dynamoTxn) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := t.get(ctx, models.EventsTable, "eventId", eventID, &event, &event.Version); err != nil {
		return nil, err
	}
	return &event, nil
}

func (t *dynamoTxn) PutEvent(event *models.Event) {
	event.Version++
	t.put(models.EventsTable, "eventId", event.EventID, event, event.Version)
}

func (t *dynamoTxn) GetEventParticipant(ctx context.Context, participantID string) (*models.EventParticipant, error) {
	var participant models.EventParticipant
	if err := t.get(ctx, models.EventParticipantsTable, "participantId", participantID, &participant, &participant.Version); err != nil {
		return nil, err
	}
	return &participant, nil
}

func (t *dynamoTxn) PutEventParticipant(participant *models.EventParticipant) {
	participant.Version++
	t.put(models.EventParticipantsTable, "participantId", participant.ParticipantID, participant, participant.Version)
}

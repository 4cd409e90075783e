package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"Grinders-Attendance-Backend/config"
	"Grinders-Attendance-Backend/models"
)

// AttendanceRepository is the Mongo-backed attendance ledger: the append-only
// event collection plus the status projection kept on the user document.
type AttendanceRepository interface {
	GetStatus(ctx context.Context, userID primitive.ObjectID) (*models.UserAttendanceStatus, error)
	CommitEvent(ctx context.Context, event *models.AttendanceEvent) error

	FindEventsByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.AttendanceEvent, error)
	GetTodayAttendanceWithUserDetails(ctx context.Context) ([]models.AttendanceWithUser, error)
	GetAllAttendanceWithUserDetails(ctx context.Context, filter bson.M, page, limit int64) ([]models.AttendanceWithUser, int64, error)
	CountEvents(ctx context.Context, filter bson.M) (int64, error)
}

type attendanceRepository struct {
	client          *mongo.Client
	eventCollection *mongo.Collection
	userCollection  *mongo.Collection
}

func NewAttendanceRepository() AttendanceRepository {
	return &attendanceRepository{
		client:          config.MongoConn,
		eventCollection: config.GetCollection(config.AttendanceEventCollection),
		userCollection:  config.GetCollection(config.UserCollection),
	}
}

func (r *attendanceRepository) GetStatus(ctx context.Context, userID primitive.ObjectID) (*models.UserAttendanceStatus, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"last_event_type":    1,
		"device_id":          1,
		"last_attendance_at": 1,
	})

	var status models.UserAttendanceStatus
	err := r.userCollection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&status)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load attendance status: %w", err)
	}
	return &status, nil
}

// CommitEvent appends the event and folds it into the user's status
// projection as one transaction. Standalone Mongo has no transactions; in
// that case we fall back to sequential writes, which leaves a narrow window
// where the status update can be lost independently of the event write.
func (r *attendanceRepository) CommitEvent(ctx context.Context, event *models.AttendanceEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.eventCollection.InsertOne(sc, event); err != nil {
			return nil, err
		}
		return nil, r.applyStatus(sc, event)
	})
	if err == nil {
		return nil
	}
	if !isTransactionUnsupported(err) {
		return fmt.Errorf("failed to commit attendance event: %w", err)
	}

	log.Println("Warning: MongoDB topology does not support transactions, committing attendance event sequentially")
	if _, err := r.eventCollection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to append attendance event: %w", err)
	}
	if err := r.applyStatus(ctx, event); err != nil {
		// The event is already persisted; only the projection is behind.
		return fmt.Errorf("event saved but status projection update failed: %w", err)
	}
	return nil
}

func (r *attendanceRepository) applyStatus(ctx context.Context, event *models.AttendanceEvent) error {
	update := bson.M{
		"$set": bson.M{
			"last_event_type":    event.Type,
			"device_id":          event.DeviceID,
			"last_attendance_at": event.Timestamp,
			"updated_at":         time.Now(),
		},
	}
	result, err := r.userCollection.UpdateByID(ctx, event.UserID, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s not found", event.UserID.Hex())
	}
	return nil
}

func isTransactionUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// IllegalOperation: "Transaction numbers are only allowed on a
		// replica set member or mongos".
		return ce.Code == 20 || strings.Contains(ce.Message, "Transaction numbers")
	}
	return false
}

func (r *attendanceRepository) FindEventsByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.AttendanceEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.eventCollection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find attendance history: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.AttendanceEvent
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode attendance history: %w", err)
	}

	if len(results) == 0 {
		return []models.AttendanceEvent{}, nil
	}
	return results, nil
}

func (r *attendanceRepository) GetTodayAttendanceWithUserDetails(ctx context.Context) ([]models.AttendanceWithUser, error) {
	today := models.DayKey(time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "date_key", Value: today}}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: config.UserCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "userDetails"},
		}}},
		{{Key: "$unwind", Value: "$userDetails"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "user_id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "lat", Value: 1},
			{Key: "lng", Value: 1},
			{Key: "accuracy_m", Value: 1},
			{Key: "distance_m", Value: 1},
			{Key: "device_id", Value: 1},
			{Key: "timestamp", Value: 1},
			{Key: "date_key", Value: 1},
			{Key: "user_name", Value: "$userDetails.name"},
			{Key: "user_email", Value: "$userDetails.email"},
			{Key: "user_role", Value: "$userDetails.role"},
		}}},
	}

	cursor, err := r.eventCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate today's attendance: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.AttendanceWithUser
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode today's attendance: %w", err)
	}

	if len(results) == 0 {
		return []models.AttendanceWithUser{}, nil
	}
	return results, nil
}

func (r *attendanceRepository) GetAllAttendanceWithUserDetails(ctx context.Context, filter bson.M, page, limit int64) ([]models.AttendanceWithUser, int64, error) {
	total, err := r.eventCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance events: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "date_key", Value: -1}, {Key: "timestamp", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: config.UserCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "userDetails"},
		}}},
		{{Key: "$unwind", Value: "$userDetails"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "user_id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "lat", Value: 1},
			{Key: "lng", Value: 1},
			{Key: "accuracy_m", Value: 1},
			{Key: "distance_m", Value: 1},
			{Key: "device_id", Value: 1},
			{Key: "timestamp", Value: 1},
			{Key: "date_key", Value: 1},
			{Key: "user_name", Value: "$userDetails.name"},
			{Key: "user_email", Value: "$userDetails.email"},
			{Key: "user_role", Value: "$userDetails.role"},
		}}},
	}

	cursor, err := r.eventCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate attendance history: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.AttendanceWithUser
	if err = cursor.All(ctx, &results); err != nil {
		return nil, 0, fmt.Errorf("failed to decode attendance history: %w", err)
	}

	if len(results) == 0 {
		return []models.AttendanceWithUser{}, total, nil
	}
	return results, total, nil
}

func (r *attendanceRepository) CountEvents(ctx context.Context, filter bson.M) (int64, error) {
	total, err := r.eventCollection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance events: %w", err)
	}
	return total, nil
}

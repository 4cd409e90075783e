package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"Grinders-Attendance-Backend/config"
	"Grinders-Attendance-Backend/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		collection: config.GetCollection(config.UserCollection),
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*mongo.InsertOneResult, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsFirstLogin = true

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return result, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, updateData bson.M) (*mongo.UpdateResult, error) {
	updateData["updated_at"] = time.Now()
	filter := bson.M{"_id": id}
	update := bson.M{"$set": updateData}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return result, nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context, filter bson.M, page, limit int64) ([]models.User, int64, error) {
	findOptions := options.Find()
	findOptions.SetSkip((page - 1) * limit)
	findOptions.SetLimit(limit)
	findOptions.SetSort(bson.D{{Key: "role", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return users, total, nil
}

// GetAttendanceStatus reads the status projection slice of the user document.
// Reads go to the primary, so a user always sees their own latest admission.
func (r *UserRepository) GetAttendanceStatus(ctx context.Context, userID primitive.ObjectID) (*models.UserAttendanceStatus, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"last_event_type":    1,
		"device_id":          1,
		"last_attendance_at": 1,
	})

	var status models.UserAttendanceStatus
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load attendance status: %w", err)
	}
	return &status, nil
}

// ClearDeviceBinding removes a user's bound device id so their next admission
// can claim a new one. Admin action only.
func (r *UserRepository) ClearDeviceBinding(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"device_id": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	result, err := r.collection.UpdateByID(ctx, userID, update)
	if err != nil {
		return fmt.Errorf("failed to clear device binding: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// SetRebindToken stores a one-time token the employee's replacement device
// can redeem to take over the binding.
func (r *UserRepository) SetRebindToken(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"rebind_token":            token,
			"rebind_token_expires_at": expiresAt,
			"updated_at":              time.Now(),
		},
	}
	result, err := r.collection.UpdateByID(ctx, userID, update)
	if err != nil {
		return fmt.Errorf("failed to store rebind token: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// RedeemRebindToken atomically swaps the device binding when the given user
// holds this unexpired token, consuming the token in the same update. Returns
// the user, or nil if the token is unknown, expired, or not theirs.
func (r *UserRepository) RedeemRebindToken(ctx context.Context, userID primitive.ObjectID, token, newDeviceID string) (*models.User, error) {
	filter := bson.M{
		"_id":                     userID,
		"rebind_token":            token,
		"rebind_token_expires_at": bson.M{"$gt": time.Now()},
	}
	update := bson.M{
		"$set": bson.M{
			"device_id":  newDeviceID,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{
			"rebind_token":            "",
			"rebind_token_expires_at": "",
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to redeem rebind token: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) CountByFilter(ctx context.Context, filter bson.M) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

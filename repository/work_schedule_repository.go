package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"Grinders-Attendance-Backend/config"
	"Grinders-Attendance-Backend/models"
)

type WorkScheduleRepository struct {
	collection *mongo.Collection
}

func NewWorkScheduleRepository() *WorkScheduleRepository {
	return &WorkScheduleRepository{
		collection: config.GetCollection(config.WorkScheduleCollection),
	}
}

func (r *WorkScheduleRepository) Create(ctx context.Context, schedule *models.WorkSchedule) (*models.WorkSchedule, error) {
	schedule.ID = primitive.NewObjectID()
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to create work schedule: %w", err)
	}
	return schedule, nil
}

func (r *WorkScheduleRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.WorkSchedule, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find work schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.WorkSchedule
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode work schedules: %w", err)
	}

	if len(results) == 0 {
		return []models.WorkSchedule{}, nil
	}
	return results, nil
}

func (r *WorkScheduleRepository) FindAllWithFilter(ctx context.Context, filter bson.M) ([]models.WorkSchedule, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find work schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []models.WorkSchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode work schedules: %w", err)
	}
	return schedules, nil
}

func (r *WorkScheduleRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New("schedule not found")
	}
	return nil
}

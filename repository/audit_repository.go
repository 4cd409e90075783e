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

// AuditRepository is the append-only admission audit log. The core only ever
// writes here; List exists for the admin report view.
type AuditRepository interface {
	Append(ctx context.Context, record *models.AuditRecord) error
	List(ctx context.Context, filter bson.M, page, limit int64) ([]models.AuditRecord, int64, error)
	CountRecords(ctx context.Context, filter bson.M) (int64, error)
}

type auditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository() AuditRepository {
	return &auditRepository{
		collection: config.GetCollection(config.AuditLogCollection),
	}
}

func (r *auditRepository) Append(ctx context.Context, record *models.AuditRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter bson.M, page, limit int64) ([]models.AuditRecord, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit records: %w", err)
	}

	findOptions := options.Find()
	findOptions.SetSkip((page - 1) * limit)
	findOptions.SetLimit(limit)
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.AuditRecord
	if err = cursor.All(ctx, &results); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit records: %w", err)
	}

	if len(results) == 0 {
		return []models.AuditRecord{}, total, nil
	}
	return results, total, nil
}

func (r *auditRepository) CountRecords(ctx context.Context, filter bson.M) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return total, nil
}

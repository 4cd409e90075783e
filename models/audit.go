package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DecisionAdmitted = "admitted"
	DecisionDenied   = "denied"
)

// AuditRecord is one admission decision, admitted or denied. Append-only,
// write-only for the core; it exists for offline investigation and is only
// ever read back by the admin listing.
type AuditRecord struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	DeviceID  string             `json:"device_id" bson:"device_id"`
	Decision  string             `json:"decision" bson:"decision"`
	Reason    string             `json:"reason" bson:"reason"`
	EventType string             `json:"event_type,omitempty" bson:"event_type,omitempty"`
	Lat       float64            `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng       float64            `json:"lng,omitempty" bson:"lng,omitempty"`
	AccuracyM float64            `json:"accuracy_m,omitempty" bson:"accuracy_m,omitempty"`
	DistanceM float64            `json:"distance_m,omitempty" bson:"distance_m,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

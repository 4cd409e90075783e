package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventCheckIn  = "checkin"
	EventCheckOut = "checkout"
)

// AttendanceEvent is one admitted check-in/out. Append-only; ordering is by
// the server-assigned Timestamp, never by the client clock (ClientTime is
// advisory, kept for audit only).
type AttendanceEvent struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id"`
	Email      string             `json:"email,omitempty" bson:"email,omitempty"`
	Type       string             `json:"type" bson:"type"`
	Lat        float64            `json:"lat" bson:"lat"`
	Lng        float64            `json:"lng" bson:"lng"`
	AccuracyM  float64            `json:"accuracy_m" bson:"accuracy_m"`
	DistanceM  float64            `json:"distance_m" bson:"distance_m"`
	DeviceID   string             `json:"device_id" bson:"device_id"`
	Timestamp  time.Time          `json:"timestamp" bson:"timestamp"`
	ClientTime string             `json:"client_time,omitempty" bson:"client_time,omitempty"`
	DateKey    string             `json:"date_key" bson:"date_key"`
}

// DayKey buckets a server timestamp into its UTC calendar date, the key the
// report consumers group by.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// AttendanceCheckPayload is what the employee's device submits. It carries
// either a fix (lat/lng/accuracy) or, when the sensor itself failed, the
// platform error code, never both.
type AttendanceCheckPayload struct {
	Type          string  `json:"type" validate:"required,oneof=checkin checkout"`
	Lat           float64 `json:"lat" validate:"omitempty,latitude"`
	Lng           float64 `json:"lng" validate:"omitempty,longitude"`
	AccuracyM     float64 `json:"accuracy_m" validate:"omitempty,gte=0"`
	DeviceID      string  `json:"device_id" validate:"required,min=8,max=64"`
	ClientTime    string  `json:"client_time" validate:"omitempty"`
	LocationError int     `json:"location_error" validate:"omitempty,oneof=1 2 3"`
}

// AttendancePreviewPayload drives the display projection; it is re-sent every
// 10-20s while the employee page is open and never writes anything.
type AttendancePreviewPayload struct {
	Lat       float64 `json:"lat" validate:"latitude"`
	Lng       float64 `json:"lng" validate:"longitude"`
	AccuracyM float64 `json:"accuracy_m" validate:"gte=0"`
}

type DeviceRebindPayload struct {
	Token    string `json:"token" validate:"required,uuid4"`
	DeviceID string `json:"device_id" validate:"required,min=8,max=64"`
}

type AttendanceWithUser struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Type      string             `json:"type" bson:"type"`
	Lat       float64            `json:"lat" bson:"lat"`
	Lng       float64            `json:"lng" bson:"lng"`
	AccuracyM float64            `json:"accuracy_m" bson:"accuracy_m"`
	DistanceM float64            `json:"distance_m" bson:"distance_m"`
	DeviceID  string             `json:"device_id" bson:"device_id"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
	DateKey   string             `json:"date_key" bson:"date_key"`
	UserName  string             `json:"user_name" bson:"user_name"`
	UserEmail string             `json:"user_email" bson:"user_email"`
	UserRole  string             `json:"user_role,omitempty" bson:"user_role,omitempty"`
}

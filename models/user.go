package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name,omitempty"`
	Email        string             `json:"email" bson:"email,omitempty"`
	Password     string             `json:"-" bson:"password,omitempty"`
	Role         string             `json:"role" bson:"role,omitempty"`
	Active       bool               `json:"active" bson:"active"`
	IsFirstLogin bool               `json:"is_first_login" bson:"isFirstLogin,omitempty"`

	// Attendance status projection. LastEventType mirrors the most recent
	// admitted event for this user; DeviceID is the bound installation id,
	// empty until the first admission claims it.
	LastEventType    string    `json:"last_event_type,omitempty" bson:"last_event_type,omitempty"`
	DeviceID         string    `json:"device_id,omitempty" bson:"device_id,omitempty"`
	LastAttendanceAt time.Time `json:"last_attendance_at,omitempty" bson:"last_attendance_at,omitempty"`

	// One-time device rebind token issued by an admin, consumed by the
	// employee's replacement device.
	RebindToken          string    `json:"-" bson:"rebind_token,omitempty"`
	RebindTokenExpiresAt time.Time `json:"-" bson:"rebind_token_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at,omitempty"`
}

// UserAttendanceStatus is the slice of the user document the attendance core
// reads and writes.
type UserAttendanceStatus struct {
	UserID        primitive.ObjectID `json:"user_id" bson:"_id"`
	LastEventType string             `json:"last_event_type" bson:"last_event_type"`
	BoundDeviceID string             `json:"bound_device_id" bson:"device_id"`
	LastUpdatedAt time.Time          `json:"last_updated_at" bson:"last_attendance_at"`
}

type UserRegisterPayload struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=50,hasuppercase"`
	Role     string `json:"role" validate:"required,oneof=admin employee"`
}

type UserLoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordPayload struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=50,hasuppercase"`
}

type Claims struct {
	UserID       primitive.ObjectID `json:"user_id"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	IsFirstLogin bool               `json:"is_first_login"`
}

type DashboardStats struct {
	TotalEmployees   int64 `json:"total_employees"`
	CheckedInNow     int64 `json:"checked_in_now"`
	EventsToday      int64 `json:"events_today"`
	DenialsToday     int64 `json:"denials_today"`
	BoundDeviceCount int64 `json:"bound_device_count"`
}

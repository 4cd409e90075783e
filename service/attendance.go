// Package service holds the admission core: the decision procedure that,
// given a fresh position fix and the user's last known attendance state,
// decides whether a check-in or check-out may be persisted. Everything here
// runs server-side; client-submitted coordinates are advisory input that is
// re-judged on every attempt.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"Grinders-Attendance-Backend/models"
	"Grinders-Attendance-Backend/pkg/geofence"
	"Grinders-Attendance-Backend/pkg/geoloc"
)

// Reason codes persisted on audit records and returned to the client.
const (
	ReasonSuccess          = "success"
	ReasonWeakSignal       = "gps_weak"
	ReasonOutOfRange       = "out_of_range"
	ReasonDeviceMismatch   = "device_mismatch"
	ReasonWrongSequence    = "wrong_sequence"
	ReasonPermissionDenied = "gps_permission_denied"
	ReasonUnavailable      = "gps_unavailable"
	ReasonTimeout          = "gps_timeout"
)

// Ledger is the attendance store as the state machine sees it. CommitEvent
// appends the event and updates the user's status projection as one logical
// unit of work.
type Ledger interface {
	GetStatus(ctx context.Context, userID primitive.ObjectID) (*models.UserAttendanceStatus, error)
	CommitEvent(ctx context.Context, event *models.AttendanceEvent) error
}

// AuditSink records admission decisions. Best effort: a failure here must
// never block or reverse an admission.
type AuditSink interface {
	Append(ctx context.Context, record *models.AuditRecord) error
}

// AdmissionRequest is one attempt to check in or out. The caller serializes
// attempts per user; there is no double-submit protection below this layer.
type AdmissionRequest struct {
	UserID     primitive.ObjectID
	Email      string
	Type       string // models.EventCheckIn or models.EventCheckOut
	Fix        geofence.Fix
	DeviceID   string
	ClientTime string
}

// AdmissionResult reports the decision. Denials are results, not errors;
// the error return of AttemptAdmission is reserved for ledger failures
// ("not saved, retry").
type AdmissionResult struct {
	Admitted  bool    `json:"admitted"`
	EventType string  `json:"event_type,omitempty"`
	Reason    string  `json:"reason"`
	Message   string  `json:"message"`
	DistanceM float64 `json:"distance_m"`
	AccuracyM float64 `json:"accuracy_m"`
}

type AttendanceService struct {
	cfg    geofence.Config
	ledger Ledger
	audit  AuditSink
	now    func() time.Time
}

func NewAttendanceService(cfg geofence.Config, ledger Ledger, audit AuditSink) *AttendanceService {
	return &AttendanceService{
		cfg:    cfg,
		ledger: ledger,
		audit:  audit,
		now:    time.Now,
	}
}

func (s *AttendanceService) Geofence() geofence.Config {
	return s.cfg
}

// NextEventType returns the only admissible event type given the last
// admitted one. NoRecord and checkout are equivalent: both mean "eligible to
// check in next".
func NextEventType(lastEventType string) string {
	if lastEventType == models.EventCheckIn {
		return models.EventCheckOut
	}
	return models.EventCheckIn
}

// AttemptAdmission runs the five checks in order; the first failing check
// short-circuits and is the sole denial reason reported and audited.
func (s *AttendanceService) AttemptAdmission(ctx context.Context, req AdmissionRequest) (*AdmissionResult, error) {
	verdict := geofence.Evaluate(s.cfg, req.Fix)

	if !verdict.AccuracyOK {
		return s.deny(ctx, req, verdict, ReasonWeakSignal), nil
	}
	if !verdict.RangeOK {
		return s.deny(ctx, req, verdict, ReasonOutOfRange), nil
	}

	status, err := s.ledger.GetStatus(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance status: %w", err)
	}

	var lastType, boundDevice string
	if status != nil {
		lastType = status.LastEventType
		boundDevice = status.BoundDeviceID
	}

	// An unset binding is claimed by this admission (below, as part of the
	// commit); once set it must match every future attempt until an admin
	// clears it.
	if boundDevice != "" && boundDevice != req.DeviceID {
		return s.deny(ctx, req, verdict, ReasonDeviceMismatch), nil
	}

	if req.Type != NextEventType(lastType) {
		return s.deny(ctx, req, verdict, ReasonWrongSequence), nil
	}

	now := s.now().UTC()
	event := &models.AttendanceEvent{
		ID:         primitive.NewObjectID(),
		UserID:     req.UserID,
		Email:      req.Email,
		Type:       req.Type,
		Lat:        req.Fix.Lat,
		Lng:        req.Fix.Lng,
		AccuracyM:  verdict.AccuracyM,
		DistanceM:  verdict.DistanceM,
		DeviceID:   req.DeviceID,
		Timestamp:  now,
		ClientTime: req.ClientTime,
		DateKey:    models.DayKey(now),
	}

	if err := s.ledger.CommitEvent(ctx, event); err != nil {
		// Nothing was admitted; status and ledger stay as if this attempt
		// never happened. The caller tells the user to retry.
		return nil, fmt.Errorf("failed to persist attendance event: %w", err)
	}

	s.writeAudit(ctx, req, verdict, models.DecisionAdmitted, ReasonSuccess)

	return &AdmissionResult{
		Admitted:  true,
		EventType: req.Type,
		Reason:    ReasonSuccess,
		Message:   successMessage(req.Type),
		DistanceM: verdict.DistanceM,
		AccuracyM: verdict.AccuracyM,
	}, nil
}

// ReportSensorFailure audits an attempt that never produced a usable fix.
// Sensor failures short-circuit before any geofence or device check and are
// retryable by the user at will.
func (s *AttendanceService) ReportSensorFailure(ctx context.Context, req AdmissionRequest, sensorErr error) *AdmissionResult {
	reason := ReasonUnavailable
	switch {
	case errors.Is(sensorErr, geoloc.ErrPermissionDenied):
		reason = ReasonPermissionDenied
	case errors.Is(sensorErr, geoloc.ErrTimeout):
		reason = ReasonTimeout
	}
	return s.deny(ctx, req, geofence.Verdict{}, reason)
}

func (s *AttendanceService) deny(ctx context.Context, req AdmissionRequest, verdict geofence.Verdict, reason string) *AdmissionResult {
	s.writeAudit(ctx, req, verdict, models.DecisionDenied, reason)
	return &AdmissionResult{
		Admitted:  false,
		Reason:    reason,
		Message:   denialMessage(reason, verdict),
		DistanceM: verdict.DistanceM,
		AccuracyM: verdict.AccuracyM,
	}
}

func (s *AttendanceService) writeAudit(ctx context.Context, req AdmissionRequest, verdict geofence.Verdict, decision, reason string) {
	record := &models.AuditRecord{
		UserID:    req.UserID,
		Email:     req.Email,
		DeviceID:  req.DeviceID,
		Decision:  decision,
		Reason:    reason,
		EventType: req.Type,
		Lat:       req.Fix.Lat,
		Lng:       req.Fix.Lng,
		AccuracyM: verdict.AccuracyM,
		DistanceM: verdict.DistanceM,
		CreatedAt: s.now().UTC(),
	}
	if err := s.audit.Append(ctx, record); err != nil {
		// Best effort only. Never block or reverse the admission over this.
		log.Printf("Warning: audit append failed for user %s: %v", req.UserID.Hex(), err)
	}
}

// Projection is the advisory view the UI renders: which single action may be
// offered right now. Derived from the same predicate as the enforcement step,
// so the UI can never offer an action the core would reject for sequence
// reasons. Range/accuracy can still degrade between offer and submit; that
// comes back as a normal denial.
type Projection struct {
	Verdict       geofence.Verdict `json:"verdict"`
	LastEventType string           `json:"last_event_type,omitempty"`
	CanCheckIn    bool             `json:"can_check_in"`
	CanCheckOut   bool             `json:"can_check_out"`
}

func Project(status *models.UserAttendanceStatus, verdict geofence.Verdict) Projection {
	var lastType string
	if status != nil {
		lastType = status.LastEventType
	}
	next := NextEventType(lastType)
	return Projection{
		Verdict:       verdict,
		LastEventType: lastType,
		CanCheckIn:    verdict.OK() && next == models.EventCheckIn,
		CanCheckOut:   verdict.OK() && next == models.EventCheckOut,
	}
}

func successMessage(eventType string) string {
	if eventType == models.EventCheckOut {
		return "Checked out successfully"
	}
	return "Checked in successfully"
}

func denialMessage(reason string, verdict geofence.Verdict) string {
	switch reason {
	case ReasonWeakSignal:
		return fmt.Sprintf("GPS accuracy is too weak (%.0fm). Move somewhere open and try again.", verdict.AccuracyM)
	case ReasonOutOfRange:
		return fmt.Sprintf("Outside the site range (%.0fm away).", verdict.DistanceM)
	case ReasonDeviceMismatch:
		return "This account is bound to another device."
	case ReasonWrongSequence:
		return "That action does not match your current attendance status. Refresh and try again."
	case ReasonPermissionDenied:
		return "Location permission was denied. Allow location access and try again."
	case ReasonTimeout:
		return "Timed out waiting for a GPS fix. Try again."
	default:
		return "Could not determine your location. Try again."
	}
}

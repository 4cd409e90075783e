package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Grinders-Attendance-Backend/models"
	"Grinders-Attendance-Backend/pkg/geofence"
	"Grinders-Attendance-Backend/pkg/geoloc"
)

var testSite = geofence.Coordinate{Lat: 33.3103442309685, Lng: 44.32422900516875}

func testConfig() geofence.Config {
	return geofence.Config{Origin: testSite, MaxDistanceM: 100, MaxAccuracyM: 50}
}

// --- FAKES ---

// fakeLedger mirrors what the Mongo repository does on commit: append the
// event and fold it into the status projection as one unit.
type fakeLedger struct {
	status    map[primitive.ObjectID]*models.UserAttendanceStatus
	events    []*models.AttendanceEvent
	statusErr error
	commitErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{status: map[primitive.ObjectID]*models.UserAttendanceStatus{}}
}

func (f *fakeLedger) GetStatus(ctx context.Context, userID primitive.ObjectID) (*models.UserAttendanceStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status[userID], nil
}

func (f *fakeLedger) CommitEvent(ctx context.Context, event *models.AttendanceEvent) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.events = append(f.events, event)
	f.status[event.UserID] = &models.UserAttendanceStatus{
		UserID:        event.UserID,
		LastEventType: event.Type,
		BoundDeviceID: event.DeviceID,
		LastUpdatedAt: event.Timestamp,
	}
	return nil
}

type fakeAudit struct {
	records []*models.AuditRecord
	err     error
}

func (f *fakeAudit) Append(ctx context.Context, record *models.AuditRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func fixAt(c geofence.Coordinate, accuracy float64) geofence.Fix {
	return geofence.Fix{Coordinate: c, AccuracyM: accuracy, CapturedAt: time.Now()}
}

func request(userID primitive.ObjectID, eventType, deviceID string, fix geofence.Fix) AdmissionRequest {
	return AdmissionRequest{
		UserID:   userID,
		Email:    "emp@thegrinders.com",
		Type:     eventType,
		Fix:      fix,
		DeviceID: deviceID,
	}
}

// --- TESTS ---

func TestAdmissionEndToEnd(t *testing.T) {
	ledger := newFakeLedger()
	audit := &fakeAudit{}
	svc := NewAttendanceService(testConfig(), ledger, audit)
	userID := primitive.NewObjectID()

	// ~50m north of the site, accuracy 20m: inside both gates.
	fix := fixAt(geofence.Coordinate{Lat: testSite.Lat + 50.0/111320.0, Lng: testSite.Lng}, 20)

	res, err := svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckIn, "dvc-1", fix))
	require.NoError(t, err)

	assert.True(t, res.Admitted)
	assert.Equal(t, models.EventCheckIn, res.EventType)
	assert.InDelta(t, 50, res.DistanceM, 1)

	require.Len(t, ledger.events, 1)
	event := ledger.events[0]
	assert.Equal(t, models.EventCheckIn, event.Type)
	assert.Equal(t, "dvc-1", event.DeviceID)
	assert.Equal(t, models.DayKey(event.Timestamp), event.DateKey)
	assert.False(t, event.Timestamp.IsZero())

	status := ledger.status[userID]
	require.NotNil(t, status)
	assert.Equal(t, models.EventCheckIn, status.LastEventType)
	assert.Equal(t, "dvc-1", status.BoundDeviceID)

	require.Len(t, audit.records, 1)
	assert.Equal(t, models.DecisionAdmitted, audit.records[0].Decision)
	assert.Equal(t, ReasonSuccess, audit.records[0].Reason)
}

func TestSequenceInvariant(t *testing.T) {
	ledger := newFakeLedger()
	audit := &fakeAudit{}
	svc := NewAttendanceService(testConfig(), ledger, audit)
	userID := primitive.NewObjectID()
	fix := fixAt(testSite, 10)

	// Checked in already.
	_, err := svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckIn, "dvc-1", fix))
	require.NoError(t, err)

	// Check-out is the only admissible next type and succeeds.
	res, err := svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckOut, "dvc-1", fix))
	require.NoError(t, err)
	assert.True(t, res.Admitted)
	assert.Equal(t, models.EventCheckOut, ledger.status[userID].LastEventType)

	// A second immediate check-out is denied with wrong_sequence and writes
	// nothing to the ledger.
	res, err = svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckOut, "dvc-1", fix))
	require.NoError(t, err)
	assert.False(t, res.Admitted)
	assert.Equal(t, ReasonWrongSequence, res.Reason)
	assert.Len(t, ledger.events, 2)
	assert.Equal(t, models.EventCheckOut, ledger.status[userID].LastEventType)
}

func TestCheckInDeniedWhileCheckedIn(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewAttendanceService(testConfig(), ledger, &fakeAudit{})
	userID := primitive.NewObjectID()
	fix := fixAt(testSite, 10)

	_, err := svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckIn, "dvc-1", fix))
	require.NoError(t, err)

	res, err := svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckIn, "dvc-1", fix))
	require.NoError(t, err)
	assert.False(t, res.Admitted)
	assert.Equal(t, ReasonWrongSequence, res.Reason)
}

func TestDeviceBinding(t *testing.T) {
	ledger := newFakeLedger()
	audit := &fakeAudit{}
	svc := NewAttendanceService(testConfig(), ledger, audit)
	userID := primitive.NewObjectID()
	fix := fixAt(testSite, 10)

	// First admission with no bound device claims dvc-1.
	res, err := svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckIn, "dvc-1", fix))
	require.NoError(t, err)
	require.True(t, res.Admitted)
	assert.Equal(t, "dvc-1", ledger.status[userID].BoundDeviceID)

	// A different device is denied regardless of geofence validity.
	res, err = svc.AttemptAdmission(context.Background(), request(userID, models.EventCheckOut, "dvc-2", fix))
	require.NoError(t, err)
	assert.False(t, res.Admitted)
	assert.Equal(t, ReasonDeviceMismatch, res.Reason)
	assert.Len(t, ledger.events, 1)
}

func TestWeakSignalIndependentOfRange(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAccuracyM = 80
	ledger := newFakeLedger()
	audit := &fakeAudit{}
	svc := NewAttendanceService(cfg, ledger, audit)

	// Standing at the origin, distance 0, but accuracy 90m > 80m.
	res, err := svc.AttemptAdmission(context.Background(),
		request(primitive.NewObjectID(), models.EventCheckIn, "dvc-1", fixAt(testSite, 90)))
	require.NoError(t, err)

	assert.False(t, res.Admitted)
	assert.Equal(t, ReasonWeakSignal, res.Reason)
	assert.Equal(t, 0.0, res.DistanceM)
	assert.Empty(t, ledger.events)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.DecisionDenied, audit.records[0].Decision)
}

func TestOutOfRange(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewAttendanceService(testConfig(), ledger, &fakeAudit{})

	// ~150m north with max distance 100m.
	fix := fixAt(geofence.Coordinate{Lat: testSite.Lat + 150.0/111320.0, Lng: testSite.Lng}, 10)
	res, err := svc.AttemptAdmission(context.Background(),
		request(primitive.NewObjectID(), models.EventCheckIn, "dvc-1", fix))
	require.NoError(t, err)

	assert.False(t, res.Admitted)
	assert.Equal(t, ReasonOutOfRange, res.Reason)
	assert.Empty(t, ledger.events)
}

func TestLedgerFailureAbortsAdmission(t *testing.T) {
	ledger := newFakeLedger()
	ledger.commitErr = errors.New("connection reset")
	audit := &fakeAudit{}
	svc := NewAttendanceService(testConfig(), ledger, audit)

	res, err := svc.AttemptAdmission(context.Background(),
		request(primitive.NewObjectID(), models.EventCheckIn, "dvc-1", fixAt(testSite, 10)))

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, ledger.events)
	// No "admitted" audit record for an event that was never saved.
	assert.Empty(t, audit.records)
}

func TestAuditFailureNeverBlocksAdmission(t *testing.T) {
	ledger := newFakeLedger()
	audit := &fakeAudit{err: errors.New("audit store down")}
	svc := NewAttendanceService(testConfig(), ledger, audit)

	res, err := svc.AttemptAdmission(context.Background(),
		request(primitive.NewObjectID(), models.EventCheckIn, "dvc-1", fixAt(testSite, 10)))

	require.NoError(t, err)
	assert.True(t, res.Admitted)
	assert.Len(t, ledger.events, 1)
}

func TestReportSensorFailure(t *testing.T) {
	audit := &fakeAudit{}
	svc := NewAttendanceService(testConfig(), newFakeLedger(), audit)
	req := request(primitive.NewObjectID(), models.EventCheckIn, "dvc-1", geofence.Fix{})

	cases := []struct {
		err    error
		reason string
	}{
		{geoloc.ErrPermissionDenied, ReasonPermissionDenied},
		{geoloc.ErrTimeout, ReasonTimeout},
		{geoloc.ErrUnavailable, ReasonUnavailable},
	}
	for _, tc := range cases {
		res := svc.ReportSensorFailure(context.Background(), req, tc.err)
		assert.False(t, res.Admitted)
		assert.Equal(t, tc.reason, res.Reason)
	}
	assert.Len(t, audit.records, len(cases))
}

func TestProjectionMirrorsSequencePredicate(t *testing.T) {
	okVerdict := geofence.Verdict{DistanceM: 10, AccuracyM: 15, AccuracyOK: true, RangeOK: true}

	// No record: only check-in offered.
	p := Project(nil, okVerdict)
	assert.True(t, p.CanCheckIn)
	assert.False(t, p.CanCheckOut)

	// Checked in: only check-out offered.
	p = Project(&models.UserAttendanceStatus{LastEventType: models.EventCheckIn}, okVerdict)
	assert.False(t, p.CanCheckIn)
	assert.True(t, p.CanCheckOut)

	// Checked out behaves like no record.
	p = Project(&models.UserAttendanceStatus{LastEventType: models.EventCheckOut}, okVerdict)
	assert.True(t, p.CanCheckIn)
	assert.False(t, p.CanCheckOut)

	// A failing verdict offers nothing, whatever the sequence state.
	bad := geofence.Verdict{DistanceM: 500, AccuracyM: 15, AccuracyOK: true, RangeOK: false}
	p = Project(nil, bad)
	assert.False(t, p.CanCheckIn)
	assert.False(t, p.CanCheckOut)
}

func TestStatusLoadFailureSurfaces(t *testing.T) {
	ledger := newFakeLedger()
	ledger.statusErr = errors.New("primary unavailable")
	svc := NewAttendanceService(testConfig(), ledger, &fakeAudit{})

	_, err := svc.AttemptAdmission(context.Background(),
		request(primitive.NewObjectID(), models.EventCheckIn, "dvc-1", fixAt(testSite, 10)))
	assert.Error(t, err)
}

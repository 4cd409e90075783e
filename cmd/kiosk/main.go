// Kiosk submits a check-in/check-out from a fixed terminal at the site. The
// terminal does not move, so its position is configured once via flags; the
// device id is generated on first run and persisted, which binds the terminal
// like any employee phone.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"Grinders-Attendance-Backend/models"
	"Grinders-Attendance-Backend/pkg/deviceid"
	"Grinders-Attendance-Backend/pkg/geofence"
	"Grinders-Attendance-Backend/pkg/geoloc"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:3000", "attendance server base URL")
		email     = flag.String("email", "", "account email")
		password  = flag.String("password", "", "account password")
		eventType = flag.String("type", models.EventCheckIn, "checkin or checkout")
		lat       = flag.Float64("lat", 0, "terminal latitude")
		lng       = flag.Float64("lng", 0, "terminal longitude")
		accuracy  = flag.Float64("accuracy", 5, "reported accuracy in meters")
		stateDir  = flag.String("state-dir", "", "directory for the persisted device id (default: user config dir)")
		gpsError  = flag.Int("gps-error", 0, "simulate a sensor failure with this platform error code (1, 2, or 3)")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}
	if *eventType != models.EventCheckIn && *eventType != models.EventCheckOut {
		log.Fatalf("-type must be %s or %s", models.EventCheckIn, models.EventCheckOut)
	}

	store, err := deviceid.NewStore(*stateDir)
	if err != nil {
		log.Fatalf("device id store: %v", err)
	}
	deviceID, err := store.GetOrCreate()
	if err != nil {
		log.Fatalf("device id: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 15 * time.Second}

	token, err := login(ctx, client, *serverURL, *email, *password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	payload := models.AttendanceCheckPayload{
		Type:       *eventType,
		DeviceID:   deviceID,
		ClientTime: time.Now().Format(time.RFC3339),
	}

	// The terminal position is static, so the sampler just returns the
	// configured coordinates. Serialization and the timeout mapping still
	// apply, keeping the flow identical to a real sensor.
	sampler := geoloc.Serialize(geoloc.SamplerFunc(func(ctx context.Context) (geofence.Fix, error) {
		if *gpsError != 0 {
			return geofence.Fix{}, geoloc.FromCode(*gpsError)
		}
		return geofence.Fix{
			Coordinate: geofence.Coordinate{Lat: *lat, Lng: *lng},
			AccuracyM:  *accuracy,
			CapturedAt: time.Now(),
		}, nil
	}))

	fix, err := geoloc.SampleWithTimeout(ctx, sampler, 10*time.Second)
	switch {
	case errors.Is(err, geoloc.ErrPermissionDenied):
		payload.LocationError = geoloc.CodePermissionDenied
	case errors.Is(err, geoloc.ErrTimeout):
		payload.LocationError = geoloc.CodeTimeout
	case err != nil:
		payload.LocationError = geoloc.CodePositionUnavailable
	default:
		payload.Lat = fix.Lat
		payload.Lng = fix.Lng
		payload.AccuracyM = fix.AccuracyM
	}

	status, body, err := submitCheck(ctx, client, *serverURL, token, payload)
	if err != nil {
		log.Fatalf("check: %v", err)
	}

	fmt.Printf("HTTP %d\n%s\n", status, body)
	if status != http.StatusCreated {
		log.Fatal("attendance was not recorded")
	}
}

func login(ctx context.Context, client *http.Client, baseURL, email, password string) (string, error) {
	reqBody, err := json.Marshal(models.UserLoginPayload{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/auth/login", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", err
	}
	if loginResp.Token == "" {
		return "", fmt.Errorf("server returned no token")
	}
	return loginResp.Token, nil
}

func submitCheck(ctx context.Context, client *http.Client, baseURL, token string, payload models.AttendanceCheckPayload) (int, string, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/attendance/check", bytes.NewReader(reqBody))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}

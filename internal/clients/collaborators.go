package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

// ===============================
// USERS (PROFILE)
// ===============================

// ProfileClient reads cumulative distance from the users service
type ProfileClient struct {
	client *jsonClient
}

// NewProfileClient creates a client for GET {baseURL}/{userId}
func NewProfileClient(baseURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *ProfileClient {
	return &ProfileClient{client: newJSONClient("users", baseURL, timeout, httpClient, logger)}
}

type profilePayload struct {
	KmTraveled decimal.NullDecimal `json:"kmRecorridos"`
}

// CumulativeDistance returns the user's total distance in km. A missing or
// null distance counts as zero; an unknown user is ErrNotFound.
func (c *ProfileClient) CumulativeDistance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var payload profilePayload
	if err := c.client.get(ctx, "/"+strconv.FormatInt(userID, 10), &payload); err != nil {
		return decimal.Zero, err
	}
	if !payload.KmTraveled.Valid {
		return decimal.Zero, nil
	}
	return payload.KmTraveled.Decimal, nil
}

// ===============================
// ROUTE SESSIONS
// ===============================

// SessionLogClient lists a user's route sessions
type SessionLogClient struct {
	client *jsonClient
}

// NewSessionLogClient creates a client for GET {baseURL}/usuario/{userId}
func NewSessionLogClient(baseURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *SessionLogClient {
	return &SessionLogClient{client: newJSONClient("route_sessions", baseURL, timeout, httpClient, logger)}
}

type sessionPayload struct {
	RouteID    int64     `json:"idRuta"`
	FinishedAt *wireTime `json:"ffinal"`
}

// ListSessionsForUser returns every session of the user, open or completed.
// A user without sessions may be reported as ErrNotFound.
func (c *SessionLogClient) ListSessionsForUser(ctx context.Context, userID int64) ([]models.RouteSession, error) {
	var payload []sessionPayload
	if err := c.client.get(ctx, "/usuario/"+strconv.FormatInt(userID, 10), &payload); err != nil {
		return nil, err
	}

	sessions := make([]models.RouteSession, 0, len(payload))
	for _, p := range payload {
		session := models.RouteSession{RouteID: p.RouteID}
		if p.FinishedAt != nil {
			t := time.Time(*p.FinishedAt)
			session.CompletedAt = &t
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// wireTime accepts RFC 3339 as well as the zone-less local date times the
// session service emits.
type wireTime time.Time

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = wireTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// ===============================
// ROUTES
// ===============================

// RouteCatalogClient resolves routes to their region
type RouteCatalogClient struct {
	client *jsonClient
}

// NewRouteCatalogClient creates a client for GET {baseURL}/{routeId}
func NewRouteCatalogClient(baseURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *RouteCatalogClient {
	return &RouteCatalogClient{client: newJSONClient("routes", baseURL, timeout, httpClient, logger)}
}

type routePayload struct {
	RegionID *int64 `json:"id_region"`
}

// RegionOfRoute returns the region id of a route. A route without a region
// cannot be counted and is reported as unavailable.
func (c *RouteCatalogClient) RegionOfRoute(ctx context.Context, routeID int64) (int64, error) {
	path := "/" + strconv.FormatInt(routeID, 10)

	var payload routePayload
	if err := c.client.get(ctx, path, &payload); err != nil {
		return 0, err
	}
	if payload.RegionID == nil {
		return 0, &UnavailableError{
			Service: c.client.service,
			Path:    path,
			Err:     fmt.Errorf("route %d has no region", routeID),
		}
	}
	return *payload.RegionID, nil
}

// ===============================
// STATUSES
// ===============================

// StatusClient reads the status catalog owned by the users service
type StatusClient struct {
	client *jsonClient
}

// NewStatusClient creates a client for GET {baseURL}/{statusId}
func NewStatusClient(baseURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *StatusClient {
	return &StatusClient{client: newJSONClient("statuses", baseURL, timeout, httpClient, logger)}
}

type statusPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// GetStatus returns the status or ErrNotFound
func (c *StatusClient) GetStatus(ctx context.Context, statusID int64) (*models.Status, error) {
	var payload statusPayload
	if err := c.client.get(ctx, "/"+strconv.FormatInt(statusID, 10), &payload); err != nil {
		return nil, err
	}
	return &models.Status{ID: payload.ID, Name: payload.Name}, nil
}

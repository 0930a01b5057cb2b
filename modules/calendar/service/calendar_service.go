package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"meetsync/core/cache"
	"meetsync/core/config"
	"meetsync/core/constants"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/modules/calendar/dto"
	"meetsync/modules/calendar/entity"
	"meetsync/modules/calendar/repository"
	"meetsync/modules/meeting/engine"
)

const googleFreeBusyAPI = "https://www.googleapis.com/calendar/v3/freeBusy"

type CalendarService interface {
	// Connection management
	SaveGoogleConnection(ctx context.Context, ownerEmail string, accessToken, refreshToken string, expiresAt time.Time, calendarEmail string) (*entity.CalendarConnection, *errors.AppError)
	GetConnections(ctx context.Context, ownerEmail string) ([]dto.CalendarConnectionResponse, *errors.AppError)
	DisconnectCalendar(ctx context.Context, ownerEmail string, provider string) *errors.AppError

	// Free/busy. Satisfies the meeting module's CalendarProvider.
	GetBusyIntervals(ctx context.Context, ownerEmail string, rangeStart, rangeEnd time.Time) ([]engine.TimeInterval, error)
	GetFreeBusy(ctx context.Context, ownerEmail string, rangeStart, rangeEnd time.Time) (*dto.FreeBusyResponse, *errors.AppError)
}

type calendarService struct {
	repo  repository.CalendarRepository
	cache cache.Cache
}

func NewCalendarService(repo repository.CalendarRepository, c cache.Cache) CalendarService {
	return &calendarService{
		repo:  repo,
		cache: c,
	}
}

// SaveGoogleConnection saves or updates a Google Calendar connection
func (s *calendarService) SaveGoogleConnection(ctx context.Context, ownerEmail string, accessToken, refreshToken string, expiresAt time.Time, calendarEmail string) (*entity.CalendarConnection, *errors.AppError) {
	ownerEmail = strings.ToLower(ownerEmail)

	existing, err := s.repo.GetConnectionByEmail(ctx, ownerEmail, dto.ProviderGoogle)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up connection", err)
	}

	if existing != nil {
		existing.AccessToken = accessToken
		if refreshToken != "" {
			existing.RefreshToken = refreshToken
		}
		existing.TokenExpiresAt = expiresAt
		existing.CalendarEmail = calendarEmail
		existing.IsActive = true

		if err := s.repo.UpdateConnection(ctx, existing); err != nil {
			return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update connection", err)
		}
		return existing, nil
	}

	conn := &entity.CalendarConnection{
		OwnerEmail:     ownerEmail,
		Provider:       dto.ProviderGoogle,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
		CalendarEmail:  calendarEmail,
		IsActive:       true,
	}
	created, err := s.repo.CreateConnection(ctx, conn)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create connection", err)
	}
	return created, nil
}

func (s *calendarService) GetConnections(ctx context.Context, ownerEmail string) ([]dto.CalendarConnectionResponse, *errors.AppError) {
	connections, err := s.repo.GetConnectionsByEmail(ctx, strings.ToLower(ownerEmail))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list connections", err)
	}

	result := make([]dto.CalendarConnectionResponse, 0, len(connections))
	for _, conn := range connections {
		result = append(result, dto.CalendarConnectionResponse{
			ID:            conn.ID.String(),
			Provider:      conn.Provider,
			CalendarEmail: conn.CalendarEmail,
			IsActive:      conn.IsActive,
			ConnectedAt:   conn.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *calendarService) DisconnectCalendar(ctx context.Context, ownerEmail string, provider string) *errors.AppError {
	if err := s.repo.DeleteConnection(ctx, strings.ToLower(ownerEmail), provider); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to disconnect calendar", err)
	}
	return nil
}

// GetBusyIntervals returns the owner's busy windows as half-open intervals.
// An owner without a connected calendar contributes no busy time. Results are
// cached briefly so repeated slot recomputations do not hammer the provider.
func (s *calendarService) GetBusyIntervals(ctx context.Context, ownerEmail string, rangeStart, rangeEnd time.Time) ([]engine.TimeInterval, error) {
	ownerEmail = strings.ToLower(ownerEmail)

	cacheKey := fmt.Sprintf("%s%s:%d:%d", constants.RedisKeyFreeBusy, ownerEmail, rangeStart.Unix(), rangeEnd.Unix())
	if s.cache != nil {
		var cached []engine.TimeInterval
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	conn, err := s.repo.GetConnectionByEmail(ctx, ownerEmail, dto.ProviderGoogle)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, nil
	}

	accessToken, err := s.ensureValidToken(ctx, conn)
	if err != nil {
		return nil, err
	}

	busy, err := s.callGoogleFreeBusy(ctx, accessToken, conn.CalendarEmail, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	intervals := normalizeBusyIntervals(busy, rangeStart.Location())

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, intervals, constants.FreeBusyCacheTTL); err != nil {
			logger.Warn("CalendarService:GetBusyIntervals:CacheSet", "error", err)
		}
	}
	return intervals, nil
}

// GetFreeBusy is the HTTP-facing variant of GetBusyIntervals.
func (s *calendarService) GetFreeBusy(ctx context.Context, ownerEmail string, rangeStart, rangeEnd time.Time) (*dto.FreeBusyResponse, *errors.AppError) {
	intervals, err := s.GetBusyIntervals(ctx, ownerEmail, rangeStart, rangeEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get free/busy", err)
	}

	resp := &dto.FreeBusyResponse{
		Email: strings.ToLower(ownerEmail),
		Busy:  make([]dto.BusyIntervalResponse, 0, len(intervals)),
	}
	for _, iv := range intervals {
		resp.Busy = append(resp.Busy, dto.BusyIntervalResponse{
			Start: iv.Start.Format(time.RFC3339),
			End:   iv.End.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// ensureValidToken refreshes the stored access token through oauth2 when it
// is near expiry, persisting the rotated credentials.
func (s *calendarService) ensureValidToken(ctx context.Context, conn *entity.CalendarConnection) (string, error) {
	if time.Until(conn.TokenExpiresAt) > time.Minute {
		return conn.AccessToken, nil
	}

	if conn.RefreshToken == "" {
		return "", fmt.Errorf("calendar token expired and no refresh token stored")
	}

	cfg, ok := config.GetSafe()
	if !ok {
		return "", fmt.Errorf("configuration not loaded")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleAPI.ClientID,
		ClientSecret: cfg.GoogleAPI.ClientSecret,
		Endpoint:     google.Endpoint,
	}
	source := oauthCfg.TokenSource(ctx, &oauth2.Token{
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiresAt,
	})

	token, err := source.Token()
	if err != nil {
		logger.Error("CalendarService:EnsureValidToken", "error", err, "email", conn.OwnerEmail)
		return "", err
	}

	conn.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		conn.RefreshToken = token.RefreshToken
	}
	conn.TokenExpiresAt = token.Expiry

	if err := s.repo.UpdateConnection(ctx, conn); err != nil {
		logger.Error("CalendarService:EnsureValidToken:Persist", "error", err)
	}

	return token.AccessToken, nil
}

type googleBusyWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// callGoogleFreeBusy calls the Google Calendar FreeBusy API.
func (s *calendarService) callGoogleFreeBusy(ctx context.Context, accessToken, email string, rangeStart, rangeEnd time.Time) ([]googleBusyWindow, error) {
	payload := map[string]any{
		"timeMin": rangeStart.Format(time.RFC3339),
		"timeMax": rangeEnd.Format(time.RFC3339),
		"items": []map[string]string{
			{"id": email},
		},
	}

	payloadJSON, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleFreeBusyAPI, strings.NewReader(string(payloadJSON)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: constants.DefaultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google freebusy api error: %s", string(body))
	}

	var result struct {
		Calendars map[string]struct {
			Busy []googleBusyWindow `json:"busy"`
		} `json:"calendars"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if cal, ok := result.Calendars[email]; ok {
		return cal.Busy, nil
	}
	return nil, nil
}

// normalizeBusyIntervals maps provider busy windows to half-open intervals.
// Timed events arrive as RFC3339; all-day events arrive date-only and cover
// the whole local day. Malformed or inverted windows are dropped.
func normalizeBusyIntervals(busy []googleBusyWindow, loc *time.Location) []engine.TimeInterval {
	intervals := make([]engine.TimeInterval, 0, len(busy))
	for _, w := range busy {
		start, okStart := parseBusyTime(w.Start, loc, false)
		end, okEnd := parseBusyTime(w.End, loc, true)
		if !okStart || !okEnd {
			logger.Warn("CalendarService:NormalizeBusy:Skip", "start", w.Start, "end", w.End)
			continue
		}
		interval, err := engine.NewTimeInterval(start, end)
		if err != nil {
			continue
		}
		intervals = append(intervals, interval)
	}
	return engine.MergeIntervals(intervals)
}

// parseBusyTime accepts RFC3339 or a bare date. A date-only end bound means
// "through that whole day", so it rolls to the next midnight.
func parseBusyTime(raw string, loc *time.Location, isEnd bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	day, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	if isEnd {
		return day.AddDate(0, 0, 1), true
	}
	return day, true
}

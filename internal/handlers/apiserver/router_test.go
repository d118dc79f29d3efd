package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/logging"
	"social-go/internal/models"
	"social-go/internal/redis"
	"social-go/internal/services"
	"social-go/internal/storage"
)

type testServer struct {
	router http.Handler
	cfg    config.Config
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	log := logging.Discard()

	cfg := config.Config{
		AppEnv: "test",
		Auth: config.AuthConfig{
			JWTSecretKey: "test-secret",
			JWTExpiry:    time.Hour,
			CookieName:   "jwt",
			ChatExpiry:   time.Minute,
		},
		Social: config.SocialConfig{
			DefaultRecommendationLimit: 20,
			MaxRecommendationLimit:     100,
			FriendRequestRateLimit:     rateLimit,
			FriendRequestRateWindow:    time.Minute,
		},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir(), BaseURL: "/uploads", MaxFileSizeMB: 1},
	}

	db, err := storage.InitDB(config.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, log)
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	blacklist := redis.NewRedisTokenBlacklist(client)

	users := storage.NewGormUserRepository(db)
	requests := storage.NewGormFriendRequestRepository(db)
	friendships := storage.NewGormFriendshipRepository(db)
	store, err := storage.NewLocalStorageService(cfg.Storage)
	require.NoError(t, err)

	chat := services.NewChatService(cfg.Auth, log)
	authSvc := services.NewAuthService(users, blacklist, chat, cfg.Auth, log)
	userSvc := services.NewUserService(users)
	ledger := services.NewFriendRequestService(db, users, requests, friendships, log)
	graph := services.NewSocialGraphService(users, friendships, ledger, nil, cfg.Social, log)
	pictures := services.NewProfilePictureService(users, store, cfg.Storage.MaxFileSizeMB<<20, log)

	router := NewRouter(RouterDeps{
		Auth:                    NewAuthHandler(authSvc, userSvc, cfg, log),
		Users:                   NewUserHandler(graph, pictures, cfg.Storage.MaxFileSizeMB<<20, log),
		FriendRequest:           NewFriendRequestHandler(graph, log),
		Chat:                    NewChatHandler(chat, log),
		Gate:                    auth.NewJWTSessionGate(cfg.Auth, blacklist),
		CookieName:              cfg.Auth.CookieName,
		RateLimiter:             redis.NewRedisRateLimiter(client),
		FriendRequestRateLimit:  cfg.Social.FriendRequestRateLimit,
		FriendRequestRateWindow: cfg.Social.FriendRequestRateWindow,
		UploadsURL:              cfg.Storage.BaseURL,
		UploadsDir:              cfg.Storage.LocalPath,
		Log:                     log,
	})
	return &testServer{router: router, cfg: cfg}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// signup registers and onboards a user and returns its id and session token.
func (s *testServer) signup(t *testing.T, name string) (uint, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": name,
		"email":    name + "@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jwt" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	var resp struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = s.do(t, http.MethodPut, "/api/auth/onboarding", cookie.Value, map[string]string{
		"fullName":         name,
		"bio":              "hello",
		"nativeLanguage":   "english",
		"learningLanguage": "german",
		"location":         "Berlin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return resp.User.ID, cookie.Value
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, 0)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/friends"},
		{http.MethodPost, "/api/users/friend-request/1"},
		{http.MethodPut, "/api/users/friend-request/1/accept"},
		{http.MethodGet, "/api/users/friend-requests/incoming"},
		{http.MethodGet, "/api/chat/token"},
		{http.MethodPut, "/api/auth/onboarding"},
	} {
		rec := s.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
		assert.Equal(t, "unauthorized", errorCode(t, rec))
	}
}

func TestFriendRequestFlow(t *testing.T) {
	s := newTestServer(t, 0)
	aID, aToken := s.signup(t, "alice")
	bID, bToken := s.signup(t, "bob")
	_, cToken := s.signup(t, "carol")

	rec := s.do(t, http.MethodGet, "/api/users?limit=10", aToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []models.UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	assert.Len(t, recs, 2)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/friend-request/%d", bID), aToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var request models.FriendRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &request))
	assert.Equal(t, models.FriendRequestStatusPending, request.Status)

	// both directions are duplicates now
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/friend-request/%d", bID), aToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_request", errorCode(t, rec))
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/friend-request/%d", aID), bToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/outgoing-friend-requests", aToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var outgoing []models.FriendRequestView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outgoing))
	require.Len(t, outgoing, 1)
	assert.Equal(t, "bob", outgoing[0].Recipient.FullName)

	rec = s.do(t, http.MethodGet, "/api/users/friend-requests/incoming", bToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var incoming []models.FriendRequestView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incoming))
	require.Len(t, incoming, 1)
	assert.Equal(t, "alice", incoming[0].Sender.FullName)

	acceptPath := fmt.Sprintf("/api/users/friend-request/%d/accept", request.ID)
	rec = s.do(t, http.MethodPut, acceptPath, cToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, acceptPath, bToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, acceptPath, bToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_state", errorCode(t, rec))

	rec = s.do(t, http.MethodGet, "/api/users/friends", aToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var friends []models.UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, bID, friends[0].ID)
	assert.NotContains(t, rec.Body.String(), "email")

	rec = s.do(t, http.MethodGet, "/api/users/friend-requests", aToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var combined FriendRequestsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &combined))
	assert.Empty(t, combined.IncomingReqs)
	require.Len(t, combined.AcceptedReqs, 1)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/friend-request/%d", bID), aToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "already_friends", errorCode(t, rec))

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `friend_accepts_total{status="success"}`)
	assert.Contains(t, rec.Body.String(), `route="/api/users/friend-request/{id}"`)
}

func TestSendFriendRequestErrors(t *testing.T) {
	s := newTestServer(t, 0)
	aID, aToken := s.signup(t, "alice")

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/users/friend-request/%d", aID), aToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_target", errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/users/friend-request/9999", aToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users/friend-request/abc", aToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/users/friend-request/9999/accept", aToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendFriendRequestRateLimited(t *testing.T) {
	s := newTestServer(t, 1)
	_, aToken := s.signup(t, "alice")
	bID, _ := s.signup(t, "bob")
	cID, _ := s.signup(t, "carol")

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/users/friend-request/%d", bID), aToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/friend-request/%d", cID), aToken, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t, 0)
	_, token := s.signup(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": "x", "email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email_taken", errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.True(t, me.User.IsOnboarded)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = s.do(t, http.MethodPut, "/api/auth/onboarding", token, map[string]string{"fullName": "only"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_fields", errorCode(t, rec))

	rec = s.do(t, http.MethodGet, "/api/chat/token", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var chat map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chat))
	_, err := auth.NewChatSessionGate(s.cfg.Auth, nil).ResolveCaller(context.Background(), chat["token"])
	assert.NoError(t, err)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfilePictureUpload(t *testing.T) {
	s := newTestServer(t, 0)
	_, token := s.signup(t, "alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="profilePic"; filename="me.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/upload-profile-picture", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.User.ProfilePic, "/uploads/"))

	rec = s.do(t, http.MethodGet, resp.User.ProfilePic, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\x89PNG fake image", rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/users/remove-profile-picture", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, resp.User.ProfilePic, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package apiserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
	"social-go/internal/metrics"
	"social-go/internal/middleware"
	"social-go/internal/redis"
)

// RouterDeps is everything the API router needs.
type RouterDeps struct {
	Auth          *AuthHandler
	Users         *UserHandler
	FriendRequest *FriendRequestHandler
	Chat          *ChatHandler

	Gate       auth.SessionGate
	CookieName string

	// RateLimiter may be nil, which disables rate limiting.
	RateLimiter             redis.RateLimiter
	FriendRequestRateLimit  int
	FriendRequestRateWindow time.Duration

	// UploadsURL/UploadsDir serve locally stored files when both are set.
	UploadsURL string
	UploadsDir string

	Log *logrus.Logger
}

// NewRouter builds the API routes.
func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LogMiddleware(d.Log))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Route not found")
	})

	authMW := middleware.AuthMiddleware(d.Gate, d.CookieName, d.Log)

	// 认证路由
	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", d.Auth.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", d.Auth.Login).Methods(http.MethodPost)
	authRouter.Handle("/logout", authMW(http.HandlerFunc(d.Auth.Logout))).Methods(http.MethodPost)
	authRouter.Handle("/onboarding", authMW(http.HandlerFunc(d.Auth.Onboarding))).Methods(http.MethodPut)
	authRouter.Handle("/me", authMW(http.HandlerFunc(d.Auth.Me))).Methods(http.MethodGet)

	// 用户与好友路由，全部需要认证
	users := r.PathPrefix("/api/users").Subrouter()
	users.Use(authMW)
	users.HandleFunc("", d.Users.RecommendedUsersHandler).Methods(http.MethodGet)
	users.HandleFunc("/", d.Users.RecommendedUsersHandler).Methods(http.MethodGet)
	users.HandleFunc("/friends", d.Users.MyFriendsHandler).Methods(http.MethodGet)

	sendLimit := middleware.RateLimit(d.RateLimiter, "friend-request", d.FriendRequestRateLimit, d.FriendRequestRateWindow, d.Log)
	users.Handle("/friend-request/{id}", sendLimit(http.HandlerFunc(d.FriendRequest.SendFriendRequestHandler))).Methods(http.MethodPost)
	users.HandleFunc("/friend-request/{id}/accept", d.FriendRequest.AcceptFriendRequestHandler).Methods(http.MethodPut)
	users.HandleFunc("/friend-requests", d.FriendRequest.ListFriendRequestsHandler).Methods(http.MethodGet)
	users.HandleFunc("/friend-requests/incoming", d.FriendRequest.ListIncomingHandler).Methods(http.MethodGet)
	users.HandleFunc("/friend-requests/outgoing", d.FriendRequest.ListOutgoingHandler).Methods(http.MethodGet)
	users.HandleFunc("/outgoing-friend-requests", d.FriendRequest.ListOutgoingHandler).Methods(http.MethodGet)
	users.HandleFunc("/upload-profile-picture", d.Users.UploadProfilePictureHandler).Methods(http.MethodPost)
	users.HandleFunc("/remove-profile-picture", d.Users.RemoveProfilePictureHandler).Methods(http.MethodDelete)

	chat := r.PathPrefix("/api/chat").Subrouter()
	chat.Use(authMW)
	chat.HandleFunc("/token", d.Chat.TokenHandler).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// 静态文件服务路由 - 用于访问上传的文件
	if d.UploadsURL != "" && d.UploadsDir != "" {
		staticPath := strings.TrimSuffix(d.UploadsURL, "/") + "/"
		r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(http.Dir(d.UploadsDir))))
	}
	return r
}

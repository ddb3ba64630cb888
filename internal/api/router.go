package api

import (
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/founditapp/foundit/internal/ws"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, hub *ws.Hub, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Log: log}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	claimsHandler := &ClaimsHandler{DB: db, Log: log}
	notificationsHandler := &NotificationsHandler{DB: db}
	messagesHandler := &MessagesHandler{DB: db, Log: log}
	uploadsHandler := &UploadsHandler{DB: db}
	adminHandler := &AdminHandler{DB: db, Log: log}

	authMW := AuthMiddleware(jwtSecret, db)
	optionalAuthMW := OptionalAuthMiddleware(jwtSecret, db)

	// Public.
	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /stats/global", usersHandler.GlobalStats)
	mux.HandleFunc("GET /items", itemsHandler.List)
	mux.HandleFunc("GET /items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /items/{id}/image", itemsHandler.GetImage)
	mux.HandleFunc("GET /uploads/{id}", uploadsHandler.Get)
	// Not under /items/{...}: a second wildcard route there would clash
	// with /items/{id}/image in the mux.
	mux.Handle("GET /browse/{type}", optionalAuthMW(http.HandlerFunc(itemsHandler.Browse)))

	// Session.
	mux.Handle("GET /me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /users/me", authMW(http.HandlerFunc(usersHandler.UpdateMe)))
	mux.Handle("GET /users/me/stats", authMW(http.HandlerFunc(usersHandler.MyStats)))

	// Items.
	mux.Handle("POST /items/{type}", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("DELETE /items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("POST /items/{id}/report-fake", authMW(http.HandlerFunc(itemsHandler.ReportFake)))

	// Claims.
	mux.Handle("POST /claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("GET /claims", authMW(http.HandlerFunc(claimsHandler.List)))
	mux.Handle("PATCH /claims/{id}/accept", authMW(http.HandlerFunc(claimsHandler.Accept)))
	mux.Handle("PATCH /claims/{id}/reject", authMW(http.HandlerFunc(claimsHandler.Reject)))
	mux.Handle("PATCH /claims/{id}/done", authMW(http.HandlerFunc(claimsHandler.Done)))

	// Notifications.
	mux.Handle("GET /notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("PATCH /notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))

	// Messages.
	mux.Handle("POST /messages", authMW(http.HandlerFunc(messagesHandler.Send)))
	mux.Handle("GET /messages/claim/{claimId}", authMW(http.HandlerFunc(messagesHandler.ListForClaim)))
	mux.Handle("GET /messages/conversations", authMW(http.HandlerFunc(messagesHandler.Conversations)))

	// Uploads.
	mux.Handle("POST /upload-image", authMW(http.HandlerFunc(uploadsHandler.Upload)))

	// Admin.
	mux.Handle("GET /admin/users", authMW(RequireAdmin(http.HandlerFunc(adminHandler.ListUsers))))
	mux.Handle("DELETE /admin/users/{id}", authMW(RequireAdmin(http.HandlerFunc(adminHandler.DeleteUser))))
	mux.Handle("PATCH /admin/users/{id}/block", authMW(RequireAdmin(http.HandlerFunc(adminHandler.BlockUser))))
	mux.Handle("PATCH /admin/users/{id}/unblock", authMW(RequireAdmin(http.HandlerFunc(adminHandler.UnblockUser))))
	mux.Handle("DELETE /admin/items/{id}", authMW(RequireAdmin(http.HandlerFunc(adminHandler.DeleteItem))))
	mux.Handle("GET /admin/reports", authMW(RequireAdmin(http.HandlerFunc(adminHandler.ListReports))))

	// Websocket. The token rides in the query because browsers cannot
	// attach headers to WebSocket connections.
	if hub != nil {
		mux.Handle("GET /ws", authMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			ws.Serve(hub, w, r, claims.Email, claims.Name)
		})))
	}

	return LoggingMiddleware(log)(mux)
}

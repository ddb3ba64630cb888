package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/founditapp/foundit/internal/db"
	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/rank"
	"github.com/founditapp/foundit/internal/store"
)

const testJWTSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	router := NewRouter(database, testJWTSecret, nil, log)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, database
}

// signupUser registers an account through the API and returns its token.
func signupUser(t *testing.T, server *httptest.Server, name, email string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	resp, err := http.Post(server.URL+"/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d", resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&session)
	if session.Token == "" {
		t.Fatal("empty token from signup")
	}
	return session.Token
}

// signupAdmin creates an admin account directly in the store (there is no
// public route for that) and logs it in.
func signupAdmin(t *testing.T, server *httptest.Server, database *sql.DB) string {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if _, err := store.CreateUser(context.Background(), database, "Admin", "admin@example.com", string(hash), true); err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	resp, err := http.PostForm(server.URL+"/login", map[string][]string{
		"username": {"admin@example.com"},
		"password": {"password123"},
	})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login failed: %d", resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&session)
	return session.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, target any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d (%s)", req.Method, req.URL.Path, wantStatus, resp.StatusCode, body)
	}
	if target != nil {
		json.NewDecoder(resp.Body).Decode(target)
	}
}

// createItem reports an item through the API and returns it.
func createItem(t *testing.T, server *httptest.Server, token, itemType, title string) model.Item {
	t.Helper()
	req, _ := authRequest("POST", server.URL+"/items/"+itemType, token, map[string]string{
		"title":    title,
		"location": "Library",
	})
	var item model.Item
	doJSON(t, req, http.StatusCreated, &item)
	return item
}

func TestSignupAndLogin(t *testing.T) {
	server, _ := newTestServer(t)
	signupUser(t, server, "Alice", "alice@example.com")

	// Duplicate email.
	body, _ := json.Marshal(map[string]string{
		"name": "Alice Again", "email": "alice@example.com", "password": "password123",
	})
	resp, _ := http.Post(server.URL+"/signup", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Short password.
	body, _ = json.Marshal(map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "short",
	})
	resp, _ = http.Post(server.URL+"/signup", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The original client logs in with a form-encoded username/password.
	resp, err := http.PostForm(server.URL+"/login", map[string][]string{
		"username": {"alice@example.com"},
		"password": {"password123"},
	})
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("form login failed: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong password.
	resp, _ = http.PostForm(server.URL+"/login", map[string][]string{
		"username": {"alice@example.com"},
		"password": {"wrong-password"},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _ := newTestServer(t)
	token := signupUser(t, server, "Alice", "alice@example.com")

	req, _ := authRequest("GET", server.URL+"/me", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("POST", server.URL+"/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/me", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

// TestClaimLifecycleFlow walks the full path: a found item is reported,
// claimed by its owner, the claim is accepted, the conversation opens,
// and confirming the handover completes both claim and item.
func TestClaimLifecycleFlow(t *testing.T) {
	server, _ := newTestServer(t)
	finderToken := signupUser(t, server, "Finn", "finn@example.com")
	ownerToken := signupUser(t, server, "Olga", "olga@example.com")

	item := createItem(t, server, finderToken, model.ItemTypeFound, "Black Wallet")

	// The conversation is not available before the claim is accepted.
	req, _ := authRequest("POST", server.URL+"/claims", ownerToken, map[string]string{
		"itemId":      item.ID,
		"description": "It has my ID card inside",
		"proofImage":  "/uploads/proof-1",
	})
	var claim model.Claim
	doJSON(t, req, http.StatusCreated, &claim)
	if claim.Status != model.ClaimStatusPending {
		t.Fatalf("expected pending claim, got %q", claim.Status)
	}

	req, _ = authRequest("GET", server.URL+"/messages/claim/"+claim.ID, ownerToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for conversation on pending claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The finder sees the claim appear against the item.
	req, _ = authRequest("GET", server.URL+"/claims?itemId="+item.ID, finderToken, nil)
	var itemClaims []model.Claim
	doJSON(t, req, http.StatusOK, &itemClaims)
	if len(itemClaims) != 1 || itemClaims[0].ID != claim.ID {
		t.Fatalf("expected the claim listed for the item, got %v", itemClaims)
	}

	// Only the finder can accept.
	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/accept", ownerToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for claimer accepting, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/accept", finderToken, nil)
	var accepted model.Claim
	doJSON(t, req, http.StatusOK, &accepted)
	if accepted.Status != model.ClaimStatusAccepted {
		t.Fatalf("expected accepted claim, got %q", accepted.Status)
	}

	// Accepting again conflicts and changes nothing.
	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/accept", finderToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for repeated accept, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The conversation now exists for both parties.
	req, _ = authRequest("POST", server.URL+"/messages", ownerToken, map[string]string{
		"claimId": claim.ID,
		"content": "When can I pick it up?",
	})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("GET", server.URL+"/messages/conversations", finderToken, nil)
	var convos []model.Conversation
	doJSON(t, req, http.StatusOK, &convos)
	if len(convos) != 1 || convos[0].ClaimID != claim.ID {
		t.Fatalf("expected one conversation for the claim, got %v", convos)
	}
	if convos[0].UnreadCount != 1 {
		t.Errorf("expected 1 unread message for the finder, got %d", convos[0].UnreadCount)
	}

	// Either party confirms the handover; the item completes with it.
	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/done", ownerToken, nil)
	var done model.Claim
	doJSON(t, req, http.StatusOK, &done)
	if done.Status != model.ClaimStatusDone {
		t.Fatalf("expected done claim, got %q", done.Status)
	}

	req, _ = authRequest("GET", server.URL+"/items/"+item.ID, ownerToken, nil)
	var completed model.Item
	doJSON(t, req, http.StatusOK, &completed)
	if completed.Status != model.ItemStatusCompleted {
		t.Errorf("expected completed item, got %q", completed.Status)
	}
}

func TestClaimOwnItemRejected(t *testing.T) {
	server, _ := newTestServer(t)
	token := signupUser(t, server, "Finn", "finn@example.com")
	item := createItem(t, server, token, model.ItemTypeFound, "Umbrella")

	req, _ := authRequest("POST", server.URL+"/claims", token, map[string]string{
		"itemId":     item.ID,
		"proofImage": "/uploads/proof-1",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for claiming own item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClaimRequiresProofImage(t *testing.T) {
	server, _ := newTestServer(t)
	finderToken := signupUser(t, server, "Finn", "finn@example.com")
	ownerToken := signupUser(t, server, "Olga", "olga@example.com")
	item := createItem(t, server, finderToken, model.ItemTypeFound, "Umbrella")

	req, _ := authRequest("POST", server.URL+"/claims", ownerToken, map[string]string{
		"itemId": item.ID,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without proof image, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestNotificationsFromClaimEvents(t *testing.T) {
	server, _ := newTestServer(t)
	finderToken := signupUser(t, server, "Finn", "finn@example.com")
	ownerToken := signupUser(t, server, "Olga", "olga@example.com")
	item := createItem(t, server, finderToken, model.ItemTypeFound, "Black Wallet")

	req, _ := authRequest("POST", server.URL+"/claims", ownerToken, map[string]string{
		"itemId":     item.ID,
		"proofImage": "/uploads/proof-1",
	})
	var claim model.Claim
	doJSON(t, req, http.StatusCreated, &claim)

	// The finder gets a claim_received notification.
	var feed struct {
		Notifications []model.Notification `json:"notifications"`
		UnreadCount   int                  `json:"unreadCount"`
	}
	req, _ = authRequest("GET", server.URL+"/notifications", finderToken, nil)
	doJSON(t, req, http.StatusOK, &feed)
	if feed.UnreadCount != 1 || len(feed.Notifications) != 1 {
		t.Fatalf("expected one unread notification, got %+v", feed)
	}
	if feed.Notifications[0].Type != model.NotificationClaimReceived {
		t.Errorf("expected claim_received, got %q", feed.Notifications[0].Type)
	}

	// Marking read is idempotent.
	n := feed.Notifications[0]
	req, _ = authRequest("PATCH", server.URL+"/notifications/"+n.ID+"/read", finderToken, nil)
	doJSON(t, req, http.StatusOK, nil)
	req, _ = authRequest("PATCH", server.URL+"/notifications/"+n.ID+"/read", finderToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	// Rejecting notifies the claimer.
	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/reject", finderToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/notifications", ownerToken, nil)
	doJSON(t, req, http.StatusOK, &feed)
	if len(feed.Notifications) != 1 || feed.Notifications[0].Type != model.NotificationClaimDeclined {
		t.Fatalf("expected claim_declined for the claimer, got %+v", feed.Notifications)
	}
}

func TestBrowsePage(t *testing.T) {
	server, _ := newTestServer(t)
	finderToken := signupUser(t, server, "Finn", "finn@example.com")
	ownerToken := signupUser(t, server, "Olga", "olga@example.com")

	// Olga lost keys; Finn found keys and a wallet; Olga also found a hat.
	createItem(t, server, ownerToken, model.ItemTypeLost, "Keys")
	createItem(t, server, finderToken, model.ItemTypeFound, "Wallet")
	createItem(t, server, finderToken, model.ItemTypeFound, "Set of Keys")
	ownHat := createItem(t, server, ownerToken, model.ItemTypeFound, "Red Hat")

	req, _ := authRequest("GET", server.URL+"/browse/found", ownerToken, nil)
	var page []rank.Entry
	doJSON(t, req, http.StatusOK, &page)
	if len(page) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(page))
	}
	if page[0].Item.Title != "Set of Keys" {
		t.Errorf("expected the keys match first, got %q", page[0].Item.Title)
	}
	if page[2].Item.ID != ownHat.ID || page[2].Action != rank.ActionOwnItem {
		t.Errorf("expected own item last with disabled action, got %q/%q", page[2].Item.Title, page[2].Action)
	}

	// Anonymous visitors get the page without claim state.
	resp, err := http.Get(server.URL + "/browse/found")
	if err != nil {
		t.Fatalf("anonymous browse: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for anonymous browse, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestReportFakeOnlyOnCompletedItems(t *testing.T) {
	server, _ := newTestServer(t)
	finderToken := signupUser(t, server, "Finn", "finn@example.com")
	ownerToken := signupUser(t, server, "Olga", "olga@example.com")
	otherToken := signupUser(t, server, "Pat", "pat@example.com")

	item := createItem(t, server, finderToken, model.ItemTypeFound, "Black Wallet")

	req, _ := authRequest("POST", server.URL+"/items/"+item.ID+"/report-fake", otherToken, map[string]string{
		"reason": "That is my wallet",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for reporting an active item, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Complete the item through the claim lifecycle.
	req, _ = authRequest("POST", server.URL+"/claims", ownerToken, map[string]string{
		"itemId": item.ID, "proofImage": "/uploads/proof-1",
	})
	var claim model.Claim
	doJSON(t, req, http.StatusCreated, &claim)
	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/accept", finderToken, nil)
	doJSON(t, req, http.StatusOK, nil)
	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/done", finderToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("POST", server.URL+"/items/"+item.ID+"/report-fake", otherToken, map[string]string{
		"reason": "That is my wallet",
	})
	doJSON(t, req, http.StatusCreated, nil)
}

func TestAdminEndpoints(t *testing.T) {
	server, database := newTestServer(t)
	userToken := signupUser(t, server, "Alice", "alice@example.com")

	// Regular users cannot reach the admin surface.
	req, _ := authRequest("GET", server.URL+"/admin/users", userToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	adminToken := signupAdmin(t, server, database)

	req, _ = authRequest("GET", server.URL+"/admin/users", adminToken, nil)
	var users []model.User
	doJSON(t, req, http.StatusOK, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	var alice model.User
	for _, u := range users {
		if u.Email == "alice@example.com" {
			alice = u
		}
	}

	// Blocking cuts off the user's token.
	req, _ = authRequest("PATCH", server.URL+"/admin/users/"+alice.ID+"/block", adminToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/me", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for blocked user, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("PATCH", server.URL+"/admin/users/"+alice.ID+"/unblock", adminToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/me", userToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	// Admin removes an item someone reported.
	item := createItem(t, server, userToken, model.ItemTypeFound, "Wallet")
	req, _ = authRequest("DELETE", server.URL+"/admin/items/"+item.ID, adminToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/items/"+item.ID, adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for deleted item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUploadImage(t *testing.T) {
	server, _ := newTestServer(t)
	token := signupUser(t, server, "Alice", "alice@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("image", "photo.png")
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 100, A: 255})
		}
	}
	if err := png.Encode(part, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	writer.Close()

	req, _ := http.NewRequest("POST", server.URL+"/upload-image", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var uploaded struct {
		URL string `json:"url"`
	}
	doJSON(t, req, http.StatusCreated, &uploaded)
	if uploaded.URL == "" {
		t.Fatal("expected an upload URL")
	}

	resp, err := http.Get(server.URL + uploaded.URL)
	if err != nil {
		t.Fatalf("fetching upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for upload, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected re-encoded JPEG, got %q", ct)
	}
}

func TestRejectedClaimStaysRejected(t *testing.T) {
	server, _ := newTestServer(t)
	finderToken := signupUser(t, server, "Finn", "finn@example.com")
	ownerToken := signupUser(t, server, "Olga", "olga@example.com")
	item := createItem(t, server, finderToken, model.ItemTypeFound, "Umbrella")

	req, _ := authRequest("POST", server.URL+"/claims", ownerToken, map[string]string{
		"itemId":     item.ID,
		"proofImage": "/uploads/proof-1",
	})
	var claim model.Claim
	doJSON(t, req, http.StatusCreated, &claim)

	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/reject", finderToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	// A rejected claim cannot be revived.
	req, _ = authRequest("PATCH", server.URL+"/claims/"+claim.ID+"/accept", finderToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 when accepting a rejected claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListItemsRejectsUnknownStatus(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/items?status=bogus")
	if err != nil {
		t.Fatalf("listing items: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/items?status=" + model.ItemStatusPending)
	if err != nil {
		t.Fatalf("listing items: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for a known status, got %d", resp.StatusCode)
	}
}

func TestUploadImageTooLarge(t *testing.T) {
	server, _ := newTestServer(t)
	token := signupUser(t, server, "Alice", "alice@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("image", "huge.png")
	part.Write(bytes.Repeat([]byte{0}, 7<<20))
	writer.Close()

	req, _ := http.NewRequest("POST", server.URL+"/upload-image", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("uploading: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for an oversized upload, got %d", resp.StatusCode)
	}
}

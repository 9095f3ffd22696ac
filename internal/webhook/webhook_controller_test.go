package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/DhavalSuthar-24/squadup/internal/relation"
	"github.com/DhavalSuthar-24/squadup/internal/team"
	"github.com/DhavalSuthar-24/squadup/internal/testutil"
	"github.com/DhavalSuthar-24/squadup/internal/tournament"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type webhookHarness struct {
	t      *testing.T
	router *gin.Engine
	signer *svix.Webhook
	users  user.UserRepository
}

func newWebhookHarness(t *testing.T) *webhookHarness {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t,
		&user.User{}, &relation.Follow{},
		&team.TeamMembership{}, &team.TeamInvitation{},
		&tournament.TournamentMembership{},
	)
	logger, _ := logtest.NewNullLogger()
	users := user.NewUserRepository(db)

	controller, err := NewWebhookController(testSecret, users, logger)
	require.NoError(t, err)
	signer, err := svix.NewWebhook(testSecret)
	require.NoError(t, err)

	router := gin.New()
	RegisterWebhookRoutes(router.Group("/api"), controller)
	return &webhookHarness{t: t, router: router, signer: signer, users: users}
}

func (h *webhookHarness) post(payload []byte, sign bool) *httptest.ResponseRecorder {
	msgID := "msg_" + uuid.NewString()
	ts := time.Now()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/identity", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", msgID)
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	if sign {
		signature, err := h.signer.Sign(msgID, ts, payload)
		require.NoError(h.t, err)
		req.Header.Set("svix-signature", signature)
	} else {
		req.Header.Set("svix-signature", "v1,bm90IGEgc2lnbmF0dXJl")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *webhookHarness) send(eventType string, data interface{}) *httptest.ResponseRecorder {
	raw, err := json.Marshal(data)
	require.NoError(h.t, err)
	payload, err := json.Marshal(Event{Type: eventType, Data: raw})
	require.NoError(h.t, err)
	return h.post(payload, true)
}

func userPayload(id, username, email string) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"username":   username,
		"first_name": "Ada",
		"last_name":  nil,
		"image_url":  "https://img.example.com/" + id,
		"email_addresses": []map[string]string{
			{"id": "idn_secondary", "email_address": "other@example.com"},
			{"id": "idn_primary", "email_address": email},
		},
		"primary_email_address_id": "idn_primary",
		"public_metadata":          map[string]interface{}{"region": "eu"},
	}
}

func TestUserLifecycleEvents(t *testing.T) {
	h := newWebhookHarness(t)
	ctx := context.Background()

	w := h.send(EventUserCreated, userPayload("user_1", "ada", "Ada@Example.com"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	u, err := h.users.GetUserByID(ctx, "user_1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Empty(t, u.LastName)
	assert.Equal(t, "eu", u.Metadata["region"])

	w = h.send(EventUserUpdated, userPayload("user_1", "ada_l", "ada@example.com"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u, err = h.users.GetUserByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ada_l", u.Username)

	w = h.send(EventUserDeleted, DeletedData{ID: "user_1", Deleted: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u, err = h.users.GetUserByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Nil(t, u)

	// Redelivery of the delete is acknowledged.
	w = h.send(EventUserDeleted, DeletedData{ID: "user_1", Deleted: true})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsernameFallsBackToID(t *testing.T) {
	h := newWebhookHarness(t)
	data := userPayload("user_2", "", "nouser@example.com")
	data["username"] = nil

	w := h.send(EventUserCreated, data)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u, err := h.users.GetUserByID(context.Background(), "user_2")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user_2", u.Username)
}

func TestRejectedDeliveries(t *testing.T) {
	h := newWebhookHarness(t)

	payload := []byte(`{"type":"user.created","data":{}}`)
	assert.Equal(t, http.StatusUnauthorized, h.post(payload, false).Code)

	assert.Equal(t, http.StatusBadRequest, h.post([]byte(`not json`), true).Code)
	assert.Equal(t, http.StatusBadRequest, h.post(payload, true).Code)

	noEmail := userPayload("user_3", "bob", "")
	noEmail["email_addresses"] = []map[string]string{}
	assert.Equal(t, http.StatusBadRequest, h.send(EventUserCreated, noEmail).Code)

	require.Equal(t, http.StatusOK, h.send(EventUserCreated, userPayload("user_4", "taken", "a@example.com")).Code)
	w := h.send(EventUserCreated, userPayload("user_5", "taken", "b@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnknownEventIsIgnored(t *testing.T) {
	h := newWebhookHarness(t)
	w := h.send("session.created", map[string]string{"id": "sess_1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewWebhookControllerRejectsBadSecret(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	_, err := NewWebhookController("whsec_!!!not-base64", nil, logger)
	assert.Error(t, err)
}

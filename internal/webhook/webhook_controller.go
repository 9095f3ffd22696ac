package webhook

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/metrics"
	"github.com/DhavalSuthar-24/squadup/internal/user"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
)

// maxPayloadBytes bounds the body read before signature verification.
const maxPayloadBytes = 1 << 20

// WebhookController mirrors identity-provider users into the local store.
type WebhookController struct {
	verifier *svix.Webhook
	users    user.UserRepository
	logger   logrus.FieldLogger
}

// NewWebhookController expects the provider's "whsec_" signing secret.
func NewWebhookController(signingSecret string, users user.UserRepository, logger logrus.FieldLogger) (*WebhookController, error) {
	verifier, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook: invalid signing secret: %w", err)
	}
	return &WebhookController{verifier: verifier, users: users, logger: logger}, nil
}

// HandleIdentityEvent godoc
// @Summary Receive identity provider user events
// @Description Svix-signed user.created, user.updated and user.deleted events. Other event types are acknowledged and ignored.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param svix-id header string true "Message ID"
// @Param svix-timestamp header string true "Unix timestamp"
// @Param svix-signature header string true "Signature list"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse "Malformed payload"
// @Failure 401 {object} responses.ErrorResponse "Bad signature"
// @Router /webhooks/identity [post]
func (wc *WebhookController) HandleIdentityEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		responses.BadRequest(c, "Could not read request body")
		return
	}
	if err := wc.verifier.Verify(payload, c.Request.Header); err != nil {
		wc.logger.WithError(err).Warn("webhook: signature verification failed")
		responses.Unauthorized(c, "Invalid webhook signature")
		return
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil || event.Type == "" {
		responses.BadRequest(c, "Malformed webhook payload")
		return
	}
	log := wc.logger.WithFields(logrus.Fields{"event": event.Type, "svix_id": c.GetHeader("svix-id")})

	switch event.Type {
	case EventUserCreated, EventUserUpdated:
		var data UserData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			responses.BadRequest(c, "Malformed user payload")
			return
		}
		u := data.ToUser()
		if u.Email == "" {
			responses.BadRequest(c, "User payload has no email address")
			return
		}
		err := wc.users.UpsertUser(c.Request.Context(), u)
		if err := metrics.Observe("user_upsert", common.TranslateWriteError(err, "username or email already belongs to another user")); err != nil {
			responses.SendAppError(c, err)
			return
		}
		log.WithField("user_id", u.ID).Info("user synced")

	case EventUserDeleted:
		var data DeletedData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			responses.BadRequest(c, "Malformed user payload")
			return
		}
		deleted, err := wc.users.DeleteUser(c.Request.Context(), data.ID)
		if err := metrics.Observe("user_delete", common.StorageError(err)); err != nil {
			responses.SendAppError(c, err)
			return
		}
		// Redeliveries of an already-applied delete are fine.
		log.WithFields(logrus.Fields{"user_id": data.ID, "deleted": deleted}).Info("user removed")

	default:
		log.Debug("webhook: ignoring event")
	}

	responses.SendSuccess(c, http.StatusOK, "Event processed", nil)
}

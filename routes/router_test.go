package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/squadup/config"
	"github.com/DhavalSuthar-24/squadup/internal/game"
	"github.com/DhavalSuthar-24/squadup/internal/relation"
	"github.com/DhavalSuthar-24/squadup/internal/team"
	"github.com/DhavalSuthar-24/squadup/internal/testutil"
	"github.com/DhavalSuthar-24/squadup/internal/tournament"
	"github.com/DhavalSuthar-24/squadup/internal/user"
)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t,
		&user.User{}, &relation.Follow{}, &game.Game{},
		&team.Team{}, &team.TeamMembership{}, &team.TeamInvitation{},
		&tournament.Tournament{}, &tournament.TournamentMembership{}, &tournament.TeamRegistration{},
	)
	logger, _ := logtest.NewNullLogger()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.FrontendURL = "http://localhost:3000"
	cfg.Auth.JWTSecret = "secret"
	cfg.Webhook.SigningSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

	r, err := SetupRoutes(cfg, db, logger)
	require.NoError(t, err)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/users", http.StatusOK},
		{http.MethodGet, "/api/games", http.StatusOK},
		{http.MethodGet, "/api/teams", http.StatusOK},
		{http.MethodGet, "/api/tournaments", http.StatusOK},
		{http.MethodGet, "/api/users/nobody", http.StatusNotFound},
		{http.MethodGet, "/api/users/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/teams", http.StatusUnauthorized},
		{http.MethodPost, "/api/webhooks/identity", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}

	cfg.Webhook.SigningSecret = "whsec_%%%"
	_, err = SetupRoutes(cfg, db, logger)
	assert.Error(t, err)
}

package tournament

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/squadup/internal/common"
	"github.com/DhavalSuthar-24/squadup/internal/game"
	"github.com/DhavalSuthar-24/squadup/internal/team"
	"github.com/DhavalSuthar-24/squadup/internal/testutil"
	"github.com/DhavalSuthar-24/squadup/internal/user"
	"github.com/DhavalSuthar-24/squadup/pkg/responses"
)

const testUserHeader = "X-Test-User"

// fakeAuth trusts a plain header so handler tests need no tokens.
func fakeAuth(c *gin.Context) {
	id := c.GetHeader(testUserHeader)
	if id == "" {
		responses.Unauthorized(c, "Authorization header is required")
		return
	}
	c.Set(common.ContextUserIDKey, id)
	c.Next()
}

type tournamentAPI struct {
	t       *testing.T
	router  *gin.Engine
	teams   *team.TeamService
	service *TournamentService
	gameID  uint
}

func newTournamentAPI(t *testing.T) *tournamentAPI {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t,
		&user.User{}, &game.Game{},
		&team.Team{}, &team.TeamMembership{}, &team.TeamInvitation{},
		&Tournament{}, &TournamentMembership{}, &TeamRegistration{},
	)
	logger, _ := logtest.NewNullLogger()
	ctx := context.Background()

	users := user.NewUserRepository(db)
	for _, id := range []string{"organizer", "captain", "player", "stranger"} {
		require.NoError(t, users.UpsertUser(ctx, &user.User{ID: id, Username: id, Email: id + "@example.com"}))
	}
	g := &game.Game{Name: "Valorant"}
	require.NoError(t, game.NewGameRepository(db).CreateGame(ctx, g))

	api := &tournamentAPI{
		t:       t,
		router:  gin.New(),
		teams:   team.NewTeamService(team.NewTeamRepository(db), logger),
		service: NewTournamentService(NewTournamentRepository(db), logger),
		gameID:  g.ID,
	}
	RegisterTournamentRoutes(api.router.Group("/api"), api.service, api.teams, fakeAuth)
	return api
}

func (api *tournamentAPI) do(method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(api.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) responses.ErrorResponse {
	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateTournamentHandler(t *testing.T) {
	api := newTournamentAPI(t)

	w := api.do(http.MethodPost, "/api/tournaments", "", gin.H{"name": "Cup"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/tournaments", "organizer", gin.H{
		"name": "Night Cup", "game_id": api.gameID, "format": "swiss",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/tournaments", "organizer", gin.H{
		"name": "Night Cup", "game_id": api.gameID, "format": "round_robin", "max_teams": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data Tournament `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Data.Open)
	assert.Equal(t, StatusUpcoming, created.Data.Status)

	w = api.do(http.MethodPost, "/api/tournaments", "organizer", gin.H{
		"name": "NIGHT CUP", "game_id": api.gameID, "format": "round_robin",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decodeError(t, w).Kind)

	w = api.do(http.MethodGet, "/api/tournaments/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodGet, "/api/tournaments/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTournamentAdminRoutesRequireRole(t *testing.T) {
	api := newTournamentAPI(t)
	tour, err := api.service.CreateTournament(context.Background(), "organizer", CreateTournamentInput{
		Name: "Guarded Cup", GameID: api.gameID, Format: string(FormatRoundRobin), Open: true,
	})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/tournaments/%d", tour.ID)

	w := api.do(http.MethodPut, path, "stranger", gin.H{"open": false})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodDelete, path, "stranger", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, path, "organizer", gin.H{"open": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodDelete, path, "organizer", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistrationHandlers(t *testing.T) {
	api := newTournamentAPI(t)
	ctx := context.Background()
	tour, err := api.service.CreateTournament(ctx, "organizer", CreateTournamentInput{
		Name: "Entry Cup", GameID: api.gameID, Format: string(FormatSingleElimination), MaxTeams: 1, Open: true,
	})
	require.NoError(t, err)
	squad, err := api.teams.CreateTeam(ctx, "captain", team.CreateTeamInput{Name: "Squad", Open: true})
	require.NoError(t, err)
	rivals, err := api.teams.CreateTeam(ctx, "stranger", team.CreateTeamInput{Name: "Rivals", Open: true})
	require.NoError(t, err)
	_, err = api.teams.JoinTeam(ctx, squad.ID, "player")
	require.NoError(t, err)

	teamPath := func(teamID uint) string {
		return fmt.Sprintf("/api/tournaments/%d/teams/%d", tour.ID, teamID)
	}

	// Only team managers may enter a team.
	w := api.do(http.MethodPost, teamPath(squad.ID), "player", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodPost, teamPath(squad.ID), "captain", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, teamPath(rivals.ID), "stranger", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "capacity_exceeded", decodeError(t, w).Kind)

	// Players may enter themselves; others need a team manager.
	w = api.do(http.MethodPost, teamPath(squad.ID)+"/users/player", "stranger", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodPost, teamPath(squad.ID)+"/users/player", "player", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.do(http.MethodPost, teamPath(squad.ID)+"/users/captain", "captain", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, fmt.Sprintf("/api/tournaments/%d/participants", tour.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Data       []Participant        `json:"data"`
		Pagination responses.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.EqualValues(t, 3, listed.Pagination.TotalItems)
	require.Len(t, listed.Data, 3)
	assert.Equal(t, "organizer", listed.Data[0].ID)

	w = api.do(http.MethodDelete, teamPath(squad.ID)+"/users/player", "captain", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodDelete, teamPath(squad.ID)+"/users/player", "player", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodDelete, teamPath(squad.ID), "captain", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, fmt.Sprintf("/api/tournaments/%d/teams", tour.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_items":0`)
}

package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"capstone/internal/adapter/notification"
	"capstone/internal/model"
	"capstone/internal/pkg/config"
	"capstone/internal/pkg/jwt"
	"capstone/internal/pkg/testutil"
	"capstone/internal/service"
	pkgErrors "capstone/pkg/errors"
)

type envelope struct {
	Code    int             `json:"code"`
	Kind    pkgErrors.Kind  `json:"kind"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiTest struct {
	t      *testing.T
	engine *gin.Engine
	tokens *jwt.Manager
	fx     *testutil.Fixture
}

func newAPITest(t *testing.T) *apiTest {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	services := service.NewServices(db, notification.NewLogNotifier(zap.NewNop()), service.DefaultOptions(), zap.NewNop())
	tokens := jwt.NewManager(&config.JWTConfig{Secret: "test-secret", Issuer: "capstone"})
	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}
	return &apiTest{
		t:      t,
		engine: Setup(cfg, services, tokens),
		tokens: tokens,
		fx:     testutil.NewFixture(t, db),
	}
}

func (a *apiTest) do(method, path string, user *model.User, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := a.tokens.GenerateAccessToken(user.ID, user.Role)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "capstone_capacity_rejections_total")
}

func TestAuthentication(t *testing.T) {
	a := newAPITest(t)

	_, resp := a.do(http.MethodGet, "/api/v1/terms", nil, nil)
	assert.Equal(t, pkgErrors.KindUnauthorized, resp.Kind)

	// Token 有效但用户不在镜像表中
	ghost := &model.User{BaseModel: model.BaseModel{ID: 999}, Role: "ADMIN"}
	_, resp = a.do(http.MethodGet, "/api/v1/terms", ghost, nil)
	assert.Equal(t, pkgErrors.KindUnauthorized, resp.Kind)

	// 角色以 users 表为准, Token 中声明的角色无效
	x := a.fx.Student("x")
	forged := &model.User{BaseModel: model.BaseModel{ID: x.ID}, Role: "ADMIN"}
	_, resp = a.do(http.MethodPost, "/api/v1/terms", forged, map[string]int{"academic_year": 2568, "semester": 1})
	assert.Equal(t, pkgErrors.KindForbidden, resp.Kind)

	w, resp := a.do(http.MethodGet, "/api/v1/users/me", x, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestTermEndpoints(t *testing.T) {
	a := newAPITest(t)
	admin := a.fx.Admin("admin")

	_, resp := a.do(http.MethodPost, "/api/v1/terms", admin, map[string]int{"academic_year": 2568, "semester": 1})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	_, resp = a.do(http.MethodPost, "/api/v1/terms", admin, map[string]int{"academic_year": 2568, "semester": 1})
	assert.Equal(t, pkgErrors.KindConflict, resp.Kind)

	_, resp = a.do(http.MethodPost, "/api/v1/terms", admin, map[string]int{"academic_year": 2568, "semester": 9})
	assert.Equal(t, pkgErrors.KindBadRequest, resp.Kind)

	_, resp = a.do(http.MethodGet, "/api/v1/terms", admin, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	var terms []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &terms))
	assert.Len(t, terms, 1)
}

func TestTeamAndProjectFlow(t *testing.T) {
	a := newAPITest(t)
	x := a.fx.Student("x")
	adv := a.fx.Advisor("adv")
	term := a.fx.Term(2568, 1)
	section := a.fx.Section(term, "CP-01", "PRE_PROJECT")
	a.fx.Enroll(section, x)

	_, resp := a.do(http.MethodPost, "/api/v1/teams", x, map[string]interface{}{})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	var team struct {
		ID          int64  `json:"id"`
		GroupNumber string `json:"group_number"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &team))
	assert.Equal(t, "001", team.GroupNumber)

	_, resp = a.do(http.MethodGet, "/api/v1/teams/mine", x, nil)
	assert.Equal(t, pkgErrors.CodeSuccess, resp.Code)

	_, resp = a.do(http.MethodPost, "/api/v1/teams/abc/project", x, map[string]string{"projectname": "P"})
	assert.Equal(t, pkgErrors.KindBadRequest, resp.Kind)

	path := "/api/v1/teams/" + jsonNumber(team.ID) + "/project"
	_, resp = a.do(http.MethodPost, path, x, map[string]string{"projectname": "P"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	var project struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &project))
	assert.Equal(t, "DRAFT", project.Status)

	projectPath := "/api/v1/projects/" + jsonNumber(project.ID)
	_, resp = a.do(http.MethodPut, projectPath+"/advisor", x, map[string]int64{"advisor_id": adv.ID})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	_, resp = a.do(http.MethodGet, "/api/v1/projects/pending-review", adv, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	var pending []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &pending))
	assert.Len(t, pending, 1)

	_, resp = a.do(http.MethodPost, projectPath+"/decision", adv, map[string]string{"decision": "MAYBE"})
	assert.Equal(t, pkgErrors.KindBadRequest, resp.Kind)

	_, resp = a.do(http.MethodPost, projectPath+"/decision", adv, map[string]string{"decision": "APPROVED"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	_, resp = a.do(http.MethodPut, projectPath, x, map[string]string{"projectname": "Q"})
	assert.Equal(t, pkgErrors.KindForbidden, resp.Kind)

	_, resp = a.do(http.MethodGet, "/api/v1/notifications?unread_only=true", x, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	var inbox []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &inbox))
	assert.Len(t, inbox, 1)
}

func jsonNumber(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rubrics_backend/internal/config"
	"rubrics_backend/internal/grading"
	"rubrics_backend/internal/model"
	"rubrics_backend/internal/repository"
	"rubrics_backend/internal/service"
	"rubrics_backend/internal/testutil"
	"rubrics_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app    *App
	tokens map[model.UserRole]string
	users  map[model.UserRole]*model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: "test"},
		JWT:    config.JWTConfig{Secret: "router-test-secret", ExpireTime: time.Hour},
		Grading: config.GradingConfig{
			GradeMin:       0,
			GradeMax:       100,
			DefaultLang:    "en",
			LockTTLSeconds: 5,
		},
	}
	db := testutil.NewDB(t)
	a, err := NewWithDeps(cfg, db, nil)
	if err != nil {
		t.Fatalf("NewWithDeps: %v", err)
	}

	ts := &testServer{
		app:    a,
		tokens: map[model.UserRole]string{},
		users:  map[model.UserRole]*model.User{},
	}
	users := service.NewUserService(repository.NewUserRepository(db))
	for _, role := range []model.UserRole{model.Student, model.Teacher, model.Admin} {
		u, err := users.CreateUser(context.Background(), service.CreateUserRequest{
			Name:     string(role) + " user",
			Email:    string(role) + "@utb.edu.co",
			Password: "password123",
			Role:     role,
		})
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		token, err := util.GenerateJWT(u, cfg.JWT.Secret, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		ts.users[role] = u
		ts.tokens[role] = token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, role model.UserRole, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	return ts.send(t, ts.tokens[role], method, path, body)
}

func (ts *testServer) send(t *testing.T, token, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestStudentCannotListEvaluations(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, model.Student, http.MethodGet, "/api/evaluations", nil)
	if code != http.StatusForbidden {
		t.Fatalf("status %d", code)
	}
	if env.Message != util.MsgAccessDenied {
		t.Fatalf("message %q", env.Message)
	}

	code, _ = ts.do(t, "", http.MethodGet, "/api/evaluations", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous status %d", code)
	}
}

func TestStudentOutcomesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, model.Teacher, http.MethodGet, "/api/student-outcomes?lang=es", nil)
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, env.Message)
	}
	var list service.StudentOutcomeList
	decode(t, env.Data, &list)
	if list.Count != 7 || list.Language != "es" || len(list.StudentOutcomes[1].Indicators) != 3 {
		t.Fatalf("list %d %s", list.Count, list.Language)
	}
}

func TestLoginAndHealth(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, "", http.MethodPost, "/api/login", gin.H{"email": "teacher@utb.edu.co", "password": "password123"})
	if code != http.StatusOK {
		t.Fatalf("login status %d: %s", code, env.Message)
	}
	var res struct {
		Token string `json:"token"`
	}
	decode(t, env.Data, &res)
	if _, err := util.ParseJWT(res.Token, "router-test-secret"); err != nil {
		t.Fatalf("issued token: %v", err)
	}

	code, _ = ts.do(t, "", http.MethodPost, "/api/login", gin.H{"email": "teacher@utb.edu.co", "password": "wrong-password"})
	if code != http.StatusUnauthorized {
		t.Fatalf("bad password status %d", code)
	}

	code, env = ts.do(t, "", http.MethodGet, "/api/health", nil)
	if code != http.StatusOK {
		t.Fatalf("health status %d", code)
	}
}

func TestGradingFlow(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(t, model.Admin, http.MethodPost, "/api/admin/courses", gin.H{"shortName": "ING", "fullName": "Ingeniería"})
	if code != http.StatusCreated {
		t.Fatalf("create course %d: %s", code, env.Message)
	}
	var course model.Course
	decode(t, env.Data, &course)

	code, env = ts.do(t, model.Admin, http.MethodPost, "/api/admin/areas", gin.H{"courseId": course.ID, "activityId": 3, "activityName": "Informe"})
	if code != http.StatusCreated {
		t.Fatalf("create area %d: %s", code, env.Message)
	}
	var area model.GradingArea
	decode(t, env.Data, &area)

	if code, _ := ts.do(t, model.Teacher, http.MethodPost, "/api/admin/areas", gin.H{}); code != http.StatusForbidden {
		t.Fatalf("teacher on admin route: %d", code)
	}

	areaPath := fmt.Sprintf("/api/areas/%d/definition", area.ID)
	if code, _ := ts.do(t, model.Teacher, http.MethodPut, areaPath, gin.H{"keyname": "so7"}); code != http.StatusOK {
		t.Fatalf("configure definition %d", code)
	}
	if code, _ := ts.do(t, model.Teacher, http.MethodPut, areaPath, gin.H{"keyname": "so8"}); code != http.StatusBadRequest {
		t.Fatalf("unknown keyname %d", code)
	}

	code, env = ts.do(t, model.Teacher, http.MethodGet, areaPath, nil)
	if code != http.StatusOK {
		t.Fatalf("get definition %d", code)
	}
	var view struct {
		Definition struct {
			ID uint `json:"id"`
		} `json:"definition"`
		Structure grading.Structure `json:"structure"`
	}
	decode(t, env.Data, &view)
	if len(view.Structure.Criteria) != 3 {
		t.Fatalf("structure %+v", view.Structure)
	}

	code, env = ts.do(t, model.Teacher, http.MethodPost, fmt.Sprintf("/api/definitions/%d/instances", view.Definition.ID),
		gin.H{"itemId": 41, "studentId": ts.users[model.Student].ID})
	if code != http.StatusOK {
		t.Fatalf("open instance %d: %s", code, env.Message)
	}
	var inst model.GradingInstance
	decode(t, env.Data, &inst)
	evalPath := fmt.Sprintf("/api/instances/%d/evaluations", inst.ID)

	criteria := gin.H{}
	for _, c := range view.Structure.Criteria {
		var good uint
		for _, l := range c.Levels {
			if l.Definition == "Good" {
				good = l.ID
			}
		}
		criteria[fmt.Sprint(c.ID)] = gin.H{"performance_level_id": good, "score": "4,0", "feedback": "ok"}
	}

	// 第一个指标缺少分数，整体拒绝
	first := fmt.Sprint(view.Structure.Criteria[0].ID)
	saved := criteria[first]
	criteria[first] = gin.H{"performance_level_id": saved.(gin.H)["performance_level_id"], "score": ""}
	code, env = ts.do(t, model.Teacher, http.MethodPut, evalPath+"?lang=es", gin.H{"criteria": criteria})
	if code != http.StatusUnprocessableEntity || env.Message != util.MsgValidationErrorEs {
		t.Fatalf("invalid save %d %q", code, env.Message)
	}
	var violations []grading.Violation
	decode(t, env.Data, &violations)
	if len(violations) != 1 || violations[0].Reason != grading.ReasonNoScore {
		t.Fatalf("violations %+v", violations)
	}

	criteria[first] = saved
	code, env = ts.do(t, model.Teacher, http.MethodPut, evalPath, gin.H{"criteria": criteria})
	if code != http.StatusOK {
		t.Fatalf("save %d: %s", code, env.Message)
	}
	var res service.UpdateResult
	decode(t, env.Data, &res)
	if res.Saved != 3 || res.Grade != 80 {
		t.Fatalf("update result %+v", res)
	}

	code, env = ts.do(t, model.Teacher, http.MethodGet, fmt.Sprintf("/api/instances/%d/grade", inst.ID), nil)
	var grade service.GradeResult
	decode(t, env.Data, &grade)
	if code != http.StatusOK || grade.Grade != 80 {
		t.Fatalf("grade %d %+v", code, grade)
	}

	code, env = ts.do(t, model.Teacher, http.MethodGet, "/api/evaluations?assignmentid=3", nil)
	var list service.EvaluationList
	decode(t, env.Data, &list)
	if code != http.StatusOK || list.Count != 3 {
		t.Fatalf("evaluations %d %d", code, list.Count)
	}

	resultPath := fmt.Sprintf("/api/definitions/%d/result", view.Definition.ID)
	code, env = ts.do(t, model.Student, http.MethodGet, resultPath, nil)
	if code != http.StatusOK {
		t.Fatalf("student result %d: %s", code, env.Message)
	}
	if code, _ := ts.do(t, model.Student, http.MethodGet, fmt.Sprintf("%s?studentid=%d", resultPath, ts.users[model.Teacher].ID), nil); code != http.StatusForbidden {
		t.Fatalf("student reading another result: %d", code)
	}

	if code, _ := ts.do(t, model.Student, http.MethodPut, evalPath, gin.H{"criteria": criteria}); code != http.StatusForbidden {
		t.Fatalf("student grading: %d", code)
	}

	// 其他教师不能修改或查看该实例
	code, env = ts.do(t, model.Admin, http.MethodPost, "/api/admin/users",
		gin.H{"name": "Otro docente", "email": "otro@utb.edu.co", "password": "password123", "role": model.Teacher})
	if code != http.StatusCreated {
		t.Fatalf("create teacher %d: %s", code, env.Message)
	}
	code, env = ts.do(t, "", http.MethodPost, "/api/login", gin.H{"email": "otro@utb.edu.co", "password": "password123"})
	if code != http.StatusOK {
		t.Fatalf("login other teacher %d: %s", code, env.Message)
	}
	var login struct {
		Token string `json:"token"`
	}
	decode(t, env.Data, &login)

	code, env = ts.send(t, login.Token, http.MethodPut, evalPath, gin.H{"criteria": criteria})
	if code != http.StatusForbidden || env.Message != util.MsgAccessDenied {
		t.Fatalf("other teacher saving: %d %q", code, env.Message)
	}
	if code, _ := ts.send(t, login.Token, http.MethodDelete, evalPath, nil); code != http.StatusForbidden {
		t.Fatalf("other teacher clearing: %d", code)
	}
	if code, _ := ts.send(t, login.Token, http.MethodGet, fmt.Sprintf("/api/instances/%d/grade", inst.ID), nil); code != http.StatusForbidden {
		t.Fatalf("other teacher reading grade: %d", code)
	}
	code, env = ts.do(t, model.Teacher, http.MethodGet, fmt.Sprintf("/api/instances/%d/grade", inst.ID), nil)
	decode(t, env.Data, &grade)
	if code != http.StatusOK || grade.Grade != 80 {
		t.Fatalf("grade after foreign requests %d %+v", code, grade)
	}
}

package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todos/internal/model"
	"github.com/idilsaglam/todos/internal/store/jsonstore"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	s, err := New(opts...)
	require.NoError(t, err)
	s.Seed(
		model.Todo{UserID: 1, Title: "Buy milk"},
		model.Todo{UserID: 1, Title: "Walk dog", Completed: true},
		model.Todo{UserID: 2, Title: "Someone else's"},
	)
	return s
}

func serve(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestListTodos_FiltersByUser(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodGet, "/todos?userId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []int{1, 2}, model.IDs(got))
}

func TestListTodos_BadUserID(t *testing.T) {
	s := newTestServer(t)
	w := serve(s, http.MethodGet, "/todos?userId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTodos_EmptyIsArray(t *testing.T) {
	s := newTestServer(t)
	w := serve(s, http.MethodGet, "/todos?userId=99", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCreateTodo_AssignsID(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(model.Draft{Title: "Read book", UserID: 1})
	w := serve(s, http.MethodPost, "/todos", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "Read book", created.Title)
	assert.Len(t, s.Todos(), 4)
}

func TestCreateTodo_RequiresTitle(t *testing.T) {
	s := newTestServer(t)
	w := serve(s, http.MethodPost, "/todos", []byte(`{"userId":1,"completed":false}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, s.Todos(), 3)
}

func TestDeleteTodo(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodDelete, "/todos/2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int{1, 3}, model.IDs(s.Todos()))

	w = serve(s, http.MethodDelete, "/todos/2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFailureSwitches(t *testing.T) {
	s := newTestServer(t)
	s.FailList(true)
	s.FailCreate(true)
	s.FailDelete(1)

	assert.Equal(t, http.StatusInternalServerError, serve(s, http.MethodGet, "/todos?userId=1", nil).Code)
	body, _ := json.Marshal(model.Draft{Title: "x", UserID: 1})
	assert.Equal(t, http.StatusInternalServerError, serve(s, http.MethodPost, "/todos", body).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(s, http.MethodDelete, "/todos/1", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(s, http.MethodDelete, "/todos/2", nil).Code)

	s.FailList(false)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/todos?userId=1", nil).Code)
}

func TestStorePersistsChanges(t *testing.T) {
	st, err := jsonstore.New(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)

	s, err := New(WithStore(st))
	require.NoError(t, err)
	body, _ := json.Marshal(model.Draft{Title: "Persist me", UserID: 5})
	require.Equal(t, http.StatusCreated, serve(s, http.MethodPost, "/todos", body).Code)

	reloaded, err := New(WithStore(st))
	require.NoError(t, err)
	todos := reloaded.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, "Persist me", todos[0].Title)

	// ids keep counting from the stored maximum
	require.Equal(t, http.StatusCreated, serve(reloaded, http.MethodPost, "/todos", body).Code)
	assert.Equal(t, []int{1, 2}, model.IDs(reloaded.Todos()))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todos/internal/fakeapi"
	"github.com/idilsaglam/todos/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setup(t *testing.T) (*Client, *fakeapi.Server) {
	t.Helper()
	srv, err := fakeapi.New()
	require.NoError(t, err)
	srv.Seed(
		model.Todo{UserID: 7, Title: "Buy milk"},
		model.Todo{UserID: 7, Title: "Walk dog", Completed: true},
		model.Todo{UserID: 8, Title: "Not mine"},
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New(ts.URL)
	require.NoError(t, err)
	return c, srv
}

func TestNew_RejectsBadScheme(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
}

func TestNew_DefaultsBaseURL(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL.String())
}

func TestWithTimeout_IndependentOfOptionOrder(t *testing.T) {
	for name, opts := range map[string]func(*http.Client) []Option{
		"timeout first": func(hc *http.Client) []Option {
			return []Option{WithTimeout(2 * time.Second), WithHTTPClient(hc)}
		},
		"timeout last": func(hc *http.Client) []Option {
			return []Option{WithHTTPClient(hc), WithTimeout(2 * time.Second)}
		},
	} {
		t.Run(name, func(t *testing.T) {
			hc := &http.Client{}
			c, err := New("http://example.com", opts(hc)...)
			require.NoError(t, err)

			assert.Equal(t, 2*time.Second, c.http.Timeout)
			assert.Zero(t, hc.Timeout, "caller's client must not change")
		})
	}
}

func TestWithTimeout_ZeroKeepsClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c, err := New("http://example.com", WithHTTPClient(hc), WithTimeout(0))
	require.NoError(t, err)
	assert.Same(t, hc, c.http)
}

func TestList(t *testing.T) {
	c, _ := setup(t)

	todos, err := c.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "Buy milk", todos[0].Title)
	assert.True(t, todos[1].Completed)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	c, _ := setup(t)

	todos, err := c.List(context.Background(), 99)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestList_ServerError(t *testing.T) {
	c, srv := setup(t)
	srv.FailList(true)

	_, err := c.List(context.Background(), 7)
	var se *StatusError
	require.True(t, errors.As(err, &se), "want StatusError, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, http.MethodGet, se.Method)
}

func TestCreate(t *testing.T) {
	c, srv := setup(t)

	created, err := c.Create(context.Background(), model.Draft{Title: "Read book", UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "Read book", created.Title)
	assert.Len(t, srv.Todos(), 4)
}

func TestCreate_ServerError(t *testing.T) {
	c, srv := setup(t)
	srv.FailCreate(true)

	_, err := c.Create(context.Background(), model.Draft{Title: "Read book", UserID: 7})
	assert.Error(t, err)
	assert.Len(t, srv.Todos(), 3)
}

func TestDelete(t *testing.T) {
	c, srv := setup(t)

	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Equal(t, []int{2, 3}, model.IDs(srv.Todos()))

	err := c.Delete(context.Background(), 1)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestInvalidResponseShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":"one","userId":7,"title":"x","completed":false}]`))
		default:
			_, _ = w.Write([]byte(`{"userId":7,"title":"x","completed":false}`))
		}
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)

	_, err = c.List(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.Create(context.Background(), model.Draft{Title: "x", UserID: 7})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestRequestShape(t *testing.T) {
	var gotPath, gotQuery, gotType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotType = r.URL.Path, r.URL.RawQuery, r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"id":1,"userId":7,"title":"x","completed":false}`))
	}))
	defer ts.Close()

	c, err := New(ts.URL + "/students-api/")
	require.NoError(t, err)

	_, err = c.Create(context.Background(), model.Draft{Title: "x", UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, "/students-api/todos", gotPath)
	assert.Empty(t, gotQuery)
	assert.Equal(t, contentType, gotType)

	_, _ = c.List(context.Background(), 7)
	assert.Equal(t, "/students-api/todos", gotPath)
	assert.Equal(t, "userId=7", gotQuery)
}

func TestContextCancelled(t *testing.T) {
	c, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx, 7)
	assert.ErrorIs(t, err, context.Canceled)
}

package fakeapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/idilsaglam/todos/internal/model"
)

type createTodoRequest struct {
	Title     string `json:"title" binding:"required"`
	UserID    int    `json:"userId" binding:"required"`
	Completed bool   `json:"completed"`
}

func (s *Server) listTodos(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter must be an integer"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createTodo(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	t := model.Todo{
		ID:        s.nextID,
		UserID:    req.UserID,
		Title:     req.Title,
		Completed: req.Completed,
	}
	next := append(append([]model.Todo(nil), s.todos...), t)
	if err := s.persist(next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save todo", "details": err.Error()})
		return
	}
	s.todos = next
	s.nextID++
	c.JSON(http.StatusCreated, t)
}

func (s *Server) deleteTodo(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[id] {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	idx := -1
	for i, t := range s.todos {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}
	next := make([]model.Todo, 0, len(s.todos)-1)
	next = append(next, s.todos[:idx]...)
	next = append(next, s.todos[idx+1:]...)
	if err := s.persist(next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save todos", "details": err.Error()})
		return
	}
	s.todos = next
	c.Status(http.StatusNoContent)
}

// persist writes todos to the store, if any. Callers hold s.mu.
func (s *Server) persist(todos []model.Todo) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(todos)
}

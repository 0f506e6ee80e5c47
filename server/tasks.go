package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/tasksync/internal/model"
)

// taskRequest is the body of PUT /tasks/:id; the id comes from the path
type taskRequest struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
	Timestamp int64  `json:"timestamp"`
}

type listTasksResponse struct {
	Tasks []model.Document `json:"tasks"`
}

// handleListTasks returns the whole collection of the current user
func (s *Server) handleListTasks(c echo.Context) error {
	userID := c.Get("user_id").(string)

	docs, err := s.store.ListTasks(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("db error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}
	if docs == nil {
		docs = []model.Document{}
	}

	c.Logger().Infof("List for user %s: %d tasks", userID, len(docs))
	return c.JSON(http.StatusOK, listTasksResponse{Tasks: docs})
}

// handleGetTask returns one document
func (s *Server) handleGetTask(c echo.Context) error {
	userID := c.Get("user_id").(string)

	doc, err := s.store.GetTask(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	if err != nil {
		c.Logger().Error("db error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, doc)
}

// handlePutTask creates or replaces a document; repeating it is harmless
func (s *Server) handlePutTask(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")
	if id == "" {
		return errorJSON(c, http.StatusBadRequest, "id required")
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Task == "" {
		return errorJSON(c, http.StatusBadRequest, "task required")
	}

	doc := model.Document{
		ID:        id,
		Task:      req.Task,
		Completed: req.Completed,
		Timestamp: req.Timestamp,
	}
	if err := s.store.UpsertTask(c.Request().Context(), userID, doc); err != nil {
		c.Logger().Error("db error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, doc)
}

// handleDeleteTask removes one document
func (s *Server) handleDeleteTask(c echo.Context) error {
	userID := c.Get("user_id").(string)

	err := s.store.DeleteTask(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	if err != nil {
		c.Logger().Error("db error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

// handleClear removes every document of the current user
func (s *Server) handleClear(c echo.Context) error {
	userID := c.Get("user_id").(string)

	if err := s.store.ClearTasks(c.Request().Context(), userID); err != nil {
		c.Logger().Error("db error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	c.Logger().Infof("Cleared tasks for user %s", userID)
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

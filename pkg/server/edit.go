package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"veoprompt/pkg/scene"
)

type negativePromptReq struct {
	NegativePrompt *string `json:"negative_prompt"`
}

// PUT /api/environment
func (s *Server) handlePutEnvironment(c echo.Context) error {
	var req scene.EnvironmentUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	resp, err := s.track(func() (any, error) {
		return s.Session.UpdateEnvironment(req), nil
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PUT /api/negative-prompt
func (s *Server) handlePutNegativePrompt(c echo.Context) error {
	var req negativePromptReq
	if err := c.Bind(&req); err != nil || req.NegativePrompt == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "negative_prompt is required")
	}
	resp, err := s.track(func() (any, error) {
		s.Session.SetNegativePrompt(*req.NegativePrompt)
		return map[string]string{"negative_prompt": *req.NegativePrompt}, nil
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// POST /api/characters
func (s *Server) handlePostCharacter(c echo.Context) error {
	var req scene.CharacterUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	resp, err := s.track(func() (any, error) {
		return s.Session.AddCharacter(req), nil
	})
	if err != nil {
		return httpError(err)
	}
	log.Info("character added", "id", resp.Result.(scene.Character).ID)
	return c.JSON(http.StatusCreated, resp)
}

// PATCH /api/characters/:id
func (s *Server) handlePatchCharacter(c echo.Context) error {
	id := c.Param("id")
	var req scene.CharacterUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	resp, err := s.track(func() (any, error) {
		return s.Session.UpdateCharacter(id, req)
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DELETE /api/characters/:id
// Removes the character with its dialogue and cancels any running analysis.
func (s *Server) handleDeleteCharacter(c echo.Context) error {
	id := c.Param("id")
	resp, err := s.track(func() (any, error) {
		removed, err := s.Session.DeleteCharacter(id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id, "dialogues_removed": removed}, nil
	})
	if err != nil {
		return httpError(err)
	}
	if run, ok := s.cancels.LoadAndDelete(id); ok {
		run.cancel()
	}
	log.Info("character deleted", "id", id)
	return c.JSON(http.StatusOK, resp)
}

// POST /api/dialogues
func (s *Server) handlePostDialogue(c echo.Context) error {
	var req scene.DialogueUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	resp, err := s.track(func() (any, error) {
		return s.Session.AddDialogue(req)
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// PATCH /api/dialogues/:id
func (s *Server) handlePatchDialogue(c echo.Context) error {
	id := c.Param("id")
	var req scene.DialogueUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	resp, err := s.track(func() (any, error) {
		return s.Session.UpdateDialogue(id, req)
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DELETE /api/dialogues/:id
func (s *Server) handleDeleteDialogue(c echo.Context) error {
	id := c.Param("id")
	resp, err := s.track(func() (any, error) {
		return map[string]string{"id": id}, s.Session.DeleteDialogue(id)
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

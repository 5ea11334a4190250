package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"veoprompt/pkg/catalog"
	"veoprompt/pkg/render"
	"veoprompt/pkg/scene"
	"veoprompt/pkg/schema"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "VEO3 Prompt Generator API",
		"status":  "ok",
	})
}

type optionView struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Label       string `json:"label"`
}

func optionViews(options []catalog.Option) []optionView {
	out := make([]optionView, len(options))
	for i, o := range options {
		out[i] = optionView{Value: o.Value, Description: o.Description, Label: o.Label()}
	}
	return out
}

// GET /api/catalog
func (s *Server) handleGetCatalog(c echo.Context) error {
	all := catalog.Catalogs()
	return c.JSON(http.StatusOK, map[string]any{
		"ethnicities":      all.Ethnicities,
		"other_ethnicity":  catalog.OtherEthnicity,
		"genders":          all.Genders,
		"voices":           all.Voices,
		"lighting":         optionViews(all.Lighting),
		"camera_angles":    optionViews(all.CameraAngles),
		"shot_types":       optionViews(all.ShotTypes),
		"camera_movements": optionViews(all.CameraMovements),
	})
}

type sceneResponse struct {
	Scene scene.Model              `json:"scene"`
	UI    map[string]scene.UIState `json:"ui"`
}

// GET /api/scene
func (s *Server) handleGetScene(c echo.Context) error {
	return c.JSON(http.StatusOK, sceneResponse{
		Scene: s.Session.Model(),
		UI:    s.Session.UIStates(),
	})
}

type renderResponse struct {
	render.Output
	Stats map[string]int `json:"stats,omitempty"`
}

// GET /api/render
func (s *Server) handleGetRender(c echo.Context) error {
	out := render.Render(s.Session.Model())
	return c.JSON(http.StatusOK, renderResponse{Output: out, Stats: s.stats(out)})
}

// stats counts tokens per artifact. A failing tokenizer only drops the stats.
func (s *Server) stats(out render.Output) map[string]int {
	if s.CountTokens == nil {
		return nil
	}
	artifacts := map[string]string{
		"native":    out.Native,
		"secondary": out.Secondary,
		"system":    out.System,
		"payload":   out.PayloadJSON(),
	}
	stats := make(map[string]int, len(artifacts))
	for name, text := range artifacts {
		n, err := s.CountTokens(text)
		if err != nil {
			log.Warn("token count unavailable", "err", err)
			return nil
		}
		stats[name] = n
	}
	return stats
}

// GET /api/render/payload
func (s *Server) handleGetRenderPayload(c echo.Context) error {
	out := render.Render(s.Session.Model())
	return c.JSONBlob(http.StatusOK, []byte(out.PayloadJSON()))
}

// GET /api/schema/payload
func (s *Server) handleGetPayloadSchema(c echo.Context) error {
	return c.JSON(http.StatusOK, schema.PayloadSchema)
}

// GET /api/schema/analysis
func (s *Server) handleGetAnalysisSchema(c echo.Context) error {
	return c.JSON(http.StatusOK, schema.ImageAttributesSchema)
}

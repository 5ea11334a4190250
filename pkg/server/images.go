package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"veoprompt/pkg/extract"
	"veoprompt/pkg/inference"
	"veoprompt/pkg/preview"
	"veoprompt/pkg/queue"
	"veoprompt/pkg/scene"
	"veoprompt/pkg/schema"
	"veoprompt/pkg/utils"
)

const maxImageSize = 20 << 20

type analysisFailure struct {
	Message   string          `json:"message"`
	Failure   *schema.Failure `json:"failure"`
	Character scene.Character `json:"character"`
}

// POST /api/characters/:id/image
// Stores a WebP preview of the uploaded reference image, then fills the
// character from the vision model's reading of it. On failure the character
// keeps the values it had before the upload.
func (s *Server) handlePostCharacterImage(c echo.Context) error {
	id := c.Param("id")
	if s.Analyzer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "image analysis is not configured")
	}

	img, err := readImage(c)
	if err != nil {
		return err
	}

	thumb, err := preview.Encode(img.Data, img.MIMEType)
	thumbType := preview.MIMEType
	if err != nil {
		log.Warn("preview unavailable", "id", id, "err", err)
		thumb, thumbType = nil, ""
	}

	if err := s.Session.BeginAnalysis(id, thumb, thumbType); err != nil {
		return httpError(err)
	}

	ctx, cancel := context.WithTimeout(s.Ctx, s.AnalysisTimeout)
	defer cancel()
	stop := context.AfterFunc(c.Request().Context(), cancel)
	defer stop()
	run := &analysisRun{cancel: cancel}
	s.cancels.Store(id, run)
	defer s.cancels.DeleteFunc(id, func(r *analysisRun) bool { return r == run })

	log.Info("analyzing reference image", "id", id, "type", img.MIMEType, "size", len(img.Data))
	attrs, err := s.Analyzer.Extract(ctx, img)
	if err != nil {
		return s.failAnalysis(c, id, err)
	}

	resp, err := s.track(func() (any, error) {
		return s.Session.CompleteAnalysis(id, attrs)
	})
	if err != nil {
		// deleted while the model was running
		return httpError(err)
	}
	log.Info("analysis complete", "id", id, "race", attrs.Race, "gender", attrs.Gender)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) failAnalysis(c echo.Context, id string, cause error) error {
	failure := schema.Failure{Reason: "analysis failed", Error: cause}
	status := http.StatusBadGateway
	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		failure.Reason = "analysis timed out"
		status = http.StatusGatewayTimeout
	case errors.Is(cause, context.Canceled):
		failure.Reason = "analysis cancelled"
	case errors.Is(cause, queue.ErrFull):
		failure.Reason = "too many images waiting for analysis"
		status = http.StatusServiceUnavailable
	}
	var unreadable *extract.ParseError
	if errors.As(cause, &unreadable) {
		failure.Raw = unreadable.Raw
	}

	if err := s.Session.FailAnalysis(id, failure); err != nil {
		return httpError(err)
	}
	log.Error("analysis failed", "id", id, "err", cause)

	var restored scene.Character
	if m := s.Session.Model(); m.IndexOf(id) >= 0 {
		restored = m.Characters[m.IndexOf(id)]
	}
	return c.JSON(status, analysisFailure{
		Message:   failure.Reason,
		Failure:   &failure,
		Character: restored,
	})
}

func readImage(c echo.Context) (inference.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return inference.Image{}, echo.NewHTTPError(http.StatusBadRequest, "missing image file")
	}
	if fh.Size > maxImageSize {
		return inference.Image{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("image exceeds %d bytes", maxImageSize))
	}

	f, err := fh.Open()
	if err != nil {
		return inference.Image{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize))
	if err != nil {
		return inference.Image{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}

	mimeType := fh.Header.Get(echo.HeaderContentType)
	if mimeType == "" || mimeType == echo.MIMEOctetStream {
		mimeType = http.DetectContentType(data)
	}
	if !preview.IsImage(mimeType) {
		return inference.Image{}, httpError(fmt.Errorf("%s: %w", utils.LimitStr(mimeType, 40), preview.ErrNotImage))
	}
	return inference.Image{Data: data, MIMEType: mimeType}, nil
}

// GET /api/characters/:id/preview
func (s *Server) handleGetCharacterPreview(c echo.Context) error {
	st, err := s.Session.UIState(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if !st.HasPreview() {
		return echo.NewHTTPError(http.StatusNotFound, "no preview for this character")
	}
	return c.Blob(http.StatusOK, st.PreviewType, st.Preview)
}

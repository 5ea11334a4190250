package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"veoprompt/pkg/diff"
	"veoprompt/pkg/preview"
	"veoprompt/pkg/queue"
	"veoprompt/pkg/render"
	"veoprompt/pkg/scene"
	"veoprompt/pkg/utils"
)

type Server struct {
	Echo     *echo.Echo
	Session  *scene.Session
	Analyzer queue.Analyzer
	Ctx      context.Context

	// ExportPath receives the scene and its last render on shutdown when set.
	ExportPath      string
	AnalysisTimeout time.Duration
	CountTokens     func(string) (int, error)

	mu        sync.Mutex
	lastModel scene.Model
	last      render.Output

	cancels *utils.SyncMap[map[string]*analysisRun, string, *analysisRun]
}

// analysisRun identifies one upload's analysis so it can be cancelled without
// touching a later upload for the same character.
type analysisRun struct {
	cancel context.CancelFunc
}

// Export is the document written to ExportPath.
type Export struct {
	Scene  scene.Model   `json:"scene"`
	Render render.Output `json:"render"`
}

func NewServer(ctx context.Context, session *scene.Session, analyzer queue.Analyzer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:            e,
		Session:         session,
		Analyzer:        analyzer,
		Ctx:             ctx,
		AnalysisTimeout: 60 * time.Second,
		CountTokens:     utils.NumTokens,
		cancels:         utils.NewSyncMap[map[string]*analysisRun](),
	}
	e.HTTPErrorHandler = s.handleError
	s.Reset()

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.GET("/catalog", s.handleGetCatalog)
	api.GET("/scene", s.handleGetScene)

	api.PUT("/environment", s.handlePutEnvironment)
	api.PUT("/negative-prompt", s.handlePutNegativePrompt)

	api.POST("/characters", s.handlePostCharacter)
	api.PATCH("/characters/:id", s.handlePatchCharacter)
	api.DELETE("/characters/:id", s.handleDeleteCharacter)
	api.POST("/characters/:id/image", s.handlePostCharacterImage) // multipart "image" -> analysis
	api.GET("/characters/:id/preview", s.handleGetCharacterPreview)

	api.POST("/dialogues", s.handlePostDialogue)
	api.PATCH("/dialogues/:id", s.handlePatchDialogue)
	api.DELETE("/dialogues/:id", s.handleDeleteDialogue)

	api.GET("/render", s.handleGetRender)
	api.GET("/render/payload", s.handleGetRenderPayload)

	api.GET("/schema/payload", s.handleGetPayloadSchema)
	api.GET("/schema/analysis", s.handleGetAnalysisSchema)
}

// Reset takes the session's current scene as the baseline for change feeds.
// Call it after replacing the scene outside of the HTTP handlers.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastModel = s.Session.Model()
	s.last = render.Render(s.lastModel)
}

// track runs a session mutation and returns what it changed in the rendered
// artifacts. Mutations are serialized so consecutive feeds chain.
func (s *Server) track(mutate func() (any, error)) (mutationResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := mutate()
	if err != nil {
		return mutationResponse{}, err
	}

	model := s.Session.Model()
	out := render.Render(model)
	d := diff.Scenes(s.lastModel, model, s.last, out)
	s.lastModel, s.last = model, out

	if !d.Empty() && log.GetLevel() <= log.DebugLevel {
		var b strings.Builder
		d.Print(&b)
		log.Debug("scene changed\n" + b.String())
	}
	return mutationResponse{Result: result, Diff: d}, nil
}

type mutationResponse struct {
	Result any       `json:"result"`
	Diff   diff.Diff `json:"diff"`
}

// httpError maps domain errors onto status codes.
func httpError(err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, scene.ErrCharacterNotFound), errors.Is(err, scene.ErrDialogueNotFound):
		status = http.StatusNotFound
	case errors.Is(err, scene.ErrUnknownCharacter), errors.Is(err, scene.ErrNoCharacters):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, scene.ErrAnalysisInFlight):
		status = http.StatusConflict
	case errors.Is(err, preview.ErrNotImage):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, queue.ErrFull):
		status = http.StatusServiceUnavailable
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}

// handleError writes every handler error as {"success": false, "error": msg}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			err = he.Internal
		}
	}
	if code >= http.StatusInternalServerError {
		log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "status", code, "err", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, utils.ErrJSON(msg))
	}
	if err != nil {
		log.Error("failed to write error response", "err", err)
	}
}

func (s *Server) Start(addr string) error {
	utils.Logf("Server listening at %s", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	utils.Logf("Shutting down server...")

	var saveErr error
	if s.ExportPath != "" {
		s.mu.Lock()
		doc := Export{Scene: s.lastModel, Render: s.last}
		s.mu.Unlock()
		saveErr = utils.Save(s.ExportPath, doc)
		if saveErr == nil {
			log.Info("exported scene", "path", s.ExportPath)
		}
	}

	shutDownErr := s.Echo.Shutdown(ctx)
	if shutDownErr != nil {
		return shutDownErr
	}

	return saveErr
}

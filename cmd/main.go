package main

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"veoprompt/pkg/extract"
	"veoprompt/pkg/inference"
	"veoprompt/pkg/queue"
	"veoprompt/pkg/scene"
	"veoprompt/pkg/server"
	"veoprompt/pkg/utils"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	inf, err := newInferencer(ctx)
	if err != nil {
		log.Fatal(err)
	}

	session := scene.NewSession()
	if path := os.Getenv("SCENE_FILE"); path != "" {
		m, err := utils.Load[scene.Model](path)
		switch {
		case err == nil:
			if err := session.Restore(m); err != nil {
				log.Fatalf("Invalid scene in %s: %v", path, err)
			}
			log.Infof("Loaded %d characters and %d dialogue lines from %s", len(m.Characters), len(m.Dialogues), path)
		case errors.Is(err, os.ErrNotExist):
			log.Warnf("Scene file %s not found, starting with the default scene", path)
		default:
			log.Warnf("Failed to load %s: %v", path, err)
		}
	}

	extractor := extract.New(inf)
	analyses := queue.New(queue.AnalyzerFunc(extractor.Analyze), 16)
	analyses.Start()
	defer analyses.Stop()
	extractor.Schedule(analyses.Extract)

	srv := server.NewServer(ctx, session, extractor)
	srv.Echo.Logger.SetLevel(log.DEBUG)
	srv.ExportPath = os.Getenv("EXPORT_FILE")
	if timeout := os.Getenv("ANALYSIS_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			log.Fatalf("Invalid ANALYSIS_TIMEOUT %q: %v", timeout, err)
		}
		srv.AnalysisTimeout = d
	}

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}

// newInferencer prefers Gemini, then a named OpenAI-compatible provider, and
// finally a local endpoint when no key is set.
func newInferencer(ctx context.Context) (inference.Inferencer, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		g, err := inference.NewGeminiInferencer(ctx, key, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	provider := cmp.Or(os.Getenv("INFERENCE_PROVIDER"), "openai")
	if apiKey == "" {
		provider = "local"
	}
	o, err := inference.NewProviderInferencer(provider, apiKey, os.Getenv("OPENAI_MODEL"))
	if err != nil {
		return nil, err
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		o.ChangeBaseURL(baseURL)
	}
	return o, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/domain/jsoncfg"
	"veostudio/internal/infra"
	"veostudio/internal/infra/credentials"
	"veostudio/internal/providers/genai"
	"veostudio/internal/providers/video"
	"veostudio/internal/storage"
	"veostudio/internal/workflow"
)

const (
	exitOK         = 0
	exitUsage      = 1
	exitCredential = 2
	exitFailed     = 3

	syntheticPollInterval = 200 * time.Millisecond
)

type flags struct {
	key          string
	prompt       string
	model        string
	aspect       string
	resolution   string
	safety       string
	negative     string
	outDir       string
	catalogPath  string
	baseURL      string
	synthetic    bool
	verbose      bool
	pollInterval time.Duration
	maxAttempts  int
	timeout      time.Duration
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.key, "key", "", "Gemini API key (fallbacks to GEMINI_API_KEY)")
	flag.StringVar(&f.prompt, "prompt", "", "Text prompt describing the video")
	flag.StringVar(&f.model, "model", "", "Veo model id (default from the catalog)")
	flag.StringVar(&f.aspect, "aspect", string(domain.AspectRatio16x9), "Aspect ratio: 16:9, 9:16, 1:1, 4:3 or 3:4")
	flag.StringVar(&f.resolution, "resolution", string(domain.Resolution1080p), "Resolution: 1080p or 720p")
	flag.StringVar(&f.safety, "safety", string(domain.SafetyAllowAll), "Safety policy: ALLOW_ALL, ALLOW_ADULT or DISALLOW_PEOPLE")
	flag.StringVar(&f.negative, "negative", "", "Negative prompt")
	flag.StringVar(&f.outDir, "out", ".", "Directory the video is written to")
	flag.StringVar(&f.catalogPath, "catalog", os.Getenv("MODEL_CATALOG_PATH"), "YAML model catalog")
	flag.StringVar(&f.baseURL, "base-url", genai.DefaultBaseURL, "Gemini API base URL")
	flag.BoolVar(&f.synthetic, "synthetic", false, "Use the offline synthetic service")
	flag.BoolVar(&f.verbose, "v", false, "Verbose logging")
	flag.DurationVar(&f.pollInterval, "poll-interval", workflow.DefaultPollInterval, "Delay before each status query")
	flag.IntVar(&f.maxAttempts, "max-attempts", workflow.DefaultPollMaxAttempts, "Maximum status queries, 0 for unbounded")
	flag.DurationVar(&f.timeout, "timeout", 20*time.Minute, "Overall generation timeout")
	flag.Parse()

	if f.prompt == "" && flag.NArg() > 0 {
		f.prompt = strings.Join(flag.Args(), " ")
	}
	if f.synthetic && !flagSet("poll-interval") {
		f.pollInterval = syntheticPollInterval
	}
	return f
}

func flagSet(name string) bool {
	found := false
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

func main() {
	_ = godotenv.Load()
	os.Exit(run(parseFlags()))
}

func run(f flags) int {
	logger := infra.NewLogger("development").With().Str("cmd", "generate").Logger()
	if !f.verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	key := strings.TrimSpace(f.key)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if key == "" && !f.synthetic {
		fmt.Fprintln(os.Stderr, color.RedString("Gemini API key is required via -key or GEMINI_API_KEY"))
		return exitUsage
	}
	if key == "" {
		key = "synthetic"
	}

	catalog, err := infra.LoadModelCatalog(f.catalogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("load catalog: %v", err))
		return exitUsage
	}

	req := jsoncfg.GenerationJSON{
		Prompt: f.prompt,
		Options: jsoncfg.OptionsJSON{
			Model:          f.model,
			AspectRatio:    f.aspect,
			Resolution:     f.resolution,
			SafetyPolicy:   f.safety,
			NegativePrompt: f.negative,
		},
	}
	req.Normalize(catalog)
	if err := req.Validate(catalog); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		return exitUsage
	}

	files, err := storage.NewFileStore(f.outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("output directory: %v", err))
		return exitUsage
	}

	svc, err := newService(f, &logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("configure service: %v", err))
		return exitUsage
	}

	store := storage.NewMemoryStore()
	orch := workflow.NewOrchestrator(svc, store, credentials.NewHolder(), workflow.Config{
		PollInterval:    f.pollInterval,
		PollMaxAttempts: f.maxAttempts,
		JobTimeout:      f.timeout,
		SettleDelay:     workflow.DefaultSettleDelay,
	},
		workflow.WithCatalog(catalog),
		workflow.WithLogger(logger),
		workflow.WithObserver(newProgressPrinter()),
	)
	defer orch.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status, err := orch.ValidateCredential(ctx, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		return exitFailed
	}
	if status != domain.CredentialValid {
		fmt.Fprintln(os.Stderr, color.RedString("API key is not valid"))
		return exitCredential
	}

	if _, err := orch.Start(req.Prompt, req.Domain()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		return exitFailed
	}

	if err := orch.Wait(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.YellowString("interrupted, cancelling..."))
		_ = orch.Cancel()
		_ = orch.Wait(context.Background())
	}

	snap := orch.Snapshot()
	if snap.Status != domain.JobStatusSuccess || snap.Asset == nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %s", snap.Error))
		return exitFailed
	}

	handle, body, err := store.Open(snap.Asset.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("open result: %v", err))
		return exitFailed
	}
	path, err := files.Save(context.Background(), handle.Filename(), body)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("save video: %v", err))
		return exitFailed
	}
	abs, _ := filepath.Abs(path)
	fmt.Printf("%s %s (%d bytes)\n", color.GreenString("Saved"), abs, handle.Size)
	return exitOK
}

func newService(f flags, logger *infra.Logger) (video.Service, error) {
	if f.synthetic {
		return video.NewSynthetic(video.WithSyntheticLogger(*logger)), nil
	}
	client, err := genai.NewClient(genai.Options{
		BaseURL:    f.baseURL,
		HTTPClient: &http.Client{Timeout: time.Minute},
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return video.NewGemini(client), nil
}

// newProgressPrinter prints each distinct status message once.
func newProgressPrinter() workflow.Observer {
	var (
		mu   sync.Mutex
		last string
	)
	return func(s workflow.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		line := s.Message
		if s.Status == domain.JobStatusPolling && s.PollAttempts > 0 {
			line = fmt.Sprintf("%s (check %d)", s.Message, s.PollAttempts)
		}
		if line == "" || line == last {
			return
		}
		last = line
		switch s.Status {
		case domain.JobStatusSuccess:
			fmt.Println(color.GreenString(line))
		case domain.JobStatusError:
			fmt.Println(color.RedString(line))
		default:
			fmt.Println(color.CyanString(line))
		}
	}
}

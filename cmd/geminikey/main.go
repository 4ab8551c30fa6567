package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"veostudio/internal/infra"
	"veostudio/internal/providers/genai"
)

const (
	exitValid   = 0
	exitInvalid = 2
	exitUsage   = 1
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag string
		baseURL string
		model   string
		timeout time.Duration
		verbose bool
	)
	flag.StringVar(&keyFlag, "key", "", "Gemini API key to check (fallbacks to GEMINI_API_KEY)")
	flag.StringVar(&baseURL, "base-url", genai.DefaultBaseURL, "Gemini API base URL")
	flag.StringVar(&model, "model", genai.DefaultValidationModel, "Model used for the probe request")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Probe timeout")
	flag.BoolVar(&verbose, "v", false, "Log HTTP traffic")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, color.RedString("Gemini API key is required via -key or GEMINI_API_KEY"))
		os.Exit(exitUsage)
	}

	logger := infra.NewLogger("development").With().Str("cmd", "geminikey").Logger()
	if !verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	client, err := genai.NewClient(genai.Options{
		BaseURL:         baseURL,
		ValidationModel: model,
		HTTPClient:      &http.Client{Timeout: timeout},
		Logger:          &logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("configure client: %v", err))
		os.Exit(exitUsage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("Validating API Key... (%s)\n", color.CyanString(mask(key)))
	if err := client.Probe(ctx, key); err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			fmt.Println(color.RedString("invalid: %s", apiErr.Message))
		} else {
			fmt.Println(color.RedString("invalid: %v", err))
		}
		os.Exit(exitInvalid)
	}
	fmt.Println(color.GreenString("valid: key accepted by %s", client.ValidationModel()))
	os.Exit(exitValid)
}

func mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/logger"
	"github.com/divya16-bit/ApplyBee/internal/resumetext"
)

// setup builds the logger, the config and the engines shared by commands.
func setup(ctx context.Context) (*zap.Logger, *Config, *engines) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting applybee", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	deps, err := buildEngines(ctx, config, logger)
	if err != nil {
		logger.Fatal("building engines", zap.Error(err))
	}
	return logger, config, deps
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) Config {
	out := *config
	if out.AI.Gemini != nil {
		g := *out.AI.Gemini
		if g.APIKey != "" {
			g.APIKey = "***"
		}
		out.AI.Gemini = &g
	}
	return out
}

// readResume validates and extracts the text of a resume file.
func readResume(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat resume: %w", err)
	}
	name := filepath.Base(path)
	if err := resumetext.Validate(name, info.Size()); err != nil {
		return "", fmt.Errorf("validate resume %s: %w", name, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	text, err := resumetext.Extract(name, data)
	if err != nil {
		return "", fmt.Errorf("extract resume %s: %w", name, err)
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

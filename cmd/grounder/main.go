// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	grounder "github.com/poiesic/grounder"
	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/core"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "grounder",
		Usage: "Retrieval-augmented question answering over local documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:  "generation-model",
				Usage: "Generation model name",
				Value: "qwen2.5:3b",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "API token (\"none\" for unauthenticated local servers)",
				Value: "none",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest documents into the corpus",
				ArgsUsage: "[files...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Ingest every .txt and .md file under a directory",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-rag",
						Usage: "Send the question directly to the model without retrieval",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages to retrieve",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Prompt token budget",
						Value: 1024,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Similarity floor for retrieved passages",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show corpus statistics",
				Action: statsCommand,
			},
			{
				Name:   "list",
				Usage:  "List ingested documents",
				Action: listCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its chunks",
				ArgsUsage: "<name>",
				Action:    deleteCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed stored chunks",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "missing-only",
						Usage: "Only embed chunks that have no vector yet",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// response is the JSON envelope written to stdout by every command.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func emit(data any) error {
	return json.NewEncoder(os.Stdout).Encode(response{Success: true, Data: data})
}

func emitError(err error) error {
	if encodeErr := json.NewEncoder(os.Stdout).Encode(response{Success: false, Error: err.Error()}); encodeErr != nil {
		return encodeErr
	}
	return cli.Exit("", 1)
}

func openEngine(c *cli.Context, opts ...grounder.EngineOption) (*grounder.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithToken(c.String("token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts = append(opts, grounder.WithAIConfig(aiConfig))
	return grounder.NewEngine(c.String("db"), opts...)
}

func ingestCommand(c *cli.Context) error {
	files := c.Args().Slice()

	if dir := c.String("dir"); dir != "" {
		found, err := collectDocumentFiles(dir)
		if err != nil {
			return emitError(err)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		return emitError(fmt.Errorf("nothing to ingest: pass files or --dir"))
	}

	engine, err := openEngine(c)
	if err != nil {
		return emitError(err)
	}
	defer engine.Close()

	return emit(ingestFiles(c.Context, engine, files))
}

// fileResult reports the outcome of ingesting a single file. A failed file
// carries its error and zero counts.
type fileResult struct {
	Name          string `json:"name"`
	ChunksCreated int    `json:"chunksCreated"`
	ChunksIndexed int    `json:"chunksIndexed"`
	ChunksFailed  int    `json:"chunksFailed"`
	Error         string `json:"error,omitempty"`
}

// ingestFiles ingests each file in order, continuing past per-file failures
// so one unreadable file does not abort a directory run.
func ingestFiles(ctx context.Context, engine *grounder.Engine, files []string) []fileResult {
	results := make([]fileResult, 0, len(files))

	for _, path := range files {
		name := filepath.Base(path)

		text, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "err", err)
			results = append(results, fileResult{Name: name, Error: err.Error()})
			continue
		}

		result, err := engine.IngestDocument(ctx, name, string(text))
		if err != nil {
			slog.Warn("failed to ingest file", "name", name, "err", err)
			results = append(results, fileResult{Name: name, Error: err.Error()})
			continue
		}

		results = append(results, fileResult{
			Name:          name,
			ChunksCreated: result.ChunksCreated,
			ChunksIndexed: result.ChunksIndexed,
			ChunksFailed:  result.ChunksFailed,
		})
	}

	return results
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return emitError(fmt.Errorf("a question is required"))
	}

	opts := []grounder.EngineOption{
		grounder.WithTopK(c.Int("top-k")),
		grounder.WithMaxTokens(c.Int("max-tokens")),
	}
	if c.IsSet("min-similarity") {
		opts = append(opts, grounder.WithMinSimilarity(float32(c.Float64("min-similarity"))))
	}

	engine, err := openEngine(c, opts...)
	if err != nil {
		return emitError(err)
	}
	defer engine.Close()

	mode := core.ModeRAG
	if c.Bool("no-rag") {
		mode = core.ModeDirect
	}

	answer, err := engine.Answer(c.Context, question, mode)
	if err != nil {
		return emitError(err)
	}

	return emit(answer)
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return emitError(err)
	}
	defer engine.Close()

	stats, err := engine.Stats(c.Context)
	if err != nil {
		return emitError(err)
	}

	return emit(stats)
}

func listCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return emitError(err)
	}
	defer engine.Close()

	docs, err := engine.ListDocuments(c.Context)
	if err != nil {
		return emitError(err)
	}

	type docSummary struct {
		Name       string `json:"name"`
		ChunkCount int    `json:"chunkCount"`
		CreatedAt  string `json:"createdAt"`
	}
	summaries := make([]docSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, docSummary{
			Name:       doc.Name,
			ChunkCount: doc.ChunkCount,
			CreatedAt:  doc.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return emit(summaries)
}

func deleteCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return emitError(fmt.Errorf("a document name is required"))
	}

	engine, err := openEngine(c)
	if err != nil {
		return emitError(err)
	}
	defer engine.Close()

	if err := engine.DeleteDocument(c.Context, name); err != nil {
		return emitError(err)
	}

	return emit(map[string]string{"deleted": name})
}

func reindexCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return emitError(err)
	}
	defer engine.Close()

	processed, err := engine.Reindex(c.Context, c.Bool("missing-only"), os.Stderr)
	if err != nil {
		return emitError(err)
	}

	return emit(map[string]int{"chunksReindexed": processed})
}

// collectDocumentFiles finds all .txt and .md files under dir.
func collectDocumentFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

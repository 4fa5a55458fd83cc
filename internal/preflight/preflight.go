package preflight

import (
	"context"
	"path/filepath"
	"sort"

	"captioner/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks applicable to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Paths.JournalPath)),
	}

	langs := make([]string, 0, len(cfg.Live.Models))
	for lang := range cfg.Live.Models {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		results = append(results, CheckRecognizer(ctx, lang, cfg.Live.Models[lang]))
	}

	if cfg.Redis.Enabled {
		results = append(results, CheckRedis(ctx, cfg.Redis))
	}
	if cfg.Transcription.Engine == config.EngineOpenAI {
		results = append(results, CheckOpenAIKey(cfg.Transcription))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

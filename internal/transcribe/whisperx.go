package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"captioner/internal/captions"
	"captioner/internal/language"
)

// WhisperX settings passed to the CLI.
const (
	DefaultWhisperXModel = "base"
	UVXCommand           = "uvx"
	CUDAIndexURL         = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL         = "https://pypi.org/simple"
	whisperXBatchSize    = "4"
	whisperXOutputFormat = "json"
	cpuDevice            = "cpu"
	cudaDevice           = "cuda"
	cpuComputeType       = "float32"
)

// WhisperXConfig captures runtime settings for the whisperx CLI.
type WhisperXConfig struct {
	Model       string
	CUDAEnabled bool
	// Language is a language name or ISO code. Empty lets whisperx detect it.
	Language string
	// WorkDir receives whisperx output when set; otherwise output lands next to the audio.
	WorkDir string
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// WhisperX transcribes audio with the whisperx CLI run through uvx.
type WhisperX struct {
	cfg           WhisperXConfig
	commandRunner commandRunner
}

// NewWhisperX returns a WhisperX engine.
func NewWhisperX(cfg WhisperXConfig) *WhisperX {
	return &WhisperX{cfg: cfg, commandRunner: runCommand}
}

// WithCommandRunner replaces the process runner (for testing).
func (w *WhisperX) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	if runner != nil {
		w.commandRunner = runner
	}
}

// Model returns the model name passed to whisperx.
func (w *WhisperX) Model() string {
	if w.cfg.Model != "" {
		return w.cfg.Model
	}
	return DefaultWhisperXModel
}

// Transcribe runs whisperx on audioPath and loads the resulting segments.
func (w *WhisperX) Transcribe(ctx context.Context, audioPath string) ([]captions.Segment, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, fmt.Errorf("whisperx: audio path required")
	}
	outputDir := w.cfg.WorkDir
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("whisperx: ensure output dir: %w", err)
	}

	if err := w.commandRunner(ctx, UVXCommand, w.buildArgs(audioPath, outputDir)...); err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	segments, err := LoadWhisperXSegments(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}
	return normalizeSegments(segments), nil
}

func (w *WhisperX) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 20)
	if w.cfg.CUDAEnabled {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}
	args = append(args,
		"whisperx",
		source,
		"--model", w.Model(),
		"--batch_size", whisperXBatchSize,
		"--output_dir", outputDir,
		"--output_format", whisperXOutputFormat,
	)
	if lang := isoCode(w.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if w.cfg.CUDAEnabled {
		args = append(args, "--device", cudaDevice)
	} else {
		args = append(args, "--device", cpuDevice, "--compute_type", cpuComputeType)
	}
	return args
}

func isoCode(value string) string {
	if lang, err := language.Parse(value); err == nil {
		return lang.ISO2()
	}
	return language.ToISO2(value)
}

type whisperXPayload struct {
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

// LoadWhisperXSegments reads the segments from a whisperx JSON file.
func LoadWhisperXSegments(path string) ([]captions.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	segments := make([]captions.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		segments = append(segments, captions.Segment{Text: seg.Text, Start: seg.Start, End: seg.End})
	}
	return segments, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 defaults torch.load to weights_only, which whisperx checkpoints fail.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

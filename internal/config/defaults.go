package config

const (
	defaultConfigPath         = "~/.config/captioner/config.toml"
	defaultWorkDir            = "~/.local/share/captioner/work"
	defaultLogDir             = "~/.local/share/captioner/logs"
	defaultTranscriptPath     = "subtitles.txt"
	defaultJournalPath        = "~/.local/share/captioner/sessions.db"
	defaultLeadFrames         = 15
	defaultReferenceWidth     = 1280
	defaultFontScale          = 0.8
	defaultThickness          = 2
	defaultVerticalPosition   = 0.9
	defaultFontSize           = 30.0
	defaultOutputName         = "output.mp4"
	defaultEngine             = EngineWhisperX
	defaultTranscriptionLang  = "english"
	defaultModel              = "base"
	defaultOpenAIModel        = "whisper-1"
	defaultTranscribeTimeout  = 1800
	defaultLiveLanguage       = "english"
	defaultSampleRate         = 44100
	defaultChunkFrames        = 2000
	defaultStopTimeoutSeconds = 5
	defaultAudioSource        = AudioSourceMicrophone
	defaultEnglishModelURL    = "ws://127.0.0.1:2700"
	defaultHindiModelURL      = "ws://127.0.0.1:2701"
	defaultRedisAddr          = "127.0.0.1:6379"
	defaultRedisKey           = "captioner:transcript"
	defaultRedisChannel       = "captioner:transcript:updates"
	defaultAPIBind            = "127.0.0.1:7488"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Transcription engines.
const (
	EngineWhisperX = "whisperx"
	EngineOpenAI   = "openai"
)

// AudioSourceMicrophone is the only supported live audio source.
const AudioSourceMicrophone = "microphone"

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:        defaultWorkDir,
			LogDir:         defaultLogDir,
			TranscriptPath: defaultTranscriptPath,
			JournalPath:    defaultJournalPath,
		},
		Captions: Captions{
			LeadFrames:       defaultLeadFrames,
			ReferenceWidth:   defaultReferenceWidth,
			FontScale:        defaultFontScale,
			Thickness:        defaultThickness,
			VerticalPosition: defaultVerticalPosition,
			FontSize:         defaultFontSize,
			OutputName:       defaultOutputName,
		},
		Transcription: Transcription{
			Engine:         defaultEngine,
			Language:       defaultTranscriptionLang,
			Model:          defaultModel,
			OpenAIModel:    defaultOpenAIModel,
			TimeoutSeconds: defaultTranscribeTimeout,
		},
		Live: Live{
			Language:           defaultLiveLanguage,
			SampleRate:         defaultSampleRate,
			ChunkFrames:        defaultChunkFrames,
			StopTimeoutSeconds: defaultStopTimeoutSeconds,
			AudioSource:        defaultAudioSource,
			Models: map[string]string{
				"english": defaultEnglishModelURL,
				"hindi":   defaultHindiModelURL,
			},
		},
		Redis: Redis{
			Addr:    defaultRedisAddr,
			Key:     defaultRedisKey,
			Channel: defaultRedisChannel,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/lexvoice/lexvoice/internal/app"
	"github.com/lexvoice/lexvoice/internal/config"
	"github.com/lexvoice/lexvoice/internal/speech"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile     = flag.String("config", "", "Path to configuration file (default: ~/.lexvoicerc or /etc/lexvoice/config.yaml)")
	listModels     = flag.Bool("list-models", false, "List all available models for download")
	listDownloaded = flag.Bool("list-downloaded", false, "List all downloaded models")
	downloadModel  = flag.String("download-model", "", "Download a specific model by name")
	modelName      = flag.String("model", "", "Use a specific model (default: vosk-model-small-en-us-0.15)")
	setDefault     = flag.String("set-default", "", "Set a model as the default")
	backendURL     = flag.String("backend", "", "Legal Q&A backend base URL")
	apiKey         = flag.String("api-key", "", "Backend API key (bearer token)")
	jurisdiction   = flag.String("jurisdiction", "", "Jurisdiction hint sent with each question")
	domain         = flag.String("domain", "", "Legal domain hint sent with each question")
	autoListen     = flag.Bool("auto-listen", true, "Automatically reopen the microphone after each answer")
	enableVAD      = flag.Bool("vad", true, "Enable Voice Activity Detection for utterance boundaries")
	vadThreshold   = flag.Float64("vad-threshold", 0.01, "VAD energy threshold (0.001-0.1, lower=more sensitive)")
	voiceRate      = flag.Float64("voice-rate", 1.0, "Speech output rate (1.0 = normal)")
	voicePitch     = flag.Float64("voice-pitch", 1.0, "Speech output pitch (1.0 = normal)")
	voiceVolume    = flag.Float64("voice-volume", 0.8, "Speech output volume (0.0-1.0)")
	voiceName      = flag.String("voice", "", "Speech synthesis voice name")
	pushToTalk     = flag.Bool("ptt", false, "Push-to-talk mode: a hotkey toggles the microphone")
	hotkeyStr      = flag.String("hotkey", "ctrl+shift+space", "Hotkey for push-to-talk mode")
	interruptKey   = flag.String("interrupt-hotkey", "", "Global hotkey that cuts off a spoken answer (e.g. ctrl+shift+i)")
	transcriptPath = flag.String("transcript", "", "Write the conversation transcript to this file")
	transcriptFmt  = flag.String("transcript-format", "text", "Transcript format: text or json")
	audioDevice    = flag.String("device", "", "Audio input device name (use --list-devices to see available devices)")
	listDevices    = flag.Bool("list-devices", false, "List all available audio input devices")
	showVersion    = flag.Bool("version", false, "Show version information")
	autoDownload   = flag.Bool("auto-download", false, "Automatically download the model if not found")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	applyConfigDefaults(cfg)

	if *showVersion {
		fmt.Printf("LexVoice v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	fmt.Printf("LexVoice v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	fmt.Println("Voice-driven legal assistant")
	fmt.Println()

	if *listDevices {
		dm := app.NewDeviceManager()
		if err := dm.ListDevices(); err != nil {
			os.Exit(1)
		}
		return
	}

	mgr := app.NewModelManager()

	if *listModels {
		if err := mgr.ListModels(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *listDownloaded {
		if err := mgr.ListDownloaded(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *downloadModel != "" {
		if err := mgr.Download(*downloadModel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *setDefault != "" {
		if err := mgr.SetDefault(*setDefault); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func applyConfigDefaults(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["model"] && cfg.Model.Default != "" {
		*modelName = cfg.Model.Default
	}
	if !flagsSet["backend"] && cfg.Backend.BaseURL != "" {
		*backendURL = cfg.Backend.BaseURL
	}
	if !flagsSet["api-key"] && cfg.Backend.APIKey != "" {
		*apiKey = cfg.Backend.APIKey
	}
	if !flagsSet["jurisdiction"] && cfg.Backend.Jurisdiction != "" {
		*jurisdiction = cfg.Backend.Jurisdiction
	}
	if !flagsSet["domain"] && cfg.Backend.Domain != "" {
		*domain = cfg.Backend.Domain
	}
	if !flagsSet["auto-listen"] {
		*autoListen = cfg.Recognition.AutoListen
	}
	if !flagsSet["vad"] {
		*enableVAD = cfg.Recognition.VADEnabled
	}
	if !flagsSet["vad-threshold"] && cfg.Recognition.VADThreshold > 0 {
		*vadThreshold = cfg.Recognition.VADThreshold
	}
	if !flagsSet["voice"] && cfg.Voice.Name != "" {
		*voiceName = cfg.Voice.Name
	}
	if !flagsSet["voice-rate"] && cfg.Voice.Rate > 0 {
		*voiceRate = float64(cfg.Voice.Rate)
	}
	if !flagsSet["voice-pitch"] && cfg.Voice.Pitch > 0 {
		*voicePitch = float64(cfg.Voice.Pitch)
	}
	if !flagsSet["voice-volume"] && cfg.Voice.Volume > 0 {
		*voiceVolume = float64(cfg.Voice.Volume)
	}
	if !flagsSet["device"] && cfg.Audio.Device != "" {
		*audioDevice = cfg.Audio.Device
	}
}

func run() error {
	assistantCfg := app.AssistantConfig{
		ModelName:    *modelName,
		AudioDevice:  *audioDevice,
		AutoDownload: *autoDownload,
		BackendURL:   *backendURL,
		APIKey:       *apiKey,
		Jurisdiction: *jurisdiction,
		Domain:       *domain,
		AutoListen:   *autoListen,
		VADEnabled:   *enableVAD,
		VADThreshold: *vadThreshold,

		TranscriptPath:   *transcriptPath,
		TranscriptFormat: *transcriptFmt,
		InterruptHotkey:  *interruptKey,
		Voice: speech.Settings{
			Voice:  *voiceName,
			Rate:   float32(*voiceRate),
			Pitch:  float32(*voicePitch),
			Volume: float32(*voiceVolume),
		},
	}

	assistant := app.NewAssistant(assistantCfg)
	if *pushToTalk {
		return assistant.RunPushToTalk(context.Background(), *hotkeyStr)
	}
	return assistant.Run(context.Background())
}

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexvoice/lexvoice/internal/audio"
	"github.com/lexvoice/lexvoice/internal/convo"
	"github.com/lexvoice/lexvoice/internal/input"
	"github.com/lexvoice/lexvoice/internal/legalqa"
	"github.com/lexvoice/lexvoice/internal/models"
	"github.com/lexvoice/lexvoice/internal/output"
	"github.com/lexvoice/lexvoice/internal/recognition"
	"github.com/lexvoice/lexvoice/internal/speech"
	"github.com/lexvoice/lexvoice/internal/stt"
	"github.com/lexvoice/lexvoice/internal/tts"
)

// resumeDelay is how long after the assistant finishes speaking before
// the microphone reopens, so the tail of playback is not transcribed.
const resumeDelay = 800 * time.Millisecond

// AssistantConfig holds configuration for a voice assistant session
type AssistantConfig struct {
	ModelName    string
	AudioDevice  string
	AutoDownload bool

	BackendURL   string
	APIKey       string
	Jurisdiction string
	Domain       string

	AutoListen   bool
	VADEnabled   bool
	VADThreshold float64

	// TranscriptPath, when set, streams the conversation log to a file
	// in TranscriptFormat ("text" or "json").
	TranscriptPath   string
	TranscriptFormat string

	// InterruptHotkey, when set, registers a global chord that cuts
	// off speech output immediately.
	InterruptHotkey string

	Voice speech.Settings
}

// Assistant wires microphone capture, speech recognition, the legal
// question-answering backend, and spoken output into one session.
type Assistant struct {
	config  AssistantConfig
	console *output.Console

	sttEngine    stt.Engine
	ttsEngine    tts.Engine
	player       *audio.Player
	speaker      *speech.Speaker
	provider     *recognition.LocalProvider
	controller   *recognition.Controller
	orchestrator *convo.Orchestrator

	transcript     output.Exporter
	transcriptFile *os.File
}

// NewAssistant creates a new Assistant instance
func NewAssistant(config AssistantConfig) *Assistant {
	return &Assistant{
		config:  config,
		console: output.DefaultConsole(),
	}
}

// Run starts the conversational loop and blocks until the context is
// cancelled or an interrupt signal arrives.
func (a *Assistant) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.setup(ctx); err != nil {
		return err
	}
	defer a.teardown()

	stopInterrupt, err := a.startInterruptHotkey(ctx)
	if err != nil {
		return err
	}
	defer stopInterrupt()

	// Handle Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\n\nExiting...")
			cancel()
		case <-ctx.Done():
		}
	}()

	a.console.Info("Legal assistant ready. Ask a question out loud.")
	if a.config.InterruptHotkey != "" {
		a.console.Info(fmt.Sprintf("Press %s to cut off a spoken answer.", a.config.InterruptHotkey))
	}
	a.console.Info("Press Ctrl+C to exit.")

	a.controller.SetAutoListen(a.config.AutoListen)
	a.controller.StartListening()

	<-ctx.Done()
	return nil
}

// setup builds the capture, recognition, conversation, and output
// pipeline.
func (a *Assistant) setup(ctx context.Context) error {
	mgr := NewModelManager()

	selectedModel, err := mgr.SelectModel(a.config.ModelName)
	if err != nil {
		return fmt.Errorf("failed to select model: %w", err)
	}
	selectedModel, err = mgr.EnsureModel(selectedModel, a.config.AutoDownload)
	if err != nil {
		return err
	}

	modelPath, err := models.GetModelPath(selectedModel)
	if err != nil {
		return fmt.Errorf("failed to get model path: %w", err)
	}

	deviceMgr := NewDeviceManager()
	selectedDevice, err := deviceMgr.SelectDevice(a.config.AudioDevice)
	if err != nil {
		return err
	}
	a.console.Info(fmt.Sprintf("Using model %s on device %s", selectedModel, selectedDevice.Name))

	// Speech recognition engine
	a.sttEngine = stt.NewVoskEngine()
	if err := a.sttEngine.Initialize(stt.DefaultConfig(modelPath)); err != nil {
		return fmt.Errorf("failed to initialize STT engine: %w", err)
	}

	// Speech synthesis and playback
	a.ttsEngine = tts.NewPiperEngine()
	if err := a.ttsEngine.Initialize(tts.DefaultConfig("")); err != nil {
		return fmt.Errorf("failed to initialize TTS engine: %w", err)
	}

	a.player = audio.NewPlayer(audio.DefaultPlaybackConfig())
	if err := a.player.Start(); err != nil {
		return fmt.Errorf("failed to start audio playback: %w", err)
	}

	a.speaker = speech.NewSpeaker(a.ttsEngine, speech.NewPlayerSink(a.player), speech.DefaultConfig())
	a.speaker.SetSettings(a.config.Voice)

	// Backend client
	var opts []legalqa.Option
	if a.config.APIKey != "" {
		opts = append(opts, legalqa.WithAPIKey(a.config.APIKey))
	}
	client, err := legalqa.NewClient(a.config.BackendURL, opts...)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	// Transcript export
	if a.config.TranscriptPath != "" {
		file, err := os.Create(a.config.TranscriptPath)
		if err != nil {
			return fmt.Errorf("failed to open transcript file: %w", err)
		}
		exporter, err := output.NewExporter(a.config.TranscriptFormat, file)
		if err != nil {
			file.Close()
			return err
		}
		a.transcriptFile = file
		a.transcript = exporter
	}

	// Recognition pipeline
	localCfg := recognition.DefaultLocalConfig()
	localCfg.Capture = getAudioConfigForModel(selectedModel)
	localCfg.Capture.DeviceID = selectedDevice.ID
	localCfg.VADEnabled = a.config.VADEnabled
	if a.config.VADThreshold > 0 {
		localCfg.VAD.EnergyThreshold = a.config.VADThreshold
	}
	a.provider = recognition.NewLocalProvider(a.sttEngine, localCfg)
	a.controller = recognition.NewController(a.provider, recognition.DefaultConfig())

	// Conversation orchestration
	a.orchestrator = convo.NewOrchestrator(client, a.voice(ctx), a.config.Jurisdiction, a.config.Domain)
	a.orchestrator.SetListeners(convo.Listeners{
		OnMessage: func(msg convo.Message) {
			a.console.Clear()
			a.console.WriteMessage(msg)
			if a.transcript != nil {
				_ = a.transcript.WriteMessage(msg)
			}
		},
		OnSuggestions: func(suggestions []string) {
			a.console.WriteSuggestions(suggestions)
		},
	})

	a.speaker.SetListeners(speech.Listeners{
		OnDone: func(interrupted bool) {
			if interrupted {
				// The user cut in; reopen the microphone right away.
				a.controller.Resume()
				return
			}
			time.AfterFunc(resumeDelay, a.controller.Resume)
		},
		OnError: func(err error) {
			a.console.Error(fmt.Sprintf("Speech output error: %v", err))
			a.controller.Resume()
		},
	})

	a.controller.SetListeners(recognition.Listeners{
		OnInterim: func(text string) {
			if a.speaker.Speaking() {
				// Barge-in: the user is talking over the response.
				a.speaker.Interrupt()
				return
			}
			a.console.WriteInterim(text)
		},
		OnFinal: func(text string, confidence float64) {
			a.console.Clear()
			go a.orchestrator.Turn(ctx, text)
		},
		OnError: func(err *recognition.SessionError) {
			a.console.Error(fmt.Sprintf("Recognition error (%s): %v", err.Code, err))
			if a.transcript != nil {
				_ = a.transcript.WriteEvent("recognition-error", err.Error())
			}
		},
	})

	return nil
}

// startInterruptHotkey registers the configured interrupt chord, if
// any. Pressing it cuts speech output off mid-sentence, same as
// talking over the answer. The returned function unregisters it.
func (a *Assistant) startInterruptHotkey(ctx context.Context) (func(), error) {
	if a.config.InterruptHotkey == "" {
		return func() {}, nil
	}
	hk := input.NewActionHotkey(func() {
		if a.speaker.Speaking() {
			a.speaker.Interrupt()
		}
	})
	if err := hk.Start(ctx, a.config.InterruptHotkey); err != nil {
		return nil, fmt.Errorf("failed to start interrupt hotkey: %w", err)
	}
	return hk.Stop, nil
}

// voice returns the orchestrator-facing speech adapter. It pauses
// capture before speaking so the assistant does not transcribe itself.
func (a *Assistant) voice(ctx context.Context) convo.Voice {
	return &speakerVoice{ctx: ctx, assistant: a}
}

type speakerVoice struct {
	ctx       context.Context
	assistant *Assistant
}

func (v *speakerVoice) Speak(text string) {
	v.assistant.controller.Pause()
	v.assistant.speaker.Speak(v.ctx, text)
}

func (a *Assistant) teardown() {
	if a.controller != nil {
		a.controller.StopListening()
	}
	if a.speaker != nil {
		a.speaker.Stop()
	}
	if a.provider != nil {
		a.provider.Close()
	}
	if a.player != nil {
		a.player.Stop()
	}
	if a.ttsEngine != nil {
		a.ttsEngine.Close()
	}
	if a.sttEngine != nil {
		a.sttEngine.Close()
	}
	if a.transcript != nil {
		_ = a.transcript.Flush()
		_ = a.transcript.Close()
		a.transcriptFile.Close()
	}
}

// getAudioConfigForModel selects capture buffering based on model size.
// The larger models transcribe slower and need more headroom.
func getAudioConfigForModel(modelName string) audio.CaptureConfig {
	if model := models.FindModel(modelName); model != nil && model.Size == "1.8G" {
		return audio.DeepBufferConfig()
	}
	return audio.DefaultConfig()
}

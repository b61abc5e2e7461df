package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	orchestration "github.com/quillchat/voice-core/core"
	"github.com/quillchat/voice-core/core/audio/miniaudio"
	"github.com/quillchat/voice-core/core/chats/relay"
	"github.com/quillchat/voice-core/core/chats/sessionfile"
	"github.com/quillchat/voice-core/core/speechtotext"
	sttdeepgram "github.com/quillchat/voice-core/core/speechtotext/deepgram"
	"github.com/quillchat/voice-core/core/texttospeech"
	ttsdeepgram "github.com/quillchat/voice-core/core/texttospeech/deepgram"
)

var (
	runAssistant string
	runSessionID string
	runNoBargeIn bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a hands-free voice conversation",
	Long: `Start the voice loop against the configured assistant. Speak when
the status line shows Listening; stay quiet for a second to send the
utterance. Press q to end the conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		apiKey := os.Getenv("QUILLCHAT_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("QUILLCHAT_API_KEY is not set")
		}

		assistant := runAssistant
		if assistant == "" {
			assistant = cfg.Relay.Assistant
		}
		if assistant == "" {
			return fmt.Errorf("no assistant configured; set relay.assistant or pass --assistant")
		}

		audioClient, err := miniaudio.NewClient()
		if err != nil {
			return fmt.Errorf("failed to open audio devices: %w", err)
		}
		defer audioClient.Close()

		recognizer, err := sttdeepgram.NewRecognizer(
			speechtotext.WithModel(cfg.Speech.RecognitionModel),
			speechtotext.WithLanguage(cfg.Speech.RecognitionLanguage),
			speechtotext.WithEncodingInfo(audioClient.EncodingInfo()),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize recognizer: %w", err)
		}

		synthesizer, err := ttsdeepgram.NewSynthesizer(audioClient,
			texttospeech.WithVoice(cfg.Speech.Voice),
			texttospeech.WithEncodingInfo(audioClient.EncodingInfo()),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize synthesizer: %w", err)
		}

		store := sessionfile.NewStore(cfg.Sessions.Dir)

		ui := &uiRelay{}
		opts := []orchestration.Option{
			orchestration.WithCaptureDevice(audioClient),
			orchestration.WithRecognizer(recognizer),
			orchestration.WithSynthesizer(synthesizer),
			orchestration.WithChatStreamer(relay.NewClient(apiKey, relay.WithBaseURL(cfg.Relay.BaseURL))),
			orchestration.WithSilenceThreshold(cfg.Voice.SilenceThreshold()),
			orchestration.WithSilenceFloor(cfg.Voice.SilenceFloor),
			orchestration.WithSystemPrompt(cfg.Voice.SystemPrompt),
			orchestration.WithStateChangedCallback(func(previous, current orchestration.State, message string) {
				ui.send(stateChangedMsg{previous: previous, current: current, message: message})
			}),
			orchestration.WithAudioLevelCallback(func(level float64) {
				ui.send(audioLevelMsg{level: level})
			}),
			orchestration.WithUtteranceCallback(func(utterance string) {
				ui.send(utteranceMsg{text: utterance})
			}),
			orchestration.WithResponseFragmentCallback(func(fragment string) {
				ui.send(responseFragmentMsg{text: fragment})
			}),
			orchestration.WithResponseCompletedCallback(func(text, title string) {
				ui.send(responseCompletedMsg{text: text, title: title})
			}),
			orchestration.WithBargeInCallback(func(turnID string) {
				ui.send(bargeInMsg{})
			}),
		}

		if runNoBargeIn || !cfg.Voice.BargeInEnabled() {
			opts = append(opts, orchestration.WithoutBargeIn())
		}

		if runSessionID != "" {
			session, err := store.Load(runSessionID)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", runSessionID, err)
			}
			opts = append(opts, orchestration.WithSession(session))
		}

		orchestrator := orchestration.New(opts...)

		program := tea.NewProgram(newRunModel(orchestrator, assistant), tea.WithAltScreen())
		ui.attach(program)

		if _, err := program.Run(); err != nil {
			return fmt.Errorf("terminal UI failed: %w", err)
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := orchestrator.Stop(stopCtx); err != nil {
			slog.Warn("voice loop did not stop cleanly", "error", err)
		}

		session := orchestrator.Conversation()
		if len(session.Messages) > 0 {
			if err := store.Save(&session); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			fmt.Printf("Saved session %s (%q)\n", session.ID, session.Title)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runAssistant, "assistant", "a", "", "assistant id (overrides relay.assistant)")
	runCmd.Flags().StringVarP(&runSessionID, "session", "s", "", "resume a saved session by id")
	runCmd.Flags().BoolVar(&runNoBargeIn, "no-barge-in", false, "disable interrupting playback by speaking")
}

// uiRelay forwards orchestrator callbacks into the bubbletea program. The
// program only exists after the orchestrator is built, so delivery starts
// once attach has run; the loop itself starts from the model's Init.
type uiRelay struct {
	mu      sync.Mutex
	program *tea.Program
}

func (u *uiRelay) attach(program *tea.Program) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.program = program
}

func (u *uiRelay) send(msg tea.Msg) {
	u.mu.Lock()
	program := u.program
	u.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

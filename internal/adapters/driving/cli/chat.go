package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	sessionmem "github.com/bayani-labs/lakbay/internal/adapters/driven/session/memory"
	"github.com/bayani-labs/lakbay/internal/adapters/driving/tui"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/core/ports/driving"
	"github.com/bayani-labs/lakbay/internal/core/services"
)

var (
	chatMessage string
	chatSession string
	chatNoCache bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Converse with the grounded travel assistant",
	Long: `Starts an interactive chat grounded in the embedding index. Every
answer is composed only from retrieved corpus chunks plus the session's
recent history.

With --message the answer is streamed to stdout and the command exits,
which suits scripting. Without it, a terminal gets the interactive UI.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "answer a single message and exit")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session ID for conversation continuity")
	chatCmd.Flags().BoolVar(&chatNoCache, "no-cache", false, "bypass the response cache")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	chat, cleanup, err := buildChatService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if chatMessage != "" {
		return answerOnce(cmd, chat, sessionID)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal; use --message for one-shot answers")
	}

	app := tui.New(chat, sessionID)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}

// answerOnce streams a single answer to stdout.
func answerOnce(cmd *cobra.Command, chat driving.ChatService, sessionID string) error {
	_, err := chat.Answer(cmd.Context(), chatMessage, sessionID, func(fragment string) {
		cmd.Print(fragment)
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	cmd.Println()
	return nil
}

// buildChatService assembles the full answer pipeline: retrieval,
// generation, session store and prompt builder.
func buildChatService(cmd *cobra.Command) (driving.ChatService, func(), error) {
	search, searchCleanup, err := buildSearchService(cmd.Context(), !chatNoCache)
	if err != nil {
		return nil, nil, err
	}

	generator, err := buildGenerator()
	if err != nil {
		searchCleanup()
		return nil, nil, err
	}

	sessions := sessionmem.New(cfg.Session.MaxTurns, cfg.Session.TTL.Duration, 0)

	chat := services.NewChatService(
		search,
		generator,
		sessions,
		buildPromptBuilder(),
		services.WithGenerateOptions(driven.GenerateOptions{
			Temperature: cfg.Generation.Temperature,
			TopP:        cfg.Generation.TopP,
			TopK:        cfg.Generation.TopK,
			MaxTokens:   cfg.Generation.MaxTokens,
		}),
		services.WithTopK(cfg.Search.TopK),
	)

	cleanup := func() {
		sessions.Close()
		generator.Close()
		searchCleanup()
	}
	return chat, cleanup, nil
}

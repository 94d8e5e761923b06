package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"specprobe/internal/llm"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var chatSystemPrompt string

const defaultChatSystemPrompt = "You are an expert in API testing with pytest. Answer concisely and prefer runnable Python code."

// chatCmd starts an interactive conversation with the configured model.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the local language model about your tests",
	Long: `Starts an interactive session with the configured Ollama model. The
conversation history is sent with every message.

Commands inside the session:
  help          show this help
  clear         forget the conversation so far
  exit, quit    leave the session (Ctrl+D works too)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatSystemPrompt, "system", defaultChatSystemPrompt, "System prompt that opens the conversation")
}

// chatter is the part of the LLM client a chat session needs.
type chatter interface {
	Chat(ctx context.Context, messages []llm.Message) string
}

// errChatExit ends the session.
var errChatExit = errors.New("exit")

// chatSession holds the conversation history of one REPL.
type chatSession struct {
	model   chatter
	system  string
	history []llm.Message
	out     io.Writer
}

func newChatSession(model chatter, system string, out io.Writer) *chatSession {
	s := &chatSession{model: model, system: system, out: out}
	s.reset()
	return s
}

func (s *chatSession) reset() {
	s.history = s.history[:0]
	if s.system != "" {
		s.history = append(s.history, llm.Message{Role: "system", Content: s.system})
	}
}

// handle processes one line of input. It returns errChatExit when the user
// asked to leave.
func (s *chatSession) handle(ctx context.Context, input string) error {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return errChatExit
	case "clear":
		s.reset()
		fmt.Fprintln(s.out, "Conversation cleared.")
		return nil
	case "help":
		fmt.Fprintln(s.out, "Commands: help, clear, exit, quit. Anything else is sent to the model.")
		return nil
	}

	s.history = append(s.history, llm.Message{Role: "user", Content: input})
	stop := startSpinner(s.out, "Thinking...")
	reply := s.model.Chat(ctx, s.history)
	stop("")
	if reply == "" {
		// keep the history answerable; the failed turn is dropped
		s.history = s.history[:len(s.history)-1]
		return fmt.Errorf("no reply from the model")
	}
	s.history = append(s.history, llm.Message{Role: "assistant", Content: reply})
	fmt.Fprintln(s.out, reply)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd, "")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	client := application.Services().LLM
	if !client.CheckConnection(ctx) {
		return fmt.Errorf("cannot reach Ollama at %s; start it with 'ollama serve'", client.BaseURL())
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "you> ",
		HistoryFile: filepath.Join(os.TempDir(), ".specprobe_chat_history"),
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("help"),
			readline.PcItem("clear"),
			readline.PcItem("exit"),
			readline.PcItem("quit"),
		),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	session := newChatSession(client, chatSystemPrompt, out)
	fmt.Fprintf(out, "Chatting with %s. Type 'help' for commands.\n\n", client.Model())

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := session.handle(ctx, input); err != nil {
			if errors.Is(err, errChatExit) {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		fmt.Fprintln(out)
	}
}

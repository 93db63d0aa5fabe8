package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/ailink"
	"github.com/lightspeedtech/lightspeed/internal/chat"
	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/observability"
)

var (
	askModels []string
	askStdin  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message to the chat assistant",
	Long: `Send one visitor message through the same persona, model fallback and
completion cleanup the /api/chat endpoint uses, and print the reply.

On failure the visitor-facing message is printed together with the failure
kind of the last model tried.`,
	Example: `  lightspeed ask "Do you build websites?"
  echo "What are your hours?" | lightspeed ask --stdin
  lightspeed ask --model meta-llama/Llama-3.1-8B-Instruct "hello"`,
	Args: func(cmd *cobra.Command, args []string) error {
		if askStdin {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text := strings.Join(args, " ")
		if askStdin {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errwrap.WrapInvalidInput(ctx, err, "failed to read stdin")
			}
			text = string(data)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return errwrap.NewInvalidInputError("message is empty")
		}

		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "config load failed")
		}
		if len(askModels) > 0 {
			cfg.Chat.Models = askModels
		}

		svc, err := buildChatService(cfg)
		if err != nil {
			return errwrap.WrapConfigInvalid(ctx, err, "chat wiring failed")
		}

		out := cmd.OutOrStdout()
		res, err := svc.Reply(ctx, []chat.Message{{Sender: "user", Text: text}})
		if errors.Is(err, chat.ErrNotConfigured) {
			return errwrap.WrapConfigInvalid(ctx, err,
				fmt.Sprintf("chat is not configured: set %s", cfg.Chat.CredentialEnv()))
		}
		if res != nil {
			for _, attempt := range res.Attempts {
				observability.CLILogger.Debug("Model attempt",
					zap.String("model", attempt.Candidate),
					zap.String("kind", attempt.Kind.String()),
					zap.Duration("duration", attempt.Duration))
			}
		}
		if err != nil {
			kind := ailink.Classify(err)
			status, code, message := chat.Outcome(kind)
			_, _ = fmt.Fprintln(out, message)
			_, _ = fmt.Fprintf(os.Stderr, "%s (%s, HTTP %d): %v\n", kind, code, status, err)
			return errwrap.Wrap(ctx, code, err, message)
		}

		_, _ = fmt.Fprintln(out, res.Text)
		observability.CLILogger.Debug("Reply served", zap.String("model", res.Model))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringSliceVar(&askModels, "model", nil, "model(s) to try in order (overrides chat.models)")
	askCmd.Flags().BoolVar(&askStdin, "stdin", false, "read the message from stdin")
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	fulerrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// ExitWithCode logs err with the foundry exit code metadata and exits. A nil
// logger falls back to stderr.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	if logger == nil {
		ExitWithCodeStderr(exitCode, msg, err)
		return
	}

	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	fields = append(fields, envelopeFields(err)...)
	logger.Error(msg, fields...)

	os.Exit(info.Code)
}

// ExitWithCodeStderr is for failures before the logger exists, and for the
// error returned by Execute.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)

	var envelope *fulerrors.ErrorEnvelope
	switch {
	case err == nil:
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	case errors.As(err, &envelope):
		fmt.Fprintf(os.Stderr, "FATAL: %s [%s]: %s\n", msg, envelope.Code, envelope.Message)
		if cause := envelopeCause(envelope); cause != nil {
			fmt.Fprintf(os.Stderr, "Cause: %v\n", cause)
		}
	default:
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	}

	if !ok {
		os.Exit(int(exitCode))
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	os.Exit(info.Code)
}

// envelopeFields flattens an ErrorEnvelope into log fields, logging the
// wrapped cause in place of the envelope itself.
func envelopeFields(err error) []zap.Field {
	var envelope *fulerrors.ErrorEnvelope
	if !errors.As(err, &envelope) {
		return []zap.Field{zap.Error(err)}
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.String("error_message", envelope.Message),
		zap.String("correlation_id", envelope.CorrelationID),
	}
	if envelope.Context != nil {
		fields = append(fields, zap.Any("error_context", envelope.Context))
	}
	if cause := envelopeCause(envelope); cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	return fields
}

func envelopeCause(envelope *fulerrors.ErrorEnvelope) error {
	if envelope == nil || envelope.Original == nil {
		return nil
	}
	if err, ok := envelope.Original.(error); ok {
		return err
	}
	return nil
}

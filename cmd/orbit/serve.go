package main

import (
	"errors"

	"github.com/amonks/orbit/assist"
	"github.com/amonks/orbit/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task API and the AI proxy endpoints over HTTP",
	Long: `Serve the task API and the AI proxy endpoints over HTTP.

The AI endpoints under /functions/v1 are only available when a provider
API key is configured. Stop the server with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from [server] addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var assistant assist.Assistant
	completer, err := assist.NewCompleter(sess.cfg.Assist)
	switch {
	case err == nil:
		assistant = assist.NewService(completer, assist.ServiceOptions{Logger: sess.logger})
	case errors.Is(err, assist.ErrMissingAPIKey):
		sess.logger.Warnw("AI endpoints disabled", "reason", err)
	default:
		return err
	}

	srv, err := server.New(server.Options{
		Store:     sess.store,
		Assistant: assistant,
		Logger:    sess.logger,
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = sess.cfg.Server.Addr
	}
	sess.logger.Infow("task store ready", "backend", sess.cfg.Storage.Backend, "ephemeral", rootEphemeral, "tasks", len(sess.store.Tasks()))
	return srv.Serve(addr)
}

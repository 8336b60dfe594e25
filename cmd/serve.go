package cmd

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"recletter/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		srv, err := server.New(orch, cfg.RequestTimeout, slog.Default().With("component", "server"))
		if err != nil {
			return err
		}

		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		if listen == "" {
			listen = ":8080"
		}
		slog.Info("starting web server", "addr", listen, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		return http.ListenAndServe(listen, srv.Routes())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config server_addr)")
}

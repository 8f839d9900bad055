package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deadly-nightshade/medguard/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP server",
	Long: `Serve hosts the analysis pipeline over HTTP.

Endpoints:
  POST /api/report      full analysis of one (prompt, output) pair
  POST /api/chat        chat with a registered agent
  POST /api/agent/task  execute a structured task with an agent
  GET  /api/agents      list registered agents
  GET  /api/reports     list stored reports (?since=<seq>)
  GET  /api/reports/:id fetch one stored report
  GET  /healthz         liveness probe

Example:
  medguard serve --addr :5000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :5000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}
	return srv.Run(cfg.Server.Addr)
}

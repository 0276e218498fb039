package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/projboard/projboard/internal/config"
	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/internal/logging"
	"github.com/projboard/projboard/internal/server"
	"github.com/projboard/projboard/internal/state"
	"github.com/projboard/projboard/internal/view"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

var (
	servePort     int
	serveHostname string
	serveDir      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the board server",
	Long: `Start the project board web server.

Open the printed URL in a browser to use the board. The board lives in memory
and is lost when the server stops.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveHostname, "hostname", "127.0.0.1", "Hostname to listen on")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Directory to read projboard config from")
}

func runServe(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(serveDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}

	paths := config.GetPaths()
	if err := initServeLogging(cmd, cfg, paths); err != nil {
		logging.Warn().Err(err).Msg("File logging disabled")
	}
	defer logging.Close()

	serverConfig := serverConfigFrom(cmd, cfg)

	store := state.New()
	bus := event.NewBus()
	defer bus.Close()

	board, err := view.NewBoard(store, bus)
	if err != nil {
		return err
	}

	srv := server.New(serverConfig, store, board, bus)

	g, gctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		logging.Info().
			Str("version", Version).
			Str("url", "http://"+serverConfig.Addr()).
			Msg("Board server listening")
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info().Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logging.Info().Msg("Server stopped")
	return nil
}

// initServeLogging configures logging from config; --log-level and --print-logs win when set.
func initServeLogging(cmd *cobra.Command, cfg *config.Config, paths *config.Paths) error {
	level := cfg.Log.Level
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(level)
	logCfg.Pretty = cfg.PrettyLogs() || printLogs
	logCfg.LogToFile = cfg.LogToFile()
	logCfg.LogDir = paths.LogPath()
	return logging.Init(logCfg)
}

// serverConfigFrom builds the server config; flags override the loaded config when set.
func serverConfigFrom(cmd *cobra.Command, cfg *config.Config) *server.Config {
	sc := server.DefaultConfig()
	sc.Port = cfg.Server.Port
	sc.Hostname = cfg.Server.Hostname
	sc.EnableCORS = cfg.CORSEnabled()
	sc.ReadTimeout = cfg.Server.ReadTimeout.Std()
	sc.WriteTimeout = cfg.Server.WriteTimeout.Std()

	if cmd.Flags().Changed("port") {
		sc.Port = servePort
	}
	if cmd.Flags().Changed("hostname") {
		sc.Hostname = serveHostname
	}
	return sc
}

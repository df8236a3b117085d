package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aria-bot/internal/bot"
	"aria-bot/internal/commands"
	"aria-bot/internal/config"
	"aria-bot/internal/database"
	"aria-bot/internal/logging"
	"aria-bot/internal/metrics"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "aria",
		Short:         "ARIA Discord assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBot,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the JSON config file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve events until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	}

	commandsCmd := &cobra.Command{
		Use:   "commands",
		Short: "List the slash commands the bot registers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, def := range commands.GetAllCommands() {
				fmt.Fprintf(cmd.OutOrStdout(), "/%-10s %s\n", def.Name, def.Description)
			}
		},
	}

	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the persistent store",
	}
	storeCheckCmd := &cobra.Command{
		Use:   "check",
		Short: "Open every document, create missing ones and print record counts",
		Args:  cobra.NoArgs,
		RunE:  runStoreCheck,
	}
	storeCmd.AddCommand(storeCheckCmd)

	rootCmd.AddCommand(runCmd, commandsCmd, storeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	fmt.Println("Starting ARIA")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := initializeLogging(cfg); err != nil {
		return err
	}
	defer logging.Shutdown()

	store, err := initializeDatabase(cfg)
	if err != nil {
		logging.Critical("Storage unavailable: %v", err)
		return err
	}
	defer store.Close()

	metrics.InitGlobalRegistry()
	registry := metrics.GetRegistry()

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(registry)
		if err := metricsServer.Start(cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
	}

	session, err := initializeBot(cfg, store, registry)
	if err != nil {
		logging.Critical("Discord startup failed: %v", err)
		return err
	}

	logging.Info("All components started successfully")
	waitForShutdown()

	if err := session.Close(); err != nil {
		logging.Warn("Discord close failed: %v", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logging.Warn("Metrics server stop failed: %v", err)
		}
	}

	logging.Info("Shutdown complete")
	return nil
}

func initializeLogging(cfg *config.Config) error {
	return logging.InitGlobalLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Path)
}

func initializeDatabase(cfg *config.Config) (*database.Store, error) {
	store, err := database.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	for _, kind := range database.Kinds {
		logging.Info("Store %s: %s", kind, store.Describe(kind))
	}
	return store, nil
}

func initializeBot(cfg *config.Config, store *database.Store, registry *metrics.MetricsRegistry) (*bot.Session, error) {
	session, err := bot.New(cfg)
	if err != nil {
		return nil, err
	}

	dispatcher := commands.NewDispatcher(store, commands.NewGate(cfg.Bot.OwnerID), session, registry)
	handler := commands.NewHandler(dispatcher, session.Directory(), cfg.Bot.Prefix)
	router := bot.NewRouter(store, handler, session.Messenger(), session.Directory(), registry)

	// Handlers go in before Connect so the first Ready is seen.
	session.SetupEventHandlers(router, handler)

	if err := session.Connect(); err != nil {
		return nil, err
	}

	n, err := session.SyncCommands()
	if err != nil {
		logging.Error("Slash command registration failed: %v", err)
	} else {
		logging.Info("Registered %d slash commands", n)
	}
	return session, nil
}

func runStoreCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}

	store, err := database.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.Counts()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, kind := range database.Kinds {
		fmt.Fprintf(out, "%-7s %s\n", kind, store.Describe(kind))
	}
	fmt.Fprintf(out, "guilds: %d\nusers: %d\nguild joins: %d\nreports: %d\n",
		counts.Guilds, counts.Users, counts.GuildJoins, counts.Reports)
	return nil
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logging.Info("Shutdown signal received")
}

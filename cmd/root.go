package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/AgentDesk/internal/app"
	"github.com/Rorical/AgentDesk/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "agentdesk",
	Short: "Terminal shell for support agents",
	Long:  `AgentDesk is the terminal shell support agents work in: profile, availability, language and account settings in one place.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := runShell(cfg); err != nil {
			log.Fatalf("Application error: %v", err)
		}
	},
}

// runShell runs the UI until it exits for good. Choosing "switch agent"
// restarts it on another profile.
func runShell(cfg *config.Config) error {
	for {
		application, err := app.NewApplication(cfg)
		if err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		err = application.Start()
		application.Stop()

		if !errors.Is(err, app.ErrSwitchAgent) {
			return err
		}
		name, err := selectProfile(cfg, "Switch to profile")
		if err != nil {
			// Cancelled; leave the shell.
			return nil
		}
		if err := cfg.Use(name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}
}

func selectProfile(cfg *config.Config, label string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: cfg.ProfileNames(),
	}
	_, name, err := prompt.Run()
	return name, err
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(profileCmd)
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"campfire/internal/app"
	"campfire/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func generateCompletion(shell string) error {
	switch shell {
	case "bash":
		fmt.Println("# bash completion for campfire")
		fmt.Println("_campfire_completions() {")
		fmt.Println("    local cur")
		fmt.Println("    COMPREPLY=()")
		fmt.Println("    cur=\"${COMP_WORDS[COMP_CWORD]}\"")
		fmt.Println("    opts=\"login stories delete completion help --title --mock --help\"")
		fmt.Println("    if [[ $COMP_CWORD -eq 1 ]]; then")
		fmt.Println("        COMPREPLY=( $(compgen -W \"${opts}\" -- \"${cur}\") )")
		fmt.Println("    fi")
		fmt.Println("    return 0")
		fmt.Println("}")
		fmt.Println("complete -F _campfire_completions campfire")
	case "zsh":
		fmt.Println("# zsh completion for campfire")
		fmt.Println("compdef _campfire campfire")
		fmt.Println("_campfire() {")
		fmt.Println("    _arguments -C \\")
		fmt.Println("        '(-h --help)'{-h,--help}'[show help]' \\")
		fmt.Println("        '(-t --title)'{-t,--title}'[open a past story by title]' \\")
		fmt.Println("        '--mock[run against the offline mock backend]' \\")
		fmt.Println("        '*::command:->command'")
		fmt.Println("}")
	case "fish":
		fmt.Println("# fish completion for campfire")
		fmt.Println("complete -c campfire -f -a 'login stories delete completion help'")
		fmt.Println("complete -c campfire -s t -l title -d 'Open a past story by title'")
		fmt.Println("complete -c campfire -l mock -d 'Use the offline mock backend'")
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}
	return nil
}

// applyEnvOverrides lets the environment trump the config file, which keeps
// scripted and containerized runs configurable without editing files.
func applyEnvOverrides(cfg *app.Config) {
	if base := strings.TrimSpace(os.Getenv("CAMPFIRE_BASE_URL")); base != "" {
		cfg.BaseURL = base
	}
	if title := strings.TrimSpace(os.Getenv("CAMPFIRE_TITLE")); title != "" {
		cfg.DefaultTitle = title
	}
}

// newBackend wires config, credentials, and logger into a Backend.
func newBackend(mock bool) (app.Backend, app.Config, *app.Logger, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, cfg, nil, err
	}
	applyEnvOverrides(&cfg)

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = app.DefaultLogPath()
	}
	logger, err := app.OpenFileLogger(logPath)
	if err != nil {
		return nil, cfg, nil, err
	}

	if mock {
		return app.NewMockBackend(), cfg, logger, nil
	}
	creds := app.NewCredentialStore("")
	client := app.NewCampfireClient(cfg.BaseURL, creds, logger)
	client.HTTP.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	return client, cfg, logger, nil
}

func main() {
	var (
		rootTitle string
		rootMock  bool
	)

	root := &cobra.Command{
		Use:     "campfire",
		Short:   "Campfire - interactive storytelling in your terminal",
		Long:    "Campfire is a terminal client for collaborative storytelling.\n\nRun without arguments to continue your ongoing story, or pass --title to revisit a past one.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cfg, logger, err := newBackend(rootMock)
			if err != nil {
				return err
			}
			title := rootTitle
			if title == "" {
				title = cfg.DefaultTitle
			}
			logger.Info("starting session", map[string]interface{}{
				"title": title,
				"mock":  rootMock,
			})
			p := tea.NewProgram(tui.NewStoryModel(backend, logger, title))
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}
	root.Flags().StringVarP(&rootTitle, "title", "t", "", "Open a past story by title (read-only once persisted)")
	root.Flags().BoolVar(&rootMock, "mock", false, "Use the offline mock backend")

	var (
		loginToken string
		loginClear bool
	)
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Store the backend auth token",
		Long:  "Store the bearer token used for backend requests.\n\nExamples:\n  - campfire login --token <token>\n  - campfire login          (reads the token from stdin)\n  - campfire login --clear  (forget the stored token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := app.NewCredentialStore("")
			if loginClear {
				if err := creds.Clear(); err != nil {
					return err
				}
				fmt.Println("Stored token cleared.")
				return nil
			}
			token := loginToken
			if token == "" {
				fmt.Print("Token: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if err := creds.Save(token); err != nil {
				return err
			}
			fmt.Println("Token saved.")
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Token to store (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginClear, "clear", false, "Forget the stored token")
	root.AddCommand(loginCmd)

	var storiesMock bool
	storiesCmd := &cobra.Command{
		Use:   "stories",
		Short: "List your story titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, _, err := newBackend(storiesMock)
			if err != nil {
				return err
			}
			titles, err := backend.ListTitles(context.Background())
			if err != nil {
				return describeCLIError(err)
			}
			if len(titles) == 0 {
				fmt.Println("No stories yet. Run 'campfire' to start one.")
				return nil
			}
			for _, title := range titles {
				fmt.Println(title)
			}
			return nil
		},
	}
	storiesCmd.Flags().BoolVar(&storiesMock, "mock", false, "Use the offline mock backend")
	root.AddCommand(storiesCmd)

	var deleteMock bool
	deleteCmd := &cobra.Command{
		Use:   "delete <title>",
		Short: "Delete a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, _, err := newBackend(deleteMock)
			if err != nil {
				return err
			}
			if err := backend.DeleteStory(context.Background(), args[0]); err != nil {
				return describeCLIError(err)
			}
			fmt.Printf("Deleted %q.\n", args[0])
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&deleteMock, "mock", false, "Use the offline mock backend")
	root.AddCommand(deleteCmd)

	completionCmd := &cobra.Command{
		Use:   "completion [shell]",
		Short: "Generate shell completion",
		Long:  "Generate shell completion script for campfire.\n\nExamples:\n  - campfire completion bash >> ~/.bashrc\n  - campfire completion zsh > ~/.zsh/completion/_campfire\n  - campfire completion fish > ~/.config/fish/completions/campfire.fish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateCompletion(args[0])
		},
	}
	root.AddCommand(completionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// describeCLIError rewrites auth failures into an actionable hint for
// non-TUI commands.
func describeCLIError(err error) error {
	if errors.Is(err, app.ErrUnauthorized) {
		return fmt.Errorf("your session has expired; run 'campfire login' and try again")
	}
	return err
}

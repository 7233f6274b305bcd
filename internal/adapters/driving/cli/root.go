// Package cli implements the ltmc command line interface with cobra.
//
// Commands reach the core through driving ports held in package variables.
// The process entrypoint supplies them either directly with SetServices or
// lazily through an Initializer that runs once flags are parsed.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/logger"
)

var version = "dev"

// Services are the driving ports the commands use.
type Services struct {
	Resource driving.ResourceService
	Search   driving.SearchService
	Context  driving.ContextService
	Chat     driving.ChatService
	Settings driving.SettingsService
}

// Options carry global flag values to the Initializer.
type Options struct {
	Verbose   bool
	Ephemeral bool

	// SettingsOnly asks for the settings service alone, without opening storage.
	SettingsOnly bool
}

// Initializer builds services for a command run.
// The returned cleanup is called after the command finishes.
type Initializer func(opts Options) (*Services, func(), error)

var (
	resourceService driving.ResourceService
	searchService   driving.SearchService
	contextService  driving.ContextService
	chatService     driving.ChatService
	settingsService driving.SettingsService

	initializer Initializer
	cleanup     func()

	verboseFlag   bool
	ephemeralFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "ltmc",
	Short: "Long-term memory for conversational agents",
	Long: `ltmc stores content with vector embeddings, serves semantic retrieval,
and records which retrieved chunks informed which conversation messages.

Data lives under $LTMC_DATA_DIR (default ~/.ltmc/data). Settings are read
from ~/.ltmc/config.toml and LTMC_* environment variables.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initServices,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeralFlag, "ephemeral", false,
		"keep all data in memory for this run")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices installs services directly.
func SetServices(s *Services) {
	resourceService = s.Resource
	searchService = s.Search
	contextService = s.Context
	chatService = s.Chat
	settingsService = s.Settings
}

// SetInitializer registers the function that builds services on first use.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// Execute runs the root command and writes a classified error to stderr.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// initServices runs the Initializer unless services are already installed.
// Commands annotated with skipInit need no services.
func initServices(cmd *cobra.Command, _ []string) error {
	if verboseFlag {
		logger.SetVerbose(true)
	}
	if _, skip := cmd.Annotations[skipInit]; skip {
		return nil
	}
	_, settingsOnly := cmd.Annotations[settingsOnlyInit]
	if initializer == nil || resourceService != nil || (settingsOnly && settingsService != nil) {
		return nil
	}

	s, done, err := initializer(Options{
		Verbose:      verboseFlag,
		Ephemeral:    ephemeralFlag,
		SettingsOnly: settingsOnly,
	})
	if err != nil {
		return err
	}
	SetServices(s)
	cleanup = done
	return nil
}

// Annotations controlling service initialisation.
const (
	skipInit         = "ltmc/skip-init"
	settingsOnlyInit = "ltmc/settings-only"
)

// printError writes "error [kind]: message".
func printError(w io.Writer, err error) {
	kind := domain.ErrorKind(err)
	fmt.Fprintf(w, "%s %s\n", styles.Error.Render(fmt.Sprintf("error [%s]:", kind)), err)
}

var errNotConfigured = errors.New("service not configured")

func requireService(ok bool, name string) error {
	if !ok {
		return fmt.Errorf("%s %w", name, errNotConfigured)
	}
	return nil
}

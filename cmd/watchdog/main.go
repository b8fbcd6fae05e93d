// Command watchdog is the process supervisor's entrypoint: a thin cobra CLI
// over internal/supervisor's tick loop, wired through a cobra rootCmd.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diffstorm/processWatchdog/internal/clock"
	"github.com/diffstorm/processWatchdog/internal/config"
	"github.com/diffstorm/processWatchdog/internal/logx"
	"github.com/diffstorm/processWatchdog/internal/supervisor"
)

const version = "1.0.0"

var (
	configPath string
	testName   string
)

var rootCmd = &cobra.Command{
	Use:           "watchdog",
	Short:         "Supervises a fixed set of child processes with UDP heartbeat liveness checking",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "i", "config.ini", "configuration file path")
	rootCmd.Flags().BoolP("version", "v", false, "print version and exit")
	rootCmd.Flags().StringVarP(&testName, "test", "t", "", "run a named self-test and exit")
}

func run(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Println(version)
		return nil
	}

	if testName != "" {
		os.Exit(runSelfTest(testName))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logx.Error("startup", "%v", err)
		os.Exit(1)
	}

	if watcher, werr := config.NewWatcher(configPath); werr != nil {
		logx.Warn("startup", "config watcher unavailable: %v", werr)
	} else {
		watcher.Start()
		defer watcher.Close()
	}

	sup, err := supervisor.New(cfg, ".", clock.NewReal())
	if err != nil {
		logx.Error("startup", "%v", err)
		os.Exit(2)
	}

	os.Exit(sup.Run())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command hrmsuite runs the OrangeHRM test cases in a real browser and fetches
// the driver binaries they need.
//
//	hrmsuite fetch-drivers --browsers chrome,firefox
//	hrmsuite run --browser firefox --headless
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// globalState is what the commands share instead of package globals.
type globalState struct {
	ctx            context.Context
	stdOut, stdErr io.Writer
	lookupEnv      func(string) (string, bool)
	logger         *logrus.Logger
}

func newGlobalState(ctx context.Context) *globalState {
	logger := &logrus.Logger{
		Out: os.Stderr,
		Formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}
	return &globalState{
		ctx:       ctx,
		stdOut:    os.Stdout,
		stdErr:    os.Stderr,
		lookupEnv: os.LookupEnv,
		logger:    logger,
	}
}

func newRootCommand(gs *globalState) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "hrmsuite",
		Short:         "OrangeHRM browser test suite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				gs.logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.SetOut(gs.stdOut)
	root.SetErr(gs.stdErr)
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log page object and driver details")
	root.AddCommand(getCmdRun(gs), getCmdFetchDrivers(gs))
	return root
}

func main() {
	gs := newGlobalState(context.Background())
	root := newRootCommand(gs)
	// glog flags (-v, -logtostderr, ...) configure the download logging.
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	err := root.ExecuteContext(gs.ctx)
	glog.Flush()
	if err != nil {
		gs.logger.Error(err)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hrmqa/orangehrm-selenium/config"
	"github.com/hrmqa/orangehrm-selenium/internal/hrmtest"
	"github.com/hrmqa/orangehrm-selenium/pages"
	"github.com/hrmqa/orangehrm-selenium/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errCasesFailed = errors.New("test cases failed")

type runFlags struct {
	configPath   string
	browser      string
	os           string
	headless     bool
	strictLabels bool
}

func getCmdRun(gs *globalState) *cobra.Command {
	f := &runFlags{}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test cases",
		Long: `Run the test cases in priority order against one browser session.

  The configuration file is read first, then HRM_* environment variables,
  then the flags given here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, gs, f)
		},
	}
	fl := runCmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", config.DefaultPath, "configuration file")
	fl.StringVar(&f.browser, "browser", "", "browser: chrome, edge or firefox")
	fl.StringVar(&f.os, "os", "", "platform requested from a remote grid: linux, windows or mac")
	fl.BoolVar(&f.headless, "headless", false, "run the browser without a window")
	fl.BoolVar(&f.strictLabels, "strict-labels", false, "fail when a menu label is not found instead of ignoring the click")
	return runCmd
}

func runSuite(cmd *cobra.Command, gs *globalState, f *runFlags) error {
	c, err := config.Load(f.configPath, gs.lookupEnv)
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	if fl.Changed("browser") {
		c.Browser = f.browser
	}
	if fl.Changed("os") {
		c.OS = strings.ToLower(f.os)
	}
	if fl.Changed("headless") {
		c.Driver.Headless = f.headless
	}
	if fl.Changed("strict-labels") {
		c.Pages.StrictLabels = f.strictLabels
	}
	if err := c.Validate(); err != nil {
		return err
	}

	opts, err := session.FromConfig(c)
	if err != nil {
		return err
	}
	opts.Logger = gs.logger
	s, err := session.Start(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			gs.logger.WithError(err).Warn("Closing the session failed")
		}
	}()

	policy := pages.Lenient
	if c.Pages.StrictLabels {
		policy = pages.Strict
	}
	l := gs.logger.WithFields(logrus.Fields{"browser": s.Browser(), "policy": policy})
	env := hrmtest.NewEnv(s.Driver(), l, c.Credentials, policy)

	results := hrmtest.RunCases(env, hrmtest.Cases())
	failed := 0
	for _, r := range results {
		fmt.Fprintln(gs.stdOut, r)
		if r.Failed {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(gs.stdOut, "FAIL\t%d of %d cases failed\n", failed, len(results))
		return fmt.Errorf("%w: %d of %d", errCasesFailed, failed, len(results))
	}
	fmt.Fprintf(gs.stdOut, "ok\t%d cases\n", len(results))
	return nil
}

package main

import (
	"github.com/hrmqa/orangehrm-selenium/internal/download"
	"github.com/spf13/cobra"
)

func getCmdFetchDrivers(gs *globalState) *cobra.Command {
	opts := download.Options{}
	fetchCmd := &cobra.Command{
		Use:   "fetch-drivers",
		Short: "Download WebDriver binaries",
		Long: `Download chromedriver, msedgedriver and geckodriver for linux64, and
  optionally Chromium and Firefox, into one directory.

  Progress is logged through glog; pass --logtostderr to see it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = gs.ctx
			}
			return download.Fetch(ctx, opts)
		},
	}
	fl := fetchCmd.Flags()
	fl.StringVar(&opts.Dir, "dir", download.DefaultDir, "directory to store the binaries in")
	fl.StringSliceVar(&opts.Drivers, "browsers", []string{"chrome", "firefox"}, "browser families whose driver is fetched")
	fl.BoolVar(&opts.Browsers, "with-browsers", false, "also fetch Chromium and Firefox")
	fl.BoolVar(&opts.Latest, "latest", false, "fetch Firefox nightly instead of the pinned release")
	fl.StringVar(&opts.ChromiumBuild, "chromium-build", "", "Chromium snapshot build to fetch (default: newest)")
	return fetchCmd
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "resume-builder",
	Short: "Read-only resume previews rendered from URL parameters",
	Long: `resume-builder serves read-only previews of a resume. The layout is chosen by
the template parameter and the content is a URL-encoded JSON document in the
data parameter.

  resume-builder serve                         start the HTTP service
  resume-builder render --data-file resume.json   render one preview to a file`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml or ./config.yaml)")
	rootCmd.AddCommand(serveCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

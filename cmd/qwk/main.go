package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"qwksearch/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	root := &cobra.Command{
		Use:          "qwk",
		Short:        "Operator tools for the qwksearch backend",
		SilenceUsage: true,
	}
	root.AddCommand(searchCMD(cfg), migrateCMD(cfg), dropCMD(cfg))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

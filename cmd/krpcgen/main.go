package main

import (
	"os"

	"github.com/Cahu/krpc-mars-terraformer/cmd/krpcgen/commands"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

func main() {
	root := commands.NewRootCmd()
	err := root.Execute()
	logger.Cleanup()
	if err != nil {
		commands.PrintError(root.ErrOrStderr(), err)
		os.Exit(commands.ExitCode(err))
	}
}

package main

import (
	"os"

	"github.com/allanpk716/docx_hf_replacer/internal/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/isna/cmd/isna"
	"github.com/arthur-debert/isna/internal/version"
)

func main() {
	rootCmd := isna.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "ISNA",
		Section: "1",
		Source:  "isna " + version.Version,
		Manual:  "isna manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}

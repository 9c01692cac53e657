package main

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	appI18n "github.com/pavelanni/selftest/internal/i18n"
	"github.com/pavelanni/selftest/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Validate an exam document and add it to the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImport,
	}
	addCommonFlags(cmd)
	cmd.Flags().String("url", "", "Fetch the exam document from an http(s) URL instead of a file")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	rawURL := v.GetString("url")
	if (len(args) == 1) == (rawURL != "") {
		return errors.New("give either a file or --url")
	}

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	im, err := importer.New(db, afero.NewOsFs())
	if err != nil {
		return fmt.Errorf("create importer: %w", err)
	}

	var (
		filename string
		problems []string
	)
	if rawURL != "" {
		var data []byte
		filename, data, err = im.Fetch(ctx, rawURL)
		if err != nil {
			return err
		}
		problems, err = im.Import(ctx, filename, data)
	} else {
		filename = args[0]
		problems, err = im.ImportFile(ctx, filename)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(problems) > 0 {
		fmt.Fprintln(out, appI18n.Tp(ctx, "ImportProblems", len(problems)))
		for _, p := range problems {
			fmt.Fprintln(out, "  - "+p)
		}
		return fmt.Errorf("%s rejected", filename)
	}
	fmt.Fprintln(out, appI18n.Td(ctx, "ExamImported", map[string]any{"Filename": filename}))
	return nil
}

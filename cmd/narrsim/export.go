package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/narrsim/narrsim/internal/vectorstore"
)

var exportFlags struct {
	storePath string
	outPath   string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored embeddings to a doc_id,embedding,ticker CSV",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.storePath, "store", "", "SQLite store path (default from config)")
	f.StringVar(&exportFlags.outPath, "out", "document_embeddings.csv", "Output CSV path")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("store") {
		cfg.StorePath = exportFlags.storePath
	}

	store, err := vectorstore.OpenExisting(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	out, err := os.Create(exportFlags.outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportFlags.outPath, err)
	}
	defer out.Close()

	if err := store.ExportCSV(out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", exportFlags.outPath, err)
	}

	if humanOutput {
		outputHuman("exported embeddings to %s", exportFlags.outPath)
		return nil
	}
	return outputJSON(StatusResponse{Status: "exported", Path: exportFlags.outPath})
}

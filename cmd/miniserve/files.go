package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

var filesFormat string

// filesCmd lists the files a fresh session starts with
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the virtual files a new session starts with",
	Long: `List the seed files every new session serves before any are added
or deleted: the home page, the about page and the 404 page.`,
	Example: `  miniserve files
  miniserve files --format json`,
	RunE: runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)

	filesCmd.Flags().StringVar(&filesFormat, "format", "table", "Output format (table, json)")
}

func runFiles(cmd *cobra.Command, args []string) error {
	files := entities.SeedFiles()

	switch filesFormat {
	case "json":
		return printFilesJSON(cmd.OutOrStdout(), files)
	case "table", "":
		return printFilesTable(cmd.OutOrStdout(), files)
	default:
		return fmt.Errorf("unknown format %q (must be table or json)", filesFormat)
	}
}

type fileSummary struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

func summarize(files []entities.VirtualFile) []fileSummary {
	out := make([]fileSummary, 0, len(files))
	for _, f := range files {
		out = append(out, fileSummary{
			Name:        f.Name,
			Kind:        f.Kind().String(),
			ContentType: entities.ContentTypeOf(f.Name),
			Size:        f.Size(),
		})
	}
	return out
}

func printFilesTable(out io.Writer, files []entities.VirtualFile) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "NAME\tKIND\tCONTENT TYPE\tSIZE\n")

	for _, f := range summarize(files) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Kind, f.ContentType, formatBytes(f.Size))
	}

	return w.Flush()
}

func printFilesJSON(out io.Writer, files []entities.VirtualFile) error {
	output := struct {
		Files []fileSummary `json:"files"`
		Count int           `json:"count"`
	}{
		Files: summarize(files),
		Count: len(files),
	}

	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal files to JSON: %w", err)
	}

	_, err = fmt.Fprintln(out, string(jsonData))
	return err
}

func formatBytes(n int) string {
	if n < 1024 {
		return strconv.Itoa(n) + " B"
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}

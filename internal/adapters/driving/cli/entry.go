package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
)

var (
	entryNamespace string
	entryCategory  string
	entryMIMEType  string
	entryJSON      bool
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage knowledge base entries",
	Long:  `Add, list, show and delete the entries of one organisation.`,
}

var entryAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Add files to the knowledge base",
	Long: `Adds each file to the namespace. A file whose content is already present
is reported as existing and not stored again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEntryAdd,
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runEntryList,
}

var entryShowCmd = &cobra.Command{
	Use:   "show [entry-id]",
	Short: "Show an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryShow,
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete [entry-id]",
	Short: "Delete an entry with its file and indexed chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryDelete,
}

func init() {
	entryCmd.PersistentFlags().StringVarP(&entryNamespace, "namespace", "n", "", "organisation namespace (required)")
	entryAddCmd.Flags().StringVar(&entryCategory, "category", "", "label stored with each entry")
	entryAddCmd.Flags().StringVar(&entryMIMEType, "mime-type", "", "MIME type, overrides detection")
	entryListCmd.Flags().BoolVar(&entryJSON, "json", false, "output as JSON")
	entryShowCmd.Flags().BoolVar(&entryJSON, "json", false, "output as JSON")

	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryShowCmd, entryDeleteCmd)
	rootCmd.AddCommand(entryCmd)
}

func runEntryAdd(cmd *cobra.Command, args []string) error {
	tenant, err := cliTenant(entryNamespace)
	if err != nil {
		return err
	}

	a, err := openApp(cmdContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	failed := 0
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}

		result, err := a.ingestion.AddDocument(cmdContext(cmd), tenant, driving.UploadRequest{
			Filename: filepath.Base(path),
			MIMEType: entryMIMEType,
			Content:  content,
			Category: entryCategory,
		})
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}

		status := "added"
		if !result.Created {
			status = "exists"
		}
		cmd.Printf("  %-6s %s  %s\n", status, result.EntryID, path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func runEntryList(cmd *cobra.Command, _ []string) error {
	tenant, err := cliTenant(entryNamespace)
	if err != nil {
		return err
	}

	a, err := openApp(cmdContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	entries, err := a.lifecycle.ListEntries(cmdContext(cmd), tenant)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	if entryJSON {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		cmd.Println("No entries.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tTITLE\tCHUNKS\tCREATED")
	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.Key, e.Title, e.ChunkCount, e.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func runEntryShow(cmd *cobra.Command, args []string) error {
	tenant, err := cliTenant(entryNamespace)
	if err != nil {
		return err
	}

	a, err := openApp(cmdContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	entry, err := a.lifecycle.GetEntry(cmdContext(cmd), tenant, args[0])
	if err != nil {
		return err
	}

	if entryJSON {
		return printJSON(cmd, entry)
	}
	printEntry(cmd, entry)
	if id := entry.StorageID(); id != "" {
		if url, err := a.blobs.URL(cmdContext(cmd), id); err == nil {
			cmd.Printf("URL:      %s\n", url)
		}
	}
	return nil
}

func runEntryDelete(cmd *cobra.Command, args []string) error {
	tenant, err := cliTenant(entryNamespace)
	if err != nil {
		return err
	}

	a, err := openApp(cmdContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	if err := a.lifecycle.DeleteEntry(cmdContext(cmd), tenant, args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func printEntry(cmd *cobra.Command, e *domain.Entry) {
	cmd.Printf("ID:       %s\n", e.ID)
	cmd.Printf("Filename: %s\n", e.Key)
	if e.Title != "" {
		cmd.Printf("Title:    %s\n", e.Title)
	}
	cmd.Printf("Type:     %s\n", e.MIMEType)
	cmd.Printf("Size:     %d bytes\n", e.Size)
	cmd.Printf("Chunks:   %d\n", e.ChunkCount)
	cmd.Printf("Hash:     %s\n", e.ContentHash)
	if c := e.Metadata[domain.MetaCategory]; c != "" {
		cmd.Printf("Category: %s\n", c)
	}
	cmd.Printf("Created:  %s\n", e.CreatedAt.Local().Format(time.DateTime))
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

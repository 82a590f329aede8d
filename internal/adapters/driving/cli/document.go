package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, inspect, reset or remove indexed notes.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [path]",
	Short: "Remove a document and its chunks from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

var documentResetCmd = &cobra.Command{
	Use:   "reset [path]",
	Short: "Drop a document's chunks so the next reindex rebuilds it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReset,
}

var documentShowContent bool

func init() {
	documentGetCmd.Flags().BoolVar(&documentShowContent, "content", false, "print the stored note text")

	documentCmd.AddCommand(documentListCmd, documentGetCmd, documentRemoveCmd, documentResetCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	docs, err := indexingService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if handled, err := writeStructured(cmd, docs); err != nil || handled {
		return err
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %-10s %s\n", docs[i].EmbeddingStatus, docs[i].FilePath)
		cmd.Printf("             %s\n", docs[i].Title)
	}
	cmd.Println()
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	path := notePath(args[0])
	doc, err := indexingService.GetDocument(cmd.Context(), path)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("document not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if handled, err := writeStructured(cmd, doc); err != nil || handled {
		return err
	}

	cmd.Printf("Document: %s\n", doc.FilePath)
	cmd.Printf("  ID:         %s\n", doc.ID)
	cmd.Printf("  Title:      %s\n", doc.Title)
	cmd.Printf("  Status:     %s\n", doc.EmbeddingStatus)
	if doc.EmbeddingModel != "" {
		cmd.Printf("  Model:      %s\n", doc.EmbeddingModel)
	}
	cmd.Printf("  Size:       %d bytes\n", doc.FileSize)
	if doc.LastModified > 0 {
		cmd.Printf("  Modified:   %s\n", time.UnixMilli(doc.LastModified).Format(time.RFC3339))
	}
	cmd.Printf("  Hash:       %s\n", doc.ContentHash)
	cmd.Printf("  Generation: %d\n", doc.Generation)

	if documentShowContent {
		cmd.Println()
		cmd.Println(doc.Content)
	}
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	path := notePath(args[0])
	removed, err := indexingService.RemoveDocument(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	if !removed {
		return fmt.Errorf("document not found: %s", path)
	}

	cmd.Printf("Removed: %s\n", path)
	return nil
}

func runDocumentReset(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	path := notePath(args[0])
	if err := indexingService.ResetDocument(cmd.Context(), path); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", path)
		}
		return fmt.Errorf("failed to reset document: %w", err)
	}

	cmd.Printf("Reset: %s (run `sercha-notes reindex` to rebuild)\n", path)
	return nil
}

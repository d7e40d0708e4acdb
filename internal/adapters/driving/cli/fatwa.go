package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

var (
	fatwaJSON      bool
	fatwaFile      string
	fatwaTranslate bool
)

var fatwaCmd = &cobra.Command{
	Use:   "fatwa",
	Short: "Manage fatwas",
}

var fatwaGetCmd = &cobra.Command{
	Use:   "get [fatwa-id]",
	Short: "Show a fatwa in both languages",
	Args:  cobra.ExactArgs(1),
	RunE:  runFatwaGet,
}

var fatwaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active fatwas, newest first",
	Args:  cobra.NoArgs,
	RunE:  runFatwaList,
}

var fatwaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create fatwas from JSON",
	Long: `Creates fatwas from a JSON object or an array of objects.

Each fatwa is attached to the category whose title matches its "category"
field and indexed in the ranking oracle when one is configured. With
--translate, missing English fields are filled by the translator.

Example:
  mufti fatwa create -f fatwas.json --translate
  cat fatwa.json | mufti fatwa create -f -`,
	Args: cobra.NoArgs,
	RunE: runFatwaCreate,
}

var fatwaUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace fatwas from JSON",
	Args:  cobra.NoArgs,
	RunE:  runFatwaUpdate,
}

var fatwaDeleteCmd = &cobra.Command{
	Use:   "delete [fatwa-id]",
	Short: "Delete a fatwa permanently",
	Args:  cobra.ExactArgs(1),
	RunE:  runFatwaDelete,
}

var fatwaDeactivateCmd = &cobra.Command{
	Use:   "deactivate [fatwa-id]",
	Short: "Hide a fatwa from search and listings",
	Args:  cobra.ExactArgs(1),
	RunE:  runFatwaDeactivate,
}

func init() {
	fatwaCmd.PersistentFlags().BoolVar(&fatwaJSON, "json", false, "output as JSON")

	for _, c := range []*cobra.Command{fatwaCreateCmd, fatwaUpdateCmd} {
		c.Flags().StringVarP(&fatwaFile, "file", "f", "-", "JSON file to read (- for stdin)")
		c.Flags().BoolVar(&fatwaTranslate, "translate", false, "fill missing English fields by machine translation")
	}

	fatwaListCmd.Flags().StringP("category", "c", "", "only fatwas whose category title matches")
	fatwaListCmd.Flags().IntP("page", "p", 1, "page number")
	fatwaListCmd.Flags().IntP("page-size", "n", domain.DefaultPageSize, "results per page")
	fatwaListCmd.Flags().StringP("lang", "l", "ar", "display language (ar or en)")

	fatwaCmd.AddCommand(fatwaGetCmd)
	fatwaCmd.AddCommand(fatwaListCmd)
	fatwaCmd.AddCommand(fatwaCreateCmd)
	fatwaCmd.AddCommand(fatwaUpdateCmd)
	fatwaCmd.AddCommand(fatwaDeleteCmd)
	fatwaCmd.AddCommand(fatwaDeactivateCmd)
	rootCmd.AddCommand(fatwaCmd)
}

func runFatwaGet(cmd *cobra.Command, args []string) error {
	if fatwaService == nil {
		return errors.New("fatwa service not configured")
	}

	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}

	fatwa, err := fatwaService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get fatwa: %w", err)
	}

	if fatwaJSON {
		return outputJSON(cmd, fatwa)
	}

	cmd.Printf("ID:       %d\n", fatwa.ID)
	cmd.Printf("Category: %s\n", fatwa.Category)
	if len(fatwa.Tags) > 0 {
		cmd.Printf("Tags:     %v\n", fatwa.Tags)
	}
	cmd.Printf("Active:   %t  Indexed: %t\n", fatwa.IsActive, fatwa.IsEmbedded)
	cmd.Printf("Created:  %s\n", fatwa.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Printf("Updated:  %s\n", fatwa.UpdatedAt.Format("2006-01-02 15:04"))

	for _, lang := range []domain.Language{domain.LanguagePrimary, domain.LanguageSecondary} {
		if lang == domain.LanguageSecondary && !fatwa.HasTranslation() {
			cmd.Println("\n[en] (no translation)")
			continue
		}
		text := fatwa.Localize(lang)
		cmd.Printf("\n[%s] %s\n", lang, text.Title)
		cmd.Printf("Q: %s\n", text.Question)
		cmd.Printf("A: %s\n", text.Answer)
	}
	return nil
}

func runFatwaList(cmd *cobra.Command, _ []string) error {
	if fatwaService == nil {
		return errors.New("fatwa service not configured")
	}

	category, _ := cmd.Flags().GetString("category") //nolint:errcheck // flag is registered above
	page, _ := cmd.Flags().GetInt("page")            //nolint:errcheck // flag is registered above
	pageSize, _ := cmd.Flags().GetInt("page-size")   //nolint:errcheck // flag is registered above
	langFlag, _ := cmd.Flags().GetString("lang")     //nolint:errcheck // flag is registered above
	lang, err := domain.ParseLanguage(langFlag)
	if err != nil {
		return err
	}

	result, err := fatwaService.List(cmd.Context(), category, domain.PageRequest{Page: page, PageSize: pageSize})
	if err != nil {
		return fmt.Errorf("failed to list fatwas: %w", err)
	}
	for i := range result.Items {
		result.Items[i].Text = result.Items[i].Fatwa.Localize(lang)
	}

	if fatwaJSON {
		return outputJSON(cmd, result)
	}
	outputResultTable(cmd, result)
	return nil
}

func runFatwaCreate(cmd *cobra.Command, _ []string) error {
	if fatwaService == nil {
		return errors.New("fatwa service not configured")
	}
	return writeFatwas(cmd, "created", fatwaService.Create)
}

func runFatwaUpdate(cmd *cobra.Command, _ []string) error {
	if fatwaService == nil {
		return errors.New("fatwa service not configured")
	}
	return writeFatwas(cmd, "updated", fatwaService.Update)
}

type writeFunc func(ctx context.Context, fatwa *domain.Fatwa, opts driving.WriteOptions) (*domain.Fatwa, error)

func writeFatwas(cmd *cobra.Command, verb string, write writeFunc) error {
	fatwas, err := readFatwas(cmd.InOrStdin(), fatwaFile)
	if err != nil {
		return err
	}

	opts := driving.WriteOptions{Translate: fatwaTranslate}
	written := make([]*domain.Fatwa, 0, len(fatwas))
	var failed int
	for i := range fatwas {
		f, err := write(cmd.Context(), &fatwas[i], opts)
		if err != nil {
			failed++
			cmd.PrintErrf("fatwa %d: %v\n", fatwas[i].ID, err)
			continue
		}
		written = append(written, f)
	}

	if fatwaJSON {
		if err := outputJSON(cmd, written); err != nil {
			return err
		}
	} else {
		for _, f := range written {
			indexed := "pending index"
			if f.IsEmbedded {
				indexed = "indexed"
			}
			cmd.Printf("Fatwa %d %s (%s).\n", f.ID, verb, indexed)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fatwas failed", failed, len(fatwas))
	}
	return nil
}

// readFatwas decodes a JSON object or array from path, or from stdin when
// path is "-".
func readFatwas(stdin io.Reader, path string) ([]domain.Fatwa, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no fatwas in input", domain.ErrInvalidInput)
	}

	if data[0] == '[' {
		var fatwas []domain.Fatwa
		if err := json.Unmarshal(data, &fatwas); err != nil {
			return nil, fmt.Errorf("%w: decode fatwas: %v", domain.ErrInvalidInput, err)
		}
		return fatwas, nil
	}

	var fatwa domain.Fatwa
	if err := json.Unmarshal(data, &fatwa); err != nil {
		return nil, fmt.Errorf("%w: decode fatwa: %v", domain.ErrInvalidInput, err)
	}
	return []domain.Fatwa{fatwa}, nil
}

func runFatwaDelete(cmd *cobra.Command, args []string) error {
	if fatwaService == nil {
		return errors.New("fatwa service not configured")
	}

	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}
	if err := fatwaService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete fatwa: %w", err)
	}

	cmd.Printf("Fatwa %d deleted.\n", id)
	return nil
}

func runFatwaDeactivate(cmd *cobra.Command, args []string) error {
	if fatwaService == nil {
		return errors.New("fatwa service not configured")
	}

	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}
	if err := fatwaService.Deactivate(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to deactivate fatwa: %w", err)
	}

	cmd.Printf("Fatwa %d deactivated.\n", id)
	return nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

var (
	searchLang     string
	searchCategory int64
	searchPage     int
	searchPageSize int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search fatwas",
	Long: `Searches fatwas in both languages.

The query is tried against the ranking oracle first, then the full-text
index, then substring matching; the first method that succeeds decides the
results. An empty query lists every active fatwa, newest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLang, "lang", "l", "ar", "display language (ar or en)")
	searchCmd.Flags().Int64VarP(&searchCategory, "category", "c", 0, "restrict to a category and its descendants")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "page number")
	searchCmd.Flags().IntVarP(&searchPageSize, "page-size", "n", domain.DefaultPageSize, "results per page")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	lang, err := domain.ParseLanguage(searchLang)
	if err != nil {
		return err
	}

	opts := domain.SearchOptions{
		Language: lang,
		Page:     searchPage,
		PageSize: searchPageSize,
	}
	if searchCategory > 0 {
		id := searchCategory
		opts.CategoryID = &id
	}

	result, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, result)
	}

	outputResultTable(cmd, result)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultTable(cmd *cobra.Command, result *domain.PaginatedResult) {
	if len(result.Items) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Results %d-%d of %d (%s)\n\n",
		(result.Page-1)*result.PageSize+1,
		(result.Page-1)*result.PageSize+len(result.Items),
		result.TotalResults,
		result.Tier)

	for i := range result.Items {
		item := &result.Items[i]
		cmd.Printf("  [%d] %s (%.2f)\n", item.Fatwa.ID, item.Text.Title, item.RelevanceScore)
		if item.Fatwa.Category != "" {
			cmd.Printf("      Category: %s\n", item.Fatwa.Category)
		}
		if q := snippet(item.Text.Question, 120); q != "" {
			cmd.Printf("      %s\n", q)
		}
		cmd.Println()
	}
}

// snippet shortens text to at most n runes on a single line.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}

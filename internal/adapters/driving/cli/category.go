package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

var categoryJSON bool

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Browse and edit the category tree",
}

var categoryTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the active category tree",
	Args:  cobra.NoArgs,
	RunE:  runCategoryTree,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active categories by title",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

var categoryShowCmd = &cobra.Command{
	Use:   "show [category-id]",
	Short: "Show a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryShow,
}

var categoryDescendantsCmd = &cobra.Command{
	Use:   "descendants [category-id]",
	Short: "List the ids of every category below a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryDescendants,
}

var categoryFatwasCmd = &cobra.Command{
	Use:   "fatwas [category-id]",
	Short: "List fatwas in a category and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryFatwas,
}

var categorySaveCmd = &cobra.Command{
	Use:   "save [category-id] [title]",
	Short: "Create or update a category",
	Long: `Creates a category, or replaces the category with the same id.

Titles must be unique among active categories. A parent must exist and
must not be the category itself or one of its descendants.`,
	Args: cobra.ExactArgs(2),
	RunE: runCategorySave,
}

func init() {
	categoryCmd.PersistentFlags().BoolVar(&categoryJSON, "json", false, "output as JSON")

	categoryFatwasCmd.Flags().IntP("page", "p", 1, "page number")
	categoryFatwasCmd.Flags().IntP("page-size", "n", domain.DefaultPageSize, "results per page")
	categoryFatwasCmd.Flags().StringP("lang", "l", "ar", "display language (ar or en)")

	categorySaveCmd.Flags().Int64("parent", 0, "parent category id (0 = root)")
	categorySaveCmd.Flags().String("description", "", "category description")
	categorySaveCmd.Flags().Bool("inactive", false, "hide the category and its subtree")
	categorySaveCmd.Flags().String("fatwas", "", "comma-separated fatwa ids attached directly (replaces the current list)")

	categoryCmd.AddCommand(categoryTreeCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryShowCmd)
	categoryCmd.AddCommand(categoryDescendantsCmd)
	categoryCmd.AddCommand(categoryFatwasCmd)
	categoryCmd.AddCommand(categorySaveCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runCategoryTree(cmd *cobra.Command, _ []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	tree, err := categoryService.Tree(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load tree: %w", err)
	}

	if categoryJSON {
		return outputJSON(cmd, tree)
	}
	if len(tree) == 0 {
		cmd.Println("No categories.")
		return nil
	}
	printNodes(cmd, tree, 0)
	return nil
}

func printNodes(cmd *cobra.Command, nodes []domain.CategoryNode, depth int) {
	for i := range nodes {
		node := &nodes[i]
		cmd.Printf("%s[%d] %s (%d fatwas)\n",
			strings.Repeat("  ", depth), node.ID, node.Title, len(node.FatwaIDs))
		printNodes(cmd, node.Children, depth+1)
	}
}

func runCategoryList(cmd *cobra.Command, _ []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	categories, err := categoryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	if categoryJSON {
		return outputJSON(cmd, categories)
	}
	if len(categories) == 0 {
		cmd.Println("No categories.")
		return nil
	}
	for i := range categories {
		c := &categories[i]
		parent := "-"
		if c.ParentID != nil {
			parent = strconv.FormatInt(*c.ParentID, 10)
		}
		cmd.Printf("  %-6d %-40s parent: %s\n", c.ID, c.Title, parent)
	}
	return nil
}

func runCategoryShow(cmd *cobra.Command, args []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}

	category, err := categoryService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}

	if categoryJSON {
		return outputJSON(cmd, category)
	}

	cmd.Printf("ID:          %d\n", category.ID)
	cmd.Printf("Title:       %s\n", category.Title)
	if category.ParentID != nil {
		cmd.Printf("Parent:      %d\n", *category.ParentID)
	}
	if category.Description != "" {
		cmd.Printf("Description: %s\n", category.Description)
	}
	cmd.Printf("Active:      %t\n", category.IsActive)
	cmd.Printf("Fatwas:      %s\n", joinIDs(category.FatwaIDs))
	return nil
}

func runCategoryDescendants(cmd *cobra.Command, args []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}

	ids, err := categoryService.Descendants(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to resolve descendants: %w", err)
	}

	if categoryJSON {
		if ids == nil {
			ids = []int64{}
		}
		return outputJSON(cmd, ids)
	}
	if len(ids) == 0 {
		cmd.Println("No descendants.")
		return nil
	}
	cmd.Println(joinIDs(ids))
	return nil
}

func runCategoryFatwas(cmd *cobra.Command, args []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}
	page, _ := cmd.Flags().GetInt("page")          //nolint:errcheck // flag is registered above
	pageSize, _ := cmd.Flags().GetInt("page-size") //nolint:errcheck // flag is registered above
	langFlag, _ := cmd.Flags().GetString("lang")   //nolint:errcheck // flag is registered above
	lang, err := domain.ParseLanguage(langFlag)
	if err != nil {
		return err
	}

	listing, err := categoryService.ListByCategory(cmd.Context(), id, domain.PageRequest{Page: page, PageSize: pageSize})
	if err != nil {
		return fmt.Errorf("failed to list category: %w", err)
	}
	for i := range listing.Items {
		listing.Items[i].Text = listing.Items[i].Fatwa.Localize(lang)
	}

	if categoryJSON {
		return outputJSON(cmd, listing)
	}

	cmd.Printf("%s (%d subcategories)\n", listing.Category.Title, listing.Category.DescendantCount)
	outputResultTable(cmd, &listing.PaginatedResult)
	return nil
}

func runCategorySave(cmd *cobra.Command, args []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}
	parent, _ := cmd.Flags().GetInt64("parent")            //nolint:errcheck // flag is registered above
	description, _ := cmd.Flags().GetString("description") //nolint:errcheck // flag is registered above
	inactive, _ := cmd.Flags().GetBool("inactive")         //nolint:errcheck // flag is registered above

	category := &domain.Category{
		ID:          id,
		Title:       args[1],
		Description: description,
		IsActive:    !inactive,
	}
	if parent > 0 {
		category.ParentID = &parent
	}
	// Without --fatwas the stored membership is kept.
	if cmd.Flags().Changed("fatwas") {
		raw, _ := cmd.Flags().GetString("fatwas") //nolint:errcheck // flag is registered above
		ids, err := parseIDList(raw)
		if err != nil {
			return err
		}
		category.FatwaIDs = ids
	}

	if err := categoryService.Save(cmd.Context(), category); err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}

	cmd.Printf("Category %d saved.\n", id)
	return nil
}

func parseIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, arg)
	}
	return id, nil
}

func parseIDList(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseIDArg(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

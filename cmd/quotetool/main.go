// Command quotetool runs the quote normalization layer offline, against
// saved CSG responses.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/services"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quotetool",
		Short:         "Inspect and normalize CSG quote payloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newNormalizeCmd(), newStarsCmd(), newFieldsCmd(), newAdminCredentialsCmd())
	return root
}

// =============================================================================
// NORMALIZE
// =============================================================================

func newNormalizeCmd() *cobra.Command {
	var product, sortBy, groupBy string
	var statsOnly bool

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a saved CSG response (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			p := models.ProductLine(product)
			optimized, err := services.OptimizeResponse(p, body)
			if err != nil {
				return err
			}
			if statsOnly {
				return writeJSON(cmd.OutOrStdout(), optimized.Stats)
			}

			result := &models.QuoteResult{
				Product:  p,
				Quotes:   optimized.Quotes,
				Carriers: services.SummarizeCarriers(optimized.Quotes, nil),
				Stats:    optimized.Stats,
			}
			if err := services.ApplyView(result, services.QuoteView{Sort: sortBy, Group: groupBy}); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&product, "product", "p", "", "product line ("+productList()+")")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort quotes (premium)")
	cmd.Flags().StringVar(&groupBy, "group", "", "group quotes (plan, company)")
	cmd.Flags().BoolVar(&statsOnly, "stats", false, "print only the optimization statistics")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

// =============================================================================
// STARS
// =============================================================================

func newStarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stars <rating>...",
		Short: "Show the star/color/label view of AM Best ratings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, rating := range args {
				g := services.ClassifyAMBest(rating)
				shown := g.Rating
				if shown == "" {
					shown = "-"
				}
				fmt.Fprintf(out, "%-6s %.1f  %-6s %s\n", shown, g.Stars, g.Color, g.Label)
			}
			return nil
		},
	}
}

// =============================================================================
// FIELDS
// =============================================================================

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <category>...",
		Short: "List the form fields required by a category selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := make([]models.ProductLine, 0, len(args))
			for _, a := range args {
				p := models.ProductLine(a)
				if !p.Valid() {
					return fmt.Errorf("unknown category %q (want one of %s)", a, productList())
				}
				categories = append(categories, p)
			}
			for _, f := range services.RequiredFields(categories) {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}

// =============================================================================
// ADMIN CREDENTIALS
// =============================================================================

func newAdminCredentialsCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "admin-credentials <token>",
		Short: "Print ADMIN_TOKEN_HASH (and ADMIN_TOTP_SECRET) for an operator token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			hash, err := utils.HashAdminToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ADMIN_TOKEN_HASH=%s\n", hash)

			if account == "" {
				return nil
			}
			secret, url, err := utils.GenerateTOTPSecret(account)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ADMIN_TOTP_SECRET=%s\n", secret)
			fmt.Fprintf(out, "# authenticator URL: %s\n", url)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "totp", "", "also generate a TOTP secret for this operator account")
	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func productList() string {
	names := make([]string, len(models.ProductLines))
	for i, p := range models.ProductLines {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

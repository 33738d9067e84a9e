package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rahul4469/propmate/internal/models"
	"github.com/rahul4469/propmate/internal/services"
	"github.com/rahul4469/propmate/internal/session"
	"github.com/rahul4469/propmate/internal/views"
	"github.com/spf13/cobra"
)

var (
	searchMax int

	emiPrincipal float64
	emiTenure    float64
	emiRate      float64

	propertyInput models.PropertyInput
)

// searchCmd runs one web search
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the web through Tavily",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := services.NewSearchClient(settings(), nil, logger)
		results, err := client.SearchWeb(cmd.Context(), strings.Join(args, " "), searchMax)
		if err != nil {
			return fmt.Errorf("search failed (%s): %w", models.KindOf(err), err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, results)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "No results.")
			return nil
		}
		for i, r := range results {
			fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		}
		return nil
	},
}

// chatCmd asks the assistant a single question
var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the property assistant a question",
	Long: `Sends one question to the assistant. Provider failures are printed as
the assistant's fallback reply, exactly as the chat pane would show them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chat := session.NewChatController(services.NewChatClient(settings(), nil, logger), logger)
		chat.Start()

		reply := chat.Send(cmd.Context(), strings.Join(args, " "))
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), views.NewChatView(chat.Messages(), false))
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
		return nil
	},
}

// offersCmd fetches current bank offers
var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Fetch current home loan offers from major Indian banks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loan := session.NewLoanController(
			services.NewSearchClient(settings(), nil, logger),
			services.NewChatClient(settings(), nil, logger),
			logger,
		)
		offers, err := loan.FetchLoanOffers(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, offers)
		}
		if len(offers) == 0 {
			fmt.Fprintln(out, "No loan offers found. Check OPENAI_API_KEY and TAVILY_API_KEY.")
			return nil
		}
		for _, o := range offers {
			fmt.Fprintf(out, "%-20s %-10s %s\n", o.BankName, o.InterestRate, o.ProcessingFee)
		}
		fmt.Fprintf(out, "(%s)\n", views.FormatMillis(loan.LastFetchDuration()))
		return nil
	},
}

// emiCmd prints the loan calculator figures
var emiCmd = &cobra.Command{
	Use:   "emi",
	Short: "Calculate the monthly installment of a home loan",
	Long: `Calculates EMI, total payment and total interest. Inputs are clamped to
the calculator bounds: principal 100,000 to 20,000,000 rupees, tenure 1 to
30 years, rate 5 to 15 percent per annum.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := models.LoanParameters{
			Principal:         models.ClampPrincipal(emiPrincipal),
			TenureYears:       models.ClampTenureYears(emiTenure),
			AnnualRatePercent: models.ClampAnnualRate(emiRate),
		}
		view := views.NewLoanView(params, nil, false)

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, view)
		}
		fmt.Fprintf(out, "Principal:      %s\n", views.FormatRupeesInt(view.Principal))
		fmt.Fprintf(out, "Tenure:         %d years (%d months)\n", view.TenureYears, view.TenureMonths)
		fmt.Fprintf(out, "Rate:           %s\n", view.Rate)
		fmt.Fprintf(out, "EMI:            %s\n", view.EMI)
		fmt.Fprintf(out, "Total payment:  %s\n", view.TotalPayment)
		fmt.Fprintf(out, "Total interest: %s\n", view.TotalInterest)
		return nil
	},
}

// analyzeCmd values one property
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Estimate a property's value and list similar listings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		property := session.NewPropertyController(services.NewSearchClient(settings(), nil, logger), logger)
		analysis := property.Analyze(cmd.Context(), propertyInput)
		view := views.NewPropertyView(analysis, time.Now())

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, view)
		}
		fmt.Fprintf(out, "Estimated value:  %s\n", view.EstimatedValue)
		fmt.Fprintf(out, "Investment score: %d/100 (%s)\n", view.InvestmentScore, view.ScoreBand)
		fmt.Fprintf(out, "Area growth:      %s\n", view.AreaGrowth)
		for _, r := range view.SearchResults {
			fmt.Fprintf(out, "  - %s %s\n", r.Title, r.URL)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchMax, "max", 5, "Maximum results (1-20)")

	emiCmd.Flags().Float64Var(&emiPrincipal, "principal", models.DefaultPrincipal, "Loan amount in rupees")
	emiCmd.Flags().Float64Var(&emiTenure, "tenure", models.DefaultTenureYears, "Tenure in years")
	emiCmd.Flags().Float64Var(&emiRate, "rate", models.DefaultAnnualRate, "Annual interest rate in percent")

	analyzeCmd.Flags().StringVar(&propertyInput.Location, "location", "", "City or locality")
	analyzeCmd.Flags().IntVar(&propertyInput.Area, "area", 0, "Carpet area in square feet")
	analyzeCmd.Flags().IntVar(&propertyInput.Bedrooms, "bedrooms", 2, "Number of bedrooms")
	analyzeCmd.Flags().IntVar(&propertyInput.Bathrooms, "bathrooms", 2, "Number of bathrooms")
	analyzeCmd.Flags().IntVar(&propertyInput.Floor, "floor", 1, "Floor number")
	_ = analyzeCmd.MarkFlagRequired("area")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

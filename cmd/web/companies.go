package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/internal/cache/redis"
	"github.com/dei-tracker/web/internal/companies"
	"github.com/dei-tracker/web/pkg/logger"
	"github.com/dei-tracker/web/pkg/retry"
)

var (
	companiesSearch     string
	companiesIndustries []string
	companiesCountries  []string
	companiesStates     []string
	companiesTiers      []string
	companiesSort       string
	companiesOrder      string
	companiesPage       int
	companiesView       string
	companiesJSON       bool
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List tracked companies",
	Long:  "Fetches one page of the companies listing directly from the backend, applying the same filters, sorting and pagination as the companies page.",
	RunE:  runCompanies,
}

var flushSessionsCmd = &cobra.Command{
	Use:   "flush-sessions",
	Short: "Delete stored fetch-all listing sessions from redis",
	RunE:  runFlushSessions,
}

func init() {
	f := companiesCmd.Flags()
	f.StringVarP(&companiesSearch, "search", "s", "", "Search term")
	f.StringSliceVar(&companiesIndustries, "industry", nil, "Industries to include (repeatable or comma separated)")
	f.StringSliceVar(&companiesCountries, "country", nil, "Headquarters countries to include")
	f.StringSliceVar(&companiesStates, "state", nil, "Headquarters states to include")
	f.StringSliceVar(&companiesTiers, "tier", nil, "Market cap tiers to include, e.g. \"Mega Cap\"")
	f.StringVar(&companiesSort, "sort", "name", "Sort field: name, ticker, industry, revenue_usd, created_at")
	f.StringVar(&companiesOrder, "order", "asc", "Sort order: asc or desc")
	f.IntVarP(&companiesPage, "page", "p", 1, "Page number")
	f.StringVar(&companiesView, "view", string(companies.ViewTable), "Page size preset: grid, list or table")
	f.BoolVar(&companiesJSON, "json", false, "Print the listing state as JSON")

	companiesCmd.AddCommand(flushSessionsCmd)
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, "stderr"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	// No gateway is running here, so always talk to the backend directly.
	client := api.New(api.Config{
		BackendURL: cfg.Backend.URL,
		Version:    cfg.Backend.Version,
		APIKey:     cfg.Backend.APIKey,
	})
	service := companies.NewService(client, companies.NewMemoryStore(cfg.Listing.SessionCapacity), cfg.Listing.FetchAllPageSize, cfg.SessionTTL())

	state, err := service.Page(cmd.Context(), companiesQuery())
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if companiesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}
	return printCompanies(cmd.OutOrStdout(), state)
}

func companiesQuery() companies.Query {
	tiers := make([]companies.Tier, len(companiesTiers))
	for i, t := range companiesTiers {
		tiers[i] = companies.Tier(t)
	}
	return companies.Query{
		Search:         companiesSearch,
		Industries:     companiesIndustries,
		Countries:      companiesCountries,
		States:         companiesStates,
		MarketCapTiers: tiers,
		Sort:           companiesSort,
		Order:          companiesOrder,
		Page:           companiesPage,
		View:           companies.View(companiesView),
	}
}

func printCompanies(w io.Writer, state companies.State) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTICKER\tINDUSTRY\tTIER\tDEI STATUS\tRISK")
	for _, c := range state.Companies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.Name,
			deref(c.Ticker),
			deref(c.Industry),
			orDash(string(c.MarketCapTier)),
			orDash(enumString(c.DEIStatus)),
			orDash(enumString(c.RiskLevel)),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	mode := "server"
	if state.FetchAll {
		mode = "fetch-all"
	}
	_, err := fmt.Fprintf(w, "\npage %d of %d, %d companies (%s)\n", state.Page, state.TotalPages, state.Total, mode)
	return err
}

func runFlushSessions(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := redis.NewClient(cmd.Context(), cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, retry.Config{MaxAttempts: 1, Name: "redis"})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer client.Close()

	n, err := client.FlushListings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to flush listing sessions: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d listing sessions\n", n)
	return err
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func enumString[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

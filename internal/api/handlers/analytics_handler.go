package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/internal/charts"
	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/pkg/logger"
)

const defaultRankingLimit = 10

type AnalyticsHandler struct {
	client *api.Client
}

func NewAnalyticsHandler(client *api.Client) *AnalyticsHandler {
	return &AnalyticsHandler{
		client: client,
	}
}

// RankedRow is a ranking entry with its badge tones.
type RankedRow struct {
	models.RankedProfile
	DEIStatusTone models.Tone `json:"dei_status_tone"`
	RiskLevelTone models.Tone `json:"risk_level_tone"`
}

// Overview joins the overview statistics and per-industry figures; the page
// is ready only when both have loaded.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	defer observe("overview", time.Now())

	var (
		overview   *models.AnalyticsOverview
		industries []models.IndustryStats
	)

	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		overview, err = h.client.GetAnalyticsOverview(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		industries, err = h.client.GetIndustryStats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load analytics overview", zap.Error(err))
		return respondError(c, err)
	}

	industryCounts := overview.IndustryDistribution
	if len(industryCounts) == 0 {
		industryCounts = countsByIndustry(industries)
	}

	return c.JSON(fiber.Map{
		"overview":   overview,
		"industries": industries,
		"charts": fiber.Map{
			"dei_status": charts.GroupTail(charts.FromCounts(overview.StatusDistribution), charts.DefaultKeep),
			"risk":       charts.FromCounts(overview.RiskDistribution),
			"industries": charts.GroupTail(charts.FromCounts(industryCounts), charts.DefaultKeep),
		},
	})
}

func (h *AnalyticsHandler) Industries(c *fiber.Ctx) error {
	defer observe("industries", time.Now())

	industries, err := h.client.GetIndustryStats(c.UserContext())
	if err != nil {
		logger.Error("Failed to load industry stats", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"industries": industries,
		"chart":      charts.GroupTail(charts.FromCounts(countsByIndustry(industries)), charts.DefaultKeep),
	})
}

// Rankings joins the at-risk and top-committed lists.
func (h *AnalyticsHandler) Rankings(c *fiber.Ctx) error {
	defer observe("rankings", time.Now())

	limit := c.QueryInt("limit", defaultRankingLimit)
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	var atRisk, topCommitted []models.RankedProfile

	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		atRisk, err = h.client.GetAtRiskProfiles(ctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		topCommitted, err = h.client.GetTopCommittedProfiles(ctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load rankings", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"at_risk":       rankedRows(atRisk),
		"top_committed": rankedRows(topCommitted),
	})
}

func countsByIndustry(stats []models.IndustryStats) map[string]int {
	counts := make(map[string]int, len(stats))
	for _, s := range stats {
		counts[s.Industry] += s.CompanyCount
	}
	return counts
}

func rankedRows(profiles []models.RankedProfile) []RankedRow {
	rows := make([]RankedRow, len(profiles))
	for i, p := range profiles {
		rows[i] = RankedRow{
			RankedProfile: p,
			DEIStatusTone: models.ToneNeutral,
			RiskLevelTone: models.ToneNeutral,
		}
		if p.DEIStatus != nil {
			rows[i].DEIStatusTone = p.DEIStatus.Tone()
		}
		if p.RiskLevel != nil {
			rows[i].RiskLevelTone = p.RiskLevel.Tone()
		}
	}
	return rows
}

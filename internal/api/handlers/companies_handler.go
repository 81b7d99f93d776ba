package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/internal/companies"
	"github.com/dei-tracker/web/internal/metrics"
	"github.com/dei-tracker/web/internal/middleware/validation"
	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/pkg/logger"
)

type CompaniesHandler struct {
	client         *api.Client
	service        *companies.Service
	paletteLimit   int
	maxQueryLength int
}

func NewCompaniesHandler(client *api.Client, service *companies.Service, paletteLimit, maxQueryLength int) *CompaniesHandler {
	return &CompaniesHandler{
		client:         client,
		service:        service,
		paletteLimit:   paletteLimit,
		maxQueryLength: maxQueryLength,
	}
}

// CompanyDetail is the company page: the company, its latest profile when
// one loads, and badge tones for the profile's records.
type CompanyDetail struct {
	Company          companies.CompanyRow      `json:"company"`
	Profile          *models.FullProfile       `json:"profile"`
	CommitmentTones  map[models.ID]models.Tone `json:"commitment_tones"`
	ControversyTones map[models.ID]models.Tone `json:"controversy_tones"`
}

// ParseQuery reads listing options from the query string. Multi-value
// filters are comma separated.
func ParseQuery(c *fiber.Ctx) companies.Query {
	tiers := splitList(c.Query("market_cap_tiers"))
	q := companies.Query{
		Search:         c.Query("search"),
		Industries:     splitList(c.Query("industries")),
		Countries:      splitList(c.Query("countries")),
		States:         splitList(c.Query("states")),
		MarketCapTiers: make([]companies.Tier, len(tiers)),
		Sort:           c.Query("sort"),
		Order:          c.Query("order"),
		Page:           c.QueryInt("page", 1),
		View:           companies.View(c.Query("view")),
	}
	for i, t := range tiers {
		q.MarketCapTiers[i] = companies.Tier(t)
	}
	return q
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *CompaniesHandler) List(c *fiber.Ctx) error {
	defer observe("companies", time.Now())

	q := ParseQuery(c).Normalized()
	if err := q.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	state, err := h.service.Page(c.UserContext(), q)
	if err != nil {
		logger.Error("Failed to load companies", zap.Error(err))
		return c.Status(api.StatusOf(err)).JSON(state)
	}

	return c.JSON(state)
}

func (h *CompaniesHandler) Detail(c *fiber.Ctx) error {
	defer observe("company", time.Now())

	id := c.Params("id")
	ctx := c.UserContext()

	var (
		company *models.Company
		profile *models.FullProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		company, err = h.client.GetCompany(gctx, id)
		return err
	})
	g.Go(func() error {
		p, err := h.client.GetLatestProfile(gctx, id)
		if err != nil {
			logger.Warn("Latest profile unavailable", zap.String("company_id", id), zap.Error(err))
			return nil
		}
		profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load company", zap.String("company_id", id), zap.Error(err))
		return respondError(c, err)
	}

	if profile != nil {
		h.resolveRecords(ctx, profile)
	}

	return c.JSON(newCompanyDetail(*company, profile))
}

// resolveRecords fills commitments and controversies that arrived only as ids.
func (h *CompaniesHandler) resolveRecords(ctx context.Context, profile *models.FullProfile) {
	var g errgroup.Group
	if profile.NeedsCommitmentLookup() {
		g.Go(func() error {
			profile.Commitments = h.client.GetCommitmentsByIDs(ctx, profile.CommitmentIDs)
			return nil
		})
	}
	if profile.NeedsControversyLookup() {
		g.Go(func() error {
			profile.Controversies = h.client.GetControversiesByIDs(ctx, profile.ControversyIDs)
			return nil
		})
	}
	_ = g.Wait()
}

func newCompanyDetail(company models.Company, profile *models.FullProfile) CompanyDetail {
	detail := CompanyDetail{
		Company:          companies.NewRow(company),
		Profile:          profile,
		CommitmentTones:  map[models.ID]models.Tone{},
		ControversyTones: map[models.ID]models.Tone{},
	}
	if profile == nil {
		return detail
	}
	for _, cm := range profile.Commitments {
		tone := models.ToneNeutral
		if cm.Status != nil {
			tone = cm.Status.Tone()
		}
		detail.CommitmentTones[cm.ID] = tone
	}
	for _, cv := range profile.Controversies {
		tone := models.ToneNeutral
		if cv.Status != nil {
			tone = cv.Status.Tone()
		}
		detail.ControversyTones[cv.ID] = tone
	}
	return detail
}

func (h *CompaniesHandler) FilterOptions(c *fiber.Ctx) error {
	options, err := h.client.GetFilterOptions(c.UserContext())
	if err != nil {
		logger.Error("Failed to load filter options", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"options":          options,
		"market_cap_tiers": companies.Tiers,
	})
}

// Search backs the command palette for clients without a websocket.
func (h *CompaniesHandler) Search(c *fiber.Ctx) error {
	q := validation.Sanitize(c.Query("q"))
	if q == "" {
		return c.JSON(fiber.Map{
			"results": []models.CompanySuggestion{},
		})
	}
	if len(q) > h.maxQueryLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query exceeds maximum length of " + strconv.Itoa(h.maxQueryLength),
		})
	}

	results, err := h.client.Autocomplete(c.UserContext(), q, h.paletteLimit)
	if err != nil {
		logger.Error("Autocomplete failed", zap.String("query", q), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"results": results,
	})
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(api.StatusOf(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func observe(page string, start time.Time) {
	metrics.PageDataDuration.WithLabelValues(page).Observe(time.Since(start).Seconds())
}

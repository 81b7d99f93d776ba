package companies

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dei-tracker/web/internal/models"
)

// Filter keeps the companies matching every active multi-value filter.
// Within one dimension any selected value matches.
func Filter(rows []models.Company, q Query) []models.Company {
	industries := toSet(q.Industries)
	countries := toSet(q.Countries)
	states := toSet(q.States)
	tiers := make(map[Tier]struct{}, len(q.MarketCapTiers))
	for _, t := range q.MarketCapTiers {
		tiers[t] = struct{}{}
	}

	out := make([]models.Company, 0, len(rows))
	for _, c := range rows {
		if !matches(industries, c.Industry) || !matches(countries, c.HeadquartersCountry) || !matches(states, c.HeadquartersState) {
			continue
		}
		if len(tiers) > 0 {
			tier, ok := tierOf(c.RevenueUSD)
			if !ok {
				continue
			}
			if _, hit := tiers[tier]; !hit {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func matches(set map[string]struct{}, value *string) bool {
	if len(set) == 0 {
		return true
	}
	if value == nil {
		return false
	}
	_, ok := set[*value]
	return ok
}

// Sort orders rows in place by field. Strings compare with locale rules,
// numbers by difference, and missing values always come last whatever the
// order. Unknown fields leave the rows as they are.
func Sort(rows []models.Company, field, order string) {
	desc := order == "desc"
	col := collate.New(language.English)

	var cmp func(a, b *models.Company) (int, bool, bool)
	switch field {
	case "name":
		cmp = func(a, b *models.Company) (int, bool, bool) {
			return col.CompareString(a.Name, b.Name), true, true
		}
	case "ticker":
		cmp = stringField(col, func(c *models.Company) *string { return c.Ticker })
	case "industry":
		cmp = stringField(col, func(c *models.Company) *string { return c.Industry })
	case "created_at":
		cmp = stringField(col, func(c *models.Company) *string { return c.CreatedAt })
	case "revenue_usd":
		cmp = func(a, b *models.Company) (int, bool, bool) {
			if a.RevenueUSD == nil || b.RevenueUSD == nil {
				return 0, a.RevenueUSD != nil, b.RevenueUSD != nil
			}
			return sign(*a.RevenueUSD - *b.RevenueUSD), true, true
		}
	default:
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c, aOK, bOK := cmp(&rows[i], &rows[j])
		switch {
		case !aOK && !bOK:
			return false
		case !aOK:
			return false
		case !bOK:
			return true
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func stringField(col *collate.Collator, get func(*models.Company) *string) func(a, b *models.Company) (int, bool, bool) {
	return func(a, b *models.Company) (int, bool, bool) {
		av, bv := get(a), get(b)
		if av == nil || bv == nil {
			return 0, av != nil, bv != nil
		}
		return col.CompareString(*av, *bv), true, true
	}
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	default:
		return 0
	}
}

// Window returns the requested page and the page count. There is always at
// least one page; a page past the end is empty.
func Window(rows []models.Company, page, perPage int) ([]models.Company, int) {
	if perPage < 1 {
		perPage = cardsPerPage
	}
	if page < 1 {
		page = 1
	}

	totalPages := (len(rows) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start >= len(rows) {
		return []models.Company{}, totalPages
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], totalPages
}

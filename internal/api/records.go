package api

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dei-tracker/web/internal/metrics"
	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/pkg/logger"
)

func (c *Client) ListCommitments(ctx context.Context, params ListParams) (*models.Page[models.Commitment], error) {
	return list[models.Commitment](ctx, c, "/commitments/", params)
}

func (c *Client) GetCommitment(ctx context.Context, id string) (*models.Commitment, error) {
	return item[models.Commitment](ctx, c, "/commitments/", id)
}

// GetCommitmentsByIDs fetches each id concurrently. Items that fail to load
// are logged and left out; the call itself never fails.
func (c *Client) GetCommitmentsByIDs(ctx context.Context, ids []models.ID) []models.Commitment {
	return getMany(ctx, "commitment", ids, c.GetCommitment)
}

func (c *Client) ListControversies(ctx context.Context, params ListParams) (*models.Page[models.Controversy], error) {
	return list[models.Controversy](ctx, c, "/controversies/", params)
}

func (c *Client) GetControversy(ctx context.Context, id string) (*models.Controversy, error) {
	return item[models.Controversy](ctx, c, "/controversies/", id)
}

func (c *Client) GetControversiesByIDs(ctx context.Context, ids []models.ID) []models.Controversy {
	return getMany(ctx, "controversy", ids, c.GetControversy)
}

func (c *Client) ListEvents(ctx context.Context, params ListParams) (*models.Page[models.Event], error) {
	return list[models.Event](ctx, c, "/events/", params)
}

func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return item[models.Event](ctx, c, "/events/", id)
}

func (c *Client) ListSources(ctx context.Context, params ListParams) (*models.Page[models.DataSource], error) {
	return list[models.DataSource](ctx, c, "/sources/", params)
}

func (c *Client) GetSource(ctx context.Context, id string) (*models.DataSource, error) {
	return item[models.DataSource](ctx, c, "/sources/", id)
}

func (c *Client) ListSupplierDiversity(ctx context.Context, params ListParams) (*models.Page[models.SupplierDiversity], error) {
	return list[models.SupplierDiversity](ctx, c, "/supplier-diversity/", params)
}

func (c *Client) GetSupplierDiversity(ctx context.Context, id string) (*models.SupplierDiversity, error) {
	return item[models.SupplierDiversity](ctx, c, "/supplier-diversity/", id)
}

func list[T any](ctx context.Context, c *Client, path string, params ListParams) (*models.Page[T], error) {
	body, err := c.get(ctx, path, params.Values())
	if err != nil {
		return nil, err
	}
	return decodeList[T](body)
}

func item[T any](ctx context.Context, c *Client, prefix, id string) (*T, error) {
	body, err := c.get(ctx, prefix+segment(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeItem[T](body)
}

func getMany[T any](ctx context.Context, kind string, ids []models.ID, fetch func(context.Context, string) (*T, error)) []T {
	results := make([]*T, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			v, err := fetch(ctx, id.String())
			if err != nil {
				logger.Warn("Failed to fetch record, skipping",
					zap.String("kind", kind),
					zap.String("id", id.String()),
					zap.Error(err),
				)
				metrics.RecordsSkipped.WithLabelValues(kind).Inc()
				return nil
			}
			results[i] = v
			return nil
		})
	}
	_ = g.Wait()

	out := make([]T, 0, len(ids))
	for _, v := range results {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

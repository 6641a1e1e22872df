package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/utils"
)

func newTestQuoteFlow(store *fakeStore) QuoteFlow {
	return NewQuoteFlow(newTestInheritanceFlow(store), &fakeDiscountRepo{store: store})
}

func TestQuote(t *testing.T) {
	t.Run("quotes against the node's own config", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(4, &models.PricingConfig{BaseRate: 50, VATRate: 12, OccupancyMultiplier: 1.0})
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.95,
		})
		require.NoError(t, err)
		assert.Equal(t, models.PricingSourceOwn, resp.Quote.PricingSource)
		assert.Equal(t, utils.PHPCurrency, resp.Quote.Currency)
		assert.Equal(t, 75.0, resp.Quote.Subtotal)
		assert.Equal(t, 9.0, resp.Quote.VATAmount)
		assert.Equal(t, 84.0, resp.Quote.TotalAmount)
	})

	t.Run("quotes against inherited config and reports the source", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(1, &models.PricingConfig{BaseRate: 50, VATRate: 12, OccupancyMultiplier: 1.0})
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.30,
		})
		require.NoError(t, err)
		assert.Equal(t, models.PricingSourceInherited, resp.Quote.PricingSource)
		assert.Equal(t, 56.0, resp.Quote.TotalAmount)
	})

	t.Run("quotes with default pricing on a bare chain", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.30,
		})
		require.NoError(t, err)
		assert.Equal(t, models.PricingSourceDefault, resp.Quote.PricingSource)
		assert.Equal(t, 50.0, resp.Quote.Subtotal)
	})

	t.Run("applied discount bumps its usage counter", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(4, &models.PricingConfig{BaseRate: 50, VATRate: 12, OccupancyMultiplier: 1.0})
		discount := store.addDiscount(activeDiscount(20, false))
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.30,
			DiscountIDs:    []string{discount.UUID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, 10.0, resp.Quote.DiscountAmount)
		assert.Equal(t, []string{discount.UUID.String()}, resp.Quote.AppliedDiscounts)
		assert.Equal(t, 1, discount.UsageCount)
	})

	t.Run("repeated discount id applies once", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(4, &models.PricingConfig{BaseRate: 50, VATRate: 12, OccupancyMultiplier: 1.0})
		discount := store.addDiscount(activeDiscount(20, false))
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.30,
			DiscountIDs:    []string{discount.UUID.String(), discount.UUID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, 10.0, resp.Quote.DiscountAmount)
		assert.Equal(t, []string{discount.UUID.String()}, resp.Quote.AppliedDiscounts)
		assert.Equal(t, 1, discount.UsageCount)
	})

	t.Run("skipped discount leaves its usage counter alone", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(4, &models.PricingConfig{BaseRate: 50, VATRate: 12, OccupancyMultiplier: 1.0})
		inactive := activeDiscount(20, false)
		inactive.IsActive = utils.ToPtr(false)
		discount := store.addDiscount(inactive)
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.30,
			DiscountIDs:    []string{discount.UUID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, resp.Quote.DiscountAmount)
		assert.Equal(t, 0, discount.UsageCount)
	})

	t.Run("unknown discount fails the quote", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		store.setConfig(4, &models.PricingConfig{BaseRate: 50, VATRate: 12, OccupancyMultiplier: 1.0})
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.30,
			DiscountIDs:    []string{uuid.NewString()},
		})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsDiscountNotFound(err))
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), &dto.QuoteRequest{
			Timestamp:      "2025-03-10 10:30",
			OccupancyRatio: 0.30,
		})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrQuoteTimestampRequired)
	})

	t.Run("unknown node", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), uuid.NewString(), &dto.QuoteRequest{
			Timestamp:      testQuoteTime.Format(time.RFC3339),
			OccupancyRatio: 0.30,
		})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsNodeNotFound(err))
	})

	t.Run("nil request", func(t *testing.T) {
		store := newFakeStore()
		seedTestHierarchy(store)
		flow := newTestQuoteFlow(store)

		resp, err := flow.Quote(context.Background(), store.nodes[4].UUID.String(), nil)
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

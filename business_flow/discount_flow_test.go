package businessflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/utils"
)

const testOperatorID uint = 42

func newTestDiscountFlow(store *fakeStore) DiscountFlow {
	return NewDiscountFlow(&fakeDiscountRepo{store: store}, &fakeAuditRepo{store: store})
}

func TestCreateDiscount(t *testing.T) {
	t.Run("creates an active discount by default", func(t *testing.T) {
		store := newFakeStore()
		flow := newTestDiscountFlow(store)

		resp, err := flow.CreateDiscount(context.Background(), testOperatorID, &dto.CreateDiscountRequest{
			Name:       "Senior Citizen",
			Type:       models.DiscountTypeSenior,
			Percentage: 20,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, testOperatorID, resp.Discount.OperatorID)
		assert.True(t, resp.Discount.IsActive)
		assert.False(t, resp.Discount.IsVATExempt)
		assert.NotEmpty(t, resp.Discount.UUID)

		require.Len(t, store.audits, 1)
		assert.Equal(t, models.AuditActionDiscountCreated, store.audits[0].Action)
	})

	t.Run("stores conditions", func(t *testing.T) {
		store := newFakeStore()
		flow := newTestDiscountFlow(store)

		resp, err := flow.CreateDiscount(context.Background(), testOperatorID, &dto.CreateDiscountRequest{
			Name:       "Promo",
			Type:       models.DiscountTypeCustom,
			Percentage: 10,
			Conditions: &dto.DiscountConditionsDTO{
				MinAmount: utils.ToPtr(100.0),
				MaxUsage:  utils.ToPtr(50),
			},
		}, nil)
		require.NoError(t, err)
		require.NotNil(t, resp.Discount.Conditions)
		assert.Equal(t, 100.0, *resp.Discount.Conditions.MinAmount)
		assert.Equal(t, 50, *resp.Discount.Conditions.MaxUsage)
	})

	tests := []struct {
		name    string
		req     dto.CreateDiscountRequest
		wantErr error
	}{
		{
			name:    "blank name",
			req:     dto.CreateDiscountRequest{Name: "  ", Type: models.DiscountTypeSenior, Percentage: 20},
			wantErr: ErrDiscountNameRequired,
		},
		{
			name:    "unknown type",
			req:     dto.CreateDiscountRequest{Name: "Promo", Type: "student", Percentage: 20},
			wantErr: ErrDiscountTypeInvalid,
		},
		{
			name:    "percentage above one hundred",
			req:     dto.CreateDiscountRequest{Name: "Promo", Type: models.DiscountTypeCustom, Percentage: 120},
			wantErr: ErrDiscountPercentOutOfRange,
		},
		{
			name: "negative minimum amount condition",
			req: dto.CreateDiscountRequest{
				Name: "Promo", Type: models.DiscountTypeCustom, Percentage: 10,
				Conditions: &dto.DiscountConditionsDTO{MinAmount: utils.ToPtr(-1.0)},
			},
			wantErr: ErrDiscountConditionsInvalid,
		},
		{
			name: "zero maximum usage condition",
			req: dto.CreateDiscountRequest{
				Name: "Promo", Type: models.DiscountTypeCustom, Percentage: 10,
				Conditions: &dto.DiscountConditionsDTO{MaxUsage: utils.ToPtr(0)},
			},
			wantErr: ErrDiscountConditionsInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			flow := newTestDiscountFlow(store)

			resp, err := flow.CreateDiscount(context.Background(), testOperatorID, &tt.req, nil)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateDiscount(t *testing.T) {
	seedDiscount := func(store *fakeStore) *models.DiscountConfiguration {
		return store.addDiscount(&models.DiscountConfiguration{
			OperatorID:  testOperatorID,
			Name:        "Senior Citizen",
			Type:        models.DiscountTypeSenior,
			Percentage:  20,
			IsVATExempt: utils.ToPtr(true),
			IsActive:    utils.ToPtr(true),
		})
	}

	t.Run("applies a partial update", func(t *testing.T) {
		store := newFakeStore()
		discount := seedDiscount(store)
		flow := newTestDiscountFlow(store)

		resp, err := flow.UpdateDiscount(context.Background(), testOperatorID, discount.UUID.String(), &dto.UpdateDiscountRequest{
			Percentage: utils.ToPtr(25.0),
			IsActive:   utils.ToPtr(false),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 25.0, resp.Discount.Percentage)
		assert.False(t, resp.Discount.IsActive)
		// Untouched fields survive
		assert.Equal(t, "Senior Citizen", resp.Discount.Name)
		assert.True(t, resp.Discount.IsVATExempt)

		require.Len(t, store.audits, 1)
		assert.Equal(t, models.AuditActionDiscountUpdated, store.audits[0].Action)
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		store := newFakeStore()
		discount := seedDiscount(store)
		flow := newTestDiscountFlow(store)

		resp, err := flow.UpdateDiscount(context.Background(), testOperatorID, discount.UUID.String(), &dto.UpdateDiscountRequest{}, nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrDiscountUpdateFieldMissing)
	})

	t.Run("another operator's discount is off limits", func(t *testing.T) {
		store := newFakeStore()
		discount := seedDiscount(store)
		flow := newTestDiscountFlow(store)

		resp, err := flow.UpdateDiscount(context.Background(), testOperatorID+1, discount.UUID.String(), &dto.UpdateDiscountRequest{
			Percentage: utils.ToPtr(25.0),
		}, nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsDiscountAccessDenied(err))
	})

	t.Run("unknown discount", func(t *testing.T) {
		store := newFakeStore()
		flow := newTestDiscountFlow(store)

		resp, err := flow.UpdateDiscount(context.Background(), testOperatorID, uuid.NewString(), &dto.UpdateDiscountRequest{
			Percentage: utils.ToPtr(25.0),
		}, nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsDiscountNotFound(err))
	})

	t.Run("blank updated name is rejected", func(t *testing.T) {
		store := newFakeStore()
		discount := seedDiscount(store)
		flow := newTestDiscountFlow(store)

		resp, err := flow.UpdateDiscount(context.Background(), testOperatorID, discount.UUID.String(), &dto.UpdateDiscountRequest{
			Name: utils.ToPtr("   "),
		}, nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrDiscountNameRequired)
	})
}

func TestListDiscounts(t *testing.T) {
	store := newFakeStore()
	store.addDiscount(&models.DiscountConfiguration{
		OperatorID: testOperatorID,
		Name:       "Senior Citizen",
		Type:       models.DiscountTypeSenior,
		Percentage: 20,
		IsActive:   utils.ToPtr(true),
	})
	store.addDiscount(&models.DiscountConfiguration{
		OperatorID: testOperatorID,
		Name:       "PWD",
		Type:       models.DiscountTypePWD,
		Percentage: 20,
		IsActive:   utils.ToPtr(false),
	})
	store.addDiscount(&models.DiscountConfiguration{
		OperatorID: testOperatorID + 1,
		Name:       "Other operator promo",
		Type:       models.DiscountTypeCustom,
		Percentage: 5,
		IsActive:   utils.ToPtr(true),
	})
	flow := newTestDiscountFlow(store)

	resp, err := flow.ListDiscounts(context.Background(), testOperatorID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Senior Citizen", resp.Items[0].Name)
	assert.Equal(t, "PWD", resp.Items[1].Name)
}

func TestDeleteDiscount(t *testing.T) {
	t.Run("deletes an owned discount", func(t *testing.T) {
		store := newFakeStore()
		discount := store.addDiscount(&models.DiscountConfiguration{
			OperatorID: testOperatorID,
			Name:       "Promo",
			Type:       models.DiscountTypeCustom,
			Percentage: 10,
			IsActive:   utils.ToPtr(true),
		})
		flow := newTestDiscountFlow(store)

		resp, err := flow.DeleteDiscount(context.Background(), testOperatorID, discount.UUID.String(), nil)
		require.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Empty(t, store.discounts)

		require.Len(t, store.audits, 1)
		assert.Equal(t, models.AuditActionDiscountDeleted, store.audits[0].Action)
	})

	t.Run("another operator's discount is off limits", func(t *testing.T) {
		store := newFakeStore()
		discount := store.addDiscount(&models.DiscountConfiguration{
			OperatorID: testOperatorID,
			Name:       "Promo",
			Type:       models.DiscountTypeCustom,
			Percentage: 10,
			IsActive:   utils.ToPtr(true),
		})
		flow := newTestDiscountFlow(store)

		resp, err := flow.DeleteDiscount(context.Background(), testOperatorID+1, discount.UUID.String(), nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsDiscountAccessDenied(err))
		assert.Len(t, store.discounts, 1)
	})
}

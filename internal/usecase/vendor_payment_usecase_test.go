package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

func TestVendorPaymentUseCase_Create(t *testing.T) {
	f := newFixture(t)

	v := f.vendorPayment(t)
	assert.Equal(t, "VPY-00001", v.ID)
	assert.True(t, v.AmountINR().Equal(dec("8325")))
	assert.True(t, v.PaidAmount.IsZero())

	_, err := f.vendors.CreateVendorPayment(context.Background(), clerk, usecase.CreateVendorPaymentInput{
		VendorID:               "vendor-acme",
		Currency:               "usd",
		AmountInVendorCurrency: dec("10"),
		ExchangeRateToINR:      dec("0"),
		DueDate:                fixedNow,
	})
	require.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = f.vendors.CreateVendorPayment(context.Background(), clerk, usecase.CreateVendorPaymentInput{
		VendorID:               "vendor-acme",
		Currency:               "XYZ",
		AmountInVendorCurrency: dec("10"),
		ExchangeRateToINR:      dec("1"),
		DueDate:                fixedNow,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "currency", domain.FieldOf(err))

	listed, err := f.vendors.ListVendorPayments(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestVendorPaymentUseCase_UpdateConversion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.vendorPayment(t)

	e := f.entry(t, "4000", domain.VendorPaymentRef{PaymentID: v.ID}, nil)
	_, err := f.ledger.PostEntry(ctx, clerk, e.ID)
	require.NoError(t, err)

	updated, err := f.vendors.UpdateConversion(ctx, clerk, usecase.UpdateConversionInput{
		PaymentID:         v.ID,
		ExchangeRateToINR: ptr(dec("80")),
	})
	require.NoError(t, err)
	assert.True(t, updated.AmountINR().Equal(dec("8000")))
	assert.True(t, updated.PaidAmount.Equal(dec("4000")), "paid amount is never recomputed")
	assert.True(t, updated.Outstanding().Equal(dec("4000")))

	_, err = f.vendors.UpdateConversion(ctx, clerk, usecase.UpdateConversionInput{
		PaymentID:              v.ID,
		AmountInVendorCurrency: ptr(dec("40")),
	})
	require.ErrorIs(t, err, domain.ErrOverPayment, "3200 INR is below the 4000 already paid")

	_, err = f.vendors.UpdateConversion(ctx, clerk, usecase.UpdateConversionInput{
		PaymentID:         v.ID,
		ExchangeRateToINR: ptr(dec("-1")),
	})
	require.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = f.vendors.UpdateConversion(ctx, auditor, usecase.UpdateConversionInput{PaymentID: v.ID})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.vendors.UpdateConversion(ctx, clerk, usecase.UpdateConversionInput{PaymentID: "VPY-04040"})
	require.ErrorIs(t, err, domain.ErrVendorPaymentNotFound)

	stored, err := f.vendors.GetVendorPayment(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, stored.ExchangeRateToINR.Equal(dec("80")))
	assert.True(t, stored.AmountInVendorCurrency.Equal(dec("100")))
}

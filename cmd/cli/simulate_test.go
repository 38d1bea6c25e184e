package main

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRunSimulation(t *testing.T) {
	report, err := runSimulation(context.Background(), 10000, 200)
	require.NoError(t, err)

	require.Len(t, report.Sales, 2)
	assert.Equal(t, "200", report.Sales[0].Fee)
	require.Len(t, report.Sales[0].Royalties, 1)
	assert.Equal(t, "500", report.Sales[0].Royalties[0].Amount)
	assert.Equal(t, "10700", report.Sales[0].Obligations[0].Amount)

	require.Len(t, report.Cancelled, 1)
	assert.Equal(t, "Cancelled", report.Cancelled[0].Status)

	assert.Equal(t, "10000", report.Balances["seller.native"])
	assert.Equal(t, "10000", report.Balances["seller.WZIL"])
	assert.Equal(t, "500", report.Balances["artist.native"])
	assert.Equal(t, "200", report.Balances["owner.native"])
	assert.Equal(t, "200", report.Balances["owner.WZIL"])
	assert.Equal(t, "0", report.Balances["buyer.native"])
	assert.Equal(t, "0", report.Balances["buyer.WZIL"])
	assert.Equal(t, "5", report.Balances["buyer.eggs"])
}

func TestRunSimulationRejectsExcessiveFee(t *testing.T) {
	_, err := runSimulation(context.Background(), 10000, 10001)
	assert.Error(t, err)
}

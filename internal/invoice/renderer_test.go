package invoice

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() Data {
	return Data{
		OrderNumber:      "ORD-20260830-A1B2C3",
		TransactionID:    "TXN-20260830120000-abcdef",
		FarmerName:       "Ravi Kumar",
		BuyerName:        "Mandi Traders Pvt Ltd",
		ProductTitle:     "Premium Wheat",
		QuantityKg:       500,
		PricePerKg:       26.5,
		TotalAmount:      13250,
		CommissionAmount: 662.5,
		PaymentMethod:    "upi",
		IssuedAt:         time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	path, err := Render(t.TempDir(), testData())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "invoice_ORD-20260830-A1B2C3.html")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Premium Wheat")
	assert.Contains(t, string(content), "13250.00")
	assert.Contains(t, string(content), "662.50")
	assert.Contains(t, string(content), "Ravi Kumar")
}

func TestRenderIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	d := testData()

	first, err := Render(dir, d)
	require.NoError(t, err)

	second, err := Render(dir, d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

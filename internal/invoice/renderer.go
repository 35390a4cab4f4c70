package invoice

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// Data carries everything the invoice document needs. The renderer is a
// collaborator outside the payment transaction: payment completion is
// the authoritative fact, the invoice a derived artifact that can be
// regenerated at any time.
type Data struct {
	OrderNumber      string
	TransactionID    string
	FarmerName       string
	BuyerName        string
	ProductTitle     string
	QuantityKg       float64
	PricePerKg       float64
	TotalAmount      float64
	CommissionAmount float64
	PaymentMethod    string
	IssuedAt         time.Time
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><title>Invoice {{.OrderNumber}}</title></head>
<body>
	<h1>Agrimandi Invoice</h1>
	<p>Order: {{.OrderNumber}}<br>Transaction: {{.TransactionID}}<br>Issued: {{.IssuedAt.Format "02 Jan 2006 15:04"}}</p>
	<p>Seller: {{.FarmerName}}<br>Buyer: {{.BuyerName}}</p>
	<table border="1" cellpadding="6">
		<tr><th>Product</th><th>Quantity (kg)</th><th>Price/kg</th><th>Total</th></tr>
		<tr><td>{{.ProductTitle}}</td><td>{{printf "%.2f" .QuantityKg}}</td><td>{{printf "%.2f" .PricePerKg}}</td><td>{{printf "%.2f" .TotalAmount}}</td></tr>
	</table>
	<p>Platform commission: {{printf "%.2f" .CommissionAmount}}<br>Payment method: {{.PaymentMethod}}</p>
</body>
</html>
`))

// Render writes the invoice document into dir and returns its storage
// location. Idempotent on order number: re-rendering overwrites the
// same file.
func Render(dir string, d Data) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("invoice_%s.html", d.OrderNumber))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create invoice file: %w", err)
	}
	defer f.Close()

	if err := invoiceTmpl.Execute(f, d); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return path, nil
}

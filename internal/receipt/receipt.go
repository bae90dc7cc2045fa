// Package receipt renders the read-only record of a completed checkout.
package receipt

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
)

type Receipt struct {
	OrderNumber string
	IssuedAt    time.Time
	Lines       []Line
	Total       domain.Money
	ItemCount   int
}

type Line struct {
	ProductID int64
	Title     string
	Quantity  int
	UnitPrice domain.Money
	Subtotal  domain.Money
}

// New snapshots cart into a receipt. Later changes to cart do not affect it.
func New(cart domain.Cart, orderNumber string, issuedAt time.Time) Receipt {
	r := Receipt{
		OrderNumber: orderNumber,
		IssuedAt:    issuedAt,
		Lines:       make([]Line, 0, len(cart.Lines)),
		Total:       cart.Total(),
		ItemCount:   cart.ItemCount(),
	}

	for _, l := range cart.Lines {
		r.Lines = append(r.Lines, Line{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			Subtotal:  l.Subtotal(),
		})
	}

	return r
}

func (r Receipt) FileName() string {
	return fmt.Sprintf("receipt-%s.txt", r.OrderNumber)
}

var funcs = map[string]any{
	"price": FormatPrice,
	"date":  func(t time.Time) string { return t.Format("1/2/2006") },
}

var textTmpl = template.Must(template.New("receipt.txt").Funcs(funcs).Parse(`eStore - Order Receipt
Order #{{.OrderNumber}}
Date: {{date .IssuedAt}}
----------------------------------------

Items:
{{range .Lines}}
{{.Title}}
Qty: {{.Quantity}} x {{price .UnitPrice}}
Subtotal: {{price .Subtotal}}
{{end}}
----------------------------------------
Total: {{price .Total}}

Thank you for shopping with us!
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("receipt.html").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt - Order #{{.OrderNumber}}</title>
<style>
.receipt { font-family: Arial, sans-serif; max-width: 400px; margin: 0 auto; padding: 20px; }
.receipt-header, .receipt-footer { text-align: center; }
.receipt-items { border-top: 1px dashed #ccc; border-bottom: 1px dashed #ccc; padding: 20px 0; margin: 20px 0; }
.receipt-item, .receipt-total { display: flex; justify-content: space-between; margin-bottom: 10px; }
.receipt-total { font-weight: bold; }
@media print { body { margin: 0; padding: 20px; } }
</style>
</head>
<body>
<div class="receipt">
  <div class="receipt-header">
    <p>Order #{{.OrderNumber}}</p>
    <p>{{date .IssuedAt}}</p>
  </div>
  <div class="receipt-items">
  {{- range .Lines}}
    <div class="receipt-item">
      <div>
        <p>{{.Title}}</p>
        <p>Qty: {{.Quantity}} x {{price .UnitPrice}}</p>
      </div>
      <p>{{price .Subtotal}}</p>
    </div>
  {{- end}}
  </div>
  <div class="receipt-total"><span>Total</span><span>{{price .Total}}</span></div>
  <div class="receipt-footer">
    <p>Thank you for shopping with us!</p>
  </div>
</div>
</body>
</html>
`))

// Text renders the downloadable plain-text receipt.
func (r Receipt) Text() (string, error) {
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("textTmpl.Execute: %w", err)
	}
	return buf.String(), nil
}

// HTML renders the printable receipt page.
func (r Receipt) HTML() (string, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("htmlTmpl.Execute: %w", err)
	}
	return buf.String(), nil
}

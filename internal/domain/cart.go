package domain

import (
	"time"

	"golang.org/x/text/currency"
)

// MaxQuantityPerItem caps the quantity of a single cart line.
const MaxQuantityPerItem = 100

type Cart struct {
	OwnerID  string
	Currency currency.Unit
	Lines    []CartLine
}

type CartLine struct {
	ProductID int64
	Title     string
	Thumbnail string
	Category  string
	Price     Money
	Quantity  int

	AddedAt time.Time
}

func (l CartLine) Subtotal() Money {
	return l.Price.Mul(l.Quantity)
}

// Total is recomputed from the lines on every call and never stored.
func (c Cart) Total() Money {
	total := ZeroMoney(c.Currency)
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities across lines.
func (c Cart) ItemCount() int {
	var n int
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Line(productID int64) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

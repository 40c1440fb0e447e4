// Package ticket renders an order into the fixed-width plain-text layout
// used by 58mm receipt printers.
package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/ordena-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

const width = 32

// Row is one grouped ticket line: same product, same dough variant.
type Row struct {
	Quantity int
	Name     string
	Dough    string
	Subtotal decimal.Decimal
}

// GroupLines folds an order's flat item snapshot into ticket rows, keyed
// by (menu item, dough), first-seen order preserved.
func GroupLines(items []store.OrderLine) []Row {
	type key struct {
		menuItemID string
		dough      string
	}
	index := make(map[key]int)
	var rows []Row

	for _, it := range items {
		k := key{menuItemID: it.MenuItemID, dough: it.Dough}
		if i, ok := index[k]; ok {
			rows[i].Quantity++
			rows[i].Subtotal = rows[i].Subtotal.Add(it.Price)
			continue
		}
		index[k] = len(rows)
		rows = append(rows, Row{
			Quantity: 1,
			Name:     it.Name,
			Dough:    it.Dough,
			Subtotal: it.Price,
		})
	}
	return rows
}

// RenderOrder produces the printable ticket for an order.
func RenderOrder(restaurantName string, o store.Order) string {
	return render(restaurantName, o.TableNumber, o.CreatedAt, GroupLines(o.Items), o.Total)
}

func render(header, tableNumber string, createdAt time.Time, rows []Row, total decimal.Decimal) string {
	var b strings.Builder
	rule := strings.Repeat("-", width)

	b.WriteString(center(strings.ToUpper(header)) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(pair(fmt.Sprintf("Mesa: %s", tableNumber), createdAt.Format("02/01 15:04")) + "\n")
	b.WriteString(rule + "\n")

	for _, row := range rows {
		name := row.Name
		if row.Dough != "" {
			name = fmt.Sprintf("%s (%s)", name, row.Dough)
		}
		b.WriteString(pair(fmt.Sprintf("%2dx %s", row.Quantity, name), row.Subtotal.StringFixed(2)) + "\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString(pair("TOTAL", "$"+total.StringFixed(2)) + "\n")
	return b.String()
}

// pair left-aligns a label and right-aligns a value on one ticket line,
// truncating the label if the two would collide.
func pair(left, right string) string {
	max := width - len(right) - 1
	if len(left) > max {
		left = left[:max]
	}
	return left + strings.Repeat(" ", width-len(left)-len(right)) + right
}

func center(s string) string {
	if len(s) >= width {
		return s[:width]
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

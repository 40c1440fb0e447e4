// Package cart implements the client cart: a flat, insertion-ordered list
// of single-unit lines with a pure grouping function over it. Quantity is
// represented by repetition, not a count field, so decrementing a group
// always maps to removing exactly one underlying line.
package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ordena-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

var ErrZeroQuantity = errors.New("at least one unit must be selected")

// Line is one unit of a product. Price is snapshotted when the line is
// added and never re-read from the catalog, so a concurrent menu price
// edit cannot change an order's total.
type Line struct {
	ID         uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      decimal.Decimal
	Dough      string
}

// GroupKey identifies a display group: same product, same variant.
type GroupKey struct {
	MenuItemID uuid.UUID
	Dough      string
}

// GroupedRow is a derived display unit. LineIDs keeps the constituent
// lines in insertion order so a decrement can remove the most recently
// added one.
type GroupedRow struct {
	Key        GroupKey
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	TotalPrice decimal.Decimal
	LineIDs    []uuid.UUID
}

// Cart holds the flat line list. It is single-owner: one cart per session,
// no concurrent writers.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// AddUnit appends one line and returns it.
func (c *Cart) AddUnit(menuItemID uuid.UUID, name string, price decimal.Decimal, dough string) Line {
	line := Line{
		ID:         uuid.New(),
		MenuItemID: menuItemID,
		Name:       name,
		Price:      price,
		Dough:      dough,
	}
	c.lines = append(c.lines, line)
	return line
}

// BulkSelection is the bulk-add modal result. Pupusas take independent
// counts per dough; every other category takes a single plain count.
type BulkSelection struct {
	Maiz  int
	Arroz int
	Plain int
}

// AddBulk performs AddUnit count-many times per chosen variant. A zero
// total selection is rejected.
func (c *Cart) AddBulk(menuItemID uuid.UUID, name string, price decimal.Decimal, category string, sel BulkSelection) error {
	if category == enum.CategoryPupusas {
		if sel.Maiz+sel.Arroz <= 0 {
			return ErrZeroQuantity
		}
		for i := 0; i < sel.Maiz; i++ {
			c.AddUnit(menuItemID, name, price, enum.DoughMaiz)
		}
		for i := 0; i < sel.Arroz; i++ {
			c.AddUnit(menuItemID, name, price, enum.DoughArroz)
		}
		return nil
	}

	if sel.Plain <= 0 {
		return ErrZeroQuantity
	}
	for i := 0; i < sel.Plain; i++ {
		c.AddUnit(menuItemID, name, price, "")
	}
	return nil
}

// RemoveLine removes exactly one line by ID. Returns false if the line is
// not in the cart.
func (c *Cart) RemoveLine(id uuid.UUID) bool {
	for i, line := range c.lines {
		if line.ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// DecrementGroup removes the most recently added line of the group, so a
// "+" immediately followed by a "−" nets to a no-op.
func (c *Cart) DecrementGroup(key GroupKey) bool {
	for i := len(c.lines) - 1; i >= 0; i-- {
		line := c.lines[i]
		if line.MenuItemID == key.MenuItemID && line.Dough == key.Dough {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Group folds the flat line list into display rows. It is a pure function
// of the line sequence: same lines in, same rows out, first-seen group
// order preserved.
func (c *Cart) Group() []GroupedRow {
	index := make(map[GroupKey]int)
	var rows []GroupedRow

	for _, line := range c.lines {
		key := GroupKey{MenuItemID: line.MenuItemID, Dough: line.Dough}
		if i, ok := index[key]; ok {
			rows[i].Quantity++
			rows[i].TotalPrice = rows[i].TotalPrice.Add(line.Price)
			rows[i].LineIDs = append(rows[i].LineIDs, line.ID)
			continue
		}
		index[key] = len(rows)
		rows = append(rows, GroupedRow{
			Key:        key,
			Name:       line.Name,
			UnitPrice:  line.Price,
			Quantity:   1,
			TotalPrice: line.Price,
			LineIDs:    []uuid.UUID{line.ID},
		})
	}
	return rows
}

// Total is the sum of all line prices. It always equals the sum of
// Group() row totals.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range c.lines {
		sum = sum.Add(line.Price)
	}
	return sum
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the flat line list, e.g. for order submission.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

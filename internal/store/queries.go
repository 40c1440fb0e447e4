package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/jackc/pgx/v5"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same query set can
// run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// --- Restaurants ---

const getRestaurantBySlug = `
SELECT id, slug, name, logo_url, owner_id, status, created_at
FROM restaurants
WHERE slug = $1
`

func (q *Queries) GetRestaurantBySlug(ctx context.Context, slug string) (Restaurant, error) {
	row := q.db.QueryRow(ctx, getRestaurantBySlug, slug)
	return scanRestaurant(row)
}

const getRestaurant = `
SELECT id, slug, name, logo_url, owner_id, status, created_at
FROM restaurants
WHERE id = $1
`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	row := q.db.QueryRow(ctx, getRestaurant, id)
	return scanRestaurant(row)
}

type CreateRestaurantParams struct {
	Slug    string
	Name    string
	LogoURL string
	OwnerID uuid.UUID
}

const createRestaurant = `
INSERT INTO restaurants (slug, name, logo_url, owner_id, status)
VALUES ($1, $2, $3, $4, 'active')
RETURNING id, slug, name, logo_url, owner_id, status, created_at
`

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	row := q.db.QueryRow(ctx, createRestaurant, arg.Slug, arg.Name, arg.LogoURL, arg.OwnerID)
	return scanRestaurant(row)
}

const listRestaurantsByOwner = `
SELECT id, slug, name, logo_url, owner_id, status, created_at
FROM restaurants
WHERE owner_id = $1
ORDER BY created_at
`

func (q *Queries) ListRestaurantsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Restaurant, error) {
	rows, err := q.db.Query(ctx, listRestaurantsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Menu items ---

type CreateMenuItemParams struct {
	RestaurantID uuid.UUID
	Name         string
	Category     string
	Price        decimal.Decimal
	ImageURL     string
}

const createMenuItem = `
INSERT INTO menu_items (restaurant_id, name, category, price, is_available, image_url)
VALUES ($1, $2, $3, $4, TRUE, $5)
RETURNING id, restaurant_id, name, category, price, is_available, image_url, created_at, updated_at
`

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.RestaurantID, arg.Name, arg.Category, decimalToNumeric(arg.Price), arg.ImageURL)
	return scanMenuItem(row)
}

type ListMenuItemsParams struct {
	RestaurantID  uuid.UUID
	OnlyAvailable bool
}

const listMenuItems = `
SELECT id, restaurant_id, name, category, price, is_available, image_url, created_at, updated_at
FROM menu_items
WHERE restaurant_id = $1
  AND (NOT $2::boolean OR is_available)
ORDER BY category, name
`

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, arg.RestaurantID, arg.OnlyAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type GetMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

const getMenuItem = `
SELECT id, restaurant_id, name, category, price, is_available, image_url, created_at, updated_at
FROM menu_items
WHERE id = $1 AND restaurant_id = $2
`

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.RestaurantID)
	return scanMenuItem(row)
}

type UpdateMenuItemPriceParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Price        decimal.Decimal
}

const updateMenuItemPrice = `
UPDATE menu_items
SET price = $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING id, restaurant_id, name, category, price, is_available, image_url, created_at, updated_at
`

func (q *Queries) UpdateMenuItemPrice(ctx context.Context, arg UpdateMenuItemPriceParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItemPrice, arg.ID, arg.RestaurantID, decimalToNumeric(arg.Price))
	return scanMenuItem(row)
}

type UpdateMenuItemAvailabilityParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	IsAvailable  bool
}

const updateMenuItemAvailability = `
UPDATE menu_items
SET is_available = $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING id, restaurant_id, name, category, price, is_available, image_url, created_at, updated_at
`

func (q *Queries) UpdateMenuItemAvailability(ctx context.Context, arg UpdateMenuItemAvailabilityParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItemAvailability, arg.ID, arg.RestaurantID, arg.IsAvailable)
	return scanMenuItem(row)
}

// --- Orders ---

type CreateOrderParams struct {
	RestaurantID uuid.UUID
	TableNumber  string
	Status       string
	Total        decimal.Decimal
	Items        []OrderLine
}

const createOrder = `
INSERT INTO orders (restaurant_id, table_number, status, total, items)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, restaurant_id, table_number, status, total, items, created_at, updated_at
`

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	itemsJSON, err := json.Marshal(arg.Items)
	if err != nil {
		return Order{}, fmt.Errorf("marshal items: %w", err)
	}
	row := q.db.QueryRow(ctx, createOrder,
		arg.RestaurantID, arg.TableNumber, arg.Status, decimalToNumeric(arg.Total), itemsJSON)
	return scanOrder(row)
}

type GetOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

const getOrder = `
SELECT id, restaurant_id, table_number, status, total, items, created_at, updated_at
FROM orders
WHERE id = $1 AND restaurant_id = $2
`

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, arg.ID, arg.RestaurantID)
	return scanOrder(row)
}

const getOrderByID = `
SELECT id, restaurant_id, table_number, status, total, items, created_at, updated_at
FROM orders
WHERE id = $1
`

// GetOrderByID is the tracker point read: the order ID itself is the
// capability, no tenant scoping applies.
func (q *Queries) GetOrderByID(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByID, id)
	return scanOrder(row)
}

const listActiveOrders = `
SELECT id, restaurant_id, table_number, status, total, items, created_at, updated_at
FROM orders
WHERE restaurant_id = $1
  AND status NOT IN ('delivered', 'cancelled')
ORDER BY created_at ASC
`

// ListActiveOrders returns the kitchen's active list: non-terminal orders,
// oldest first.
func (q *Queries) ListActiveOrders(ctx context.Context, restaurantID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listActiveOrders, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Status       string
	FromStatus   string
}

const updateOrderStatus = `
UPDATE orders
SET status = $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2 AND status = $4
RETURNING id, restaurant_id, table_number, status, total, items, created_at, updated_at
`

// UpdateOrderStatus performs a compare-and-set on the status column.
// pgx.ErrNoRows means the status changed between the caller's read and this
// write.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.RestaurantID, arg.Status, arg.FromStatus)
	return scanOrder(row)
}

// --- Users ---

const getUserByEmail = `
SELECT id, restaurant_id, email, hashed_password, role, created_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	return scanUser(row)
}

const getUser = `
SELECT id, restaurant_id, email, hashed_password, role, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUser, id)
	return scanUser(row)
}

type CreateUserParams struct {
	RestaurantID   uuid.UUID
	Email          string
	HashedPassword string
	Role           string
}

const createUser = `
INSERT INTO users (restaurant_id, email, hashed_password, role)
VALUES ($1, $2, $3, $4)
RETURNING id, restaurant_id, email, hashed_password, role, created_at
`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.RestaurantID, arg.Email, arg.HashedPassword, arg.Role)
	return scanUser(row)
}

// --- Scan helpers ---

func scanRestaurant(row pgx.Row) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.Slug, &r.Name, &r.LogoURL, &r.OwnerID, &r.Status, &r.CreatedAt)
	return r, err
}

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	var price pgtype.Numeric
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Category, &price,
		&m.IsAvailable, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return MenuItem{}, err
	}
	m.Price = numericToDecimal(price)
	return m, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var total pgtype.Numeric
	var items []byte
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableNumber, &o.Status, &total,
		&items, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Total = numericToDecimal(total)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return Order{}, fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	return o, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.RestaurantID, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt)
	return u, err
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusCooking   = "cooking"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	RestaurantStatusActive   = "active"
	RestaurantStatusInactive = "inactive"
)

// ── Catalog labels (CHECK constrained in DB) ──

const (
	CategoryPupusas = "pupusas"
	CategoryBebidas = "bebidas"
	CategoryExtras  = "extras"
	CategoryPostres = "postres"
)

// Dough variants only apply to the pupusas category.
const (
	DoughMaiz  = "maiz"
	DoughArroz = "arroz"
)

// ── User roles ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleKitchen = "KITCHEN"
)

// Seed creates a demo tenant: an owner, a kitchen account, the restaurant
// and its starting menu. Intended for local development.
package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ordena-pos/api/internal/config"
	"github.com/ordena-pos/api/internal/enum"
	"github.com/ordena-pos/api/internal/store"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	queries := store.New(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	owner, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email:          "owner@pupuseria.dev",
		HashedPassword: string(hash),
		Role:           enum.UserRoleOwner,
	})
	if err != nil {
		log.Fatalf("create owner: %v", err)
	}

	restaurant, err := queries.CreateRestaurant(ctx, store.CreateRestaurantParams{
		Slug:    "pupuseria-la-bendicion",
		Name:    "Pupusería La Bendición",
		OwnerID: owner.ID,
	})
	if err != nil {
		log.Fatalf("create restaurant: %v", err)
	}

	kitchenHash, err := bcrypt.GenerateFromPassword([]byte("cocina123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	if _, err := queries.CreateUser(ctx, store.CreateUserParams{
		RestaurantID:   restaurant.ID,
		Email:          "cocina@pupuseria.dev",
		HashedPassword: string(kitchenHash),
		Role:           enum.UserRoleKitchen,
	}); err != nil {
		log.Fatalf("create kitchen user: %v", err)
	}

	menu := []store.CreateMenuItemParams{
		{Name: "Pupusa Revuelta", Category: enum.CategoryPupusas, Price: decimal.NewFromFloat(1.00)},
		{Name: "Pupusa de Queso", Category: enum.CategoryPupusas, Price: decimal.NewFromFloat(1.00)},
		{Name: "Pupusa de Frijol con Queso", Category: enum.CategoryPupusas, Price: decimal.NewFromFloat(1.25)},
		{Name: "Horchata", Category: enum.CategoryBebidas, Price: decimal.NewFromFloat(0.75)},
		{Name: "Coca-Cola", Category: enum.CategoryBebidas, Price: decimal.NewFromFloat(1.00)},
		{Name: "Curtido Extra", Category: enum.CategoryExtras, Price: decimal.NewFromFloat(0.50)},
		{Name: "Nuégados", Category: enum.CategoryPostres, Price: decimal.NewFromFloat(1.50)},
	}
	for _, item := range menu {
		item.RestaurantID = restaurant.ID
		if _, err := queries.CreateMenuItem(ctx, item); err != nil {
			log.Fatalf("create menu item %q: %v", item.Name, err)
		}
	}

	log.Printf("Seeded restaurant %q (slug %s)", restaurant.Name, restaurant.Slug)
	log.Printf("Owner login: owner@pupuseria.dev / owner123")
	log.Printf("Kitchen login: cocina@pupuseria.dev / cocina123")
}

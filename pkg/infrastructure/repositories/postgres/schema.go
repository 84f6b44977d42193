package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements is the persisted layout, applied in order by
// ApplySchema. Specs live in one table per category so each row is
// fully typed; user_builds soft-delete via is_saved so order_items
// referencing a build always resolve.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS components (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		category_id UUID NOT NULL REFERENCES categories(id),
		name TEXT NOT NULL,
		brand TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		status TEXT NOT NULL DEFAULT 'active',
		low_stock_threshold INTEGER NOT NULL DEFAULT 0,
		vendor TEXT NOT NULL DEFAULT '',
		image_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_components_category ON components(category_id)`,

	`CREATE TABLE IF NOT EXISTS cpu_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		socket TEXT NOT NULL DEFAULT '',
		cores INTEGER NOT NULL DEFAULT 0,
		threads INTEGER NOT NULL DEFAULT 0,
		base_clock DOUBLE PRECISION NOT NULL DEFAULT 0,
		boost_clock DOUBLE PRECISION NOT NULL DEFAULT 0,
		tdp INTEGER NOT NULL DEFAULT 0,
		integrated_graphics TEXT NOT NULL DEFAULT '',
		process TEXT NOT NULL DEFAULT '',
		architecture TEXT NOT NULL DEFAULT '',
		performance_score INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS motherboard_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		socket TEXT NOT NULL DEFAULT '',
		chipset TEXT NOT NULL DEFAULT '',
		form_factor TEXT NOT NULL DEFAULT '',
		memory_slots INTEGER NOT NULL DEFAULT 0,
		memory_type TEXT NOT NULL DEFAULT '',
		max_memory_gb INTEGER NOT NULL DEFAULT 0,
		max_memory_speed_mhz INTEGER NOT NULL DEFAULT 0,
		storage_support TEXT[] NOT NULL DEFAULT '{}',
		pcie_slots TEXT[] NOT NULL DEFAULT '{}',
		nvme_slots INTEGER NOT NULL DEFAULT 0,
		m2_slots INTEGER NOT NULL DEFAULT 0,
		sata_ports INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS memory_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT '',
		capacity_gb INTEGER NOT NULL DEFAULT 0,
		speed_mhz INTEGER NOT NULL DEFAULT 0,
		modules TEXT NOT NULL DEFAULT '',
		cas_latency TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS gpu_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		chipset TEXT NOT NULL DEFAULT '',
		memory_size TEXT NOT NULL DEFAULT '',
		core_clock TEXT NOT NULL DEFAULT '',
		boost_clock TEXT NOT NULL DEFAULT '',
		tdp INTEGER NOT NULL DEFAULT 0,
		length INTEGER NOT NULL DEFAULT 0,
		ports TEXT[] NOT NULL DEFAULT '{}',
		performance_score INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS psu_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		wattage INTEGER NOT NULL DEFAULT 0,
		efficiency_rating TEXT NOT NULL DEFAULT '',
		efficiency_level TEXT NOT NULL DEFAULT '',
		modular TEXT NOT NULL DEFAULT '',
		form_factor TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS case_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		form_factor TEXT NOT NULL DEFAULT '',
		form_factor_support TEXT[] NOT NULL DEFAULT '{}',
		max_gpu_length INTEGER NOT NULL DEFAULT 0,
		max_cpu_cooler_height INTEGER NOT NULL DEFAULT 0,
		psu_shroud BOOLEAN NOT NULL DEFAULT FALSE,
		side_panel TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS cpu_cooler_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT '',
		fan_rpm TEXT NOT NULL DEFAULT '',
		noise_level TEXT NOT NULL DEFAULT '',
		height INTEGER NOT NULL DEFAULT 0,
		compatible_sockets TEXT[] NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS storage_specs (
		component_id UUID PRIMARY KEY REFERENCES components(id) ON DELETE CASCADE,
		capacity_gb INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL DEFAULT '',
		interface TEXT NOT NULL DEFAULT '',
		form_factor TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS user_builds_temp (
		user_id TEXT PRIMARY KEY,
		components JSONB NOT NULL DEFAULT '{}',
		source_build_id UUID,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_builds (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		components JSONB NOT NULL DEFAULT '{}',
		total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		power_usage INTEGER NOT NULL DEFAULT 0,
		compatibility TEXT NOT NULL DEFAULT 'incomplete',
		image TEXT NOT NULL DEFAULT '',
		is_saved BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_builds_user ON user_builds(user_id) WHERE is_saved`,

	`CREATE TABLE IF NOT EXISTS cart_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		component_id UUID REFERENCES components(id),
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		build_id UUID REFERENCES user_builds(id),
		build_name TEXT NOT NULL DEFAULT '',
		build_total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		bundle_item_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_component
		ON cart_items(user_id, component_id) WHERE component_id IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_method TEXT NOT NULL DEFAULT 'cod',
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		paid_at TIMESTAMPTZ,
		shipped_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		refunded_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		component_id UUID,
		build_id UUID REFERENCES user_builds(id),
		quantity INTEGER NOT NULL DEFAULT 1,
		price_each NUMERIC(12,2) NOT NULL DEFAULT 0,
		component_name TEXT NOT NULL DEFAULT '',
		component_image TEXT NOT NULL DEFAULT '',
		component_category TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
}

// seedCategories inserts the fixed category set; reruns are no-ops.
const seedCategories = `
	INSERT INTO categories (slug, name) VALUES
		('cpu', 'Processors'),
		('motherboard', 'Motherboards'),
		('memory', 'Memory'),
		('gpu', 'Graphics Cards'),
		('psu', 'Power Supplies'),
		('case', 'Cases'),
		('cpu_cooler', 'CPU Coolers'),
		('storage', 'Storage')
	ON CONFLICT (slug) DO NOTHING`

// ApplySchema creates the tables, indexes and the category rows
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	if _, err := pool.Exec(ctx, seedCategories); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}

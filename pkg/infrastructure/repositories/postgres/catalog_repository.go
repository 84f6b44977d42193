package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// CatalogRepository implements the catalog against Postgres. Specs
// resolution dispatches on the category slug to the matching *_specs
// table; no cross-category probing.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a Postgres catalog repository
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

const componentColumns = `
	c.id, c.category_id, cat.slug, c.name, c.brand, c.price::text, c.stock,
	c.status, c.low_stock_threshold, c.vendor, c.image_path, c.created_at, c.updated_at`

// GetCategoryBySlug returns a category row
func (r *CatalogRepository) GetCategoryBySlug(ctx context.Context, slug entities.Slug) (*entities.Category, error) {
	var category entities.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, name FROM categories WHERE slug = $1`, string(slug)).
		Scan(&category.ID, &category.Slug, &category.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", slug, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", slug, err)
	}
	return &category, nil
}

// GetComponent returns one component row
func (r *CatalogRepository) GetComponent(ctx context.Context, id uuid.UUID) (*entities.Component, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+componentColumns+`
		FROM components c
		JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = $1`, id)
	component, err := scanComponent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("component %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load component %s: %w", id, err)
	}
	return component, nil
}

// ListComponentsByCategory returns the category's components ordered by
// ascending price
func (r *CatalogRepository) ListComponentsByCategory(ctx context.Context, slug entities.Slug) ([]*entities.Component, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+componentColumns+`
		FROM components c
		JOIN categories cat ON cat.id = c.category_id
		WHERE cat.slug = $1
		ORDER BY c.price ASC, c.name ASC`, string(slug))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s components: %w", slug, err)
	}
	defer rows.Close()

	var components []*entities.Component
	for rows.Next() {
		component, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, component)
	}
	return components, rows.Err()
}

// GetSpecs resolves the specs row from the category's table. A missing
// row is (nil, nil).
func (r *CatalogRepository) GetSpecs(ctx context.Context, id uuid.UUID, category entities.Slug) (entities.Specs, error) {
	specs, err := r.querySpecs(ctx, r.pool, id, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s specs for %s: %w", category, id, err)
	}
	return specs, nil
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *CatalogRepository) querySpecs(ctx context.Context, q queryer, id uuid.UUID, category entities.Slug) (entities.Specs, error) {
	var specs entities.Specs
	var err error

	switch category {
	case entities.SlugCPU:
		s := &entities.CPUSpecs{}
		err = q.QueryRow(ctx, `
			SELECT socket, cores, threads, base_clock, boost_clock, tdp,
			       integrated_graphics, process, architecture, performance_score
			FROM cpu_specs WHERE component_id = $1`, id).
			Scan(&s.Socket, &s.Cores, &s.Threads, &s.BaseClockGHz, &s.BoostClockGHz,
				&s.TDP, &s.IntegratedGraphics, &s.Process, &s.Architecture, &s.PerformanceScore)
		specs = s
	case entities.SlugMotherboard:
		s := &entities.MotherboardSpecs{}
		err = q.QueryRow(ctx, `
			SELECT socket, chipset, form_factor, memory_slots, memory_type,
			       max_memory_gb, max_memory_speed_mhz, storage_support,
			       pcie_slots, nvme_slots, m2_slots, sata_ports
			FROM motherboard_specs WHERE component_id = $1`, id).
			Scan(&s.Socket, &s.Chipset, &s.FormFactor, &s.MemorySlots, &s.MemoryType,
				&s.MaxMemoryGB, &s.MaxMemorySpeedMHz, &s.StorageSupport,
				&s.PCIeSlots, &s.NVMeSlots, &s.M2Slots, &s.SATAPorts)
		specs = s
	case entities.SlugMemory:
		s := &entities.MemorySpecs{}
		err = q.QueryRow(ctx, `
			SELECT type, capacity_gb, speed_mhz, modules, cas_latency
			FROM memory_specs WHERE component_id = $1`, id).
			Scan(&s.Type, &s.CapacityGB, &s.SpeedMHz, &s.Modules, &s.CASLatency)
		specs = s
	case entities.SlugGPU:
		s := &entities.GPUSpecs{}
		err = q.QueryRow(ctx, `
			SELECT chipset, memory_size, core_clock, boost_clock, tdp, length,
			       ports, performance_score
			FROM gpu_specs WHERE component_id = $1`, id).
			Scan(&s.Chipset, &s.MemorySize, &s.CoreClock, &s.BoostClock,
				&s.TDP, &s.LengthMM, &s.Ports, &s.PerformanceScore)
		specs = s
	case entities.SlugPSU:
		s := &entities.PSUSpecs{}
		err = q.QueryRow(ctx, `
			SELECT wattage, efficiency_rating, efficiency_level, modular, form_factor
			FROM psu_specs WHERE component_id = $1`, id).
			Scan(&s.Wattage, &s.EfficiencyRating, &s.EfficiencyLevel, &s.Modular, &s.FormFactor)
		specs = s
	case entities.SlugCase:
		s := &entities.CaseSpecs{}
		err = q.QueryRow(ctx, `
			SELECT form_factor, form_factor_support, max_gpu_length,
			       max_cpu_cooler_height, psu_shroud, side_panel
			FROM case_specs WHERE component_id = $1`, id).
			Scan(&s.FormFactor, &s.FormFactorSupport, &s.MaxGPULengthMM,
				&s.MaxCPUCoolerHeightMM, &s.PSUShroud, &s.SidePanel)
		specs = s
	case entities.SlugCPUCooler:
		s := &entities.CoolerSpecs{}
		err = q.QueryRow(ctx, `
			SELECT type, fan_rpm, noise_level, height, compatible_sockets
			FROM cpu_cooler_specs WHERE component_id = $1`, id).
			Scan(&s.Type, &s.FanRPM, &s.NoiseLevel, &s.HeightMM, &s.CompatibleSockets)
		specs = s
	case entities.SlugStorage:
		s := &entities.StorageSpecs{}
		err = q.QueryRow(ctx, `
			SELECT capacity_gb, type, interface, form_factor
			FROM storage_specs WHERE component_id = $1`, id).
			Scan(&s.CapacityGB, &s.Type, &s.Interface, &s.FormFactor)
		specs = s
	default:
		return nil, fmt.Errorf("%w: no specs table for category %q", entities.ErrValidation, category)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return specs, nil
}

// CreateComponent inserts a component row
func (r *CatalogRepository) CreateComponent(ctx context.Context, component *entities.Component) error {
	category, err := r.GetCategoryBySlug(ctx, component.Category)
	if err != nil {
		return err
	}
	component.CategoryID = category.ID

	_, err = r.pool.Exec(ctx, `
		INSERT INTO components (id, category_id, name, brand, price, stock,
		                        status, low_stock_threshold, vendor, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		component.ID, component.CategoryID, component.Name, component.Brand,
		component.Price.String(), component.Stock, string(component.Status),
		component.LowStockThreshold, component.Vendor, component.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to insert component: %w", err)
	}
	return nil
}

// UpdateComponent rewrites a component row
func (r *CatalogRepository) UpdateComponent(ctx context.Context, component *entities.Component) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE components
		SET name = $2, brand = $3, price = $4, stock = $5, status = $6,
		    low_stock_threshold = $7, vendor = $8, image_path = $9,
		    updated_at = NOW()
		WHERE id = $1`,
		component.ID, component.Name, component.Brand, component.Price.String(),
		component.Stock, string(component.Status), component.LowStockThreshold,
		component.Vendor, component.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %s: %w", component.ID, entities.ErrNotFound)
	}
	return nil
}

// DeleteComponent removes a component and, via cascade, its specs row
func (r *CatalogRepository) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM components WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %s: %w", id, entities.ErrNotFound)
	}
	return nil
}

// UpsertSpecs writes the component's specs row in its category table
func (r *CatalogRepository) UpsertSpecs(ctx context.Context, id uuid.UUID, specs entities.Specs) error {
	var err error
	switch s := specs.(type) {
	case *entities.CPUSpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO cpu_specs (component_id, socket, cores, threads, base_clock,
			                       boost_clock, tdp, integrated_graphics, process,
			                       architecture, performance_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (component_id) DO UPDATE SET
				socket = EXCLUDED.socket, cores = EXCLUDED.cores,
				threads = EXCLUDED.threads, base_clock = EXCLUDED.base_clock,
				boost_clock = EXCLUDED.boost_clock, tdp = EXCLUDED.tdp,
				integrated_graphics = EXCLUDED.integrated_graphics,
				process = EXCLUDED.process, architecture = EXCLUDED.architecture,
				performance_score = EXCLUDED.performance_score`,
			id, s.Socket, s.Cores, s.Threads, s.BaseClockGHz, s.BoostClockGHz,
			s.TDP, s.IntegratedGraphics, s.Process, s.Architecture, s.PerformanceScore)
	case *entities.MotherboardSpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO motherboard_specs (component_id, socket, chipset, form_factor,
			                               memory_slots, memory_type, max_memory_gb,
			                               max_memory_speed_mhz, storage_support,
			                               pcie_slots, nvme_slots, m2_slots, sata_ports)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (component_id) DO UPDATE SET
				socket = EXCLUDED.socket, chipset = EXCLUDED.chipset,
				form_factor = EXCLUDED.form_factor, memory_slots = EXCLUDED.memory_slots,
				memory_type = EXCLUDED.memory_type, max_memory_gb = EXCLUDED.max_memory_gb,
				max_memory_speed_mhz = EXCLUDED.max_memory_speed_mhz,
				storage_support = EXCLUDED.storage_support,
				pcie_slots = EXCLUDED.pcie_slots, nvme_slots = EXCLUDED.nvme_slots,
				m2_slots = EXCLUDED.m2_slots, sata_ports = EXCLUDED.sata_ports`,
			id, s.Socket, s.Chipset, s.FormFactor, s.MemorySlots, s.MemoryType,
			s.MaxMemoryGB, s.MaxMemorySpeedMHz, s.StorageSupport, s.PCIeSlots,
			s.NVMeSlots, s.M2Slots, s.SATAPorts)
	case *entities.MemorySpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO memory_specs (component_id, type, capacity_gb, speed_mhz,
			                          modules, cas_latency)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (component_id) DO UPDATE SET
				type = EXCLUDED.type, capacity_gb = EXCLUDED.capacity_gb,
				speed_mhz = EXCLUDED.speed_mhz, modules = EXCLUDED.modules,
				cas_latency = EXCLUDED.cas_latency`,
			id, s.Type, s.CapacityGB, s.SpeedMHz, s.Modules, s.CASLatency)
	case *entities.GPUSpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO gpu_specs (component_id, chipset, memory_size, core_clock,
			                       boost_clock, tdp, length, ports, performance_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (component_id) DO UPDATE SET
				chipset = EXCLUDED.chipset, memory_size = EXCLUDED.memory_size,
				core_clock = EXCLUDED.core_clock, boost_clock = EXCLUDED.boost_clock,
				tdp = EXCLUDED.tdp, length = EXCLUDED.length, ports = EXCLUDED.ports,
				performance_score = EXCLUDED.performance_score`,
			id, s.Chipset, s.MemorySize, s.CoreClock, s.BoostClock, s.TDP,
			s.LengthMM, s.Ports, s.PerformanceScore)
	case *entities.PSUSpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO psu_specs (component_id, wattage, efficiency_rating,
			                       efficiency_level, modular, form_factor)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (component_id) DO UPDATE SET
				wattage = EXCLUDED.wattage,
				efficiency_rating = EXCLUDED.efficiency_rating,
				efficiency_level = EXCLUDED.efficiency_level,
				modular = EXCLUDED.modular, form_factor = EXCLUDED.form_factor`,
			id, s.Wattage, s.EfficiencyRating, s.EfficiencyLevel, s.Modular, s.FormFactor)
	case *entities.CaseSpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO case_specs (component_id, form_factor, form_factor_support,
			                        max_gpu_length, max_cpu_cooler_height,
			                        psu_shroud, side_panel)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (component_id) DO UPDATE SET
				form_factor = EXCLUDED.form_factor,
				form_factor_support = EXCLUDED.form_factor_support,
				max_gpu_length = EXCLUDED.max_gpu_length,
				max_cpu_cooler_height = EXCLUDED.max_cpu_cooler_height,
				psu_shroud = EXCLUDED.psu_shroud, side_panel = EXCLUDED.side_panel`,
			id, s.FormFactor, s.FormFactorSupport, s.MaxGPULengthMM,
			s.MaxCPUCoolerHeightMM, s.PSUShroud, s.SidePanel)
	case *entities.CoolerSpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO cpu_cooler_specs (component_id, type, fan_rpm, noise_level,
			                              height, compatible_sockets)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (component_id) DO UPDATE SET
				type = EXCLUDED.type, fan_rpm = EXCLUDED.fan_rpm,
				noise_level = EXCLUDED.noise_level, height = EXCLUDED.height,
				compatible_sockets = EXCLUDED.compatible_sockets`,
			id, s.Type, s.FanRPM, s.NoiseLevel, s.HeightMM, s.CompatibleSockets)
	case *entities.StorageSpecs:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO storage_specs (component_id, capacity_gb, type, interface,
			                           form_factor)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (component_id) DO UPDATE SET
				capacity_gb = EXCLUDED.capacity_gb, type = EXCLUDED.type,
				interface = EXCLUDED.interface, form_factor = EXCLUDED.form_factor`,
			id, s.CapacityGB, s.Type, s.Interface, s.FormFactor)
	default:
		return fmt.Errorf("%w: unsupported specs type %T", entities.ErrValidation, specs)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert specs: %w", err)
	}
	return nil
}

// scanComponent reads one component row in componentColumns order
func scanComponent(row pgx.Row) (*entities.Component, error) {
	var component entities.Component
	var price string
	err := row.Scan(&component.ID, &component.CategoryID, &component.Category,
		&component.Name, &component.Brand, &price, &component.Stock,
		&component.Status, &component.LowStockThreshold, &component.Vendor,
		&component.ImagePath, &component.CreatedAt, &component.UpdatedAt)
	if err != nil {
		return nil, err
	}
	component.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}
	return &component, nil
}

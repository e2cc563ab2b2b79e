package migrate

import (
	"context"

	"order-engine/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto
	CreateChecks           bool // CHECK constraints for the core invariants
	CreateIndexes          bool // indexes and UNIQUE beyond gorm tags
	CreateFKsViaSQL        bool // FKs via SQL (on top of gorm constraints)
	CreateUpdatedAtTrigger bool // updated_at trigger for orders/payments
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateOrderDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Starting order database migration")

	if opt.CreateExtensions {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("failed to enable pgcrypto", zap.Error(err))
			return err
		}
	}

	log.Info("Creating tables")
	if err := db.AutoMigrate(
		&models.PickupPoint{},
		&models.PickupSlot{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderLine{},
		&models.Payment{},
		&models.BonusEntry{},
		&models.LoyaltyAccount{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_payments_updated ON payments;
CREATE TRIGGER trg_payments_updated
BEFORE UPDATE ON payments
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("failed to create updated_at triggers", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Creating CHECK constraints")

		for name, sql := range map[string]string{
			// Allowed statuses (stored as TEXT).
			"chk_orders_status_allowed": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('PENDING','PROCESSING','PAYED','SHIPPED','DELIVERED','CANCELLED'));`,

			// Exactly one owner: buyer XOR guest session.
			"chk_orders_single_owner": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_single_owner;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_single_owner
  CHECK ((buyer_id IS NULL) <> (session_id IS NULL));`,

			// Totals: final total = subtotal - discount, discount bounded.
			"chk_orders_totals": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_totals;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_totals
  CHECK (discount >= 0 AND discount <= subtotal AND total = subtotal - discount);`,

			"chk_order_lines_quantity_gt_zero": `
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS chk_order_lines_quantity_gt_zero;
ALTER TABLE order_lines
  ADD CONSTRAINT chk_order_lines_quantity_gt_zero
  CHECK (quantity > 0);`,

			"chk_order_lines_price_non_negative": `
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS chk_order_lines_price_non_negative;
ALTER TABLE order_lines
  ADD CONSTRAINT chk_order_lines_price_non_negative
  CHECK (price >= 0);`,

			// Slot counters: both non-negative, sum fixed at 24.
			"chk_pickup_slots_counters": `
ALTER TABLE pickup_slots
  DROP CONSTRAINT IF EXISTS chk_pickup_slots_counters;
ALTER TABLE pickup_slots
  ADD CONSTRAINT chk_pickup_slots_counters
  CHECK (reserved >= 0 AND capacity >= 0 AND reserved + capacity = 24);`,

			"chk_coupons_usage": `
ALTER TABLE coupons
  DROP CONSTRAINT IF EXISTS chk_coupons_usage;
ALTER TABLE coupons
  ADD CONSTRAINT chk_coupons_usage
  CHECK (usage_count >= 0 AND usage_limit >= 0);`,

			"chk_payments_amount_non_negative": `
ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS chk_payments_amount_non_negative;
ALTER TABLE payments
  ADD CONSTRAINT chk_payments_amount_non_negative
  CHECK (amount >= 0);`,

			"chk_bonus_entries_amount_positive": `
ALTER TABLE bonus_entries
  DROP CONSTRAINT IF EXISTS chk_bonus_entries_amount_positive;
ALTER TABLE bonus_entries
  ADD CONSTRAINT chk_bonus_entries_amount_positive
  CHECK (amount > 0);`,
		} {
			if err := db.Exec(sql).Error; err != nil {
				log.Error("failed to create CHECK constraint", zap.String("name", name), zap.Error(err))
				return err
			}
		}
	}

	if opt.CreateIndexes {
		log.Info("Creating indexes")

		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_pickup_slots_point_start
ON pickup_slots (pickup_point_id, starts_at);
`).Error; err != nil {
			log.Error("failed to create ux_pickup_slots_point_start", zap.Error(err))
			return err
		}

		// Storage-level guard for exactly-once loyalty accrual per order.
		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_bonus_entries_order_accrual
ON bonus_entries (order_id)
WHERE type = 'INCREASE' AND order_id IS NOT NULL;
`).Error; err != nil {
			log.Error("failed to create ux_bonus_entries_order_accrual", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_buyer_created
ON orders (buyer_id, created_at DESC);
`).Error; err != nil {
			log.Error("failed to create ix_orders_buyer_created", zap.Error(err))
			return err
		}

		// Open-cart lookups: lines with no order id per owner.
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_order_lines_open_cart
ON order_lines (buyer_id, session_id)
WHERE order_id IS NULL;
`).Error; err != nil {
			log.Error("failed to create ix_order_lines_open_cart", zap.Error(err))
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("Creating foreign keys")

		for name, sql := range map[string]string{
			"fk_order_lines_order": `
ALTER TABLE order_lines
  DROP CONSTRAINT IF EXISTS fk_order_lines_order,
  ADD CONSTRAINT fk_order_lines_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,

			// RESTRICT blocks slot deletion while any order references it.
			"fk_orders_slot": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_slot,
  ADD CONSTRAINT fk_orders_slot
    FOREIGN KEY (slot_id) REFERENCES pickup_slots(id) ON DELETE RESTRICT;`,

			"fk_orders_point": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_point,
  ADD CONSTRAINT fk_orders_point
    FOREIGN KEY (pickup_point_id) REFERENCES pickup_points(id) ON DELETE RESTRICT;`,

			"fk_orders_coupon": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_coupon,
  ADD CONSTRAINT fk_orders_coupon
    FOREIGN KEY (coupon_id) REFERENCES coupons(id) ON DELETE RESTRICT;`,

			"fk_payments_order": `
ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS fk_payments_order,
  ADD CONSTRAINT fk_payments_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,

			"fk_pickup_slots_point": `
ALTER TABLE pickup_slots
  DROP CONSTRAINT IF EXISTS fk_pickup_slots_point,
  ADD CONSTRAINT fk_pickup_slots_point
    FOREIGN KEY (pickup_point_id) REFERENCES pickup_points(id) ON DELETE CASCADE;`,
		} {
			if err := db.Exec(sql).Error; err != nil {
				log.Error("failed to create foreign key", zap.String("name", name), zap.Error(err))
				return err
			}
		}
	}

	log.Info("Order database migration finished")
	return nil
}

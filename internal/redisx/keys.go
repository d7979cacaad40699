package redisx

import "time"

const (
	// Cart hash: cart_{user_id} -> {sku_id: count}
	KeyCart = "cart_%d"

	// Selected set: cart_selected_{user_id} -> {sku_id, ...}
	KeyCartSelected = "cart_selected_%d"

	// Cache status order: order_status:{order_id} -> {"status": ...}
	KeyOrderStatus = "order_status:%s"

	// Browsing history list: history_{user_id} -> [sku_id, ...], newest first
	KeyHistory = "history_%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)

package orders

import "strconv"

const (
	TopicOrderPlaced = "order.placed"
	TopicCartCleanup = "cart.cleanup.requested"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

// UserPartitionKey keeps cleanup requests of one user in order.
func UserPartitionKey(userID int64) []byte { return []byte(strconv.FormatInt(userID, 10)) }

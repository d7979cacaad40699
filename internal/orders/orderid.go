package orders

import (
	"fmt"
	"time"
)

const orderIDTimeLayout = "20060102150405"

// NewOrderID builds yyyyMMddHHmmss followed by the user id zero padded to ten digits.
// Two placements by one user within the same second produce the same id; the
// orders primary key rejects the second one.
func NewOrderID(now time.Time, userID int64) string {
	return now.Format(orderIDTimeLayout) + fmt.Sprintf("%010d", userID)
}

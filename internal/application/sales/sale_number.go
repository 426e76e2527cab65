package sales

import (
	"fmt"
	"math/rand"
	"time"
)

// NumberGenerator genera el número visible de una venta. La unicidad es best
// effort (práctica por día por empresa), no la garantiza el core.
type NumberGenerator func(now time.Time) string

// DefaultNumberGenerator produce números con formato SALE-YYYYMMDD-NNNNN.
func DefaultNumberGenerator(now time.Time) string {
	return fmt.Sprintf("SALE-%s-%05d", now.Format("20060102"), rand.Intn(99999)+1)
}

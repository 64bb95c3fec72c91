package worker

import (
	"strings"

	"github.com/anvesh2019/dhan-trading/src/models"
)

// FindRestingStop returns the actionable intraday stop order protecting symbol
// on the given closing side, or nil if none rests at the broker. When several
// candidates match, the most recently updated one wins so repeated calls are
// deterministic regardless of list order.
func FindRestingStop(orders []*models.Order, symbol string, side models.TransactionType) *models.Order {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))

	var best *models.Order
	for _, order := range orders {
		if !order.Type.IsStopKind() {
			continue
		}

		if order.Product != models.ProductTypeIntraday {
			continue
		}

		if !order.Status.IsActionable() {
			continue
		}

		if order.Symbol != normalized {
			continue
		}

		if order.Side != side {
			continue
		}

		if best == nil || order.UpdatedAt.After(best.UpdatedAt) {
			best = order
		}
	}

	return best
}

// MatchOrderCandidate finds the broker order most likely to correspond to a
// just-placed order when the placement response carried no order id. Candidates
// must match security id (falling back to symbol when the list omits ids),
// quantity and side; ties break on the most recent update time.
func MatchOrderCandidate(orders []*models.Order, securityID, symbol string, quantity int, side models.TransactionType) *models.Order {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))

	var best *models.Order
	for _, order := range orders {
		if order.SecurityID != "" && securityID != "" {
			if order.SecurityID != securityID {
				continue
			}
		} else if order.Symbol != normalized {
			continue
		}

		if order.Quantity != quantity {
			continue
		}

		if order.Side != side {
			continue
		}

		if best == nil || order.UpdatedAt.After(best.UpdatedAt) {
			best = order
		}
	}

	return best
}

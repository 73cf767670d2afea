// Package calculator computes the derived expense settlement over an
// item snapshot. Pure functions only: no state, no I/O.
package calculator

import (
	"sort"

	"github.com/alex-morrisonn/trolly/internal/models"
)

// Summarize computes the fair-split settlement over items.
//
// Only items with a price participate; unpriced items count toward
// neither the total nor any contribution. Each contributor's balance is
// their contributed amount minus the even split of the total across all
// distinct contributors, so balances always sum to zero.
//
// Contributions accumulate in snapshot order and are emitted in
// ascending UserID order, making repeated calls over the same snapshot
// bit-identical.
func Summarize(items []models.Item) models.ExpenseSummary {
	byUser := make(map[string]*models.UserContribution)
	var total float64

	for _, item := range items {
		if item.Price == nil {
			continue
		}
		price := *item.Price
		total += price

		c := byUser[item.UserID]
		if c == nil {
			c = &models.UserContribution{
				UserID:   item.UserID,
				UserName: item.AddedBy,
			}
			byUser[item.UserID] = c
		}
		c.Amount += price
		c.ItemCount++
	}

	ids := make([]string, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var split float64
	if len(ids) > 0 {
		split = total / float64(len(ids))
	}

	contributions := make([]models.UserContribution, 0, len(ids))
	for _, id := range ids {
		c := byUser[id]
		c.Balance = c.Amount - split
		contributions = append(contributions, *c)
	}

	return models.ExpenseSummary{
		TotalAmount:       total,
		SplitAmount:       split,
		UserContributions: contributions,
	}
}

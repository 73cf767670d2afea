package models

// ExpenseSummary is the derived fair-split settlement over one item
// snapshot. Never persisted.
type ExpenseSummary struct {
	// TotalAmount is the sum over all priced items.
	TotalAmount float64

	// SplitAmount is TotalAmount divided by the number of distinct
	// contributors, 0 when there are none.
	SplitAmount float64

	// UserContributions holds one entry per distinct contributing user,
	// in ascending UserID order so repeated calculations are
	// reproducible.
	UserContributions []UserContribution
}

// UserContribution is one user's share of a settlement.
type UserContribution struct {
	UserID   string
	UserName string

	// Amount is the sum of priced items authored by this user.
	Amount float64

	// ItemCount is how many priced items this user added.
	ItemCount int

	// Balance is Amount minus the even split. Positive means the user
	// is owed money, negative means they owe. Balances over all
	// contributors sum to zero.
	Balance float64
}

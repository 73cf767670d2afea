package calculator

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/alex-morrisonn/trolly/internal/models"
)

func priced(userID, userName string, price float64) models.Item {
	return models.Item{
		Name:      "item",
		AddedBy:   userName,
		UserID:    userID,
		Timestamp: time.Now(),
		Price:     &price,
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.Item
		validateFunc func(t *testing.T, summary models.ExpenseSummary)
	}{
		{
			name:  "empty snapshot",
			items: nil,
			validateFunc: func(t *testing.T, summary models.ExpenseSummary) {
				if summary.TotalAmount != 0 {
					t.Errorf("TotalAmount = %v, want 0", summary.TotalAmount)
				}
				if summary.SplitAmount != 0 {
					t.Errorf("SplitAmount = %v, want 0", summary.SplitAmount)
				}
				if len(summary.UserContributions) != 0 {
					t.Errorf("UserContributions = %v, want empty", summary.UserContributions)
				}
			},
		},
		{
			name: "two contributors",
			items: []models.Item{
				priced("A", "Alice", 30),
				priced("B", "Bob", 10),
			},
			validateFunc: func(t *testing.T, summary models.ExpenseSummary) {
				if math.Abs(summary.TotalAmount-40) > 1e-9 {
					t.Errorf("TotalAmount = %v, want 40", summary.TotalAmount)
				}
				if math.Abs(summary.SplitAmount-20) > 1e-9 {
					t.Errorf("SplitAmount = %v, want 20", summary.SplitAmount)
				}
				if len(summary.UserContributions) != 2 {
					t.Fatalf("got %d contributions, want 2", len(summary.UserContributions))
				}
				a := summary.UserContributions[0]
				if a.UserID != "A" || math.Abs(a.Amount-30) > 1e-9 || math.Abs(a.Balance-10) > 1e-9 {
					t.Errorf("A = %+v, want amount 30 balance 10", a)
				}
				b := summary.UserContributions[1]
				if b.UserID != "B" || math.Abs(b.Amount-10) > 1e-9 || math.Abs(b.Balance-(-10)) > 1e-9 {
					t.Errorf("B = %+v, want amount 10 balance -10", b)
				}
			},
		},
		{
			name: "unpriced items count toward nothing",
			items: []models.Item{
				priced("A", "Alice", 12),
				{Name: "free", AddedBy: "Bob", UserID: "B", Timestamp: time.Now()},
			},
			validateFunc: func(t *testing.T, summary models.ExpenseSummary) {
				if math.Abs(summary.TotalAmount-12) > 1e-9 {
					t.Errorf("TotalAmount = %v, want 12", summary.TotalAmount)
				}
				if len(summary.UserContributions) != 1 {
					t.Fatalf("got %d contributions, want 1", len(summary.UserContributions))
				}
				if summary.UserContributions[0].UserID != "A" {
					t.Errorf("contributor = %s, want A", summary.UserContributions[0].UserID)
				}
			},
		},
		{
			name: "item counts accumulate per user",
			items: []models.Item{
				priced("A", "Alice", 5),
				priced("A", "Alice", 7),
				priced("B", "Bob", 6),
			},
			validateFunc: func(t *testing.T, summary models.ExpenseSummary) {
				a := summary.UserContributions[0]
				if a.ItemCount != 2 || math.Abs(a.Amount-12) > 1e-9 {
					t.Errorf("A = %+v, want 2 items totaling 12", a)
				}
				b := summary.UserContributions[1]
				if b.ItemCount != 1 || math.Abs(b.Amount-6) > 1e-9 {
					t.Errorf("B = %+v, want 1 item totaling 6", b)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, Summarize(tt.items))
		})
	}
}

func TestSummarizeBalancesSumToZero(t *testing.T) {
	items := []models.Item{
		priced("A", "Alice", 30),
		priced("B", "Bob", 10),
		priced("C", "Carol", 42.37),
		priced("A", "Alice", 0.03),
	}

	summary := Summarize(items)

	var sum float64
	for _, c := range summary.UserContributions {
		sum += c.Balance
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("balances sum to %v, want 0", sum)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	items := []models.Item{
		priced("B", "Bob", 10),
		priced("A", "Alice", 30),
		priced("C", "Carol", 7.5),
	}

	first := Summarize(items)
	second := Summarize(items)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated summaries differ:\n%+v\n%+v", first, second)
	}

	// contributors come out in ascending userID order regardless of
	// item order
	for i := 1; i < len(first.UserContributions); i++ {
		if first.UserContributions[i-1].UserID >= first.UserContributions[i].UserID {
			t.Errorf("contributors not in ascending userID order: %+v", first.UserContributions)
		}
	}
}

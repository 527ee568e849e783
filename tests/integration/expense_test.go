package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExpenseAndBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.DB.TruncateAll(ctx)

	ada := env.DB.CreateTestUser(ctx, "Ada", "ada@example.com")
	ben := env.DB.CreateTestUser(ctx, "Ben", "ben@example.com")
	cam := env.DB.CreateTestUser(ctx, "Cam", "cam@example.com")
	group := env.DB.CreateTestGroup(ctx, "Ski trip", ada, ben, cam)
	adaToken := env.token(t, ada)

	t.Run("equal split distributes the remainder deterministically", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", adaToken, map[string]any{
			"description": "Dinner",
			"amount":      "100.00",
			"paid_by":     ada.ID,
			"split_type":  "equal",
			"splits": []map[string]any{
				{"participant_id": ada.ID},
				{"participant_id": ben.ID},
				{"participant_id": cam.ID},
			},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var expense struct {
			Splits []struct {
				ParticipantID string          `json:"participant_id"`
				Amount        decimal.Decimal `json:"amount"`
			} `json:"splits"`
		}
		decode(t, w, &expense)

		if len(expense.Splits) != 3 {
			t.Fatalf("expected 3 splits, got %+v", expense.Splits)
		}

		total := decimal.Zero
		for _, s := range expense.Splits {
			total = total.Add(s.Amount)
		}
		if !total.Equal(decimal.RequireFromString("100.00")) {
			t.Fatalf("splits do not sum to the amount: %s", total)
		}

		// 100/3 leaves a cent; the first listed participant absorbs it.
		if !expense.Splits[0].Amount.Equal(decimal.RequireFromString("33.34")) {
			t.Fatalf("expected first split 33.34, got %s", expense.Splits[0].Amount)
		}
	})

	t.Run("split mismatch is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", adaToken, map[string]any{
			"description": "Taxi",
			"amount":      "60.00",
			"paid_by":     ada.ID,
			"split_type":  "amount",
			"splits": []map[string]any{
				{"participant_id": ada.ID, "amount": "20.00"},
				{"participant_id": ben.ID, "amount": "20.00"},
			},
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("net balances sum to zero", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", adaToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var balances []struct {
			ParticipantID string          `json:"participant_id"`
			Amount        decimal.Decimal `json:"amount"`
		}
		decode(t, w, &balances)
		if len(balances) != 3 {
			t.Fatalf("expected 3 balances, got %+v", balances)
		}

		sum := decimal.Zero
		for _, b := range balances {
			sum = sum.Add(b.Amount)
		}
		if !sum.IsZero() {
			t.Fatalf("balances do not sum to zero: %s", sum)
		}
	})

	t.Run("debt matrix points debtors at the payer", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/debts", adaToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var debts []struct {
			From   string          `json:"from"`
			To     string          `json:"to"`
			Amount decimal.Decimal `json:"amount"`
		}
		decode(t, w, &debts)
		if len(debts) != 2 {
			t.Fatalf("expected 2 debts, got %+v", debts)
		}
		for _, d := range debts {
			if d.To != ada.ID {
				t.Fatalf("expected all debts owed to the payer, got %+v", d)
			}
		}
	})

	t.Run("consistency check passes", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/consistency", adaToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result struct {
			Consistent bool `json:"consistent"`
		}
		decode(t, w, &result)
		if !result.Consistent {
			t.Fatalf("expected a consistent group: %s", w.Body.String())
		}
	})

	t.Run("update rewrites the splits", func(t *testing.T) {
		list := env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/expenses", adaToken, nil)
		var expenses []struct {
			ID string `json:"id"`
		}
		decode(t, list, &expenses)
		if len(expenses) != 1 {
			t.Fatalf("expected 1 expense, got %+v", expenses)
		}

		w := env.do(t, http.MethodPut, "/api/v1/expenses/"+expenses[0].ID, adaToken, map[string]any{
			"description": "Dinner, corrected",
			"amount":      "90.00",
			"paid_by":     ada.ID,
			"split_type":  "percentage",
			"splits": []map[string]any{
				{"participant_id": ada.ID, "percentage": "50"},
				{"participant_id": ben.ID, "percentage": "30"},
				{"participant_id": cam.ID, "percentage": "20"},
			},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var expense struct {
			Splits []struct {
				Amount decimal.Decimal `json:"amount"`
			} `json:"splits"`
		}
		decode(t, w, &expense)
		if len(expense.Splits) != 3 || !expense.Splits[1].Amount.Equal(decimal.RequireFromString("27.00")) {
			t.Fatalf("unexpected splits after update: %+v", expense.Splits)
		}
	})

	t.Run("delete clears the ledger", func(t *testing.T) {
		list := env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/expenses", adaToken, nil)
		var expenses []struct {
			ID string `json:"id"`
		}
		decode(t, list, &expenses)

		w := env.do(t, http.MethodDelete, "/api/v1/expenses/"+expenses[0].ID, adaToken, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
		}

		w = env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/debts", adaToken, nil)
		var debts []struct{}
		decode(t, w, &debts)
		if len(debts) != 0 {
			t.Fatalf("expected no debts after delete, got %d", len(debts))
		}
	})
}

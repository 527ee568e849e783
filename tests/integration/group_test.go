package integration

import (
	"context"
	"net/http"
	"testing"
)

func TestGroupLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.DB.TruncateAll(ctx)

	ada := env.DB.CreateTestUser(ctx, "Ada", "ada@example.com")
	ben := env.DB.CreateTestUser(ctx, "Ben", "ben@example.com")
	adaToken := env.token(t, ada)
	benToken := env.token(t, ben)

	var groupID string

	t.Run("create group", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/groups/", adaToken, map[string]string{"name": "Ski trip"})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var group struct {
			ID           string `json:"id"`
			CreatedBy    string `json:"created_by"`
			Participants []struct {
				ID string `json:"id"`
			} `json:"participants"`
		}
		decode(t, w, &group)
		if group.CreatedBy != ada.ID || len(group.Participants) != 1 {
			t.Fatalf("unexpected group: %+v", group)
		}
		groupID = group.ID
	})

	t.Run("non-member cannot see the group", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/groups/"+groupID, benToken, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("add member", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/groups/"+groupID+"/members", adaToken, map[string]string{"user_id": ben.ID})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var group struct {
			Participants []struct {
				ID string `json:"id"`
			} `json:"participants"`
		}
		decode(t, w, &group)
		if len(group.Participants) != 2 {
			t.Fatalf("expected 2 participants, got %+v", group.Participants)
		}
	})

	t.Run("adding the same member twice conflicts", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/groups/"+groupID+"/members", adaToken, map[string]string{"user_id": ben.ID})
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("member sees the group in their list", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/groups/", benToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var groups []struct {
			ID string `json:"id"`
		}
		decode(t, w, &groups)
		if len(groups) != 1 || groups[0].ID != groupID {
			t.Fatalf("expected the group in the list, got %+v", groups)
		}
	})

	t.Run("settled member can leave", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/v1/groups/"+groupID+"/members/"+ben.ID, benToken, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("delete group", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/v1/groups/"+groupID, adaToken, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
		}

		w = env.do(t, http.MethodGet, "/api/v1/groups/"+groupID, adaToken, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", w.Code)
		}
	})
}

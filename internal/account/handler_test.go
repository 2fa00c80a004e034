package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"annostat-backend/internal/ratings"
	"annostat-backend/internal/summaries"
)

const testGuestID = "33333333-3333-3333-3333-333333333333"

func newTestRouter(h *Handler, userID string, isGuest bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", isGuest)
		c.Next()
	})
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)
	return router
}

func seedGuestData(t *testing.T, datasets *ratings.MemoryRepo, runs *summaries.MemoryRepo) {
	t.Helper()
	ctx := context.Background()
	guestUserID := "guest:" + testGuestID
	err := datasets.Create(ctx, ratings.Dataset{
		ID:        "ds-1",
		UserID:    guestUserID,
		Kind:      ratings.KindIndependent,
		FileName:  "independent.csv",
		RowCount:  3,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed dataset: %v", err)
	}
	err = runs.Create(ctx, summaries.Run{
		ID:            "run-1",
		UserID:        guestUserID,
		IndependentID: "ds-1",
		Status:        summaries.StatusCompleted,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}
}

func TestClaimGuestMigratesData(t *testing.T) {
	datasets := ratings.NewMemoryRepo()
	runs := summaries.NewMemoryRepo()
	seedGuestData(t, datasets, runs)

	h := NewHandler(NewService(datasets, runs))
	router := newTestRouter(h, "google:user-1", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", testGuestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result ClaimResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.MigratedDatasets != 1 || result.MigratedRuns != 1 {
		t.Fatalf("unexpected claim result: %+v", result)
	}

	owned, err := datasets.ListByUser(context.Background(), "google:user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser datasets: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != "ds-1" {
		t.Fatalf("dataset not migrated: %+v", owned)
	}
	ownedRuns, err := runs.ListByUser(context.Background(), "google:user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser runs: %v", err)
	}
	if len(ownedRuns) != 1 || ownedRuns[0].ID != "run-1" {
		t.Fatalf("run not migrated: %+v", ownedRuns)
	}
}

func TestClaimGuestSecondCallMigratesNothing(t *testing.T) {
	datasets := ratings.NewMemoryRepo()
	runs := summaries.NewMemoryRepo()
	seedGuestData(t, datasets, runs)

	h := NewHandler(NewService(datasets, runs))
	router := newTestRouter(h, "google:user-1", false)

	for i, wantMigrated := range []int{1, 0} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
		req.Header.Set("X-Guest-Id", testGuestID)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, resp.Code)
		}
		var result ClaimResult
		if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
			t.Fatalf("call %d: decode response: %v", i, err)
		}
		if result.MigratedDatasets != wantMigrated || result.MigratedRuns != wantMigrated {
			t.Fatalf("call %d: unexpected claim result: %+v", i, result)
		}
	}
}

func TestClaimGuestRejectsGuestIdentity(t *testing.T) {
	datasets := ratings.NewMemoryRepo()
	runs := summaries.NewMemoryRepo()

	h := NewHandler(NewService(datasets, runs))
	router := newTestRouter(h, "guest:"+testGuestID, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", testGuestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestClaimGuestValidatesHeader(t *testing.T) {
	datasets := ratings.NewMemoryRepo()
	runs := summaries.NewMemoryRepo()

	h := NewHandler(NewService(datasets, runs))
	router := newTestRouter(h, "google:user-1", false)

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not a uuid", "not-a-uuid"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
		if tc.header != "" {
			req.Header.Set("X-Guest-Id", tc.header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, resp.Code)
		}
	}
}

func TestOverviewCountsUserData(t *testing.T) {
	datasets := ratings.NewMemoryRepo()
	runs := summaries.NewMemoryRepo()
	ctx := context.Background()
	if err := datasets.Create(ctx, ratings.Dataset{ID: "ds-1", UserID: "google:user-1", Kind: ratings.KindIndependent}); err != nil {
		t.Fatalf("seed dataset: %v", err)
	}
	if err := datasets.Create(ctx, ratings.Dataset{ID: "ds-2", UserID: "google:other", Kind: ratings.KindPairwise}); err != nil {
		t.Fatalf("seed dataset: %v", err)
	}
	if err := runs.Create(ctx, summaries.Run{ID: "run-1", UserID: "google:user-1", Status: summaries.StatusQueued}); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	h := NewHandler(NewService(datasets, runs))
	router := newTestRouter(h, "google:user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var summary Summary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Datasets != 1 || summary.Runs != 1 {
		t.Fatalf("unexpected overview: %+v", summary)
	}
}

func TestDeleteDataRemovesEverything(t *testing.T) {
	datasets := ratings.NewMemoryRepo()
	runs := summaries.NewMemoryRepo()
	ctx := context.Background()
	if err := datasets.Create(ctx, ratings.Dataset{ID: "ds-1", UserID: "google:user-1", Kind: ratings.KindIndependent}); err != nil {
		t.Fatalf("seed dataset: %v", err)
	}
	if err := runs.Create(ctx, summaries.Run{ID: "run-1", UserID: "google:user-1", Status: summaries.StatusQueued}); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	h := NewHandler(NewService(datasets, runs))
	router := newTestRouter(h, "google:user-1", false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/account/data", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var result DeleteResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.DeletedDatasets != 1 || result.DeletedRuns != 1 {
		t.Fatalf("unexpected delete result: %+v", result)
	}

	count, err := datasets.CountByUser(ctx, "google:user-1")
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 datasets after delete, got %d", count)
	}
}

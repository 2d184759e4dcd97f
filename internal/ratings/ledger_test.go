package ratings

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})

	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()

	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&models.User{}, &models.Store{}, &models.Rating{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, email, role string) models.User {
	t.Helper()

	user := models.User{
		Name:         "Test User With A Long Enough Name",
		Email:        email,
		PasswordHash: "x",
		Address:      "1 Test Street",
		Role:         role,
	}

	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return user
}

func seedStore(t *testing.T, gdb *gorm.DB, email string, ownerID *uint) models.Store {
	t.Helper()

	store := models.Store{
		Name:    "Test Store",
		Email:   email,
		Address: "2 Test Avenue",
		OwnerID: ownerID,
	}

	if err := gdb.Create(&store).Error; err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	return store
}

func codeOf(t *testing.T, err error) string {
	t.Helper()

	var apiErr *apperr.Error

	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apperr.Error, got %T (%v)", err, err)
	}

	return apiErr.Code
}

func TestSubmitRejectsMissingStore(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	user := seedUser(t, gdb, "u@example.com", "user")

	_, err := ledger.Submit(user.ID, 999, 4, "")

	if codeOf(t, err) != apperr.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSubmitRejectsOutOfRangeScore(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	user := seedUser(t, gdb, "u@example.com", "user")
	store := seedStore(t, gdb, "s@example.com", nil)

	for _, score := range []int{0, 6, -1} {
		if _, err := ledger.Submit(user.ID, store.ID, score, ""); err == nil {
			t.Fatalf("expected rejection for score %d", score)
		}
	}
}

func TestSubmitDuplicateFailsFromConstraint(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	user := seedUser(t, gdb, "u@example.com", "user")
	store := seedStore(t, gdb, "s@example.com", nil)

	if _, err := ledger.Submit(user.ID, store.ID, 4, "good"); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := ledger.Submit(user.ID, store.ID, 2, "changed my mind")

	if codeOf(t, err) != apperr.CodeDuplicateRating {
		t.Fatalf("expected duplicate_rating, got %v", err)
	}

	// A different user rating the same store is fine.
	other := seedUser(t, gdb, "v@example.com", "user")

	if _, err := ledger.Submit(other.ID, store.ID, 5, ""); err != nil {
		t.Fatalf("other user submit failed: %v", err)
	}
}

func TestUpdateHidesForeignRatings(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	author := seedUser(t, gdb, "author@example.com", "user")
	stranger := seedUser(t, gdb, "stranger@example.com", "user")
	store := seedStore(t, gdb, "s@example.com", nil)

	rating, err := ledger.Submit(author.ID, store.ID, 4, "")

	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Someone else's rating and a missing rating are indistinguishable.
	err = ledger.Update(rating.ID, stranger.ID, 1, "")

	if codeOf(t, err) != apperr.CodeNotFound {
		t.Fatalf("expected not_found for foreign rating, got %v", err)
	}

	err = ledger.Update(rating.ID+100, author.ID, 1, "")

	if codeOf(t, err) != apperr.CodeNotFound {
		t.Fatalf("expected not_found for missing rating, got %v", err)
	}
}

func TestDeleteOwnershipChecked(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	author := seedUser(t, gdb, "author@example.com", "user")
	stranger := seedUser(t, gdb, "stranger@example.com", "user")
	store := seedStore(t, gdb, "s@example.com", nil)

	rating, err := ledger.Submit(author.ID, store.ID, 3, "")

	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := ledger.Delete(rating.ID, stranger.ID); codeOf(t, err) != apperr.CodeNotFound {
		t.Fatalf("expected not_found for foreign delete, got %v", err)
	}

	if err := ledger.Delete(rating.ID, author.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	agg, err := ledger.AggregateFor(store.ID)

	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if agg.Count != 0 || agg.Average != 0 {
		t.Fatalf("expected empty aggregate, got %+v", agg)
	}
}

func TestAggregateTracksCurrentRows(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	store := seedStore(t, gdb, "s@example.com", nil)

	u1 := seedUser(t, gdb, "u1@example.com", "user")
	u2 := seedUser(t, gdb, "u2@example.com", "user")
	u3 := seedUser(t, gdb, "u3@example.com", "user")

	for _, sub := range []struct {
		user  models.User
		score int
	}{{u1, 5}, {u2, 3}, {u3, 1}} {
		if _, err := ledger.Submit(sub.user.ID, store.ID, sub.score, ""); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	agg, err := ledger.AggregateFor(store.ID)

	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if agg.Count != 3 || agg.Average != 3 {
		t.Fatalf("expected count=3 average=3, got %+v", agg)
	}
}

// Mirrors the submit → duplicate → update → aggregate walkthrough.
func TestSubmitUpdateAggregateScenario(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	u1 := seedUser(t, gdb, "u1@example.com", "user")
	s1 := seedStore(t, gdb, "s1@example.com", nil)

	rating, err := ledger.Submit(u1.ID, s1.ID, 4, "")

	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := ledger.Submit(u1.ID, s1.ID, 2, ""); codeOf(t, err) != apperr.CodeDuplicateRating {
		t.Fatalf("expected duplicate_rating, got %v", err)
	}

	if err := ledger.Update(rating.ID, u1.ID, 2, ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	agg, err := ledger.AggregateFor(s1.ID)

	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if agg.Count != 1 || agg.Average != 2.0 {
		t.Fatalf("expected count=1 average=2.0, got %+v", agg)
	}
}

func TestForUserAndStore(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	user := seedUser(t, gdb, "u@example.com", "user")
	store := seedStore(t, gdb, "s@example.com", nil)

	rating, err := ledger.ForUserAndStore(user.ID, store.ID)

	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if rating != nil {
		t.Fatalf("expected nil before rating, got %+v", rating)
	}

	if _, err := ledger.Submit(user.ID, store.ID, 5, "great"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	rating, err = ledger.ForUserAndStore(user.ID, store.ID)

	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if rating == nil || rating.Score != 5 || rating.Comment != "great" {
		t.Fatalf("unexpected rating: %+v", rating)
	}
}

func TestForStoreIncludesRaterIdentity(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	user := seedUser(t, gdb, "u@example.com", "store_owner")
	store := seedStore(t, gdb, "s@example.com", nil)

	if _, err := ledger.Submit(user.ID, store.ID, 4, "solid"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	list, err := ledger.ForStore(store.ID, 0)

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("expected 1 rating, got %d", len(list))
	}

	if list[0].UserName != user.Name || list[0].UserRole != "store_owner" || list[0].Score != 4 {
		t.Fatalf("unexpected row: %+v", list[0])
	}
}

func TestHistoryForIncludesStoreInfo(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewLedger(gdb)
	user := seedUser(t, gdb, "u@example.com", "user")
	s1 := seedStore(t, gdb, "s1@example.com", nil)
	s2 := seedStore(t, gdb, "s2@example.com", nil)

	if _, err := ledger.Submit(user.ID, s1.ID, 2, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := ledger.Submit(user.ID, s2.ID, 5, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	history, err := ledger.HistoryFor(user.ID)

	if err != nil {
		t.Fatalf("history failed: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}

	for _, entry := range history {
		if entry.StoreName == "" || entry.StoreID == 0 {
			t.Fatalf("expected store info on entry: %+v", entry)
		}
	}
}

// Package storagetest provides a conformance suite shared by storage.Store implementations.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Run exercises every storage.Store operation against store.
// Subtests create their own users and groups so a shared database can be reused.
func Run(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})

	t.Run("Users", func(t *testing.T) { testUsers(t, ctx, store) })
	t.Run("Groups", func(t *testing.T) { testGroups(t, ctx, store) })
	t.Run("Expenses", func(t *testing.T) { testExpenses(t, ctx, store) })
	t.Run("Payments", func(t *testing.T) { testPayments(t, ctx, store) })
	t.Run("GroupLedger", func(t *testing.T) { testGroupLedger(t, ctx, store) })
	t.Run("InsertionOrder", func(t *testing.T) { testInsertionOrder(t, ctx, store) })
	t.Run("LedgerVersion", func(t *testing.T) { testLedgerVersion(t, ctx, store) })
	t.Run("DeleteGroupCascades", func(t *testing.T) { testDeleteGroup(t, ctx, store) })
}

func testUsers(t *testing.T, ctx context.Context, store storage.Store) {
	user := newUser(t, ctx, store, "Alice")

	t.Run("CreateUser sets timestamps", func(t *testing.T) {
		if user.CreatedAt == 0 || user.UpdatedAt == 0 {
			t.Errorf("timestamps not set: %+v", user)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup := models.NewUser(user.Email, "Other", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("CreateUser(duplicate) error = %v, want ErrConflict", err)
		}
	})

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID || byEmail.PasswordHash != user.PasswordHash {
			t.Errorf("GetUserByEmail = %+v, want %+v", byEmail, user)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Email != user.Email || byID.Name != "Alice" {
			t.Errorf("GetUserByID = %+v", byID)
		}
	})

	t.Run("missing users are not found", func(t *testing.T) {
		if _, err := store.GetUserByEmail(ctx, "nobody-"+uuid.NewString()+"@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUserByEmail error = %v, want ErrNotFound", err)
		}
		if _, err := store.GetUserByID(ctx, uuid.NewString()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUserByID error = %v, want ErrNotFound", err)
		}
	})

	t.Run("GetUsersByIDs skips unknown ids", func(t *testing.T) {
		other := newUser(t, ctx, store, "Bob")
		users, err := store.GetUsersByIDs(ctx, []string{user.ID, other.ID, uuid.NewString()})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 2 || users[other.ID] == nil || users[other.ID].Name != "Bob" {
			t.Errorf("GetUsersByIDs = %v", users)
		}
	})

	t.Run("UpdateUser changes only given fields", func(t *testing.T) {
		name := "Alice Liddell"
		pic := "https://example.com/alice.png"
		updated, err := store.UpdateUser(ctx, user.ID, models.UserUpdate{Name: &name, ProfilePicture: &pic})
		if err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if updated.Name != name || updated.ProfilePicture != pic || updated.Email != user.Email {
			t.Errorf("UpdateUser = %+v", updated)
		}

		stored, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if stored.Name != name {
			t.Errorf("stored name = %q, want %q", stored.Name, name)
		}
	})

	t.Run("UpdateUser to a taken email conflicts", func(t *testing.T) {
		other := newUser(t, ctx, store, "Carol")
		if _, err := store.UpdateUser(ctx, other.ID, models.UserUpdate{Email: &user.Email}); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("UpdateUser error = %v, want ErrConflict", err)
		}
	})

	t.Run("UpdateUser on missing user", func(t *testing.T) {
		name := "ghost"
		if _, err := store.UpdateUser(ctx, uuid.NewString(), models.UserUpdate{Name: &name}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateUser error = %v, want ErrNotFound", err)
		}
	})
}

func testGroups(t *testing.T, ctx context.Context, store storage.Store) {
	alice := newUser(t, ctx, store, "Alice")
	bob := newUser(t, ctx, store, "Bob")
	carol := newUser(t, ctx, store, "Carol")

	group := &models.Group{
		Name:        "Roommates",
		Description: "Apartment 4B",
		CreatedBy:   alice.ID,
		Members:     []string{alice.ID, bob.ID},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" || group.CreatedAt == 0 {
		t.Fatalf("CreateGroup did not set ID and timestamp: %+v", group)
	}

	t.Run("GetGroup returns members", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" || got.Description != "Apartment 4B" || got.CreatedBy != alice.ID {
			t.Errorf("GetGroup = %+v", got)
		}
		if len(got.Members) != 2 || !got.HasMember(alice.ID) || !got.HasMember(bob.ID) {
			t.Errorf("members = %v", got.Members)
		}
	})

	t.Run("IsGroupMember", func(t *testing.T) {
		ok, err := store.IsGroupMember(ctx, group.ID, bob.ID)
		if err != nil || !ok {
			t.Errorf("IsGroupMember(bob) = %v, %v; want true", ok, err)
		}
		ok, err = store.IsGroupMember(ctx, group.ID, carol.ID)
		if err != nil || ok {
			t.Errorf("IsGroupMember(carol) = %v, %v; want false", ok, err)
		}
	})

	t.Run("AddGroupMembers ignores existing members", func(t *testing.T) {
		if err := store.AddGroupMembers(ctx, group.ID, []string{bob.ID, carol.ID}); err != nil {
			t.Fatalf("AddGroupMembers failed: %v", err)
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 3 || !got.HasMember(carol.ID) {
			t.Errorf("members = %v", got.Members)
		}
	})

	t.Run("AddGroupMembers to missing group", func(t *testing.T) {
		if err := store.AddGroupMembers(ctx, uuid.NewString(), []string{bob.ID}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("AddGroupMembers error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListGroupsByUser", func(t *testing.T) {
		second := &models.Group{Name: "Ski Trip", CreatedBy: carol.ID, Members: []string{carol.ID}}
		if err := store.CreateGroup(ctx, second); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		groups, err := store.ListGroupsByUser(ctx, carol.ID)
		if err != nil {
			t.Fatalf("ListGroupsByUser failed: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("got %d groups, want 2", len(groups))
		}
		for _, g := range groups {
			if !g.HasMember(carol.ID) {
				t.Errorf("group %s listed without carol as member: %v", g.Name, g.Members)
			}
		}

		groups, err = store.ListGroupsByUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsByUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("bob's groups = %+v", groups)
		}
	})

	t.Run("UpdateGroup", func(t *testing.T) {
		group.Name = "Flatmates"
		group.Description = ""
		if err := store.UpdateGroup(ctx, group); err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Flatmates" || got.Description != "" {
			t.Errorf("GetGroup after update = %+v", got)
		}

		missing := &models.Group{ID: uuid.NewString(), Name: "x"}
		if err := store.UpdateGroup(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateGroup(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("GetGroup missing", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, uuid.NewString()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup error = %v, want ErrNotFound", err)
		}
	})
}

func testExpenses(t *testing.T, ctx context.Context, store storage.Store) {
	alice, bob, carol, group := newGroup(t, ctx, store)

	equal := &models.Expense{
		GroupID:     group.ID,
		Description: "Groceries",
		Amount:      dec("90.00"),
		PaidBy:      alice.ID,
		SplitType:   "equal",
		SplitWith:   []string{carol.ID, alice.ID, bob.ID},
		CreatedBy:   alice.ID,
	}
	if err := store.CreateExpense(ctx, equal); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	unequal := &models.Expense{
		GroupID:   group.ID,
		Amount:    dec("100"),
		PaidBy:    bob.ID,
		SplitType: "unequal",
		SplitWith: []string{alice.ID, bob.ID},
		Shares:    map[string]decimal.Decimal{alice.ID: dec("25.50"), bob.ID: dec("74.50")},
		CreatedBy: bob.ID,
	}
	if err := store.CreateExpense(ctx, unequal); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("GetExpense round trips amounts and split order", func(t *testing.T) {
		got, err := store.GetExpense(ctx, equal.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(dec("90")) || got.PaidBy != alice.ID || got.SplitType != "equal" {
			t.Errorf("GetExpense = %+v", got)
		}
		if len(got.SplitWith) != 3 || got.SplitWith[0] != carol.ID || got.SplitWith[2] != bob.ID {
			t.Errorf("SplitWith = %v, want insertion order", got.SplitWith)
		}
		if len(got.Shares) != 0 {
			t.Errorf("equal split has shares: %v", got.Shares)
		}
	})

	t.Run("GetExpense keeps explicit shares", func(t *testing.T) {
		got, err := store.GetExpense(ctx, unequal.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Shares[alice.ID].Equal(dec("25.5")) || !got.Shares[bob.ID].Equal(dec("74.5")) {
			t.Errorf("Shares = %v", got.Shares)
		}
	})

	t.Run("ListExpensesByGroup", func(t *testing.T) {
		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("got %d expenses, want 2", len(expenses))
		}
		for _, e := range expenses {
			if len(e.SplitWith) == 0 {
				t.Errorf("expense %s listed without split", e.ID)
			}
		}
	})

	t.Run("UpdateExpense replaces split", func(t *testing.T) {
		equal.Amount = dec("60")
		equal.PaidBy = bob.ID
		equal.SplitType = "unequal"
		equal.SplitWith = []string{alice.ID, bob.ID}
		equal.Shares = map[string]decimal.Decimal{alice.ID: dec("20"), bob.ID: dec("40")}
		if err := store.UpdateExpense(ctx, equal); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, equal.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(dec("60")) || got.PaidBy != bob.ID || got.SplitType != "unequal" {
			t.Errorf("GetExpense after update = %+v", got)
		}
		if len(got.SplitWith) != 2 || !got.Shares[bob.ID].Equal(dec("40")) {
			t.Errorf("split after update = %v %v", got.SplitWith, got.Shares)
		}

		missing := &models.Expense{ID: uuid.NewString(), Amount: dec("1"), PaidBy: alice.ID, SplitType: "equal"}
		if err := store.UpdateExpense(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateExpense(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, unequal.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, unequal.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense after delete error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteExpense(ctx, unequal.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteExpense error = %v, want ErrNotFound", err)
		}
	})
}

func testPayments(t *testing.T, ctx context.Context, store storage.Store) {
	alice, bob, carol, group := newGroup(t, ctx, store)

	first := &models.Payment{GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("30"), Note: "rent", CreatedBy: bob.ID}
	second := &models.Payment{GroupID: group.ID, FromUserID: carol.ID, ToUserID: alice.ID, Amount: dec("12.34"), CreatedBy: carol.ID}
	if err := store.CreatePayments(ctx, first, second); err != nil {
		t.Fatalf("CreatePayments failed: %v", err)
	}
	if first.ID == "" || second.ID == "" || first.CreatedAt == 0 {
		t.Fatalf("CreatePayments did not set IDs and timestamps")
	}

	t.Run("ListPaymentsByGroup", func(t *testing.T) {
		payments, err := store.ListPaymentsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByGroup failed: %v", err)
		}
		if len(payments) != 2 {
			t.Fatalf("got %d payments, want 2", len(payments))
		}
		total := decimal.Zero
		for _, p := range payments {
			total = total.Add(p.Amount)
		}
		if !total.Equal(dec("42.34")) {
			t.Errorf("payment total = %s, want 42.34", total)
		}
	})

	t.Run("ListPaymentsByUser covers both directions", func(t *testing.T) {
		payments, err := store.ListPaymentsByUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByUser failed: %v", err)
		}
		if len(payments) != 2 {
			t.Errorf("alice has %d payments, want 2", len(payments))
		}

		payments, err = store.ListPaymentsByUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByUser failed: %v", err)
		}
		if len(payments) != 1 || payments[0].Note != "rent" {
			t.Errorf("bob's payments = %+v", payments)
		}
	})

	t.Run("CreatePayments is atomic", func(t *testing.T) {
		good := &models.Payment{GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("1"), CreatedBy: bob.ID}
		bad := &models.Payment{GroupID: uuid.NewString(), FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("1"), CreatedBy: bob.ID}
		if err := store.CreatePayments(ctx, good, bad); err == nil {
			t.Fatal("CreatePayments with unknown group succeeded")
		}

		payments, err := store.ListPaymentsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByGroup failed: %v", err)
		}
		if len(payments) != 2 {
			t.Errorf("got %d payments after failed batch, want 2", len(payments))
		}
	})
}

func testGroupLedger(t *testing.T, ctx context.Context, store storage.Store) {
	alice, bob, carol, group := newGroup(t, ctx, store)

	expense := &models.Expense{
		GroupID: group.ID, Amount: dec("90"), PaidBy: alice.ID, SplitType: "equal",
		SplitWith: []string{alice.ID, bob.ID, carol.ID}, CreatedBy: alice.ID,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	payment := &models.Payment{GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("30"), CreatedBy: bob.ID}
	if err := store.CreatePayments(ctx, payment); err != nil {
		t.Fatalf("CreatePayments failed: %v", err)
	}

	ledger, err := store.GetGroupLedger(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroupLedger failed: %v", err)
	}
	if ledger.Group.ID != group.ID || len(ledger.Group.Members) != 3 {
		t.Errorf("ledger group = %+v", ledger.Group)
	}
	if len(ledger.Expenses) != 1 || len(ledger.Expenses[0].SplitWith) != 3 {
		t.Errorf("ledger expenses = %+v", ledger.Expenses)
	}
	if len(ledger.Payments) != 1 || !ledger.Payments[0].Amount.Equal(dec("30")) {
		t.Errorf("ledger payments = %+v", ledger.Payments)
	}

	if _, err := store.GetGroupLedger(ctx, uuid.NewString()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetGroupLedger(missing) error = %v, want ErrNotFound", err)
	}
}

// Records sharing a created_at second must still come back in the order
// they were written.
func testInsertionOrder(t *testing.T, ctx context.Context, store storage.Store) {
	alice, bob, carol, group := newGroup(t, ctx, store)
	const n = 8
	const createdAt = 1700000000

	var expenseIDs []string
	for i := range n {
		e := &models.Expense{
			GroupID: group.ID, Amount: dec("10"), PaidBy: alice.ID, SplitType: "equal",
			SplitWith: []string{alice.ID, bob.ID}, CreatedBy: alice.ID, CreatedAt: createdAt,
			Description: fmt.Sprintf("expense %d", i),
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		expenseIDs = append(expenseIDs, e.ID)
	}

	var paymentIDs []string
	for range n / 2 {
		// Two per batch so both single and batched writes are covered.
		first := &models.Payment{GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("1"), CreatedBy: bob.ID, CreatedAt: createdAt}
		second := &models.Payment{GroupID: group.ID, FromUserID: carol.ID, ToUserID: alice.ID, Amount: dec("1"), CreatedBy: carol.ID, CreatedAt: createdAt}
		if err := store.CreatePayments(ctx, first, second); err != nil {
			t.Fatalf("CreatePayments failed: %v", err)
		}
		paymentIDs = append(paymentIDs, first.ID, second.ID)
	}
	newestFirst := slices.Clone(paymentIDs)
	slices.Reverse(newestFirst)

	expenses, err := store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	if got := expenseIDsOf(expenses); !slices.Equal(got, expenseIDs) {
		t.Errorf("ListExpensesByGroup order = %v, want %v", got, expenseIDs)
	}

	payments, err := store.ListPaymentsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByGroup failed: %v", err)
	}
	if got := paymentIDsOf(payments); !slices.Equal(got, newestFirst) {
		t.Errorf("ListPaymentsByGroup order = %v, want %v", got, newestFirst)
	}

	payments, err = store.ListPaymentsByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByUser failed: %v", err)
	}
	if got := paymentIDsOf(payments); !slices.Equal(got, newestFirst) {
		t.Errorf("ListPaymentsByUser order = %v, want %v", got, newestFirst)
	}

	ledger, err := store.GetGroupLedger(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroupLedger failed: %v", err)
	}
	if got := expenseIDsOf(ledger.Expenses); !slices.Equal(got, expenseIDs) {
		t.Errorf("ledger expense order = %v, want %v", got, expenseIDs)
	}
	if got := paymentIDsOf(ledger.Payments); !slices.Equal(got, paymentIDs) {
		t.Errorf("ledger payment order = %v, want %v", got, paymentIDs)
	}
}

func testLedgerVersion(t *testing.T, ctx context.Context, store storage.Store) {
	alice, bob, _, group := newGroup(t, ctx, store)

	version := func() int64 {
		t.Helper()
		ledger, err := store.GetGroupLedger(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupLedger failed: %v", err)
		}
		return ledger.Version
	}
	last := version()
	advanced := func(op string) {
		t.Helper()
		v := version()
		if v <= last {
			t.Errorf("%s: version = %d, want > %d", op, v, last)
		}
		last = v
	}

	expense := &models.Expense{
		GroupID: group.ID, Amount: dec("20"), PaidBy: alice.ID, SplitType: "equal",
		SplitWith: []string{alice.ID, bob.ID}, CreatedBy: alice.ID,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	advanced("CreateExpense")

	expense.Amount = dec("30")
	if err := store.UpdateExpense(ctx, expense); err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	advanced("UpdateExpense")

	if err := store.CreatePayments(ctx, &models.Payment{
		GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("5"), CreatedBy: bob.ID,
	}); err != nil {
		t.Fatalf("CreatePayments failed: %v", err)
	}
	advanced("CreatePayments")

	if err := store.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	advanced("DeleteExpense")

	settle := func(v int64) error {
		return store.SettlePayments(ctx, group.ID, v, &models.Payment{
			GroupID: group.ID, FromUserID: alice.ID, ToUserID: bob.ID, Amount: dec("5"), CreatedBy: alice.ID,
		})
	}
	read := last
	if err := settle(read); err != nil {
		t.Fatalf("SettlePayments at current version failed: %v", err)
	}
	advanced("SettlePayments")

	if err := settle(read); !errors.Is(err, storage.ErrStaleLedger) {
		t.Errorf("SettlePayments at stale version error = %v, want ErrStaleLedger", err)
	}
	payments, err := store.ListPaymentsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByGroup failed: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("got %d payments, want 2 after a stale settlement", len(payments))
	}

	if err := store.SettlePayments(ctx, uuid.NewString(), 0); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("SettlePayments(missing group) error = %v, want ErrNotFound", err)
	}
}

func testDeleteGroup(t *testing.T, ctx context.Context, store storage.Store) {
	alice, bob, _, group := newGroup(t, ctx, store)

	expense := &models.Expense{
		GroupID: group.ID, Amount: dec("10"), PaidBy: alice.ID, SplitType: "equal",
		SplitWith: []string{alice.ID, bob.ID}, CreatedBy: alice.ID,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetGroup after delete error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetExpense after group delete error = %v, want ErrNotFound", err)
	}
	if ok, _ := store.IsGroupMember(ctx, group.ID, alice.ID); ok {
		t.Error("membership survived group delete")
	}
	if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteGroup error = %v, want ErrNotFound", err)
	}
}

func newUser(t *testing.T, ctx context.Context, store storage.Store, name string) *models.User {
	t.Helper()
	user := models.NewUser(name+"-"+uuid.NewString()+"@example.com", name, "$2a$10$hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user
}

func newGroup(t *testing.T, ctx context.Context, store storage.Store) (alice, bob, carol *models.User, group *models.Group) {
	t.Helper()
	alice = newUser(t, ctx, store, "Alice")
	bob = newUser(t, ctx, store, "Bob")
	carol = newUser(t, ctx, store, "Carol")
	group = &models.Group{
		Name:      "Trip",
		CreatedBy: alice.ID,
		Members:   []string{alice.ID, bob.ID, carol.ID},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return alice, bob, carol, group
}

func expenseIDsOf(expenses []*models.Expense) []string {
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	return ids
}

func paymentIDsOf(payments []*models.Payment) []string {
	ids := make([]string, len(payments))
	for i, p := range payments {
		ids[i] = p.ID
	}
	return ids
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

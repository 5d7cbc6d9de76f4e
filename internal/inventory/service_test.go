package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingapi/internal/inventory"
	"lendingapi/internal/testutil"
	"lendingapi/internal/user"
)

var ctx = context.Background()

func TestAddCopy(t *testing.T) {
	env := testutil.NewEnv()
	book := env.MustBook(0, 0)

	_, err := env.Inventory.AddCopy(ctx, env.Admin, book.ID, inventory.CopyAvailable, "A1", "")
	require.NoError(t, err)
	_, err = env.Inventory.AddCopy(ctx, env.Admin, book.ID, inventory.CopyBorrowed, "A2", "on loan before import")
	require.NoError(t, err)

	b := env.Book(book.ID)
	assert.Equal(t, 2, b.TotalCopies)
	assert.Equal(t, 1, b.AvailableCopies)

	_, err = env.Inventory.AddCopy(ctx, env.Admin, book.ID, inventory.CopyLost, "", "")
	assert.ErrorIs(t, err, inventory.ErrInvalidStatus)

	_, err = env.Inventory.AddCopy(ctx, env.Admin, "missing", inventory.CopyAvailable, "", "")
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = env.Inventory.AddCopy(ctx, env.MustCaller(), book.ID, inventory.CopyAvailable, "", "")
	assert.ErrorIs(t, err, inventory.ErrForbidden)
}

func TestAllocateAndRelease(t *testing.T) {
	env := testutil.NewEnv()
	book := env.MustBook(0, 1)

	c, err := env.Inventory.AllocateCopy(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.CopyBorrowed, c.Status)
	assert.Equal(t, 0, env.Book(book.ID).AvailableCopies)

	_, err = env.Inventory.AllocateCopy(ctx, book.ID)
	assert.ErrorIs(t, err, inventory.ErrNoCopies)

	require.NoError(t, env.Inventory.ReleaseCopy(ctx, c.ID))
	assert.Equal(t, 1, env.Book(book.ID).AvailableCopies)
	assert.Equal(t, 1, env.InventoryRepo.CountCopies(book.ID, inventory.CopyAvailable))
}

func TestMarkCopy(t *testing.T) {
	env := testutil.NewEnv()
	book := env.MustBook(0, 3)

	lost, err := env.Inventory.AllocateCopy(ctx, book.ID)
	require.NoError(t, err)
	damaged, err := env.Inventory.AllocateCopy(ctx, book.ID)
	require.NoError(t, err)

	require.NoError(t, env.Inventory.MarkCopyLost(ctx, lost.ID))
	b := env.Book(book.ID)
	assert.Equal(t, 2, b.TotalCopies)
	assert.Equal(t, 0, b.AvailableCopies)

	require.NoError(t, env.Inventory.MarkCopyDamaged(ctx, damaged.ID))
	b = env.Book(book.ID)
	assert.Equal(t, 2, b.TotalCopies)
	assert.Equal(t, 0, b.AvailableCopies)

	assert.ErrorIs(t, env.Inventory.MarkCopyLost(ctx, "missing"), inventory.ErrCopyNotFound)
}

func TestRemoveCopy(t *testing.T) {
	env := testutil.NewEnv()
	book := env.MustBook(0, 2)
	copies, err := env.Inventory.CopiesForBook(ctx, env.Admin, book.ID)
	require.NoError(t, err)
	require.Len(t, copies, 2)

	borrowed, err := env.Inventory.AllocateCopy(ctx, book.ID)
	require.NoError(t, err)

	err = env.Inventory.RemoveCopy(ctx, env.Admin, borrowed.ID, false)
	assert.ErrorIs(t, err, inventory.ErrCopyInUse)

	var shelved string
	for _, c := range copies {
		if c.ID != borrowed.ID {
			shelved = c.ID
		}
	}
	require.NoError(t, env.Inventory.RemoveCopy(ctx, env.Admin, shelved, false))
	b := env.Book(book.ID)
	assert.Equal(t, 1, b.TotalCopies)
	assert.Equal(t, 0, b.AvailableCopies)

	require.NoError(t, env.Inventory.RemoveCopy(ctx, env.Admin, borrowed.ID, true))
	b = env.Book(book.ID)
	assert.Equal(t, 0, b.TotalCopies)
	assert.Equal(t, 0, b.AvailableCopies)

	err = env.Inventory.RemoveCopy(ctx, env.Admin, borrowed.ID, true)
	assert.ErrorIs(t, err, inventory.ErrCopyNotFound)

	err = env.Inventory.RemoveCopy(ctx, user.Caller{ID: "u", Role: user.RoleUser}, shelved, true)
	assert.ErrorIs(t, err, inventory.ErrForbidden)
}

func TestCountersNeverGoNegative(t *testing.T) {
	env := testutil.NewEnv()
	book := env.MustBook(0, 1)

	require.NoError(t, env.InventoryRepo.AdjustCounters(ctx, book.ID, -5, -5))
	b := env.Book(book.ID)
	assert.Equal(t, 0, b.TotalCopies)
	assert.Equal(t, 0, b.AvailableCopies)
}

func TestCreateBook(t *testing.T) {
	env := testutil.NewEnv()

	b, err := env.Inventory.CreateBook(ctx, env.Admin, inventory.Book{Title: "T", TotalCopies: 9, AvailableCopies: 9})
	require.NoError(t, err)
	assert.Equal(t, 0, b.TotalCopies)
	assert.Equal(t, 0, b.AvailableCopies)

	_, err = env.Inventory.CreateBook(ctx, env.MustCaller(), inventory.Book{Title: "T"})
	assert.ErrorIs(t, err, inventory.ErrForbidden)
}

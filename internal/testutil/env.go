package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"lendingapi/internal/fine"
	"lendingapi/internal/inventory"
	"lendingapi/internal/loan"
	"lendingapi/internal/notification"
	"lendingapi/internal/policy"
	"lendingapi/internal/user"
)

// Epoch is the default start time of an Env clock.
var Epoch = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

// Env wires every service over in-memory repositories and a shared clock.
type Env struct {
	Clock *Clock

	UserRepo         *UserRepo
	PolicyRepo       *PolicyRepo
	InventoryRepo    *InventoryRepo
	FineRepo         *FineRepo
	NotificationRepo *NotificationRepo
	LoanRepo         *LoanRepo

	Users         *user.Service
	Policies      *policy.Service
	Inventory     *inventory.Service
	Fines         *fine.Service
	Notifications *notification.Service
	Loans         *loan.Service

	Admin user.Caller

	seq atomic.Int64
}

func NewEnv(opts ...loan.Option) *Env {
	e := &Env{
		Clock:            NewClock(Epoch),
		UserRepo:         NewUserRepo(),
		PolicyRepo:       NewPolicyRepo(),
		InventoryRepo:    NewInventoryRepo(),
		FineRepo:         NewFineRepo(),
		NotificationRepo: NewNotificationRepo(),
		LoanRepo:         NewLoanRepo(),
	}
	e.Users = user.NewService(e.UserRepo)
	e.Policies = policy.NewService(e.PolicyRepo)
	e.Inventory = inventory.NewService(e.InventoryRepo)
	e.Fines = fine.NewService(e.FineRepo, e.Users, fine.WithClock(e.Clock.Now))
	e.Notifications = notification.NewService(e.NotificationRepo, notification.WithClock(e.Clock.Now))
	e.Loans = loan.NewService(e.LoanRepo, e.Users, e.Inventory, e.Policies, e.Fines, e.Notifications,
		append([]loan.Option{loan.WithClock(e.Clock.Now)}, opts...)...)

	admin := e.MustUser(user.RoleAdmin)
	e.Admin = user.Caller{ID: admin.ID, Role: user.RoleAdmin}
	return e
}

// MustUser registers an active account with the given role.
func (e *Env) MustUser(role user.Role) user.User {
	n := e.seq.Add(1)
	u := &user.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Role:     role,
		Status:   user.StatusActive,
	}
	if err := e.UserRepo.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return *u
}

// MustCaller registers a regular user and returns its caller identity.
func (e *Env) MustCaller() user.Caller {
	u := e.MustUser(user.RoleUser)
	return user.Caller{ID: u.ID, Role: u.Role}
}

// MustBook creates a book priced at price with the given number of available copies.
func (e *Env) MustBook(price int64, copies int) inventory.Book {
	ctx := context.Background()
	n := e.seq.Add(1)
	b, err := e.Inventory.CreateBook(ctx, e.Admin, inventory.Book{
		ISBN:   fmt.Sprintf("978000000%04d", n),
		Title:  fmt.Sprintf("Book %d", n),
		Author: "Author",
		Price:  decimal.NewFromInt(price),
	})
	if err != nil {
		panic(err)
	}
	for i := 0; i < copies; i++ {
		if _, err := e.Inventory.AddCopy(ctx, e.Admin, b.ID, inventory.CopyAvailable, "shelf", ""); err != nil {
			panic(err)
		}
	}
	b, _ = e.Inventory.GetBook(ctx, b.ID)
	return b
}

// SetPolicy stores s as the current policy.
func (e *Env) SetPolicy(s policy.Settings) {
	if _, err := e.Policies.Update(context.Background(), e.Admin, s); err != nil {
		panic(err)
	}
}

// Book reloads a book.
func (e *Env) Book(id string) inventory.Book {
	b, err := e.Inventory.GetBook(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return b
}

// User reloads an account.
func (e *Env) User(id string) user.User {
	u, err := e.Users.GetByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return u
}

// OpenLoans counts a user's BORROWING records straight from the store.
func (e *Env) OpenLoans(userID string) int {
	n, err := e.LoanRepo.Count(context.Background(), loan.Filter{UserID: userID, Status: loan.StatusBorrowing})
	if err != nil {
		panic(err)
	}
	return n
}

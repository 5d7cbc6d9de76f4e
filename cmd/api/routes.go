package main

import (
	"context"
	"net/http"
	"time"

	"lendingapi/internal/auth"
	"lendingapi/internal/fine"
	"lendingapi/internal/httpx"
	"lendingapi/internal/inventory"
	"lendingapi/internal/loan"
	"lendingapi/internal/notification"
	"lendingapi/internal/policy"
	"lendingapi/internal/user"
)

type services struct {
	Users         *user.Service
	Auth          *auth.Service
	Policies      *policy.Service
	Inventory     *inventory.Service
	Fines         *fine.Service
	Notifications *notification.Service
	Loans         *loan.Service
}

// newRouter registers every route under /v1. ready backs /readyz.
func newRouter(svc services, jwtSecret string, ready func(context.Context) error) *http.ServeMux {
	userHandler := user.NewHTTPHandler(svc.Users)
	authHandler := auth.NewHTTPHandler(svc.Auth)
	policyHandler := policy.NewHTTPHandler(svc.Policies)
	inventoryHandler := inventory.NewHTTPHandler(svc.Inventory)
	fineHandler := fine.NewHTTPHandler(svc.Fines)
	notificationHandler := notification.NewHTTPHandler(svc.Notifications)
	loanHandler := loan.NewHTTPHandler(svc.Loans)

	authed := httpx.AuthMiddleware(jwtSecret, svc.Users)
	member := func(h http.HandlerFunc) http.Handler { return authed(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authed(httpx.RequireAdmin(h)) }

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /v1/auth/register", userHandler.RegisterUser)
	router.HandleFunc("POST /v1/auth/login", authHandler.Login)

	router.Handle("GET /v1/me", member(userHandler.GetCurrentUser))
	router.Handle("GET /v1/me/loans", member(loanHandler.ListMine))
	router.Handle("GET /v1/me/fines", member(fineHandler.ListMine))
	router.Handle("GET /v1/me/notifications", member(notificationHandler.ListMine))
	router.Handle("POST /v1/notifications/{id}/read", member(notificationHandler.MarkRead))
	router.Handle("POST /v1/fines/{id}/pay", member(fineHandler.Pay))

	router.HandleFunc("GET /v1/books/{id}", inventoryHandler.GetBook)
	router.Handle("POST /v1/books", admin(inventoryHandler.CreateBook))
	router.Handle("GET /v1/books/{id}/copies", admin(inventoryHandler.ListCopies))
	router.Handle("POST /v1/books/{id}/copies", admin(inventoryHandler.AddCopy))
	router.Handle("DELETE /v1/copies/{id}", admin(inventoryHandler.RemoveCopy))

	router.Handle("POST /v1/loans", member(loanHandler.Issue))
	router.Handle("GET /v1/loans", admin(loanHandler.List))
	router.Handle("POST /v1/loans/{id}/return", member(loanHandler.Return))
	router.Handle("POST /v1/loans/{id}/renew", member(loanHandler.Renew))
	router.Handle("POST /v1/loans/{id}/lost", member(loanHandler.ReportLost))
	router.Handle("POST /v1/loans/{id}/damaged", member(loanHandler.ReportDamaged))
	router.Handle("POST /v1/loans/{id}/force-return", admin(loanHandler.ForceReturn))

	router.Handle("GET /v1/settings", member(policyHandler.Get))
	router.Handle("PUT /v1/settings", admin(policyHandler.Update))
	router.Handle("POST /v1/users/{id}/lock", admin(userHandler.Lock))
	router.Handle("POST /v1/users/{id}/unlock", admin(userHandler.Unlock))

	return router
}

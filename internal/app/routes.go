package app

import (
	"github.com/gorilla/mux"
	"github.com/moneta/moneta/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Buckets
	r.HandleFunc("/api/bucket", deps.BucketHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/bucket", deps.BucketHandler.Register).Methods("POST")
	r.HandleFunc("/api/bucket/{id}", deps.BucketHandler.Update).Methods("PUT")
	r.HandleFunc("/api/bucket/{id}", deps.BucketHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/bucket/{id}/position", deps.BucketHandler.SetPosition).Methods("PUT")

	// Transactions
	r.HandleFunc("/api/transaction", deps.TransactionHandler.List).Methods("GET")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.Create).Methods("POST")
	r.HandleFunc("/api/transaction/{uid}", deps.TransactionHandler.Get).Methods("GET")
	r.HandleFunc("/api/transaction/{uid}", deps.TransactionHandler.Update).Methods("PUT")
	r.HandleFunc("/api/transaction/{uid}", deps.TransactionHandler.Delete).Methods("DELETE")

	// Recurring templates
	r.HandleFunc("/api/recurring", deps.RecurringHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/recurring", deps.RecurringHandler.Create).Methods("POST")
	r.HandleFunc("/api/recurring/reconcile", deps.RecurringHandler.Reconcile).Methods("POST")
	r.HandleFunc("/api/recurring/projection", deps.RecurringHandler.Project).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/recurring/{id}", deps.RecurringHandler.Get).Methods("GET")
	r.HandleFunc("/api/recurring/{id}", deps.RecurringHandler.Update).Methods("PUT")
	r.HandleFunc("/api/recurring/{id}", deps.RecurringHandler.Delete).Methods("DELETE")

	// Budgets
	r.HandleFunc("/api/budget", deps.BudgetHandler.StatusForMonth).Queries("month", "{month}").Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Create).Methods("POST")
	r.HandleFunc("/api/budget/{id}", deps.BudgetHandler.Update).Methods("PUT")
	r.HandleFunc("/api/budget/{id}", deps.BudgetHandler.Delete).Methods("DELETE")

	// Stats
	r.HandleFunc("/api/stats", deps.StatsHandler.GetStats).Queries("fromDate", "{fromDate}", "toDate", "{toDate}").Methods("GET")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/{userUid}", deps.UserHandler.DeleteUser).Methods("DELETE")
}

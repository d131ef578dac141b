// Package api exposes the chama engine commands as a JSON HTTP surface.
package api

import (
	"net/http"

	"github.com/billbatista/chama360/middleware"
	"github.com/billbatista/chama360/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigins []string
	MetricsPath    string
	Gatherer       prometheus.Gatherer
}

type Handler struct {
	svc *service.Service
}

func NewRouter(svc *service.Service, opts Options) http.Handler {
	h := &Handler{svc: svc}

	corsOptions := cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.ActorHeader},
		MaxAge:         300,
	}
	if len(opts.AllowedOrigins) > 0 && opts.AllowedOrigins[0] != "*" {
		corsOptions.AllowCredentials = true
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(corsOptions))
	router.Use(middleware.Actor)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	if opts.MetricsPath != "" {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		router.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Payment gateway callbacks identify the member in the payload.
	router.Post("/webhooks/payments", h.paymentWebhook)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor)

		r.Route("/chamas", func(r chi.Router) {
			r.Get("/", h.memberChamas)
			r.Post("/", h.createChama)
			r.Get("/available", h.availableChamas)

			r.Route("/{chamaID}", func(r chi.Router) {
				r.Get("/", h.getChama)
				r.Post("/join", h.joinChama)
				r.Delete("/members/{memberID}", h.removeMember)

				r.Get("/invites", h.listInvites)
				r.Post("/invites", h.issueInvite)
				r.Delete("/invites/{code}", h.revokeInvite)

				r.Get("/transactions", h.listTransactions)
				r.Post("/transactions", h.recordTransaction)
				r.Post("/contributions", h.recordContribution)
				r.Post("/expenses", h.recordExpense)
				r.Post("/withdrawals", h.requestWithdrawal)

				r.Get("/loans", h.listLoans)
				r.Post("/loans", h.requestLoan)

				r.Get("/voting", h.votingSession)
				r.Post("/voting", h.startVoting)
				r.Post("/voting/votes", h.castVote)
			})
		})

		r.Post("/invites/{code}/redeem", h.redeemInvite)

		r.Get("/transactions/{txID}", h.getTransaction)
		r.Post("/transactions/{txID}/approve", h.approveTransaction)
		r.Post("/transactions/{txID}/reject", h.rejectTransaction)

		r.Get("/loans/{loanID}", h.getLoan)
		r.Post("/loans/{loanID}/approve", h.approveLoan)
		r.Post("/loans/{loanID}/reject", h.rejectLoan)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Get("/unread-count", h.unreadCount)
			r.Post("/read-all", h.markAllRead)
			r.Get("/preferences", h.getPreferences)
			r.Put("/preferences", h.setPreferences)
			r.Post("/{notificationID}/read", h.markRead)
			r.Delete("/{notificationID}", h.deleteNotification)
		})
	})

	return router
}

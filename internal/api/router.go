package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/api/guard"
	"github.com/digital-event-scheduler/server/internal/api/handlers"
	"github.com/digital-event-scheduler/server/internal/api/middleware"
	"github.com/digital-event-scheduler/server/internal/auth"
	"github.com/digital-event-scheduler/server/internal/config"
	"github.com/digital-event-scheduler/server/internal/domain/events"
	"github.com/digital-event-scheduler/server/internal/domain/users"
	"github.com/digital-event-scheduler/server/internal/metrics"
)

// Dependencies are constructed once at startup and handed in explicitly;
// there is no ambient store handle anywhere.
type Dependencies struct {
	Tokens     *auth.TokenService
	Users      *users.Service
	Events     *events.Service
	UserStore  users.Store
	EventStore events.Store
}

// NewRouter wires every endpoint with its declared gate subset: public
// browse routes carry no gates, owner mutations carry token+identity,
// admin routes add the role gate, and delete swaps in the ownership gate.
func NewRouter(cfg config.Config, logger zerolog.Logger, deps Dependencies) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Tokens, cfg.Auth.JWTExpiry, cfg.Environment, logger)
	usersHandler := handlers.NewUsersHandler(deps.Users, logger)
	eventsHandler := handlers.NewEventsHandler(deps.Events, logger)
	adminHandler := handlers.NewAdminHandler(deps.Events, deps.Users, logger)
	publicHandler := handlers.NewPublicHandler(deps.Events, logger)

	tokenGate := guard.TokenGate{Tokens: deps.Tokens}
	identityGate := guard.IdentityGate{}
	ownershipGate := guard.OwnershipGate{Events: deps.EventStore, Users: deps.UserStore}
	roleGate := guard.RoleGate{Users: deps.UserStore}

	owner := guard.Chain(logger, tokenGate, identityGate)
	admin := guard.Chain(logger, tokenGate, identityGate, roleGate)
	ownerOrAdmin := guard.Chain(logger, tokenGate, identityGate, ownershipGate)

	mux := http.NewServeMux()

	mux.Handle("/", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(publicHandler.Root),
	}))
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/metrics", metrics.Handler())

	// Open endpoints
	mux.Handle("/users", post(http.HandlerFunc(usersHandler.Register)))
	mux.Handle("/jwt", post(http.HandlerFunc(authHandler.IssueToken)))
	mux.Handle("/logout", post(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("/get-all-events", get(http.HandlerFunc(publicHandler.Search)))
	mux.Handle("/get-event-by-id", get(http.HandlerFunc(publicHandler.GetByID)))
	mux.Handle("/up-coming-events", get(http.HandlerFunc(publicHandler.Upcoming)))
	mux.Handle("/count-events", get(http.HandlerFunc(publicHandler.Count)))

	// Owner endpoints: token validity + identity match
	mux.Handle("/user", post(owner(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("/user-type", post(owner(http.HandlerFunc(usersHandler.GetType))))
	mux.Handle("/add-event", post(owner(http.HandlerFunc(eventsHandler.Add))))
	mux.Handle("/my-events", post(owner(http.HandlerFunc(eventsHandler.MyEvents))))
	mux.Handle("/my-event", post(owner(http.HandlerFunc(eventsHandler.MyEvent))))
	mux.Handle("/edit-event", post(owner(http.HandlerFunc(eventsHandler.Edit))))
	mux.Handle("/my-event-count", post(owner(http.HandlerFunc(eventsHandler.MyEventCount))))

	// Delete: ownership gate falls back to the admin role
	mux.Handle("/delete-event", post(ownerOrAdmin(http.HandlerFunc(eventsHandler.Delete))))

	// Admin endpoints: role gate on top
	mux.Handle("/get-all-events-for-admin", post(admin(http.HandlerFunc(adminHandler.ListAllEvents))))
	mux.Handle("/event", post(admin(http.HandlerFunc(adminHandler.GetEvent))))
	mux.Handle("/event-approve", post(admin(http.HandlerFunc(adminHandler.Approve))))
	mux.Handle("/get-all-users", post(admin(http.HandlerFunc(adminHandler.ListUsers))))
	mux.Handle("/make-admin", post(admin(http.HandlerFunc(adminHandler.MakeAdmin))))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	return handler
}

func post(handler http.Handler) http.Handler {
	return methodMux(map[string]http.Handler{http.MethodPost: handler})
}

func get(handler http.Handler) http.Handler {
	return methodMux(map[string]http.Handler{http.MethodGet: handler})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

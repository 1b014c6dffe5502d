package routes

import (
	"pairup_server/controllers"
	"pairup_server/services"

	"github.com/gorilla/mux"
)

// RegisterEventRoutes sets up routes for event participation under /api/events
// and the manual sweep triggers under /api/admin
func RegisterEventRoutes(
	r *mux.Router,
	participationService *services.EventParticipationService,
	orchestratorService *services.EventOrchestratorService,
	reminderService *services.EventReminderService,
	store services.Store,
) {
	controller := controllers.NewEventController(participationService, orchestratorService, reminderService, store)

	eventRouter := r.PathPrefix("/api/events").Subrouter()
	eventRouter.HandleFunc("", controller.GetEventsForUser).Methods("GET")
	eventRouter.HandleFunc("/{eventId}", controller.GetEvent).Methods("GET")
	eventRouter.HandleFunc("/{eventId}/join", controller.Join).Methods("POST")
	eventRouter.HandleFunc("/{eventId}/vote", controller.Vote).Methods("POST")
	eventRouter.HandleFunc("/{eventId}/reminder-response", controller.ReminderResponse).Methods("POST")
	eventRouter.HandleFunc("/{eventId}/cancel", controller.Cancel).Methods("POST")

	adminRouter := r.PathPrefix("/api/admin").Subrouter()
	adminRouter.HandleFunc("/process-queues", controller.ProcessQueues).Methods("POST")
	adminRouter.HandleFunc("/events/{eventId}/backfill", controller.Backfill).Methods("POST")
	adminRouter.HandleFunc("/send-reminders", controller.SendReminders).Methods("POST")
}

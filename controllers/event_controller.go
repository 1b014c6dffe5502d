package controllers

import (
	"encoding/json"
	"net/http"

	"pairup_server/services"
	"pairup_server/utils"

	"github.com/gorilla/mux"
)

// EventController handles HTTP requests for event participation actions
type EventController struct {
	ParticipationService *services.EventParticipationService
	OrchestratorService  *services.EventOrchestratorService
	ReminderService      *services.EventReminderService
	Store                services.Store
}

// NewEventController creates a new EventController instance
func NewEventController(
	participationService *services.EventParticipationService,
	orchestratorService *services.EventOrchestratorService,
	reminderService *services.EventReminderService,
	store services.Store,
) *EventController {
	return &EventController{
		ParticipationService: participationService,
		OrchestratorService:  orchestratorService,
		ReminderService:      reminderService,
		Store:                store,
	}
}

type participantRequest struct {
	UserID string `json:"userId"`
}

// Join handles a user joining an event they were assigned to
func (ec *EventController) Join(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	event, participant, err := ec.ParticipationService.JoinEvent(r.Context(), eventID, req.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event":       event,
		"participant": participant,
	})
}

// Vote handles a venue vote submission
func (ec *EventController) Vote(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	var req struct {
		UserID        string `json:"userId"`
		VenueOptionID string `json:"venueOptionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.VenueOptionID == "" {
		http.Error(w, "userId and venueOptionId are required", http.StatusBadRequest)
		return
	}

	event, participant, err := ec.ParticipationService.SubmitVote(r.Context(), eventID, req.UserID, req.VenueOptionID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event":       event,
		"participant": participant,
	})
}

// ReminderResponse handles confirm/cancel replies to the 48h reminder
func (ec *EventController) ReminderResponse(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	var req struct {
		UserID string `json:"userId"`
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.Action == "" {
		http.Error(w, "userId and action are required", http.StatusBadRequest)
		return
	}

	event, participant, err := ec.ParticipationService.RespondToReminder(r.Context(), eventID, req.UserID, req.Action)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event":       event,
		"participant": participant,
	})
}

// Cancel handles a user canceling their participation
func (ec *EventController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	event, err := ec.ParticipationService.CancelParticipation(r.Context(), eventID, req.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event": event,
	})
}

// GetEvent returns one event with its participant records
func (ec *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]

	event, err := ec.Store.GetEvent(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	participants, err := ec.Store.QueryEventParticipants(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event":        event,
		"participants": participants,
	})
}

// GetEventsForUser returns the user's pending event assignments
func (ec *EventController) GetEventsForUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	profile, err := ec.Store.GetUserProfile(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pendingEvents": profile.PendingEvents,
	})
}

// ProcessQueues triggers one orchestrator sweep manually
func (ec *EventController) ProcessQueues(w http.ResponseWriter, r *http.Request) {
	if err := ec.OrchestratorService.ProcessAllQueues(r.Context()); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "queues processed"})
}

// Backfill triggers vacancy backfill for one event manually
func (ec *EventController) Backfill(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	if err := ec.OrchestratorService.FillEventVacancies(r.Context(), eventID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "vacancies processed"})
}

// SendReminders triggers one reminder sweep manually
func (ec *EventController) SendReminders(w http.ResponseWriter, r *http.Request) {
	if err := ec.ReminderService.SendUpcomingEventReminders(r.Context()); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "reminders processed"})
}

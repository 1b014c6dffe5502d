package controllers

import (
	"encoding/json"
	"net/http"

	"pairup_server/models"
	"pairup_server/services"
	"pairup_server/utils"
)

// PairMatchController handles HTTP requests for pair match operations
type PairMatchController struct {
	PairMatchService     *services.PairMatchService
	ParticipationService *services.EventParticipationService
}

// NewPairMatchController creates a new PairMatchController instance
func NewPairMatchController(pairMatchService *services.PairMatchService, participationService *services.EventParticipationService) *PairMatchController {
	return &PairMatchController{PairMatchService: pairMatchService, ParticipationService: participationService}
}

type pairRequest struct {
	UserA string `json:"userA"`
	UserB string `json:"userB"`
}

// MutualLike creates or recomputes the PairMatch after a mutual like
func (pc *PairMatchController) MutualLike(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserA == "" || req.UserB == "" || req.UserA == req.UserB {
		http.Error(w, "userA and userB are required and must differ", http.StatusBadRequest)
		return
	}

	pair, err := pc.PairMatchService.UpsertPairMatch(r.Context(), req.UserA, req.UserB)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pairMatch": pair,
	})
}

// Unmatch retires the pair; a pair tied to a pending event is canceled out of
// it first, on behalf of the unmatching user.
func (pc *PairMatchController) Unmatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		pairRequest
		RequestedBy string `json:"requestedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserA == "" || req.UserB == "" {
		http.Error(w, "userA and userB are required", http.StatusBadRequest)
		return
	}
	if req.RequestedBy == "" {
		req.RequestedBy = req.UserA
	}

	pairKey := models.BuildPairKey(req.UserA, req.UserB)
	if pair, err := pc.PairMatchService.Store.GetPairMatch(r.Context(), pairKey); err == nil && pair.PendingEventID != "" {
		if _, err := pc.ParticipationService.CancelParticipation(r.Context(), pair.PendingEventID, req.RequestedBy); err != nil {
			utils.WriteError(w, err)
			return
		}
	}

	pair, err := pc.PairMatchService.Unmatch(r.Context(), req.UserA, req.UserB)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pairMatch": pair,
	})
}

// GetPairsForUser returns all active pairs containing the user
func (pc *PairMatchController) GetPairsForUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	pairs, err := pc.PairMatchService.QueryForUser(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pairMatches": pairs,
	})
}

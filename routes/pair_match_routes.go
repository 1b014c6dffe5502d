package routes

import (
	"pairup_server/controllers"
	"pairup_server/services"

	"github.com/gorilla/mux"
)

// RegisterPairMatchRoutes sets up routes for pair match operations under /api/pairs
func RegisterPairMatchRoutes(r *mux.Router, pairMatchService *services.PairMatchService, participationService *services.EventParticipationService) {
	controller := controllers.NewPairMatchController(pairMatchService, participationService)

	pairRouter := r.PathPrefix("/api/pairs").Subrouter()

	pairRouter.HandleFunc("/like", controller.MutualLike).Methods("POST")
	pairRouter.HandleFunc("/unmatch", controller.Unmatch).Methods("POST")
	pairRouter.HandleFunc("", controller.GetPairsForUser).Methods("GET")
}

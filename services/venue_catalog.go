package services

import "pairup_server/models"

// VenueCatalog is the static configuration of candidate venues per event
// type, at most three per type.
type VenueCatalog struct{}

var venueOptions = map[string][]models.VenueOption{
	models.EventTypeCoffee: {
		{VenueID: "coffee-1", Name: "Harbor Roasters", Address: "12 Dockside Lane"},
		{VenueID: "coffee-2", Name: "Little Fern Espresso", Address: "88 Maple Street"},
		{VenueID: "coffee-3", Name: "The Daily Grind", Address: "5 Station Plaza"},
	},
	models.EventTypeBar: {
		{VenueID: "bar-1", Name: "The Copper Still", Address: "41 Old Market Row"},
		{VenueID: "bar-2", Name: "Hop & Anchor", Address: "230 Riverside Walk"},
		{VenueID: "bar-3", Name: "Velvet Hour", Address: "17 Union Square"},
	},
	models.EventTypeDinner: {
		{VenueID: "dinner-1", Name: "Osteria Lumaca", Address: "63 Vine Street"},
		{VenueID: "dinner-2", Name: "Saffron Table", Address: "9 Garden Court"},
		{VenueID: "dinner-3", Name: "The Brass Fork", Address: "110 King's Road"},
	},
	models.EventTypeHiking: {
		{VenueID: "hiking-1", Name: "Eagle Ridge Trailhead", Address: "Route 7 Overlook"},
		{VenueID: "hiking-2", Name: "Fern Hollow Loop", Address: "Valley Park North Gate"},
	},
	models.EventTypeDogWalking: {
		{VenueID: "dogwalk-1", Name: "Willow Creek Dog Park", Address: "2 Creekside Drive"},
		{VenueID: "dogwalk-2", Name: "Meadowlands Off-Leash Area", Address: "Meadow Lane Entrance"},
		{VenueID: "dogwalk-3", Name: "Harborfront Promenade", Address: "Pier 4"},
	},
	models.EventTypeBoardGames: {
		{VenueID: "games-1", Name: "Checkmate Cafe", Address: "27 Birch Avenue"},
		{VenueID: "games-2", Name: "The Dice Tower", Address: "301 Arcade Street"},
	},
}

// OptionsFor returns the candidate venues for an event type. Unknown types get
// no options.
func (c *VenueCatalog) OptionsFor(eventType string) []models.VenueOption {
	options := venueOptions[eventType]
	out := make([]models.VenueOption, len(options))
	copy(out, options)
	return out
}

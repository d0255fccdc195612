package typed

import "github.com/aretw0/hbnb/pkg/core"

type User struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (User) Kind() string { return core.KindUser }

type State struct {
	Name string `json:"name"`
}

func (State) Kind() string { return core.KindState }

type City struct {
	StateID string `json:"state_id"`
	Name    string `json:"name"`
}

func (City) Kind() string { return core.KindCity }

type Amenity struct {
	Name string `json:"name"`
}

func (Amenity) Kind() string { return core.KindAmenity }

// Place carries the only numeric and list fields of the schema.
type Place struct {
	CityID          string   `json:"city_id"`
	UserID          string   `json:"user_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	NumberRooms     int      `json:"number_rooms"`
	NumberBathrooms int      `json:"number_bathrooms"`
	MaxGuest        int      `json:"max_guest"`
	PriceByNight    int      `json:"price_by_night"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	AmenityIDs      []string `json:"amenity_ids"`
}

func (Place) Kind() string { return core.KindPlace }

type Review struct {
	PlaceID string `json:"place_id"`
	UserID  string `json:"user_id"`
	Text    string `json:"text"`
}

func (Review) Kind() string { return core.KindReview }

package events

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"evently/db"
	"evently/globals"
	"evently/models"
	"evently/mq"
	"evently/rdx"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const listCacheKey = "cache:events:list"

// Service handles event CRUD.
type Service struct {
	db      *db.Database
	cache   *rdx.Cache
	emitter *mq.Emitter
}

func NewService(database *db.Database, cache *rdx.Cache, emitter *mq.Emitter) *Service {
	return &Service{db: database, cache: cache, emitter: emitter}
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Price       float64   `json:"price"`
	IsFree      bool      `json:"is_free"`
	CategoryID  string    `json:"category"`
	WebsiteURL  string    `json:"website_url"`
}

// validateEvent enforces the event invariants: end not before start, no
// negative price, and a zero price whenever the event is free.
func validateEvent(req eventRequest) error {
	if req.Title == "" {
		return errors.New("title is required")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return errors.New("end_date must not be before start_date")
	}
	if req.Price < 0 {
		return errors.New("price must not be negative")
	}
	if req.IsFree && req.Price != 0 {
		return errors.New("price must be 0 for a free event")
	}
	return nil
}

// CreateEvent inserts a new event owned by the authenticated organizer.
func (s *Service) CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateEvent(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	organizerID := utils.GetUserIDFromRequest(r)
	if organizerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	now := time.Now().UTC()
	event := models.Event{
		EventID:     utils.GenerateID(14),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Price:       req.Price,
		IsFree:      req.IsFree,
		CategoryID:  req.CategoryID,
		OrganizerID: organizerID,
		WebsiteURL:  req.WebsiteURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx := r.Context()
	if _, err := s.db.EventsCollection.InsertOne(ctx, event); err != nil {
		log.Printf("Error inserting event into MongoDB: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving event")
		return
	}

	s.cache.Del(ctx, listCacheKey)
	go s.emitter.Emit(globals.Ctx, "event-created", mq.Index{
		EntityType: "event", EntityId: event.EventID, Method: "POST",
	})

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Event created successfully!",
		"eventId": event.EventID,
	})
}

// GetEvents returns all event documents, served from the redis cache when
// fresh.
func (s *Service) GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var cached []models.Event
	if s.cache.GetJSON(ctx, listCacheKey, &cached) {
		utils.RespondWithJSON(w, http.StatusOK, cached)
		return
	}

	events, err := utils.FindAndDecode[models.Event](ctx, s.db.EventsCollection, bson.M{})
	if err != nil {
		log.Println("GetEvents: find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	s.cache.SetJSON(ctx, listCacheKey, events, 60*time.Second)
	utils.RespondWithJSON(w, http.StatusOK, events)
}

// GetEvent returns a single event by id.
func (s *Service) GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var event models.Event
	err := s.db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": ps.ByName("eventid")}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Println("GetEvent: find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, event)
}

// UpdateEvent lets the organizer change event fields; invariants are
// re-checked against the merged document.
func (s *Service) UpdateEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateEvent(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	update := bson.M{"$set": bson.M{
		"title":       req.Title,
		"description": req.Description,
		"location":    req.Location,
		"start_date":  req.StartDate.UTC(),
		"end_date":    req.EndDate.UTC(),
		"price":       req.Price,
		"is_free":     req.IsFree,
		"categoryid":  req.CategoryID,
		"website_url": req.WebsiteURL,
		"updated_at":  time.Now().UTC(),
	}}

	res, err := s.db.EventsCollection.UpdateOne(ctx, bson.M{"eventid": eventID, "organizerid": userID}, update)
	if err != nil {
		log.Println("UpdateEvent: update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	s.cache.Del(ctx, listCacheKey)
	go s.emitter.Emit(globals.Ctx, "event-updated", mq.Index{
		EntityType: "event", EntityId: eventID, Method: "PUT",
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Event updated"})
}

// DeleteEvent removes an event owned by the caller.
func (s *Service) DeleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx := r.Context()
	res, err := s.db.EventsCollection.DeleteOne(ctx, bson.M{"eventid": eventID, "organizerid": userID})
	if err != nil {
		log.Println("DeleteEvent: delete error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	s.cache.Del(ctx, listCacheKey)
	go s.emitter.Emit(globals.Ctx, "event-deleted", mq.Index{
		EntityType: "event", EntityId: eventID, Method: "DELETE",
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Event deleted"})
}

package orders

import (
	"log"
	"net/http"
	"regexp"

	"evently/models"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetOrdersByEvent joins orders with their buyer and event and filters by
// a case-insensitive substring of the buyer's full name. Used by the
// organizer's sales report page.
func (s *Service) GetOrdersByEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	if eventID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Event ID is required")
		return
	}
	search := r.URL.Query().Get("search")

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "eventid", Value: eventID}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "buyerid"},
			{Key: "foreignField", Value: "userid"},
			{Key: "as", Value: "buyer"},
		}}},
		bson.D{{Key: "$unwind", Value: "$buyer"}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "events"},
			{Key: "localField", Value: "eventid"},
			{Key: "foreignField", Value: "eventid"},
			{Key: "as", Value: "event"},
		}}},
		bson.D{{Key: "$unwind", Value: "$event"}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "orderid", Value: 1},
			{Key: "total_amount", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "eventid", Value: 1},
			{Key: "event_title", Value: "$event.title"},
			{Key: "buyer", Value: bson.D{{Key: "$concat", Value: bson.A{"$buyer.first_name", " ", "$buyer.last_name"}}}},
		}}},
	}

	if search != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "buyer", Value: bson.D{
				{Key: "$regex", Value: regexp.QuoteMeta(search)},
				{Key: "$options", Value: "i"},
			}},
		}}})
	}

	ctx := r.Context()
	cur, err := s.db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Println("GetOrdersByEvent: aggregate error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	defer cur.Close(ctx)

	orders := []models.OrderByEvent{}
	if err := cur.All(ctx, &orders); err != nil {
		log.Println("GetOrdersByEvent: decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrdersByUser lists the requesting user's orders, newest first, each
// with its event and the event's organizer. 1-based pages;
// totalPages = ceil(count/limit).
func (s *Service) GetOrdersByUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	pg := utils.ParsePagination(r, 3, 50)
	ctx := r.Context()

	filter := bson.M{"buyerid": userID}
	count, err := s.db.OrdersCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Println("GetOrdersByUser: count error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "buyerid", Value: userID}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		bson.D{{Key: "$skip", Value: pg.Skip}},
		bson.D{{Key: "$limit", Value: int64(pg.Limit)}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "events"},
			{Key: "localField", Value: "eventid"},
			{Key: "foreignField", Value: "eventid"},
			{Key: "as", Value: "event"},
		}}},
		bson.D{{Key: "$unwind", Value: "$event"}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "event.organizerid"},
			{Key: "foreignField", Value: "userid"},
			{Key: "as", Value: "organizer"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$organizer"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "orderid", Value: 1},
			{Key: "eventid", Value: 1},
			{Key: "buyerid", Value: 1},
			{Key: "total_amount", Value: 1},
			{Key: "currency", Value: 1},
			{Key: "razorpay_order_id", Value: 1},
			{Key: "razorpay_payment_id", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "event", Value: 1},
			{Key: "organizer", Value: bson.D{
				{Key: "userid", Value: "$organizer.userid"},
				{Key: "first_name", Value: "$organizer.first_name"},
				{Key: "last_name", Value: "$organizer.last_name"},
			}},
		}}},
	}

	cur, err := s.db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Println("GetOrdersByUser: aggregate error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	defer cur.Close(ctx)

	data := []models.OrderWithEvent{}
	if err := cur.All(ctx, &data); err != nil {
		log.Println("GetOrdersByUser: decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data":       data,
		"totalPages": utils.TotalPages(count, pg.Limit),
	})
}

package orders

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"evently/globals"
	"evently/mq"
	"evently/razorpay"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
)

// Checkout creates a payment intent with the gateway for an event and
// returns the redirect target carrying the gateway order id. No order is
// persisted here; that happens only after the callback is verified.
func (s *Service) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	buyerID := utils.GetUserIDFromRequest(r)
	if buyerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx := r.Context()
	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Println("Checkout: event lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}

	amount := razorpay.MinorUnits(chargeAmount(event.Price, event.IsFree))
	receipt := razorpay.ReceiptID(event.EventID, buyerID)
	notes := map[string]string{
		"eventId": event.EventID,
		"buyerId": buyerID,
	}

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, amount, Currency, receipt, notes)
	if err != nil {
		var gwErr *razorpay.GatewayError
		switch {
		case errors.As(err, &gwErr):
			// surface the gateway's own error payload unchanged
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(gwErr.StatusCode)
			w.Write(gwErr.Body)
		case errors.Is(err, razorpay.ErrGatewayUnavailable):
			log.Println("Checkout: gateway unavailable:", err)
			utils.RespondWithError(w, http.StatusBadGateway, "Payment gateway unavailable")
		default:
			log.Println("Checkout: gateway error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create payment order")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"redirect_url":      "/payment?order_id=" + gatewayOrderID,
		"razorpay_order_id": gatewayOrderID,
		"amount":            amount,
		"currency":          Currency,
	})
}

// Confirm consumes the gateway's client-side callback. The signature is
// verified server-side before anything is written; a replay of the same
// callback returns the order already persisted.
func (s *Service) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
		EventID           string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" || req.EventID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid parameters")
		return
	}

	buyerID := utils.GetUserIDFromRequest(r)
	if buyerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		log.Printf("Confirm: signature mismatch for gateway order %s", req.RazorpayOrderID)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payment signature")
		return
	}

	ctx := r.Context()
	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Println("Confirm: event lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}

	order := newOrder(event.EventID, buyerID, chargeAmount(event.Price, event.IsFree), req.RazorpayOrderID, req.RazorpayPaymentID)
	persisted, err := s.createOrder(ctx, order)
	if err != nil {
		log.Println("Confirm: order insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save order")
		return
	}

	if persisted.OrderID == order.OrderID {
		go s.emitter.Emit(globals.Ctx, "order-created", mq.Index{
			EntityType: "order", EntityId: persisted.OrderID, Method: "POST",
		})
		utils.RespondWithJSON(w, http.StatusCreated, persisted)
		return
	}

	// replayed confirmation: same gateway order already persisted
	utils.RespondWithJSON(w, http.StatusOK, persisted)
}

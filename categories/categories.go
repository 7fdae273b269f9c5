package categories

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"evently/db"
	"evently/models"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type Service struct {
	db *db.Database
}

func NewService(database *db.Database) *Service {
	return &Service{db: database}
}

func (s *Service) CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	category := models.Category{
		CategoryID: utils.GenerateID(14),
		Name:       req.Name,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := s.db.CategoriesCollection.InsertOne(r.Context(), category); err != nil {
		log.Println("CreateCategory: insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save category")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, category)
}

func (s *Service) GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categories, err := utils.FindAndDecode[models.Category](r.Context(), s.db.CategoriesCollection, bson.M{})
	if err != nil {
		log.Println("GetCategories: find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	utils.RespondWithJSON(w, http.StatusOK, categories)
}

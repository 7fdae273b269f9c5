package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"evently/db"
	"evently/globals"
	"evently/middleware"
	"evently/models"
	"evently/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 24 * time.Hour

type Service struct {
	db *db.Database
}

func NewService(database *db.Database) *Service {
	return &Service{db: database}
}

// CreateToken signs an access token for a user.
func CreateToken(user models.User) (string, error) {
	claims := middleware.Claims{
		Username: user.Username,
		UserID:   user.UserID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func (s *Service) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Username == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Register: hash error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	now := time.Now().UTC()
	user := models.User{
		UserID:       utils.GenerateID(14),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         []string{"user"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.db.UserCollection.InsertOne(r.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Username already taken")
			return
		}
		log.Println("Register: insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	token, err := CreateToken(user)
	if err != nil {
		log.Println("Register: token error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"token":  token,
		"userid": user.UserID,
	})
}

func (s *Service) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Username == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user models.User
	err := s.db.UserCollection.FindOne(r.Context(), bson.M{"username": input.Username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Println("Login: lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := CreateToken(user)
	if err != nil {
		log.Println("Login: token error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":  token,
		"userid": user.UserID,
	})
}

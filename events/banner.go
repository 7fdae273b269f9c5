package events

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var eventpicUploadPath = "./static/eventpic"

// UploadBanner stores an event banner image, sniffing the content type
// before writing, and generates a thumbnail for listing pages.
func (s *Service) UploadBanner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}

	file, _, err := r.FormFile("banner")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Banner file missing")
		return
	}
	defer file.Close()

	buff := make([]byte, 512)
	if _, err := file.Read(buff); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading file")
		return
	}
	if !strings.HasPrefix(http.DetectContentType(buff), "image/") {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid file type")
		return
	}
	file.Seek(0, io.SeekStart)

	dir := filepath.Join(eventpicUploadPath, "banner")
	if err := os.MkdirAll(dir, 0755); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating directory for banner")
		return
	}

	out, err := os.Create(filepath.Join(dir, filepath.Base(eventID+".jpg")))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving banner")
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving banner")
		return
	}

	utils.CreateThumb(eventID, dir, ".jpg", 300, 200)

	bannerURL := "/static/eventpic/banner/" + eventID + ".jpg"
	ctx := r.Context()
	res, err := s.db.EventsCollection.UpdateOne(ctx,
		bson.M{"eventid": eventID, "organizerid": userID},
		bson.M{"$set": bson.M{"banner_url": bannerURL, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		log.Println("UploadBanner: update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving banner")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}

	s.cache.Del(ctx, listCacheKey)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"banner_url": bannerURL})
}

package utils

import (
	"log"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// CreateThumb writes a <id>_thumb<ext> next to the source banner image.
func CreateThumb(id, dir, ext string, width, height int) {
	src, err := imaging.Open(filepath.Join(dir, id+ext))
	if err != nil {
		log.Println("thumb: open failed:", err)
		return
	}
	thumb := imaging.Thumbnail(src, width, height, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(dir, id+"_thumb"+ext)); err != nil {
		log.Println("thumb: save failed:", err)
	}
}

package reconcile

import (
	"github.com/agentstation/catalogbridge/internal/target"
)

// ProcessedImage is a source image that made it into the target, at its source index.
type ProcessedImage struct {
	MediaID  string
	Position int
}

// MergeMedia combines a product's existing media links with the images
// processed this run. A processed image whose asset is already linked keeps
// that link's id and moves to the new position; others get a new link.
// Links not touched this run are kept as they are. The result has one link
// per media id, the last write winning, existing links first in their
// original order. coverID is the link id of the first processed image.
func MergeMedia(existing []target.ProductMedia, processed []ProcessedImage) ([]target.ProductMedia, string) {
	byMedia := make(map[string]int, len(existing)+len(processed))
	merged := make([]target.ProductMedia, 0, len(existing)+len(processed))

	for _, link := range existing {
		link.ProductID = ""
		if i, ok := byMedia[link.MediaID]; ok {
			merged[i] = link
			continue
		}
		byMedia[link.MediaID] = len(merged)
		merged = append(merged, link)
	}

	var coverID string
	for _, img := range processed {
		i, ok := byMedia[img.MediaID]
		if ok {
			merged[i].Position = img.Position
		} else {
			i = len(merged)
			byMedia[img.MediaID] = i
			merged = append(merged, target.ProductMedia{
				ID:       target.NewID(),
				MediaID:  img.MediaID,
				Position: img.Position,
			})
		}
		if coverID == "" {
			coverID = merged[i].ID
		}
	}
	return merged, coverID
}

package normalize

import (
	"fmt"
	"strings"

	"cafesync/internal/model"
)

const (
	anonymousAuthor = "Anonymous"
	menuLinkName    = "Link Menu"
)

// Cafe builds the cafes row for a raw record. Coordinates are left empty:
// they only come from the map link, in the backfill flow.
func Cafe(raw model.RawCafe) model.Cafe {
	return model.Cafe{
		Name:        raw.Name,
		Address:     raw.Address,
		Phone:       Phone(raw.Phone),
		Rating:      Rating(raw.Rating.String()),
		ReviewCount: ReviewCount(raw.ReviewCountText()),
		IsActive:    true,
	}
}

func Reviews(cafeID string, raw []model.RawReview) []model.Review {
	out := make([]model.Review, 0, len(raw))
	for _, r := range raw {
		author := strings.TrimSpace(r.Author)
		if author == "" {
			author = anonymousAuthor
		}

		comment := fmt.Sprintf("Rating by %s", author)
		if text := strings.TrimSpace(r.Text); text != "" {
			comment = fmt.Sprintf("[%s] %s", author, text)
		}

		out = append(out, model.Review{
			CafeID:  cafeID,
			Rating:  ReviewRating(r.Rating.String()),
			Comment: comment,
		})
	}
	return out
}

// Images devolve as imagens do menu como linhas de cafe_images.
func Images(cafeID string, menu *model.RawMenu) []model.CafeImage {
	if menu == nil {
		return nil
	}
	var out []model.CafeImage
	for _, u := range menu.Images {
		if u == "" {
			continue
		}
		out = append(out, model.CafeImage{CafeID: cafeID, ImageURL: u})
	}
	return out
}

// MenuLink stores the external menu link as a cafe_menus row, since the table
// has no column for it.
func MenuLink(cafeID string, menu *model.RawMenu) (model.CafeMenu, bool) {
	if menu == nil || menu.Link == nil || strings.TrimSpace(*menu.Link) == "" {
		return model.CafeMenu{}, false
	}
	return model.CafeMenu{
		CafeID:      cafeID,
		Name:        menuLinkName,
		Category:    model.MenuNonCoffee,
		Description: *menu.Link,
		IsAvailable: true,
	}, true
}

// HoursFor is Hours with the cafe id filled in.
func HoursFor(cafeID string, lines []string) []model.OperatingHours {
	hours := Hours(lines)
	for i := range hours {
		hours[i].CafeID = cafeID
	}
	return hours
}

package model

// Tabelas do backend remoto.
const (
	TableCafes          = "cafes"
	TableCafeImages     = "cafe_images"
	TableCafeMenus      = "cafe_menus"
	TableOperatingHours = "operating_hours"
	TableReviews        = "reviews"
	TableUserRoles      = "user_roles"
	TableProfiles       = "profiles"
)

// Cafe is a normalized record ready to be written to the cafes table.
// Name is the only natural key.
type Cafe struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Phone       *string  `json:"phone"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	IsActive    bool     `json:"is_active"`
}

func (c Cafe) Row() map[string]any {
	return map[string]any{
		"name":         c.Name,
		"address":      c.Address,
		"phone":        c.Phone,
		"latitude":     c.Latitude,
		"longitude":    c.Longitude,
		"rating":       c.Rating,
		"review_count": c.ReviewCount,
		"is_active":    c.IsActive,
	}
}

// StatsRow são os campos mutáveis atualizados quando o café já existe.
func (c Cafe) StatsRow() map[string]any {
	return map[string]any{
		"rating":       c.Rating,
		"review_count": c.ReviewCount,
	}
}

type OperatingHours struct {
	CafeID    string  `json:"cafe_id"`
	DayOfWeek int     `json:"day_of_week"` // 0 = domingo
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
	IsClosed  bool    `json:"is_closed"`
}

func (h OperatingHours) Row() map[string]any {
	return map[string]any{
		"cafe_id":     h.CafeID,
		"day_of_week": h.DayOfWeek,
		"open_time":   h.OpenTime,
		"close_time":  h.CloseTime,
		"is_closed":   h.IsClosed,
	}
}

type Review struct {
	CafeID         string  `json:"cafe_id"`
	UserID         *string `json:"user_id"`
	Rating         int     `json:"rating"`
	Comment        string  `json:"comment"`
	IsAdminCreated bool    `json:"is_admin_created"`
}

func (r Review) Row() map[string]any {
	return map[string]any{
		"cafe_id":          r.CafeID,
		"user_id":          r.UserID,
		"rating":           r.Rating,
		"comment":          r.Comment,
		"is_admin_created": r.IsAdminCreated,
	}
}

type CafeImage struct {
	ID        string `json:"id,omitempty"`
	CafeID    string `json:"cafe_id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

func (i CafeImage) Row() map[string]any {
	return map[string]any{
		"cafe_id":    i.CafeID,
		"image_url":  i.ImageURL,
		"is_primary": i.IsPrimary,
	}
}

// MenuCategory segue o enum da tabela cafe_menus.
type MenuCategory string

const (
	MenuCoffee    MenuCategory = "coffee"
	MenuNonCoffee MenuCategory = "non_coffee"
	MenuFood      MenuCategory = "food"
)

type CafeMenu struct {
	CafeID      string       `json:"cafe_id"`
	Name        string       `json:"name"`
	Price       float64      `json:"price"`
	Category    MenuCategory `json:"category"`
	Description string       `json:"description"`
	IsAvailable bool         `json:"is_available"`
}

func (m CafeMenu) Row() map[string]any {
	return map[string]any{
		"cafe_id":      m.CafeID,
		"name":         m.Name,
		"price":        m.Price,
		"category":     string(m.Category),
		"description":  m.Description,
		"is_available": m.IsAvailable,
	}
}

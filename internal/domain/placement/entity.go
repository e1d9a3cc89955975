package placement

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Type determines which page surface may select a placement
type Type string

const (
	TypeHeader       Type = "header"
	TypeFooter       Type = "footer"
	TypeSidebar      Type = "sidebar"
	TypeVertical     Type = "vertical"
	TypeBetweenPosts Type = "between-posts"
	TypePopup        Type = "popup"
	TypeCustom       Type = "custom"
)

// Format is the creative shape requested from the ad runtime.
// FormatAuto is resolved at render time.
type Format string

const (
	FormatAuto       Format = "auto"
	FormatHorizontal Format = "horizontal"
	FormatVertical   Format = "vertical"
	FormatRectangle  Format = "rectangle"
	FormatFluid      Format = "fluid"
)

// Location is the page-scope filter for a placement
type Location string

const (
	LocationAllPages  Location = "all-pages"
	LocationHome      Location = "home"
	LocationBlog      Location = "blog"
	LocationTravel    Location = "travel"
	LocationCommunity Location = "community"
)

// Placement represents a configured advertising slot
type Placement struct {
	ID         uuid.UUID      `db:"id"`
	Name       string         `db:"name"`
	Slot       string         `db:"slot"`
	Type       Type           `db:"type"`
	Format     Format         `db:"format"`
	Location   Location       `db:"location"`
	IsEnabled  bool           `db:"is_enabled"`
	Position   sql.NullInt64  `db:"position"`
	Responsive bool           `db:"responsive"`
	CustomCode sql.NullString `db:"custom_code"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// IsCustom reports whether the placement renders raw markup instead of a slot
func (p *Placement) IsCustom() bool {
	return p.Type == TypeCustom
}

// MatchesLocation reports whether the placement is eligible for a page section
func (p *Placement) MatchesLocation(page Location) bool {
	return p.Location == LocationAllPages || p.Location == page
}

package delivery

import "github.com/adhub/adhub-api/internal/domain/placement"

// Surface is a fixed position in the page layout that hosts at most one
// rendered ad unit per view.
type Surface string

const (
	SurfaceHeader       Surface = "header"
	SurfaceFooter       Surface = "footer"
	SurfaceSidebar      Surface = "sidebar"
	SurfaceVertical     Surface = "vertical"
	SurfaceBetweenPosts Surface = "between-posts"
	SurfacePopup        Surface = "popup"
)

// SurfaceConfig describes how a surface selects and renders placements.
// Header, footer and sidebar apply only the enablement filter; vertical
// and popup additionally filter by page location. Only between-posts runs
// the format experiment and carries a fallback slot.
type SurfaceConfig struct {
	Type           placement.Type
	FilterLocation bool
	Experiment     bool
	FallbackSlot   string
}

var surfaceConfigs = map[Surface]SurfaceConfig{
	SurfaceHeader:       {Type: placement.TypeHeader},
	SurfaceFooter:       {Type: placement.TypeFooter},
	SurfaceSidebar:      {Type: placement.TypeSidebar},
	SurfaceVertical:     {Type: placement.TypeVertical, FilterLocation: true},
	SurfaceBetweenPosts: {Type: placement.TypeBetweenPosts, FilterLocation: true, Experiment: true},
	SurfacePopup:        {Type: placement.TypePopup, FilterLocation: true},
}

// SurfaceConfigFor returns the config for a surface name. The fallback
// slot for between-posts comes from the environment, so callers pass it in.
func SurfaceConfigFor(s Surface, fallbackSlot string) (SurfaceConfig, bool) {
	cfg, ok := surfaceConfigs[s]
	if !ok {
		return SurfaceConfig{}, false
	}
	if s == SurfaceBetweenPosts {
		cfg.FallbackSlot = fallbackSlot
	}
	return cfg, true
}

package placement

import "errors"

var ErrPlacementNotFound = errors.New("placement not found")

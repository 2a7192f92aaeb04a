package trellis

// SnapPredicate reports whether an extractor handles an object.
type SnapPredicate func(o *Object) bool

// SnapExtractor returns an object's alignment points in scene space.
type SnapExtractor func(o *Object) []ScenePoint

type snapEntry struct {
	match   SnapPredicate
	extract SnapExtractor
}

// SnapPointRegistry maps objects to the points they offer for alignment.
// Extractors are consulted newest first, so a later registration overrides
// an earlier one whose predicate also matches. Each alignment engine or
// snapping caller owns its own registry.
type SnapPointRegistry struct {
	entries []snapEntry
}

// NewSnapPointRegistry returns a registry with the built-in extractors:
// rects and images offer corners, edge midpoints and center; polygons offer
// every vertex and their center.
func NewSnapPointRegistry() *SnapPointRegistry {
	r := &SnapPointRegistry{}
	r.Register(func(o *Object) bool { return o.Kind == KindRect || o.Kind == KindImage }, RectSnapPoints)
	r.Register(func(o *Object) bool { return o.Kind == KindPolygon }, PolygonSnapPoints)
	return r
}

// Register adds an extractor. It takes precedence over every extractor
// registered before it.
func (r *SnapPointRegistry) Register(match SnapPredicate, extract SnapExtractor) {
	if match == nil || extract == nil {
		panic("trellis: snap point predicate and extractor must be non-nil")
	}
	r.entries = append(r.entries, snapEntry{match, extract})
}

// Extract returns o's snap points using the newest matching extractor, or
// DefaultSnapPoints when none matches.
func (r *SnapPointRegistry) Extract(o *Object) []ScenePoint {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].match(o) {
			return r.entries[i].extract(o)
		}
	}
	return DefaultSnapPoints(o)
}

// DefaultSnapPoints returns the four rotation-aware corners and the center.
func DefaultSnapPoints(o *Object) []ScenePoint {
	k := o.Corners()
	return []ScenePoint{k.TL, k.TR, k.BR, k.BL, o.CenterPoint()}
}

// RectSnapPoints returns the four corners, the four edge midpoints and the
// center, all taken from the rotation-aware corners.
func RectSnapPoints(o *Object) []ScenePoint {
	k := o.Corners()
	return []ScenePoint{
		k.TL, k.TR, k.BR, k.BL,
		midpoint(k.TL, k.TR),
		midpoint(k.TR, k.BR),
		midpoint(k.BR, k.BL),
		midpoint(k.BL, k.TL),
		o.CenterPoint(),
	}
}

// PolygonSnapPoints returns every vertex in scene space and the center.
func PolygonSnapPoints(o *Object) []ScenePoint {
	if len(o.Points) == 0 {
		return DefaultSnapPoints(o)
	}
	pts := make([]ScenePoint, 0, len(o.Points)+1)
	for i := range o.Points {
		pts = append(pts, o.VertexToScene(i))
	}
	return append(pts, o.CenterPoint())
}

func midpoint(a, b ScenePoint) ScenePoint {
	return ScenePoint{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// --- Cache ---

type cachedSnapPoints struct {
	fp     Fingerprint
	points []ScenePoint
}

// snapPointCache memoizes extracted points per object while the object's
// fingerprint stays the same. Single-threaded like the canvas it serves.
type snapPointCache struct {
	registry *SnapPointRegistry
	entries  map[*Object]cachedSnapPoints
}

func newSnapPointCache(r *SnapPointRegistry) *snapPointCache {
	return &snapPointCache{registry: r, entries: make(map[*Object]cachedSnapPoints)}
}

// points returns o's snap points, extracting them again only when its
// geometry changed since the last call.
func (c *snapPointCache) points(o *Object) []ScenePoint {
	fp := o.Fingerprint()
	if e, ok := c.entries[o]; ok && e.fp == fp {
		return e.points
	}
	pts := c.registry.Extract(o)
	c.entries[o] = cachedSnapPoints{fp: fp, points: pts}
	return pts
}

// forget drops the entry for o.
func (c *snapPointCache) forget(o *Object) {
	delete(c.entries, o)
}

// clear drops every entry.
func (c *snapPointCache) clear() {
	clear(c.entries)
}

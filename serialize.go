package trellis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// SceneDocument is the persisted form of a canvas.
type SceneDocument struct {
	Objects           []ObjectRecord     `json:"objects"`
	BackgroundImage   *BackgroundRecord  `json:"backgroundImage,omitempty"`
	BackgroundFilters *BackgroundFilters `json:"backgroundFilters,omitempty"`
	LockLightMode     bool               `json:"lockLightMode,omitempty"`
	// Background is the theme color some writers emit. It is never written
	// and is dropped on load.
	Background string `json:"background,omitempty"`
}

// BackgroundRecord embeds the background image as a data URL.
type BackgroundRecord struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ObjectRecord is one persisted object. Left/Top follow OriginX/OriginY,
// which may use either the corner or the center convention.
type ObjectRecord struct {
	Type        string       `json:"type"`
	OriginX     OriginX      `json:"originX"`
	OriginY     OriginY      `json:"originY"`
	Left        float64      `json:"left"`
	Top         float64      `json:"top"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	ScaleX      float64      `json:"scaleX"`
	ScaleY      float64      `json:"scaleY"`
	Angle       float64      `json:"angle"`
	FlipX       bool         `json:"flipX"`
	FlipY       bool         `json:"flipY"`
	Fill        string       `json:"fill"`
	Stroke      string       `json:"stroke"`
	StrokeWidth float64      `json:"strokeWidth"`
	Opacity     *float64     `json:"opacity,omitempty"`
	Visible     *bool        `json:"visible,omitempty"`
	RX          float64      `json:"rx,omitempty"`
	RY          float64      `json:"ry,omitempty"`
	Points      []LocalPoint `json:"points,omitempty"`
	PathOffset  *LocalPoint  `json:"pathOffset,omitempty"`
	Src         string       `json:"src,omitempty"`

	Data             ObjectData    `json:"data"`
	ShapeType        string        `json:"shapeType,omitempty"`
	Controls         *ControlStyle `json:"controls,omitempty"`
	ResizeDimensions bool          `json:"resizeDimensions,omitempty"`
	Locks
}

// SaveOptions configures SerializeCanvas.
type SaveOptions struct {
	// CornerOrigins writes Left/Top as the top-left corner of the rotated
	// frame, the convention older readers expect.
	CornerOrigins bool
	// LegacyStrokeBase also writes the base stroke width into
	// data.strokeWidthBase.
	LegacyStrokeBase bool
}

// LoadOptions configures LoadCanvas.
type LoadOptions struct {
	// Filter, when set, drops objects it returns false for.
	Filter func(o *Object) bool
}

// EncodeScene builds the document for c. Zoom-scaled stroke widths and
// visual radii are written as their base values; the live objects are not
// modified.
func EncodeScene(c *Canvas, opts SaveOptions) (*SceneDocument, error) {
	doc := &SceneDocument{
		Objects:       make([]ObjectRecord, 0, len(c.objects)),
		LockLightMode: c.LockLightMode,
	}
	for _, o := range c.objects {
		doc.Objects = append(doc.Objects, c.objectRecord(o, opts))
	}
	if bg := c.background; bg != nil {
		src, err := bg.encoded()
		if err != nil {
			return nil, fmt.Errorf("encode background image: %w", err)
		}
		w, h := bg.size()
		doc.BackgroundImage = &BackgroundRecord{Src: src, Width: w, Height: h}
		f := bg.filters
		doc.BackgroundFilters = &f
	}
	return doc, nil
}

// SerializeCanvas encodes c as a JSON scene document.
func SerializeCanvas(c *Canvas, opts SaveOptions) ([]byte, error) {
	doc, err := EncodeScene(c, opts)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal scene document: %w", err)
	}
	Logger().Debug("scene serialized", "objects", len(doc.Objects), "bytes", len(data))
	return data, nil
}

func (c *Canvas) objectRecord(o *Object, opts SaveOptions) ObjectRecord {
	opacity, visible := o.Opacity, o.Visible
	controls := o.Controls
	rec := ObjectRecord{
		Type:             o.Kind.String(),
		OriginX:          o.OriginX,
		OriginY:          o.OriginY,
		Left:             o.Left,
		Top:              o.Top,
		Width:            o.Width,
		Height:           o.Height,
		ScaleX:           o.ScaleX,
		ScaleY:           o.ScaleY,
		Angle:            o.Angle,
		FlipX:            o.FlipX,
		FlipY:            o.FlipY,
		Fill:             o.Fill,
		Stroke:           o.Stroke,
		StrokeWidth:      c.baseStrokeWidth(o),
		Opacity:          &opacity,
		Visible:          &visible,
		Src:              o.Src,
		Data:             o.Data,
		ShapeType:        o.ShapeType,
		Controls:         &controls,
		ResizeDimensions: o.ResizeDimensions,
		Locks:            o.Locks,
	}
	rec.RX, rec.RY = c.baseRadius(o)
	if o.Kind == KindPolygon {
		rec.Points = append([]LocalPoint(nil), o.Points...)
		off := o.PathOffset
		rec.PathOffset = &off
	}
	if opts.CornerOrigins {
		p := o.PointByOrigin(OriginLeft, OriginTop)
		rec.OriginX, rec.OriginY = OriginLeft, OriginTop
		rec.Left, rec.Top = p.X, p.Y
	}
	if opts.LegacyStrokeBase {
		rec.Data.StrokeWidthBase = rec.StrokeWidth
	} else {
		rec.Data.StrokeWidthBase = 0
	}
	return rec
}

// DecodeScene parses a JSON scene document. The theme background color is
// dropped.
func DecodeScene(data []byte) (*SceneDocument, error) {
	var doc SceneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scene document: %w", err)
	}
	doc.Background = ""
	return &doc, nil
}

// LoadCanvas replaces c's contents with the document in data and returns
// the live objects in paint order. Objects saved with corner origins are
// converted to the center convention without moving visually, and the
// derived state documents omit is reapplied. On error the canvas is left
// unchanged.
func LoadCanvas(ctx context.Context, c *Canvas, data []byte, opts LoadOptions) ([]*Object, error) {
	if c == nil || c.disposed {
		return nil, ErrNoCanvas
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := DecodeScene(data)
	if err != nil {
		return nil, err
	}

	objs := make([]*Object, 0, len(doc.Objects))
	for i, rec := range doc.Objects {
		o, err := objectFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if opts.Filter != nil && !opts.Filter(o) {
			continue
		}
		ApplyObjectDefaults(c, o)
		objs = append(objs, o)
	}

	var bg image.Image
	if doc.BackgroundImage != nil && doc.BackgroundImage.Src != "" {
		bg, err = decodeDataURL(doc.BackgroundImage.Src)
		if err != nil {
			return nil, fmt.Errorf("decode background image: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.CancelTransform()
	c.Clear()
	if bg != nil {
		c.setBackground(bg)
		c.background.dataURL = doc.BackgroundImage.Src
		if doc.BackgroundFilters != nil {
			c.background.filters = *doc.BackgroundFilters
		}
	}
	c.LockLightMode = doc.LockLightMode
	c.Add(objs...)
	Logger().Debug("scene loaded", "objects", len(objs), "skipped", len(doc.Objects)-len(objs))
	return objs, nil
}

// objectFromRecord builds a live, center-origin object from a record.
func objectFromRecord(rec ObjectRecord) (*Object, error) {
	o := &Object{}
	switch rec.Type {
	case "rect", "circle":
		o.Kind = KindRect
	case "polygon":
		o.Kind = KindPolygon
	case "image":
		o.Kind = KindImage
	default:
		return nil, fmt.Errorf("unknown object type %q", rec.Type)
	}
	objectDefaults(o)

	o.OriginX, o.OriginY = rec.OriginX, rec.OriginY
	if o.OriginX == "" {
		o.OriginX = OriginLeft
	}
	if o.OriginY == "" {
		o.OriginY = OriginTop
	}
	o.Left, o.Top = rec.Left, rec.Top
	o.Width, o.Height = rec.Width, rec.Height
	o.ScaleX, o.ScaleY = rec.ScaleX, rec.ScaleY
	if o.ScaleX == 0 {
		o.ScaleX = 1
	}
	if o.ScaleY == 0 {
		o.ScaleY = 1
	}
	o.Angle = rec.Angle
	o.FlipX, o.FlipY = rec.FlipX, rec.FlipY
	o.Fill, o.Stroke = rec.Fill, rec.Stroke
	o.StrokeWidth = rec.StrokeWidth
	if rec.Data.StrokeWidthBase > 0 {
		o.StrokeWidth = rec.Data.StrokeWidthBase
	}
	if rec.Opacity != nil {
		o.Opacity = *rec.Opacity
	}
	if rec.Visible != nil {
		o.Visible = *rec.Visible
	}
	o.RX, o.RY = rec.RX, rec.RY
	o.Src = rec.Src
	o.Data = rec.Data
	o.Data.StrokeWidthBase = 0
	o.ShapeType = rec.ShapeType
	if rec.Type == ShapeCircle {
		o.ShapeType = ShapeCircle
	}
	o.ResizeDimensions = rec.ResizeDimensions
	o.Locks = rec.Locks

	if o.Kind == KindPolygon {
		o.Points = append([]LocalPoint(nil), rec.Points...)
		if rec.PathOffset != nil {
			o.PathOffset = *rec.PathOffset
		} else {
			o.updatePolygonDimensions()
		}
	}

	// Normalize to the live center convention.
	center := o.CenterPoint()
	o.OriginX, o.OriginY = OriginCenterX, OriginCenterY
	o.SetCenterPoint(center)
	return o, nil
}

const pngDataURLPrefix = "data:image/png;base64,"

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeDataURL decodes a base64 image data URL in any registered format.
func decodeDataURL(src string) (image.Image, error) {
	header, payload, ok := strings.Cut(src, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported image source %.32q", src)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	return img, err
}

package parser

import (
	"fmt"
	"html"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	mediaRe   = regexp.MustCompile(`(?i)\[\[\s*(?:file|image)\s*:\s*([^\[\]|]+?)\s*((?:\|[^\[\]]*)?)\]\]`)
	sizeRe    = regexp.MustCompile(`^(\d*)(?:x(\d+))?\s*px$`)
	uprightRe = regexp.MustCompile(`^upright(?:\s*=?\s*(\d+(?:\.\d+)?))?$`)
)

// Default thumbnail width in pixels.
const thumbWidth = 220

var (
	imageFloats = map[string]bool{"left": true, "right": true, "center": true, "none": true}

	imageValigns = map[string]bool{
		"baseline": true, "sub": true, "super": true, "top": true,
		"text-top": true, "middle": true, "bottom": true, "text-bottom": true,
	}

	imageFrames = map[string]string{
		"border":    "border",
		"frameless": "frameless",
		"frame":     "frame",
		"framed":    "frame",
		"thumb":     "thumb",
		"thumbnail": "thumb",
	}
)

// imageSpec is the parsed form of a [[File:...]] declaration.
type imageSpec struct {
	Name    string
	Caption string
	Alt     string
	Link    string
	HasLink bool
	Style   string
	Class   string
	Float   string
	Valign  string
	Frame   string
	Width   int
	Height  int
	Upright float64
}

// parseImageSpec classifies each pipe-separated parameter. Anything that
// matches no vocabulary or pattern becomes the caption.
func parseImageSpec(name string, params []string) imageSpec {
	spec := imageSpec{Name: name}
	for _, raw := range params {
		p := strings.TrimSpace(raw)
		lower := strings.ToLower(p)
		switch {
		case p == "":
			continue
		case imageFloats[lower]:
			spec.Float = lower
		case imageValigns[lower]:
			spec.Valign = lower
		case imageFrames[lower] != "":
			spec.Frame = imageFrames[lower]
		case sizeRe.MatchString(lower) && lower != "px":
			m := sizeRe.FindStringSubmatch(lower)
			spec.Width, _ = strconv.Atoi(m[1])
			spec.Height, _ = strconv.Atoi(m[2])
		case uprightRe.MatchString(lower):
			spec.Upright = 0.75
			if m := uprightRe.FindStringSubmatch(lower); m[1] != "" {
				spec.Upright, _ = strconv.ParseFloat(m[1], 64)
			}
		default:
			key, val, ok := strings.Cut(p, "=")
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "link":
				spec.Link, spec.HasLink = strings.TrimSpace(val), true
			case "alt":
				spec.Alt = strings.TrimSpace(val)
			case "style":
				spec.Style = strings.TrimSpace(val)
			case "class":
				spec.Class = strings.TrimSpace(val)
			default:
				if ok && (strings.EqualFold(strings.TrimSpace(key), "page") || strings.EqualFold(strings.TrimSpace(key), "lang")) {
					continue
				}
				spec.Caption = p
			}
		}
	}
	if spec.Frame == "thumb" || spec.Frame == "frame" {
		if spec.Float == "" {
			spec.Float = "right"
		}
		if spec.Width == 0 && spec.Frame == "thumb" {
			spec.Width = thumbWidth
		}
	}
	if spec.Upright > 0 {
		spec.Width = int(math.Round(thumbWidth * spec.Upright))
	}
	return spec
}

// showCaption reports whether the caption is rendered below the image
// rather than used as alternative text only.
func (s imageSpec) showCaption() bool {
	return s.Caption != "" && (s.Frame == "thumb" || s.Frame == "frame")
}

func (s imageSpec) figureStyle() string {
	var b strings.Builder
	switch s.Float {
	case "left", "right", "none":
		b.WriteString("float:" + s.Float + ";")
	case "center":
		b.WriteString("display:table;margin:0 auto;")
	}
	if s.showCaption() && s.Width > 0 {
		fmt.Fprintf(&b, "width:%dpx;", s.Width)
	}
	return b.String()
}

func (s imageSpec) imageStyle() string {
	var b strings.Builder
	if s.Width > 0 {
		fmt.Fprintf(&b, "width:%dpx;", s.Width)
	}
	if s.Height > 0 {
		fmt.Fprintf(&b, "height:%dpx;", s.Height)
	}
	if s.Valign != "" {
		b.WriteString("vertical-align:" + s.Valign + ";")
	}
	if s.Frame == "border" {
		b.WriteString("border:1px solid #ddd;")
	}
	if s.Style != "" {
		b.WriteString(strings.TrimSuffix(s.Style, ";") + ";")
	}
	return b.String()
}

// media renders image declarations. Declarations whose parameters still
// contain links are left for a later pass.
func (d *document) media(s string) string {
	return replaceSubmatch(mediaRe, s, func(m []string) string {
		var params []string
		if m[2] != "" {
			params = strings.Split(m[2][1:], "|")
		}
		return d.renderImage(parseImageSpec(m[1], params))
	})
}

func (d *document) renderImage(spec imageSpec) string {
	file := canonicalName(spec.Name)
	if !d.e.source.HasImage(file) {
		if !d.e.source.HasImage(spec.Name) {
			return redlink("File:"+spec.Name, path.Join(d.e.cfg.ImagesFolder, file))
		}
		file = spec.Name
	}
	src := "/" + path.Join(d.e.cfg.ImagesFolder, file)

	alt := spec.Alt
	if alt == "" && !spec.showCaption() {
		alt = spec.Caption
	}
	class := "image-container"
	if spec.Frame != "" {
		class += " image-" + spec.Frame
	}
	if spec.Class != "" {
		class += " " + spec.Class
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<figure class="%s"`, html.EscapeString(class))
	if style := spec.figureStyle(); style != "" {
		fmt.Fprintf(&b, ` style="%s"`, html.EscapeString(style))
	}
	b.WriteString(">")
	if spec.HasLink && spec.Link != "" {
		fmt.Fprintf(&b, `<a href="%s">`, html.EscapeString(linkHref(spec.Link)))
	}
	fmt.Fprintf(&b, `<img src="%s" alt="%s"`, html.EscapeString(strings.ReplaceAll(src, " ", "%20")), html.EscapeString(alt))
	if !spec.showCaption() && spec.Caption != "" {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(spec.Caption))
	}
	if style := spec.imageStyle(); style != "" {
		fmt.Fprintf(&b, ` style="%s"`, html.EscapeString(style))
	}
	b.WriteString(">")
	if spec.HasLink && spec.Link != "" {
		b.WriteString("</a>")
	}
	if spec.showCaption() {
		b.WriteString("<figcaption>" + spec.Caption + "</figcaption>")
	}
	b.WriteString("</figure>")
	return b.String()
}

// linkHref resolves an image link target: URLs pass through, anything else
// is treated as a page name.
func linkHref(target string) string {
	if strings.Contains(target, "//") {
		return target
	}
	return pageHref(target)
}

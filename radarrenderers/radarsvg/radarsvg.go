// Package radarsvg renders a radartarget.Radar to SVG.
package radarsvg

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"oss.terrastruct.com/techradar/lib/svg"
	"oss.terrastruct.com/techradar/lib/version"
	"oss.terrastruct.com/techradar/radartarget"
)

const (
	DEFAULT_PADDING = 5

	SEGMENT_LABEL_FONT_SIZE = 16
)

type RenderOpts struct {
	Pad         *int64
	NoXMLTag    *bool
	OmitVersion *bool
}

func dimensions(r *radartarget.Radar, pad int) (left, top, width, height float64) {
	margin := float64(pad) + r.LabelMargin
	// 0 - margin keeps a zero margin from printing as -0.
	left = 0 - margin
	top = 0 - margin
	width = r.Width() + margin*2
	height = r.Width() + margin*2
	return left, top, width, height
}

func Render(r *radartarget.Radar, opts *RenderOpts) ([]byte, error) {
	pad := DEFAULT_PADDING
	if opts == nil {
		opts = &RenderOpts{}
	}
	if opts.Pad != nil {
		pad = int(*opts.Pad)
	}

	hashID, err := r.HashID()
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if opts.NoXMLTag == nil || !*opts.NoXMLTag {
		buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	}
	versionAttr := ""
	if opts.OmitVersion == nil || !*opts.OmitVersion {
		versionAttr = fmt.Sprintf(` data-techradar-version="%s"`, version.Version)
	}
	left, top, w, h := dimensions(r, pad)
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" id="%s"%s viewBox="%s %s %s %s">`,
		hashID, versionAttr, num(left), num(top), num(w), num(h),
	)

	for _, s := range r.Segments {
		drawSegment(buf, s)
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

func drawSegment(w io.Writer, s radartarget.SegmentGroup) {
	fmt.Fprintf(w, `<g class="%s">`, svg.EscapeText(s.ClassName))
	for _, rg := range s.Rings {
		drawRing(w, rg)
	}
	if s.Curve != nil {
		drawCurvedLabel(w, *s.Curve, fmt.Sprintf(` font-size="%d" fill="%s"`, SEGMENT_LABEL_FONT_SIZE, svg.EscapeText(s.Curve.Color)))
	}
	fmt.Fprint(w, `</g>`)
}

func drawRing(w io.Writer, rg radartarget.RingGroup) {
	fmt.Fprintf(w, `<g class="%s">`, svg.EscapeText(rg.ClassName))
	fmt.Fprintf(w, `<path fill="%s" stroke="%s" d="%s"><title>%s</title></path>`,
		svg.EscapeText(rg.Color),
		svg.EscapeText(rg.Stroke),
		rg.Wedge,
		svg.EscapeText(rg.Label),
	)
	drawCurvedLabel(w, rg.Curve, "")
	for _, m := range rg.Markers {
		drawMarker(w, m)
	}
	fmt.Fprint(w, `</g>`)
}

func drawCurvedLabel(w io.Writer, c radartarget.CurvedLabel, textAttrs string) {
	id := svg.EscapeText(c.ID)
	fmt.Fprintf(w, `<path id="%s" d="%s" fill="transparent"></path>`, id, c.PathData)
	fmt.Fprintf(w, `<text%s><textPath href="#%s" xlink:href="#%s" text-anchor="middle" startOffset="50%%">%s</textPath></text>`,
		textAttrs, id, id, svg.EscapeText(c.Text),
	)
}

func drawMarker(w io.Writer, m radartarget.Marker) {
	if m.Link != "" {
		fmt.Fprintf(w, `<a href="%s" xlink:href="%s">`, svg.EscapeText(m.Link), svg.EscapeText(m.Link))
	}
	fmt.Fprintf(w, `<g class="entry" data-key="%s" transform="translate(%s %s)">`,
		svg.EscapeText(m.Key), num(m.Point.X), num(m.Point.Y),
	)

	fill := svg.EscapeText(m.Color)
	opacity := num(radartarget.DecorationOpacity)
	if m.IsNew {
		r := num(m.HaloRadius())
		fmt.Fprintf(w, `<circle r="%s" fill="%s"></circle>`, r, radartarget.DecorationColor)
		fmt.Fprintf(w, `<circle r="%s" fill="%s" opacity="%s"></circle>`, r, fill, opacity)
	}
	if m.Stroke != "" {
		fmt.Fprintf(w, `<circle r="%s" fill="%s" stroke="%s"></circle>`, num(m.Radius), fill, svg.EscapeText(m.Stroke))
	} else {
		fmt.Fprintf(w, `<circle r="%s" fill="%s"></circle>`, num(m.Radius), fill)
	}
	if transform := m.MovedTransform(); transform != "" {
		fmt.Fprintf(w, `<path fill="%s" transform="%s" d="%s"></path>`, radartarget.DecorationColor, transform, radartarget.MovedGlyphPath)
		fmt.Fprintf(w, `<path fill="%s" opacity="%s" transform="%s" d="%s"></path>`, fill, opacity, transform, radartarget.MovedGlyphPath)
	}

	fmt.Fprintf(w, `<text font-size="%s" fill="%s" y="%s" text-anchor="middle">%s</text>`,
		num(m.FontSize()), svg.EscapeText(m.FontColor), num(m.TextY()), svg.EscapeText(m.Label),
	)
	fmt.Fprintf(w, `<title>%s</title>`, svg.EscapeText(m.Title))
	fmt.Fprint(w, `</g>`)
	if m.Link != "" {
		fmt.Fprint(w, `</a>`)
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

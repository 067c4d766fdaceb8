package radarlayout

const (
	DEFAULT_RADIUS       = 500
	DEFAULT_ENTRY_RADIUS = 10
	// Entries never go closer to the center than this, leaving room for the
	// innermost ring's label.
	DEFAULT_CENTER_CLEARANCE = 150
	// Distance between the outermost ring and the segment labels.
	DEFAULT_SEGMENT_LABEL_OFFSET = 20

	// Markers keep this many entry radii away from ring boundaries.
	BAND_PADDING_FACTOR = 2
)

// Stream discriminators mixed into a cell's seed.
const (
	radiusStream = "radius"
	angleStream  = "angle"
)

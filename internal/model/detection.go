package model

// Box is an axis-aligned bounding box in image pixel coordinates.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection is one recognized object priced against the catalog at detection time.
type Detection struct {
	Class             string  `json:"class"`
	Confidence        float64 `json:"confidence"`
	Price             float64 `json:"price"`
	AvailableQuantity int     `json:"available_quantity"`
	Box               Box     `json:"box"`
}

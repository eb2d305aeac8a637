package entity

// Weather is the cached open-meteo reading shown on the departure board.
type Weather struct {
	Temp   int `json:"temp"`
	Precip int `json:"precip"`
}

// LineStatus is the /api/status response body.
type LineStatus struct {
	Line      string   `json:"line"`
	Status    string   `json:"status"`
	Detail    string   `json:"detail"`
	IsDelay   bool     `json:"is_delay"`
	Weather   *Weather `json:"weather"`
	Timestamp string   `json:"timestamp"`
}

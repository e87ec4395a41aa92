package domain

import (
	"fmt"
	"time"
)

type Make struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Model struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	MakeID string `json:"makeId"`
}

// Series is a production year range of a model.
type Series struct {
	ID        string `json:"id"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
	ModelID   string `json:"modelId"`
}

// YearRange formats the series for display. A series ending in or after
// currentYear is still in production and reads "2018-Present".
func (s Series) YearRange(currentYear int) string {
	if s.EndYear >= currentYear {
		return fmt.Sprintf("%d-Present", s.StartYear)
	}
	return fmt.Sprintf("%d-%d", s.StartYear, s.EndYear)
}

func (s Series) Label() string {
	return s.YearRange(time.Now().Year())
}

// Body is an optional trim/shape dimension of a model.
type Body struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Vehicle struct {
	ID       string   `json:"id"`
	MakeID   string   `json:"make_id"`
	ModelID  string   `json:"model_id"`
	SeriesID string   `json:"series_id"`
	BodyID   string   `json:"body_id,omitempty"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Images   []string `json:"images,omitempty"`
}

// PrimaryImage returns the first image URL, or "" when there is none.
func (v Vehicle) PrimaryImage() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}

// VehicleQuery is a fully or partially specified selection tuple.
type VehicleQuery struct {
	MakeID   string
	ModelID  string
	SeriesID string
	BodyID   string // optional
}

// Params returns the query string parameters of the vehicle lookup.
// body_id is only sent when a body was chosen.
func (q VehicleQuery) Params() map[string]string {
	params := map[string]string{
		"make_id":   q.MakeID,
		"model_id":  q.ModelID,
		"series_id": q.SeriesID,
	}
	if q.BodyID != "" {
		params["body_id"] = q.BodyID
	}
	return params
}

type VehicleDetail struct {
	Vehicle Vehicle           `json:"vehicle"`
	Kits    Listing[WiperKit] `json:"kits"`
}

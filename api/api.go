package api

import (
	"context"
)

const RequestIDHeader = "X-Request-ID"

func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(RequestIDHeader); v != nil {
		return v.(string)
	}
	return ""
}

type Error struct {
	Type    string      `json:"type"`
	Kind    string      `json:"kind"`
	Message string      `json:"error"`
	Info    interface{} `json:"info,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

type VersionResponse struct {
	Version string `json:"version"`
}

type AuthIdentityResponse struct {
	Subject string `json:"subject"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Dataset string `json:"dataset"`
}

// ModeInfo describes a query mode and the part of the dataset it covers.
type ModeInfo struct {
	Name    string            `json:"name"`
	Title   string            `json:"title"`
	Table   string            `json:"table"`
	Key     string            `json:"key"`
	Filter  string            `json:"filter,omitempty"`
	Outputs []string          `json:"outputs"`
	Units   map[string]string `json:"units"`
	Min     float64           `json:"min"`
	Max     float64           `json:"max"`
	Choices []float64         `json:"choices,omitempty"`
}

type QueryRequest struct {
	Mode    string   `json:"mode"`
	Value   *float64 `json:"value"`
	Filter  *float64 `json:"filter,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
}

type Property struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type QueryResponse struct {
	Mode         string     `json:"mode"`
	Key          string     `json:"key"`
	Value        float64    `json:"value"`
	FilterColumn string     `json:"filter_column,omitempty"`
	Filter       *float64   `json:"filter,omitempty"`
	Exact        bool       `json:"exact"`
	Lower        float64    `json:"lower"`
	Upper        float64    `json:"upper"`
	Values       []Property `json:"values"`
}

type SweepRequest struct {
	Mode    string   `json:"mode"`
	Filter  *float64 `json:"filter,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
	From    float64  `json:"from"`
	To      float64  `json:"to"`
	Step    float64  `json:"step"`
}

type SweepResponse struct {
	Mode    string          `json:"mode"`
	Results []QueryResponse `json:"results"`
}
